/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface of the domain packages (ledger,
  sales, workshop, closing, notify, staff) on one Store. In production
  the same patterns apply to PostgreSQL - only minor dialect differences.

APPEND-ONLY ENFORCEMENT:
  The inventory_logs table has INSERT and SELECT paths only. No UPDATE,
  no DELETE. Corrections are new ADJUSTMENT entries.

KEY TABLES:
  parts:           Catalog with current stock levels
  inventory_logs:  Immutable audit trail of stock changes
  sales:           Open sales since the last shift close
  service_jobs:    Open workshop jobs since the last shift close
  daily_reports:   Immutable archival snapshots
  shift_marker:    Single-row last-closed-date marker
  notifications:   Operator notification drawer
  accounts, technicians: Personnel

ENCODING:
  Money columns store decimal strings (no float drift), dates store
  YYYY-MM-DD, timestamps store RFC3339. Sale items and job bill lines
  are JSON columns: they are only ever read back whole, never queried
  field-by-field.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  one writer at a time, better crash recovery.

ARCHIVAL:
  DrainShift runs the close-of-day inside one BEGIN/COMMIT: snapshot the
  open sales and jobs, insert the report built from them, clear both
  collections, advance the marker. The store mutex is held throughout,
  so no sale commits between the snapshot and the clear.

SEE ALSO:
  - ledger/store.go and friends: the interfaces implemented here
  - store/memory: the in-memory implementation used by tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/staff"
	"github.com/trotech/dealer-core/workshop"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS parts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		part_number TEXT NOT NULL,
		category TEXT NOT NULL,
		stock INTEGER NOT NULL CHECK (stock >= 0),
		price TEXT NOT NULL,
		cost_price TEXT NOT NULL,
		min_stock INTEGER NOT NULL,
		last_updated TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parts_category ON parts(category);

	-- Append-only audit trail
	CREATE TABLE IF NOT EXISTS inventory_logs (
		id TEXT PRIMARY KEY,
		part_id TEXT NOT NULL,
		part_name TEXT NOT NULL,
		change INTEGER NOT NULL,
		reason TEXT NOT NULL,
		reference_id TEXT,
		created_at TEXT NOT NULL,
		actor TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_logs_part ON inventory_logs(part_id);
	CREATE INDEX IF NOT EXISTS idx_logs_reference
		ON inventory_logs(reference_id) WHERE reference_id IS NOT NULL;

	-- Open sales, drained at shift close
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		bike_model TEXT NOT NULL,
		items_json TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		tax TEXT NOT NULL,
		total TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT NOT NULL
	);

	-- Open workshop jobs, drained at shift close
	CREATE TABLE IF NOT EXISTS service_jobs (
		id TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		bike_model TEXT NOT NULL,
		service_type TEXT NOT NULL,
		service_price TEXT NOT NULL,
		mechanic TEXT NOT NULL,
		status TEXT NOT NULL,
		start_time TEXT NOT NULL,
		date TEXT NOT NULL,
		parts_json TEXT NOT NULL,
		extras_json TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status ON service_jobs(status);

	-- Immutable archival snapshots, one per closed shift
	CREATE TABLE IF NOT EXISTS daily_reports (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		closed_at TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		total_sales TEXT NOT NULL,
		total_workshop TEXT NOT NULL,
		gross_revenue TEXT NOT NULL,
		sales_count INTEGER NOT NULL,
		jobs_count INTEGER NOT NULL,
		parts_sold INTEGER NOT NULL
	);

	-- Single-row marker; id is pinned to 1
	CREATE TABLE IF NOT EXISTS shift_marker (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_closed TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		priority TEXT NOT NULL,
		created_at TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		username TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS technicians (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		specialization TEXT NOT NULL,
		status TEXT NOT NULL,
		joined_date TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the write helpers work
// inside and outside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

func (s *Store) GetPart(ctx context.Context, id string) (*ledger.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPart(ctx, s.db, id)
}

func getPart(ctx context.Context, db dbtx, id string) (*ledger.Part, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, name, part_number, category, stock, price, cost_price, min_stock, last_updated
		 FROM parts WHERE id = ?`, id)

	p, err := scanPart(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPart(scan func(...any) error) (*ledger.Part, error) {
	var (
		p                    ledger.Part
		price, cost, lastUpd string
		category             string
	)
	if err := scan(&p.ID, &p.Name, &p.PartNumber, &category, &p.Stock, &price, &cost, &p.MinStock, &lastUpd); err != nil {
		return nil, err
	}
	p.Category = ledger.Category(category)

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("part %s: bad price: %w", p.ID, err)
	}
	if p.CostPrice, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("part %s: bad cost price: %w", p.ID, err)
	}
	if p.LastUpdated, err = ledger.ParseDate(lastUpd); err != nil {
		return nil, fmt.Errorf("part %s: bad last_updated: %w", p.ID, err)
	}
	return &p, nil
}

func (s *Store) SavePart(ctx context.Context, p ledger.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return savePart(ctx, s.db, p)
}

func savePart(ctx context.Context, db dbtx, p ledger.Part) error {
	query := `
		INSERT INTO parts (id, name, part_number, category, stock, price, cost_price, min_stock, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			part_number = excluded.part_number,
			category = excluded.category,
			stock = excluded.stock,
			price = excluded.price,
			cost_price = excluded.cost_price,
			min_stock = excluded.min_stock,
			last_updated = excluded.last_updated
	`
	_, err := db.ExecContext(ctx, query,
		p.ID, p.Name, p.PartNumber, string(p.Category), p.Stock,
		p.Price.String(), p.CostPrice.String(), p.MinStock, p.LastUpdated.String(),
	)
	return err
}

func (s *Store) DeletePart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM parts WHERE id = ?", id)
	return err
}

func (s *Store) ListParts(ctx context.Context) ([]ledger.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listParts(ctx, s.db)
}

func listParts(ctx context.Context, db dbtx) ([]ledger.Part, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, part_number, category, stock, price, cost_price, min_stock, last_updated
		 FROM parts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []ledger.Part
	for rows.Next() {
		p, err := scanPart(rows.Scan)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

func (s *Store) AppendLog(ctx context.Context, e ledger.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLog(ctx, s.db, e)
}

func appendLog(ctx context.Context, db dbtx, e ledger.LogEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO inventory_logs (id, part_id, part_name, change, reason, reference_id, created_at, actor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PartID, e.PartName, e.Change, string(e.Reason),
		nullString(e.ReferenceID), e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Actor,
	)
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

const logColumns = `id, part_id, part_name, change, reason, reference_id, created_at, actor`

func (s *Store) ListLogs(ctx context.Context) ([]ledger.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryLogs(ctx, s.db,
		`SELECT `+logColumns+` FROM inventory_logs ORDER BY created_at DESC, rowid DESC`)
}

func (s *Store) ListLogsByPart(ctx context.Context, partID string) ([]ledger.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryLogs(ctx, s.db,
		`SELECT `+logColumns+` FROM inventory_logs WHERE part_id = ? ORDER BY created_at DESC, rowid DESC`,
		partID)
}

func queryLogs(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.LogEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.LogEntry
	for rows.Next() {
		var (
			e           ledger.LogEntry
			reason      string
			referenceID sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.PartID, &e.PartName, &e.Change, &reason, &referenceID, &createdAt, &e.Actor); err != nil {
			return nil, err
		}
		e.Reason = ledger.Reason(reason)
		e.ReferenceID = referenceID.String
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("log %s: bad created_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The store mutex is
// held for the duration so the ledger's check-and-set is indivisible even
// across the Go side of the call.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes ledger.Store calls through an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetPart(ctx context.Context, id string) (*ledger.Part, error) {
	return getPart(ctx, ts.tx, id)
}

func (ts *txStore) SavePart(ctx context.Context, p ledger.Part) error {
	return savePart(ctx, ts.tx, p)
}

func (ts *txStore) DeletePart(ctx context.Context, id string) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM parts WHERE id = ?", id)
	return err
}

func (ts *txStore) ListParts(ctx context.Context) ([]ledger.Part, error) {
	return listParts(ctx, ts.tx)
}

func (ts *txStore) AppendLog(ctx context.Context, e ledger.LogEntry) error {
	return appendLog(ctx, ts.tx, e)
}

func (ts *txStore) ListLogs(ctx context.Context) ([]ledger.LogEntry, error) {
	return queryLogs(ctx, ts.tx,
		`SELECT `+logColumns+` FROM inventory_logs ORDER BY created_at DESC, rowid DESC`)
}

func (ts *txStore) ListLogsByPart(ctx context.Context, partID string) ([]ledger.LogEntry, error) {
	return queryLogs(ctx, ts.tx,
		`SELECT `+logColumns+` FROM inventory_logs WHERE part_id = ? ORDER BY created_at DESC, rowid DESC`,
		partID)
}

// =============================================================================
// SALES STORE (sales.Store interface)
// =============================================================================

func (s *Store) SaveSale(ctx context.Context, sale sales.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return fmt.Errorf("sale %s: encode items: %w", sale.ID, err)
	}

	query := `
		INSERT INTO sales (id, customer_name, bike_model, items_json, subtotal, tax, total, date, created_at, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_name = excluded.customer_name,
			bike_model = excluded.bike_model,
			items_json = excluded.items_json,
			subtotal = excluded.subtotal,
			tax = excluded.tax,
			total = excluded.total,
			status = excluded.status
	`
	_, err = s.db.ExecContext(ctx, query,
		sale.ID, sale.CustomerName, sale.BikeModel, string(itemsJSON),
		sale.Subtotal.String(), sale.Tax.String(), sale.Total.String(),
		sale.Date.String(), sale.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(sale.Status), sale.CreatedBy,
	)
	return err
}

func (s *Store) ListSales(ctx context.Context) ([]sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, rowid DESC`)
}

func (s *Store) GetSale(ctx context.Context, id string) (*sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := querySales(ctx, s.db, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

const saleColumns = `id, customer_name, bike_model, items_json, subtotal, tax, total, date, created_at, status, created_by`

func querySales(ctx context.Context, db dbtx, query string, args ...any) ([]sales.Sale, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.Sale
	for rows.Next() {
		var (
			sale                    sales.Sale
			itemsJSON               string
			subtotal, tax, total    string
			date, createdAt, status string
		)
		if err := rows.Scan(&sale.ID, &sale.CustomerName, &sale.BikeModel, &itemsJSON,
			&subtotal, &tax, &total, &date, &createdAt, &status, &sale.CreatedBy); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(itemsJSON), &sale.Items); err != nil {
			return nil, fmt.Errorf("sale %s: decode items: %w", sale.ID, err)
		}
		if sale.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, err
		}
		if sale.Tax, err = decimal.NewFromString(tax); err != nil {
			return nil, err
		}
		if sale.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		if sale.Date, err = ledger.ParseDate(date); err != nil {
			return nil, err
		}
		if sale.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		sale.Status = sales.Status(status)
		out = append(out, sale)
	}
	return out, rows.Err()
}

// =============================================================================
// WORKSHOP STORE (workshop.Store interface)
// =============================================================================

func (s *Store) SaveJob(ctx context.Context, j workshop.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partsJSON, err := json.Marshal(orEmptyParts(j.PartsUsed))
	if err != nil {
		return fmt.Errorf("job %s: encode parts: %w", j.ID, err)
	}
	extrasJSON, err := json.Marshal(orEmptyExtras(j.AdditionalServices))
	if err != nil {
		return fmt.Errorf("job %s: encode extras: %w", j.ID, err)
	}

	var completedAt *string
	if !j.CompletedAt.IsZero() {
		v := j.CompletedAt.UTC().Format(time.RFC3339Nano)
		completedAt = &v
	}

	query := `
		INSERT INTO service_jobs (id, customer_name, bike_model, service_type, service_price, mechanic,
			status, start_time, date, parts_json, extras_json, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			parts_json = excluded.parts_json,
			extras_json = excluded.extras_json,
			completed_at = excluded.completed_at
	`
	_, err = s.db.ExecContext(ctx, query,
		j.ID, j.CustomerName, j.BikeModel, j.ServiceType, j.ServicePrice.String(), j.Mechanic,
		string(j.Status), j.StartTime.UTC().Format(time.RFC3339Nano), j.Date.String(),
		string(partsJSON), string(extrasJSON), completedAt,
	)
	return err
}

func (s *Store) GetJob(ctx context.Context, id string) (*workshop.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := queryJobs(ctx, s.db, `SELECT `+jobColumns+` FROM service_jobs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *Store) ListJobs(ctx context.Context) ([]workshop.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryJobs(ctx, s.db,
		`SELECT `+jobColumns+` FROM service_jobs ORDER BY start_time DESC, rowid DESC`)
}

const jobColumns = `id, customer_name, bike_model, service_type, service_price, mechanic, status, start_time, date, parts_json, extras_json, completed_at`

func queryJobs(ctx context.Context, db dbtx, query string, args ...any) ([]workshop.Job, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workshop.Job
	for rows.Next() {
		var (
			j                     workshop.Job
			servicePrice, status  string
			startTime, date       string
			partsJSON, extrasJSON string
			completedAt           sql.NullString
		)
		if err := rows.Scan(&j.ID, &j.CustomerName, &j.BikeModel, &j.ServiceType, &servicePrice,
			&j.Mechanic, &status, &startTime, &date, &partsJSON, &extrasJSON, &completedAt); err != nil {
			return nil, err
		}
		if j.ServicePrice, err = decimal.NewFromString(servicePrice); err != nil {
			return nil, err
		}
		j.Status = workshop.JobStatus(status)
		if j.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
			return nil, err
		}
		if j.Date, err = ledger.ParseDate(date); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(partsJSON), &j.PartsUsed); err != nil {
			return nil, fmt.Errorf("job %s: decode parts: %w", j.ID, err)
		}
		if err := json.Unmarshal([]byte(extrasJSON), &j.AdditionalServices); err != nil {
			return nil, fmt.Errorf("job %s: decode extras: %w", j.ID, err)
		}
		if len(j.PartsUsed) == 0 {
			j.PartsUsed = nil
		}
		if len(j.AdditionalServices) == 0 {
			j.AdditionalServices = nil
		}
		if completedAt.Valid {
			if j.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt.String); err != nil {
				return nil, err
			}
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func orEmptyParts(in []workshop.UsedPart) []workshop.UsedPart {
	if in == nil {
		return []workshop.UsedPart{}
	}
	return in
}

func orEmptyExtras(in []workshop.ExtraService) []workshop.ExtraService {
	if in == nil {
		return []workshop.ExtraService{}
	}
	return in
}

// =============================================================================
// CLOSING STORE (closing.Store interface)
// =============================================================================

func (s *Store) LastClosedDate(ctx context.Context) (ledger.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lastClosed string
	err := s.db.QueryRowContext(ctx, "SELECT last_closed FROM shift_marker WHERE id = 1").Scan(&lastClosed)
	if err == sql.ErrNoRows {
		return ledger.Date{}, nil
	}
	if err != nil {
		return ledger.Date{}, err
	}
	return ledger.ParseDate(lastClosed)
}

func (s *Store) ListReports(ctx context.Context) ([]closing.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, closed_at, trigger_kind, total_sales, total_workshop, gross_revenue,
		       sales_count, jobs_count, parts_sold
		FROM daily_reports ORDER BY closed_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []closing.DailyReport
	for rows.Next() {
		var (
			r                                closing.DailyReport
			date, closedAt, trigger          string
			totalSales, totalWorkshop, gross string
		)
		if err := rows.Scan(&r.ID, &date, &closedAt, &trigger, &totalSales, &totalWorkshop,
			&gross, &r.SalesCount, &r.JobsCount, &r.PartsSoldVolume); err != nil {
			return nil, err
		}
		if r.Date, err = ledger.ParseDate(date); err != nil {
			return nil, err
		}
		if r.ClosedAt, err = time.Parse(time.RFC3339Nano, closedAt); err != nil {
			return nil, err
		}
		r.Trigger = closing.Trigger(trigger)
		if r.TotalSales, err = decimal.NewFromString(totalSales); err != nil {
			return nil, err
		}
		if r.TotalWorkshop, err = decimal.NewFromString(totalWorkshop); err != nil {
			return nil, err
		}
		if r.GrossRevenue, err = decimal.NewFromString(gross); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DrainShift applies the close-of-day atomically: snapshot the open sales
// and jobs, insert the report built from them, drain both collections,
// advance the marker. One BEGIN/COMMIT under the store mutex - a crash
// mid-way leaves everything untouched, and no sale commits between the
// snapshot and the clear.
func (s *Store) DrainShift(ctx context.Context, marker ledger.Date, build func([]sales.Sale, []workshop.Job) closing.DailyReport) (closing.DailyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return closing.DailyReport{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	openSales, err := querySales(ctx, sqlTx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return closing.DailyReport{}, err
	}
	openJobs, err := queryJobs(ctx, sqlTx,
		`SELECT `+jobColumns+` FROM service_jobs ORDER BY start_time DESC, rowid DESC`)
	if err != nil {
		return closing.DailyReport{}, err
	}

	report := build(openSales, openJobs)

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO daily_reports (id, date, closed_at, trigger_kind, total_sales, total_workshop,
			gross_revenue, sales_count, jobs_count, parts_sold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Date.String(), report.ClosedAt.UTC().Format(time.RFC3339Nano),
		string(report.Trigger), report.TotalSales.String(), report.TotalWorkshop.String(),
		report.GrossRevenue.String(), report.SalesCount, report.JobsCount, report.PartsSoldVolume,
	)
	if err != nil {
		return closing.DailyReport{}, fmt.Errorf("failed to insert report: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM sales"); err != nil {
		return closing.DailyReport{}, err
	}
	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM service_jobs"); err != nil {
		return closing.DailyReport{}, err
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO shift_marker (id, last_closed) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_closed = excluded.last_closed`,
		marker.String(),
	)
	if err != nil {
		return closing.DailyReport{}, err
	}
	if err := sqlTx.Commit(); err != nil {
		return closing.DailyReport{}, err
	}
	return report, nil
}

// =============================================================================
// NOTIFY STORE (notify.Store interface)
// =============================================================================

func (s *Store) SaveNotification(ctx context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, priority, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), n.Title, n.Message, string(n.Priority),
		n.CreatedAt.UTC().Format(time.RFC3339Nano), boolInt(n.Read),
	)
	return err
}

func (s *Store) ListNotifications(ctx context.Context) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, title, message, priority, created_at, is_read
		FROM notifications ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notify.Notification
	for rows.Next() {
		var (
			n                 notify.Notification
			typ, priority, at string
			read              int
		)
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Message, &priority, &at, &read); err != nil {
			return nil, err
		}
		n.Type = notify.Type(typ)
		n.Priority = notify.Priority(priority)
		if n.CreatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, err
		}
		n.Read = read != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET is_read = 1")
	return err
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	return err
}

// =============================================================================
// STAFF STORE (staff.Store interface)
// =============================================================================

func (s *Store) SaveAccount(ctx context.Context, a staff.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO accounts (id, name, email, username, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			username = excluded.username,
			role = excluded.role
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Name, a.Email, a.Username, string(a.Role),
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetAccount(ctx context.Context, id string) (*staff.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		a        staff.Account
		role, at string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, username, role, created_at FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Username, &role, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Role = staff.Role(role)
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]staff.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, username, role, created_at FROM accounts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []staff.Account
	for rows.Next() {
		var (
			a        staff.Account
			role, at string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Username, &role, &at); err != nil {
			return nil, err
		}
		a.Role = staff.Role(role)
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	return err
}

func (s *Store) SaveTechnician(ctx context.Context, t staff.Technician) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO technicians (id, name, specialization, status, joined_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			specialization = excluded.specialization,
			status = excluded.status
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Specialization, string(t.Status), t.JoinedDate.String(),
	)
	return err
}

func (s *Store) ListTechnicians(ctx context.Context) ([]staff.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, specialization, status, joined_date FROM technicians ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []staff.Technician
	for rows.Next() {
		var (
			t              staff.Technician
			status, joined string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Specialization, &status, &joined); err != nil {
			return nil, err
		}
		t.Status = staff.TechnicianStatus(status)
		if t.JoinedDate, err = ledger.ParseDate(joined); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTechnician(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM technicians WHERE id = ?", id)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (admin data-reset and demo reseed).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"inventory_logs", "parts", "sales", "service_jobs",
		"daily_reports", "shift_marker", "notifications", "accounts", "technicians",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Interface conformance.
var (
	_ ledger.TxStore = (*Store)(nil)
	_ sales.Store    = (*Store)(nil)
	_ workshop.Store = (*Store)(nil)
	_ closing.Store  = (*Store)(nil)
	_ notify.Store   = (*Store)(nil)
	_ staff.Store    = (*Store)(nil)
)
