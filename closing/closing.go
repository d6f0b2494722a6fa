/*
Package closing is the shift closing / archival engine.

PURPOSE:
  CloseDay drains everything the dealership did since the last close -
  committed sales and COMPLETED workshop jobs - into one immutable
  DailyReport, clears the working collections, and advances the
  last-closed-date marker. The snapshot and the mutations are one unit:
  the store takes the snapshot, builds the report from it, and clears the
  collections without letting a write in between, so a sale committed
  while the close runs lands in the next shift instead of vanishing
  uncounted.

TRIGGERS:
  manual     operator pressed the button; always closes, normal log line
  automatic  date rollover detected (startup or scheduler tick); no-op
             when the marker already equals today, and fires a HIGH
             priority notification when it does run, since no operator
             is watching.

IDEMPOTENCE:
  The automatic path compares the stored marker against the current
  calendar day and only fires when they differ. Invoking it on every
  application start is safe: at most one close per day boundary.

BUSINESS DATE:
  The report is tagged with the date being closed (the stored marker),
  not the date the close runs. A shift closed late Tuesday morning still
  archives as Monday's business.

SEE ALSO:
  - sales, workshop: the collections this engine drains
  - api/scheduler.go: the background auto-close loop
*/
package closing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/workshop"
)

// =============================================================================
// DAILY REPORT - Immutable archival snapshot
// =============================================================================

type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerAutomatic Trigger = "automatic"
)

// DailyReport is the archival snapshot of one business day. Created only
// here; never mutated afterwards.
type DailyReport struct {
	ID              string
	Date            ledger.Date // the business date closed
	ClosedAt        time.Time
	Trigger         Trigger
	TotalSales      decimal.Decimal
	TotalWorkshop   decimal.Decimal
	GrossRevenue    decimal.Decimal
	SalesCount      int
	JobsCount       int // COMPLETED jobs only
	PartsSoldVolume int // units across all sale lines
}

// =============================================================================
// STORE
// =============================================================================

// Store is the archival side of persistence. DrainShift must take its
// snapshot and apply its mutations as one atomic unit.
type Store interface {
	// LastClosedDate returns the zero Date before the first close.
	LastClosedDate(ctx context.Context) (ledger.Date, error)

	// ListReports returns the report history, newest first.
	ListReports(ctx context.Context) ([]DailyReport, error)

	// DrainShift snapshots the open sales and jobs, stores the report that
	// build derives from that snapshot, clears both collections, and
	// advances the last-closed marker - all or nothing, with no write
	// admitted between the snapshot and the clear.
	DrainShift(ctx context.Context, marker ledger.Date, build func(openSales []sales.Sale, openJobs []workshop.Job) DailyReport) (DailyReport, error)
}

// Notifier surfaces an unattended close to the operator's notification
// drawer. Only the automatic trigger emits.
type Notifier interface {
	DayClosed(ctx context.Context, report DailyReport)
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CloseDay archives the current shift. The automatic trigger is a no-op
// returning (nil, nil) when the marker already equals today; the manual
// trigger always closes. On success the new report is returned.
func (e *Engine) CloseDay(ctx context.Context, trigger Trigger) (*DailyReport, error) {
	now := e.now()
	today := ledger.DateOf(now)

	marker, err := e.store.LastClosedDate(ctx)
	if err != nil {
		return nil, err
	}
	if trigger == TriggerAutomatic && marker.Equal(today) {
		return nil, nil
	}

	report, err := e.store.DrainShift(ctx, today, func(openSales []sales.Sale, openJobs []workshop.Job) DailyReport {
		return e.buildReport(openSales, openJobs, marker, today, now, trigger)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("shift closed",
		zap.String("trigger", string(trigger)),
		zap.String("business_date", report.Date.String()),
		zap.String("gross_revenue", report.GrossRevenue.String()),
		zap.Int("sales", report.SalesCount),
		zap.Int("jobs", report.JobsCount),
	)

	if trigger == TriggerAutomatic && e.notifier != nil {
		e.notifier.DayClosed(ctx, report)
	}
	return &report, nil
}

func (e *Engine) buildReport(openSales []sales.Sale, openJobs []workshop.Job, marker, today ledger.Date, now time.Time, trigger Trigger) DailyReport {
	totalSales := decimal.Zero
	partsSold := 0
	for _, s := range openSales {
		totalSales = totalSales.Add(s.Total)
		for _, li := range s.Items {
			partsSold += li.Quantity
		}
	}

	totalWorkshop := decimal.Zero
	completed := 0
	for _, j := range openJobs {
		if j.Status != workshop.StatusCompleted {
			continue
		}
		totalWorkshop = totalWorkshop.Add(j.Total())
		completed++
	}

	businessDate := marker
	if businessDate.IsZero() {
		// first close ever: there is no prior boundary, today's trade is
		// today's business
		businessDate = today
	}

	return DailyReport{
		ID:              uuid.NewString(),
		Date:            businessDate,
		ClosedAt:        now,
		Trigger:         trigger,
		TotalSales:      totalSales,
		TotalWorkshop:   totalWorkshop,
		GrossRevenue:    totalSales.Add(totalWorkshop),
		SalesCount:      len(openSales),
		JobsCount:       completed,
		PartsSoldVolume: partsSold,
	}
}

// AutoCloseIfNeeded runs the automatic trigger. Safe to call on every
// startup and scheduler tick; it only does work across a day boundary.
// Returns the report when a close happened, (nil, nil) otherwise.
func (e *Engine) AutoCloseIfNeeded(ctx context.Context) (*DailyReport, error) {
	return e.CloseDay(ctx, TriggerAutomatic)
}

// =============================================================================
// READS
// =============================================================================

func (e *Engine) Reports(ctx context.Context) ([]DailyReport, error) {
	return e.store.ListReports(ctx)
}

func (e *Engine) LastClosed(ctx context.Context) (ledger.Date, error) {
	return e.store.LastClosedDate(ctx)
}
