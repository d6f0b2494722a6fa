/*
ledger.go - The stock mutation entry point

PURPOSE:
  Adjust and AdjustBatch are the only ways stock changes. Both run their
  read-check-write inside a single store transaction so no other mutation
  of the same part can interpose between the stock read and the write.

CRITICAL INVARIANTS:
  1. stock >= 0 for every part after every committed operation
  2. One committed adjustment = exactly one new log entry
  3. Part update and log append commit together or not at all
  4. AdjustBatch is all-or-nothing: availability for every line is
     checked up front (net effect per part), then every deduction commits
     in the same transaction

UNKNOWN PART IDS:
  Strict mode (default) fails with ErrPartNotFound. Lenient mode restores
  the legacy silent no-op for callers that depend on it; the skipped line
  produces no log entry.

SEE ALSO:
  - store.go: the WithTx contract the atomicity rests on
  - sales, workshop: the two processors that batch deductions through here
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notifier receives low-stock events after a committed deduction leaves a
// part below its reorder threshold. Implementations must not block.
type Notifier interface {
	StockLow(ctx context.Context, p Part)
}

// Ledger is the exclusive owner of part stock levels and their audit log.
type Ledger struct {
	store    TxStore
	notifier Notifier
	lenient  bool
	now      func() time.Time
}

type Option func(*Ledger)

// WithNotifier wires a low-stock alert sink.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) { l.notifier = n }
}

// Lenient makes adjustments against unknown part ids silent no-ops
// instead of ErrPartNotFound. Kept for compatibility with the legacy
// behavior; new call sites should stay strict.
func Lenient() Option {
	return func(l *Ledger) { l.lenient = true }
}

// WithClock overrides the timestamp source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store TxStore, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Adjust applies one stock change. On success it returns the updated part
// and the new log entry. In lenient mode an unknown part id returns
// (nil, nil, nil).
func (l *Ledger) Adjust(ctx context.Context, adj Adjustment) (*Part, *LogEntry, error) {
	entries, parts, lowered, err := l.apply(ctx, []Adjustment{adj})
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		// lenient no-op
		return nil, nil, nil
	}
	l.alertLow(ctx, lowered)
	return &parts[0], &entries[0], nil
}

// AdjustBatch applies several stock changes as one unit. Either every
// line commits (with one log entry each) or none do.
func (l *Ledger) AdjustBatch(ctx context.Context, adjs []Adjustment) ([]LogEntry, error) {
	entries, _, lowered, err := l.apply(ctx, adjs)
	if err != nil {
		return nil, err
	}
	l.alertLow(ctx, lowered)
	return entries, nil
}

func (l *Ledger) apply(ctx context.Context, adjs []Adjustment) ([]LogEntry, []Part, []Part, error) {
	for _, adj := range adjs {
		if adj.Delta == 0 {
			return nil, nil, nil, ErrZeroDelta
		}
		if _, err := ParseReason(string(adj.Reason)); err != nil {
			return nil, nil, nil, err
		}
	}

	var (
		entries []LogEntry
		updated []Part
		lowered []Part
	)

	err := l.store.WithTx(ctx, func(s Store) error {
		entries = entries[:0]
		updated = updated[:0]
		lowered = lowered[:0]

		// Phase one: resolve parts and validate the net effect per part,
		// so a batch touching the same part twice is checked as a whole.
		parts := make(map[string]*Part)
		net := make(map[string]int)
		var lines []Adjustment

		for _, adj := range adjs {
			p, ok := parts[adj.PartID]
			if !ok {
				loaded, err := s.GetPart(ctx, adj.PartID)
				if err != nil {
					return err
				}
				if loaded == nil {
					if l.lenient {
						continue
					}
					return ErrPartNotFound
				}
				p = loaded
				parts[adj.PartID] = p
			}
			net[adj.PartID] += adj.Delta
			lines = append(lines, adj)
		}

		for id, delta := range net {
			p := parts[id]
			if p.Stock+delta < 0 {
				return &InsufficientStockError{
					PartID:    p.ID,
					PartName:  p.Name,
					Available: p.Stock,
					Requested: -delta,
				}
			}
		}

		// Phase two: commit every line.
		now := l.now()
		today := DateOf(now)
		for _, adj := range lines {
			p := parts[adj.PartID]
			entry := LogEntry{
				ID:          uuid.NewString(),
				PartID:      p.ID,
				PartName:    p.Name, // pre-adjustment name, by contract
				Change:      adj.Delta,
				Reason:      adj.Reason,
				ReferenceID: adj.ReferenceID,
				CreatedAt:   now,
				Actor:       actorOrSystem(adj.Actor),
			}

			p.Stock += adj.Delta
			p.LastUpdated = today
			if err := s.SavePart(ctx, *p); err != nil {
				return err
			}
			if err := s.AppendLog(ctx, entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		for _, p := range parts {
			updated = append(updated, *p)
			if net[p.ID] < 0 && p.LowStock() {
				lowered = append(lowered, *p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return entries, updated, lowered, nil
}

// alertLow fires low-stock notifications for parts a committed deduction
// left below their threshold. Runs after commit: an alert never refers to
// state that was rolled back.
func (l *Ledger) alertLow(ctx context.Context, parts []Part) {
	if l.notifier == nil {
		return
	}
	for _, p := range parts {
		l.notifier.StockLow(ctx, p)
	}
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return "System"
	}
	return actor
}

// =============================================================================
// READS
// =============================================================================

func (l *Ledger) Part(ctx context.Context, id string) (*Part, error) {
	return l.store.GetPart(ctx, id)
}

// SavePart creates or replaces a catalog entry. Stock changes should go
// through Adjust so the audit trail stays complete; this is for catalog
// edits (name, price, thresholds).
func (l *Ledger) SavePart(ctx context.Context, p Part) error {
	return l.store.SavePart(ctx, p)
}

func (l *Ledger) DeletePart(ctx context.Context, id string) error {
	return l.store.DeletePart(ctx, id)
}

func (l *Ledger) Parts(ctx context.Context) ([]Part, error) {
	return l.store.ListParts(ctx)
}

// Logs returns the audit trail, newest first.
func (l *Ledger) Logs(ctx context.Context) ([]LogEntry, error) {
	return l.store.ListLogs(ctx)
}

func (l *Ledger) LogsByPart(ctx context.Context, partID string) ([]LogEntry, error) {
	return l.store.ListLogsByPart(ctx, partID)
}

// LowStockParts returns parts below their reorder threshold.
func (l *Ledger) LowStockParts(ctx context.Context) ([]Part, error) {
	parts, err := l.store.ListParts(ctx)
	if err != nil {
		return nil, err
	}
	var low []Part
	for _, p := range parts {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}
