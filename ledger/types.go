/*
Package ledger is the stock ledger: the single source of truth for part
quantities and their audit trail.

PURPOSE:
  Every stock change in the system - a counter sale, a workshop job
  consuming parts, a manual restock - funnels through this package.
  The ledger enforces the one invariant everything else depends on:
  stock never goes negative, and every committed change leaves exactly
  one immutable log entry behind.

KEY CONCEPTS IN THIS FILE (types.go):
  - Part: a stocked item with its price and reorder threshold
  - LogEntry: an immutable audit record of one stock change
  - Reason: the enumerated cause of a change (SALE, WORKSHOP, ...)
  - Date: a day-granular business date (shift boundaries, not clock time)

OWNERSHIP:
  The ledger is the ONLY writer of Part.Stock and of LogEntry. Other
  packages (sales, workshop) request changes via Adjust/AdjustBatch and
  never touch stock directly.

SEE ALSO:
  - ledger.go: the Adjust/AdjustBatch operations
  - store.go: persistence interfaces
  - errors.go: error taxonomy
*/
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PART - A stocked item
// =============================================================================

type Category string

const (
	CategoryEngine      Category = "Engine"
	CategoryBraking     Category = "Braking"
	CategoryElectrical  Category = "Electrical"
	CategoryChassis     Category = "Chassis"
	CategoryAccessories Category = "Accessories"
)

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryEngine, CategoryBraking, CategoryElectrical, CategoryChassis, CategoryAccessories:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Part is a stocked item. Stock is mutated exclusively through the
// ledger's Adjust operations.
type Part struct {
	ID          string
	Name        string
	PartNumber  string
	Category    Category
	Stock       int
	Price       decimal.Decimal
	CostPrice   decimal.Decimal // zero when not tracked
	MinStock    int
	LastUpdated Date
}

// LowStock reports whether the part has fallen below its reorder threshold.
func (p Part) LowStock() bool { return p.Stock < p.MinStock }

// =============================================================================
// LOG ENTRY - Immutable audit record
// =============================================================================

type Reason string

const (
	ReasonSale       Reason = "SALE"
	ReasonWorkshop   Reason = "WORKSHOP"
	ReasonAdjustment Reason = "ADJUSTMENT"
	ReasonRestock    Reason = "RESTOCK"
)

// ParseReason validates a reason string.
func ParseReason(s string) (Reason, error) {
	switch Reason(s) {
	case ReasonSale, ReasonWorkshop, ReasonAdjustment, ReasonRestock:
		return Reason(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReason, s)
}

// LogEntry records one committed stock change. Append-only: never updated
// or deleted. PartName is denormalized at write time so the audit trail
// survives later catalog edits.
type LogEntry struct {
	ID          string
	PartID      string
	PartName    string
	Change      int // positive = increase, negative = decrease
	Reason      Reason
	ReferenceID string // originating sale/job id, empty for manual changes
	CreatedAt   time.Time
	Actor       string
}

// Adjustment is a requested stock change.
type Adjustment struct {
	PartID      string
	Delta       int
	Reason      Reason
	ReferenceID string
	Actor       string
}

// =============================================================================
// DATE - Day-granular business date
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC. Shift boundaries and report dates are
// day-granular; wall-clock time only appears in audit timestamps.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }
func (d Date) AddDays(n int) Date     { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) IsZero() bool           { return d.Time.IsZero() }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.normalize().Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// Money constructs a price amount. Prices use decimal arithmetic end to
// end; callers must not round through float64.
func Money(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }
