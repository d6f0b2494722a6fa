package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testClock = func() time.Time {
	return time.Date(2024, time.June, 3, 10, 30, 0, 0, time.UTC)
}

func newTestLedger(t *testing.T, opts ...ledger.Option) (*ledger.Ledger, *memory.Memory) {
	t.Helper()
	store := memory.New()
	opts = append(opts, ledger.WithClock(testClock))
	return ledger.New(store, opts...), store
}

func seedPart(t *testing.T, store *memory.Memory, id string, stock, minStock int) ledger.Part {
	t.Helper()
	p := ledger.Part{
		ID:          id,
		Name:        "Part " + id,
		PartNumber:  "PN-" + id,
		Category:    ledger.CategoryEngine,
		Stock:       stock,
		Price:       ledger.Money(100),
		MinStock:    minStock,
		LastUpdated: ledger.NewDate(2024, time.May, 20),
	}
	require.NoError(t, store.SavePart(context.Background(), p))
	return p
}

type alertRecorder struct {
	parts []ledger.Part
}

func (a *alertRecorder) StockLow(_ context.Context, p ledger.Part) {
	a.parts = append(a.parts, p)
}

// =============================================================================
// SINGLE ADJUSTMENTS
// =============================================================================

func TestAdjust_Deduction_UpdatesStockAndLogs(t *testing.T) {
	// GIVEN: a part with stock 10
	// WHEN: deducting 3
	// THEN: stock is 7 and exactly one log entry records the change

	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 10, 2)

	part, entry, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  -3,
		Reason: ledger.ReasonAdjustment,
		Actor:  "Asif",
	})

	require.NoError(t, err)
	require.NotNil(t, part)
	assert.Equal(t, 7, part.Stock)
	assert.Equal(t, ledger.DateOf(testClock()), part.LastUpdated)

	require.NotNil(t, entry)
	assert.Equal(t, "p1", entry.PartID)
	assert.Equal(t, "Part p1", entry.PartName)
	assert.Equal(t, -3, entry.Change)
	assert.Equal(t, ledger.ReasonAdjustment, entry.Reason)
	assert.Equal(t, "Asif", entry.Actor)
	assert.NotEmpty(t, entry.ID)

	logs, err := l.Logs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entry.ID, logs[0].ID)
}

func TestAdjust_Increase_RecordsPositiveChange(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 5, 2)

	part, entry, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  20,
		Reason: ledger.ReasonRestock,
	})

	require.NoError(t, err)
	assert.Equal(t, 25, part.Stock)
	assert.Equal(t, 20, entry.Change)
	assert.Equal(t, "System", entry.Actor, "blank actor defaults to System")
}

func TestAdjust_InsufficientStock_Rejected(t *testing.T) {
	// GIVEN: a part with stock 5
	// WHEN: deducting 6
	// THEN: the adjustment is rejected, stock stays 5, and no log is written

	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 5, 2)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  -6,
		Reason: ledger.ReasonAdjustment,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	var insufficientErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "p1", insufficientErr.PartID)
	assert.Equal(t, 5, insufficientErr.Available)
	assert.Equal(t, 6, insufficientErr.Requested)

	part, err := l.Part(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, part.Stock, "stock must be untouched after rejection")

	logs, err := l.Logs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs, "rejected adjustment must not log")
}

func TestAdjust_ExactDepletion_Allowed(t *testing.T) {
	// Deducting to exactly zero is valid; zero is not "below zero".
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 5, 2)

	part, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  -5,
		Reason: ledger.ReasonSale,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, part.Stock)
}

func TestAdjust_ZeroDelta_Rejected(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 5, 2)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  0,
		Reason: ledger.ReasonAdjustment,
	})

	assert.ErrorIs(t, err, ledger.ErrZeroDelta)
}

func TestAdjust_UnknownReason_Rejected(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 5, 2)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  -1,
		Reason: ledger.Reason("SHRINKAGE"),
	})

	assert.ErrorIs(t, err, ledger.ErrInvalidReason)
}

// =============================================================================
// UNKNOWN PART IDS: STRICT VS LENIENT
// =============================================================================

func TestAdjust_UnknownPart_StrictFails(t *testing.T) {
	l, _ := newTestLedger(t)

	_, _, err := l.Adjust(context.Background(), ledger.Adjustment{
		PartID: "ghost",
		Delta:  -1,
		Reason: ledger.ReasonAdjustment,
	})

	assert.ErrorIs(t, err, ledger.ErrPartNotFound)
}

func TestAdjust_UnknownPart_LenientNoOp(t *testing.T) {
	// GIVEN: lenient mode
	// WHEN: adjusting a part id that does not exist
	// THEN: no error, no part, and crucially no log entry

	l, _ := newTestLedger(t, ledger.Lenient())
	ctx := context.Background()

	part, entry, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "ghost",
		Delta:  -1,
		Reason: ledger.ReasonAdjustment,
	})

	require.NoError(t, err)
	assert.Nil(t, part)
	assert.Nil(t, entry)

	logs, err := l.Logs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

// =============================================================================
// BATCHES
// =============================================================================

func TestAdjustBatch_AllOrNothing(t *testing.T) {
	// GIVEN: two parts, the second with too little stock for its line
	// WHEN: batching a valid deduction with an invalid one
	// THEN: neither part changes and nothing is logged

	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 10, 2)
	seedPart(t, store, "p2", 1, 2)

	_, err := l.AdjustBatch(ctx, []ledger.Adjustment{
		{PartID: "p1", Delta: -2, Reason: ledger.ReasonSale},
		{PartID: "p2", Delta: -5, Reason: ledger.ReasonSale},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	p1, _ := l.Part(ctx, "p1")
	p2, _ := l.Part(ctx, "p2")
	assert.Equal(t, 10, p1.Stock, "first line must not survive a failed batch")
	assert.Equal(t, 1, p2.Stock)

	logs, _ := l.Logs(ctx)
	assert.Empty(t, logs)
}

func TestAdjustBatch_SamePartTwice_CheckedAsNet(t *testing.T) {
	// Two lines of -3 against stock 5: each line alone is fine, the net
	// effect of -6 is not. The batch must fail as a whole.

	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 5, 2)

	_, err := l.AdjustBatch(ctx, []ledger.Adjustment{
		{PartID: "p1", Delta: -3, Reason: ledger.ReasonSale},
		{PartID: "p1", Delta: -3, Reason: ledger.ReasonSale},
	})

	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	p1, _ := l.Part(ctx, "p1")
	assert.Equal(t, 5, p1.Stock)
}

func TestAdjustBatch_OneLogEntryPerLine(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 10, 2)
	seedPart(t, store, "p2", 10, 2)

	entries, err := l.AdjustBatch(ctx, []ledger.Adjustment{
		{PartID: "p1", Delta: -2, Reason: ledger.ReasonSale, ReferenceID: "sale-1"},
		{PartID: "p2", Delta: -1, Reason: ledger.ReasonSale, ReferenceID: "sale-1"},
	})

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sale-1", entries[0].ReferenceID)
	assert.Equal(t, "sale-1", entries[1].ReferenceID)

	logs, err := l.Logs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

// =============================================================================
// LOW STOCK ALERTS
// =============================================================================

func TestAdjust_DeductionBelowThreshold_Alerts(t *testing.T) {
	// GIVEN: a part at stock 6 with threshold 5 and an alert sink
	// WHEN: deducting 2 (stock 4, below threshold)
	// THEN: exactly one alert fires for that part

	recorder := &alertRecorder{}
	l, store := newTestLedger(t, ledger.WithNotifier(recorder))
	ctx := context.Background()
	seedPart(t, store, "p1", 6, 5)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  -2,
		Reason: ledger.ReasonSale,
	})

	require.NoError(t, err)
	require.Len(t, recorder.parts, 1)
	assert.Equal(t, "p1", recorder.parts[0].ID)
	assert.Equal(t, 4, recorder.parts[0].Stock, "alert carries the committed stock level")
}

func TestAdjust_RestockBelowThreshold_NoAlert(t *testing.T) {
	// A restock that still leaves the part under threshold is not a
	// deduction; it must not alert.

	recorder := &alertRecorder{}
	l, store := newTestLedger(t, ledger.WithNotifier(recorder))
	ctx := context.Background()
	seedPart(t, store, "p1", 1, 5)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  2,
		Reason: ledger.ReasonRestock,
	})

	require.NoError(t, err)
	assert.Empty(t, recorder.parts)
}

func TestAdjust_RejectedDeduction_NoAlert(t *testing.T) {
	recorder := &alertRecorder{}
	l, store := newTestLedger(t, ledger.WithNotifier(recorder))
	ctx := context.Background()
	seedPart(t, store, "p1", 2, 5)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{
		PartID: "p1",
		Delta:  -3,
		Reason: ledger.ReasonSale,
	})

	require.Error(t, err)
	assert.Empty(t, recorder.parts, "no alert for state that was rolled back")
}

// =============================================================================
// READS
// =============================================================================

func TestLowStockParts(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "low", 3, 10)
	seedPart(t, store, "ok", 30, 10)
	seedPart(t, store, "edge", 10, 10) // at threshold, not below

	low, err := l.LowStockParts(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "low", low[0].ID)
}

func TestLogsByPart_FiltersTrail(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()
	seedPart(t, store, "p1", 10, 2)
	seedPart(t, store, "p2", 10, 2)

	_, _, err := l.Adjust(ctx, ledger.Adjustment{PartID: "p1", Delta: -1, Reason: ledger.ReasonSale})
	require.NoError(t, err)
	_, _, err = l.Adjust(ctx, ledger.Adjustment{PartID: "p2", Delta: -1, Reason: ledger.ReasonSale})
	require.NoError(t, err)
	_, _, err = l.Adjust(ctx, ledger.Adjustment{PartID: "p1", Delta: 5, Reason: ledger.ReasonRestock})
	require.NoError(t, err)

	logs, err := l.LogsByPart(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 5, logs[0].Change, "newest first")
	assert.Equal(t, -1, logs[1].Change)
}

func TestLogEntry_PreservesNameAfterCatalogEdit(t *testing.T) {
	// The trail denormalizes the part name at write time, so renaming the
	// part later must not rewrite history.

	l, store := newTestLedger(t)
	ctx := context.Background()
	p := seedPart(t, store, "p1", 10, 2)

	_, entry, err := l.Adjust(ctx, ledger.Adjustment{PartID: "p1", Delta: -1, Reason: ledger.ReasonSale})
	require.NoError(t, err)

	p.Name = "Renamed"
	require.NoError(t, l.SavePart(ctx, p))

	logs, err := l.Logs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entry.PartName, logs[0].PartName)
	assert.Equal(t, "Part p1", logs[0].PartName)
}
