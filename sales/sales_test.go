package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testClock = func() time.Time {
	return time.Date(2024, time.June, 3, 14, 0, 0, 0, time.UTC)
}

func newTestProcessor(t *testing.T) (*sales.Processor, *memory.Memory) {
	t.Helper()
	store := memory.New()
	l := ledger.New(store, ledger.WithClock(testClock))
	return sales.NewProcessor(l, store, sales.WithClock(testClock)), store
}

func seedPart(t *testing.T, store *memory.Memory, id, name string, price float64, stock int) {
	t.Helper()
	require.NoError(t, store.SavePart(context.Background(), ledger.Part{
		ID:          id,
		Name:        name,
		PartNumber:  "PN-" + id,
		Category:    ledger.CategoryEngine,
		Stock:       stock,
		Price:       ledger.Money(price),
		MinStock:    2,
		LastUpdated: ledger.NewDate(2024, time.May, 20),
	}))
}

// =============================================================================
// CHECKOUT
// =============================================================================

func TestCompleteSale_DeductsStockAndPersists(t *testing.T) {
	// GIVEN: a part priced 100 with stock 5
	// WHEN: selling 2 units
	// THEN: the sale totals 200, stock drops to 3, and one SALE log entry
	//       references the sale

	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 5)

	sale, err := p.CompleteSale(ctx, sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
		Items:     []sales.CartItem{{PartID: "p1", Quantity: 2}},
		Actor:     "Asif",
	})

	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, sales.StatusPaid, sale.Status)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(200)), "total should be 200, got %s", sale.Total)
	assert.True(t, sale.Subtotal.Equal(sale.Total))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Oil Filter", sale.Items[0].PartName)
	assert.Equal(t, 2, sale.Items[0].Quantity)

	part, err := store.GetPart(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, part.Stock)

	logs, err := store.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, -2, logs[0].Change)
	assert.Equal(t, ledger.ReasonSale, logs[0].Reason)
	assert.Equal(t, sale.ID, logs[0].ReferenceID)
	assert.Equal(t, "Asif", logs[0].Actor)

	stored, err := p.Sale(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ali Khan", stored.CustomerName)
}

func TestCompleteSale_QuantityExceedsStock_Rejected(t *testing.T) {
	// GIVEN: a part with stock 5
	// WHEN: the cart wants 6
	// THEN: the checkout fails validation, stock stays 5, nothing is saved
	//       or logged

	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 5)

	sale, err := p.CompleteSale(ctx, sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
		Items:     []sales.CartItem{{PartID: "p1", Quantity: 6}},
	})

	require.Error(t, err)
	assert.Nil(t, sale)

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Contains(t, verr.Messages[0], "only 5 of Oil Filter in stock")

	part, _ := store.GetPart(ctx, "p1")
	assert.Equal(t, 5, part.Stock)

	logs, _ := store.ListLogs(ctx)
	assert.Empty(t, logs)

	open, _ := p.Sales(ctx)
	assert.Empty(t, open)
}

func TestCompleteSale_CollectsEveryViolation(t *testing.T) {
	// One pass reports the short name, the missing bike model and the
	// overdrawn line together.

	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 1)

	_, err := p.CompleteSale(ctx, sales.Checkout{
		Customer:  "A",
		BikeModel: "",
		Items:     []sales.CartItem{{PartID: "p1", Quantity: 3}},
	})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 3)
	assert.Contains(t, verr.Messages, "customer name must be at least 2 characters")
	assert.Contains(t, verr.Messages, "bike model must be at least 2 characters")
}

func TestCompleteSale_EmptyCart_Rejected(t *testing.T) {
	p, _ := newTestProcessor(t)

	_, err := p.CompleteSale(context.Background(), sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
	})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, "cart must contain at least one item")
}

func TestCompleteSale_UnknownPart_Rejected(t *testing.T) {
	p, _ := newTestProcessor(t)

	_, err := p.CompleteSale(context.Background(), sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
		Items:     []sales.CartItem{{PartID: "ghost", Quantity: 1}},
	})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, "unknown part ghost")
}

func TestCompleteSale_SamePartTwice_CountedTogether(t *testing.T) {
	// Two lines of 3 against stock 5 exceed availability even though each
	// line alone fits.

	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 5)

	_, err := p.CompleteSale(ctx, sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
		Items: []sales.CartItem{
			{PartID: "p1", Quantity: 3},
			{PartID: "p1", Quantity: 3},
		},
	})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Contains(t, verr.Messages[0], "cart wants 6")

	part, _ := store.GetPart(ctx, "p1")
	assert.Equal(t, 5, part.Stock)
}

func TestCompleteSale_MultiLineCart(t *testing.T) {
	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 5)
	seedPart(t, store, "p2", "Brake Pads", 250.50, 4)

	sale, err := p.CompleteSale(ctx, sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
		Items: []sales.CartItem{
			{PartID: "p1", Quantity: 1},
			{PartID: "p2", Quantity: 2},
		},
	})

	require.NoError(t, err)
	want := decimal.NewFromFloat(100 + 2*250.50)
	assert.True(t, sale.Total.Equal(want), "want %s got %s", want, sale.Total)

	logs, _ := store.ListLogs(ctx)
	assert.Len(t, logs, 2, "one log entry per cart line")
}

func TestCompleteSale_DateFromClock(t *testing.T) {
	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 5)

	sale, err := p.CompleteSale(ctx, sales.Checkout{
		Customer:  "Ali Khan",
		BikeModel: "CG125",
		Items:     []sales.CartItem{{PartID: "p1", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", sale.Date.String())
	assert.Equal(t, testClock(), sale.CreatedAt)
}

// =============================================================================
// READS
// =============================================================================

func TestSales_NewestFirst(t *testing.T) {
	p, store := newTestProcessor(t)
	ctx := context.Background()
	seedPart(t, store, "p1", "Oil Filter", 100, 10)

	first, err := p.CompleteSale(ctx, sales.Checkout{
		Customer: "Ali Khan", BikeModel: "CG125",
		Items: []sales.CartItem{{PartID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := p.CompleteSale(ctx, sales.Checkout{
		Customer: "Sara Iqbal", BikeModel: "CD70",
		Items: []sales.CartItem{{PartID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	open, err := p.Sales(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, second.ID, open[0].ID)
	assert.Equal(t, first.ID, open[1].ID)
}

func TestSale_Missing_ReturnsNil(t *testing.T) {
	p, _ := newTestProcessor(t)

	sale, err := p.Sale(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, sale)
}
