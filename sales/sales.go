/*
Package sales is the point-of-sale processor: it turns a cart of line
items into a committed Sale with its ledger deductions.

PURPOSE:
  CompleteSale is the only way a Sale comes into existence. It validates
  the checkout form, deducts every line's stock through the ledger as one
  atomic batch, and persists the Sale only after every deduction
  committed. There is no partial sale: either the customer walks out with
  a receipt and the shelves reflect it, or nothing changed.

SALE FLOW:
  Checkout ──▶ validate ──▶ ledger.AdjustBatch (reason SALE) ──▶ store Sale

PAYMENT:
  Payment capture is out of scope; a completed sale is PAID immediately.
  Tax is carried on the record but is always zero in this market.

SEE ALSO:
  - ledger: the batch deduction this processor leans on
  - closing: drains committed sales into daily reports
*/
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trotech/dealer-core/ledger"
)

// =============================================================================
// SALE - A committed point-of-sale transaction
// =============================================================================

type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPending Status = "PENDING"
)

// LineItem is one cart line, with the part's name and unit price
// denormalized at the time of sale.
type LineItem struct {
	PartID    string
	PartName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Sale is a committed transaction. Never partially written: its ledger
// deductions and the record itself commit together.
type Sale struct {
	ID           string
	CustomerName string
	BikeModel    string
	Items        []LineItem
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal // always zero, kept for receipt layout
	Total        decimal.Decimal
	Date         ledger.Date
	CreatedAt    time.Time
	Status       Status
	CreatedBy    string
}

// =============================================================================
// STORE
// =============================================================================

// Store handles Sale persistence. CompleteSale commits the ledger
// deductions first and saves the sale record after them; the deductions
// and their audit entries stand even if the save fails.
type Store interface {
	SaveSale(ctx context.Context, s Sale) error

	// ListSales returns all open (not yet archived) sales, newest first.
	ListSales(ctx context.Context) ([]Sale, error)

	GetSale(ctx context.Context, id string) (*Sale, error)
}

// =============================================================================
// CHECKOUT - Validated operator input
// =============================================================================

// CartItem is one requested line before prices are resolved.
type CartItem struct {
	PartID   string `validate:"required"`
	Quantity int    `validate:"gt=0"`
}

// Checkout is the operator's sale form.
type Checkout struct {
	Customer  string     `validate:"required,min=2"`
	BikeModel string     `validate:"required,min=2"`
	Items     []CartItem `validate:"required,min=1,dive"`
	Actor     string
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Deductor is the slice of the ledger this processor needs.
type Deductor interface {
	AdjustBatch(ctx context.Context, adjs []ledger.Adjustment) ([]ledger.LogEntry, error)
	Part(ctx context.Context, id string) (*ledger.Part, error)
}

type Processor struct {
	ledger   Deductor
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Processor)

// WithClock overrides the timestamp source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(l Deductor, store Store, opts ...Option) *Processor {
	p := &Processor{
		ledger:   l,
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CompleteSale validates the checkout, deducts stock for every line as one
// batch, and persists the resulting Sale. Every validation failure is
// collected into a single ValidationError so the operator fixes the whole
// form in one pass. No ledger mutation happens on invalid input, and a
// failed deduction leaves no partial effects.
func (p *Processor) CompleteSale(ctx context.Context, co Checkout) (*Sale, error) {
	if err := p.check(ctx, co); err != nil {
		return nil, err
	}

	saleID := uuid.NewString()
	now := p.now()

	items := make([]LineItem, 0, len(co.Items))
	adjs := make([]ledger.Adjustment, 0, len(co.Items))
	subtotal := decimal.Zero

	for _, ci := range co.Items {
		part, err := p.ledger.Part(ctx, ci.PartID)
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, fmt.Errorf("sale line: %w", ledger.ErrPartNotFound)
		}

		li := LineItem{
			PartID:    part.ID,
			PartName:  part.Name,
			Quantity:  ci.Quantity,
			UnitPrice: part.Price,
		}
		items = append(items, li)
		subtotal = subtotal.Add(li.LineTotal())

		adjs = append(adjs, ledger.Adjustment{
			PartID:      ci.PartID,
			Delta:       -ci.Quantity,
			Reason:      ledger.ReasonSale,
			ReferenceID: saleID,
			Actor:       co.Actor,
		})
	}

	if _, err := p.ledger.AdjustBatch(ctx, adjs); err != nil {
		return nil, err
	}

	sale := Sale{
		ID:           saleID,
		CustomerName: co.Customer,
		BikeModel:    co.BikeModel,
		Items:        items,
		Subtotal:     subtotal,
		Tax:          decimal.Zero,
		Total:        subtotal,
		Date:         ledger.DateOf(now),
		CreatedAt:    now,
		Status:       StatusPaid,
		CreatedBy:    co.Actor,
	}
	if err := p.store.SaveSale(ctx, sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// check collects every violated rule. Structural rules come from the
// validate tags; the stock-availability rule needs the catalog, so it is
// checked here against the cart's per-part totals (two lines for the same
// part count together).
func (p *Processor) check(ctx context.Context, co Checkout) error {
	var msgs []string

	if err := p.validate.Struct(co); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msgs = append(msgs, checkoutMessage(fe))
		}
	}

	wanted := make(map[string]int)
	order := make([]string, 0, len(co.Items))
	for _, ci := range co.Items {
		if ci.PartID == "" || ci.Quantity <= 0 {
			continue // already reported by the tag pass
		}
		if _, seen := wanted[ci.PartID]; !seen {
			order = append(order, ci.PartID)
		}
		wanted[ci.PartID] += ci.Quantity
	}
	for _, id := range order {
		part, err := p.ledger.Part(ctx, id)
		if err != nil {
			return err
		}
		if part == nil {
			msgs = append(msgs, fmt.Sprintf("unknown part %s", id))
			continue
		}
		if wanted[id] > part.Stock {
			msgs = append(msgs, fmt.Sprintf("only %d of %s in stock, cart wants %d",
				part.Stock, part.Name, wanted[id]))
		}
	}

	if len(msgs) > 0 {
		return &ledger.ValidationError{Messages: msgs}
	}
	return nil
}

func checkoutMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Customer":
		return "customer name must be at least 2 characters"
	case "BikeModel":
		return "bike model must be at least 2 characters"
	case "Items":
		return "cart must contain at least one item"
	case "PartID":
		return "cart item is missing a part"
	case "Quantity":
		return "quantity must be a positive integer"
	}
	return fmt.Sprintf("invalid %s", fe.Field())
}

// =============================================================================
// READS
// =============================================================================

func (p *Processor) Sales(ctx context.Context) ([]Sale, error) {
	return p.store.ListSales(ctx)
}

func (p *Processor) Sale(ctx context.Context, id string) (*Sale, error) {
	return p.store.GetSale(ctx, id)
}
