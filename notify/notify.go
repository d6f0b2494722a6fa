/*
Package notify is the notification drawer: low-stock alerts, unattended
close announcements, and system messages.

PURPOSE:
  Thin collaborator. The core packages emit events through narrow
  interfaces (ledger.Notifier, closing.Notifier); this package persists
  them as Notification records and mirrors each one to the structured
  log. Nothing here is load-bearing for the core invariants - a failed
  notification write is logged and swallowed so it can never abort the
  business operation that triggered it.
*/
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/ledger"
)

// =============================================================================
// NOTIFICATION
// =============================================================================

type Type string

const (
	TypeLowStock Type = "LOW_STOCK"
	TypeRevenue  Type = "REVENUE"
	TypeWorkshop Type = "WORKSHOP"
	TypeSystem   Type = "SYSTEM"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

type Notification struct {
	ID        string
	Type      Type
	Title     string
	Message   string
	Priority  Priority
	CreatedAt time.Time
	Read      bool
}

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	SaveNotification(ctx context.Context, n Notification) error

	// ListNotifications returns all notifications, newest first.
	ListNotifications(ctx context.Context) ([]Notification, error)

	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// =============================================================================
// EMITTER
// =============================================================================

// Emitter satisfies ledger.Notifier and closing.Notifier.
type Emitter struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

var (
	_ ledger.Notifier  = (*Emitter)(nil)
	_ closing.Notifier = (*Emitter)(nil)
)

func NewEmitter(store Store, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// StockLow records a reorder alert for a part that fell below its
// threshold after a deduction.
func (e *Emitter) StockLow(ctx context.Context, p ledger.Part) {
	e.emit(ctx, Notification{
		Type:     TypeLowStock,
		Title:    "Low stock",
		Message:  fmt.Sprintf("%s (%s) is down to %d units, reorder threshold is %d", p.Name, p.PartNumber, p.Stock, p.MinStock),
		Priority: PriorityMedium,
	})
}

// DayClosed announces an unattended shift close. HIGH priority: counters
// were reset with no operator watching.
func (e *Emitter) DayClosed(ctx context.Context, report closing.DailyReport) {
	e.emit(ctx, Notification{
		Type:  TypeSystem,
		Title: "Shift closed automatically",
		Message: fmt.Sprintf("Business for %s was archived (gross %s) and daily counters were reset",
			report.Date, report.GrossRevenue.StringFixed(2)),
		Priority: PriorityHigh,
	})
}

// System records an ad-hoc operator-facing message.
func (e *Emitter) System(ctx context.Context, title, message string, priority Priority) {
	e.emit(ctx, Notification{Type: TypeSystem, Title: title, Message: message, Priority: priority})
}

func (e *Emitter) emit(ctx context.Context, n Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = e.now()

	if err := e.store.SaveNotification(ctx, n); err != nil {
		// never let a notification failure abort the business operation
		e.log.Warn("notification dropped", zap.String("type", string(n.Type)), zap.Error(err))
		return
	}
	e.log.Info("notification",
		zap.String("type", string(n.Type)),
		zap.String("priority", string(n.Priority)),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
	)
}

// =============================================================================
// DRAWER OPERATIONS
// =============================================================================

func (e *Emitter) Notifications(ctx context.Context) ([]Notification, error) {
	return e.store.ListNotifications(ctx)
}

func (e *Emitter) MarkAllRead(ctx context.Context) error {
	return e.store.MarkAllNotificationsRead(ctx)
}

func (e *Emitter) Delete(ctx context.Context, id string) error {
	return e.store.DeleteNotification(ctx, id)
}
