/*
Package workshop manages service job work orders.

PURPOSE:
  A job moves QUEUED -> IN_PROGRESS -> COMPLETED, strictly forward.
  Completion is the only transition with business logic: the operator
  supplies the parts consumed and any ad-hoc extra services, the
  consumed parts are deducted from the ledger, and the final bill is
  computed from the frozen record.

STATE MACHINE:
  QUEUED ──▶ IN_PROGRESS ──▶ COMPLETED
  No cancellation, no reopen. QUEUED -> IN_PROGRESS is a pure status
  flip. COMPLETED is only reachable through CompleteJob, never through
  AdvanceStatus, because completion carries the ledger side effects.

BILLING:
  Total = ServicePrice + sum(extra service prices)
        + sum(part price * quantity). Derived, never stored while the
  job is open; the frozen PartsUsed/AdditionalServices make it stable
  once COMPLETED.

RECONCILIATION:
  When completion cannot fully apply its deductions, the whole attempt
  fails with a ReconciliationError, the job keeps its prior status with
  no bill fields persisted, and the operator retries after restocking or
  correcting the parts list.

SEE ALSO:
  - ledger: the batch deduction used at completion
  - closing: drains COMPLETED jobs into daily reports
*/
package workshop

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
// JOB - A workshop work order
// =============================================================================

type JobStatus string

const (
	StatusQueued     JobStatus = "QUEUED"
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusCompleted  JobStatus = "COMPLETED"
)

// rank orders statuses for the one-directional transition check.
func (s JobStatus) rank() int {
	switch s {
	case StatusQueued:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// UsedPart is a consumed part with quantity and unit price denormalized
// at completion time.
type UsedPart struct {
	PartID    string
	PartName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ExtraService is an ad-hoc billable item added at completion.
type ExtraService struct {
	Name  string
	Price decimal.Decimal
}

// Job is a work order. PartsUsed and AdditionalServices are empty until
// the job is COMPLETED, then frozen.
type Job struct {
	ID                 string
	CustomerName       string
	BikeModel          string
	ServiceType        string
	ServicePrice       decimal.Decimal
	Mechanic           string
	Status             JobStatus
	StartTime          time.Time
	Date               ledger.Date
	PartsUsed          []UsedPart
	AdditionalServices []ExtraService
	CompletedAt        time.Time // zero until COMPLETED
}

// Total is the billable amount: labor plus extras plus consumed parts.
func (j Job) Total() decimal.Decimal {
	total := j.ServicePrice
	for _, s := range j.AdditionalServices {
		total = total.Add(s.Price)
	}
	for _, p := range j.PartsUsed {
		total = total.Add(p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidTransition is returned for a backward or repeated status
// change, or an attempt to reach COMPLETED through AdvanceStatus.
var ErrInvalidTransition = errors.New("invalid job status transition")

// ReconciliationError means a completion could not fully apply its stock
// deductions. The job keeps its prior status; the operator reconciles and
// retries.
type ReconciliationError struct {
	JobID string
	Err   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("job %s could not be reconciled: %v", e.JobID, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	SaveJob(ctx context.Context, j Job) error

	// GetJob returns (nil, nil) when the job does not exist.
	GetJob(ctx context.Context, id string) (*Job, error)

	// ListJobs returns all open (not yet archived) jobs, newest first.
	ListJobs(ctx context.Context) ([]Job, error)
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Catalog resolves consumed part lines against the parts ledger.
type Catalog interface {
	AdjustBatch(ctx context.Context, adjs []ledger.Adjustment) ([]ledger.LogEntry, error)
	Part(ctx context.Context, id string) (*ledger.Part, error)
}

// NewJob is the operator's intake form.
type NewJob struct {
	Customer     string  `validate:"required,min=2"`
	BikeModel    string  `validate:"required,min=2"`
	ServiceType  string  `validate:"required,min=2"`
	ServicePrice float64 `validate:"gte=0"`
	Mechanic     string  `validate:"required"`
	Actor        string
}

// ConsumedPart is one completion line before prices are resolved.
type ConsumedPart struct {
	PartID   string
	Quantity int
}

type Processor struct {
	catalog  Catalog
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Processor)

// WithClock overrides the timestamp source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(catalog Catalog, store Store, opts ...Option) *Processor {
	p := &Processor{
		catalog:  catalog,
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateJob validates the intake form and stores a QUEUED job.
func (p *Processor) CreateJob(ctx context.Context, in NewJob) (*Job, error) {
	if err := p.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		var msgs []string
		for _, fe := range verrs {
			msgs = append(msgs, intakeMessage(fe))
		}
		return nil, &ledger.ValidationError{Messages: msgs}
	}

	now := p.now()
	job := Job{
		ID:           uuid.NewString(),
		CustomerName: in.Customer,
		BikeModel:    in.BikeModel,
		ServiceType:  in.ServiceType,
		ServicePrice: ledger.Money(in.ServicePrice),
		Mechanic:     in.Mechanic,
		Status:       StatusQueued,
		StartTime:    now,
		Date:         ledger.DateOf(now),
	}
	if err := p.store.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return &job, nil
}

func intakeMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Customer":
		return "customer name must be at least 2 characters"
	case "BikeModel":
		return "bike model must be at least 2 characters"
	case "ServiceType":
		return "service type must be at least 2 characters"
	case "ServicePrice":
		return "service price cannot be negative"
	case "Mechanic":
		return "a technician must be assigned"
	}
	return fmt.Sprintf("invalid %s", fe.Field())
}

// AdvanceStatus flips a job forward. A missing job is a no-op returning
// (nil, nil). Backward moves, repeats, and COMPLETED as a target are
// rejected; completion goes through CompleteJob.
func (p *Processor) AdvanceStatus(ctx context.Context, jobID string, target JobStatus) (*Job, error) {
	if target.rank() < 0 {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}
	if target == StatusCompleted {
		return nil, fmt.Errorf("%w: completion requires the parts and services bill", ErrInvalidTransition)
	}
	if target.rank() <= job.Status.rank() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, target)
	}

	job.Status = target
	if err := p.store.SaveJob(ctx, *job); err != nil {
		return nil, err
	}
	return job, nil
}

// CompleteJob applies the completion bill: deducts every consumed part
// from the ledger as one batch, freezes the parts and extra services onto
// the record, and marks the job COMPLETED. A failed deduction wraps into
// a ReconciliationError and leaves the job untouched.
func (p *Processor) CompleteJob(ctx context.Context, jobID string, parts []ConsumedPart, extras []ExtraService) (*Job, error) {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: not found", jobID)
	}
	if job.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: job already completed", ErrInvalidTransition)
	}

	var msgs []string
	for _, cp := range parts {
		if cp.Quantity <= 0 {
			msgs = append(msgs, "part quantity must be a positive integer")
		}
	}
	for _, ex := range extras {
		if ex.Name == "" {
			msgs = append(msgs, "additional service needs a name")
		}
		if ex.Price.IsNegative() {
			msgs = append(msgs, "additional service price cannot be negative")
		}
	}
	if len(msgs) > 0 {
		return nil, &ledger.ValidationError{Messages: msgs}
	}

	used := make([]UsedPart, 0, len(parts))
	adjs := make([]ledger.Adjustment, 0, len(parts))
	for _, cp := range parts {
		part, err := p.catalog.Part(ctx, cp.PartID)
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, &ReconciliationError{JobID: jobID, Err: fmt.Errorf("part %s: %w", cp.PartID, ledger.ErrPartNotFound)}
		}
		used = append(used, UsedPart{
			PartID:    part.ID,
			PartName:  part.Name,
			Quantity:  cp.Quantity,
			UnitPrice: part.Price,
		})
		adjs = append(adjs, ledger.Adjustment{
			PartID:      cp.PartID,
			Delta:       -cp.Quantity,
			Reason:      ledger.ReasonWorkshop,
			ReferenceID: jobID,
			Actor:       job.Mechanic,
		})
	}

	if len(adjs) > 0 {
		if _, err := p.catalog.AdjustBatch(ctx, adjs); err != nil {
			return nil, &ReconciliationError{JobID: jobID, Err: err}
		}
	}

	job.Status = StatusCompleted
	job.PartsUsed = used
	job.AdditionalServices = extras
	job.CompletedAt = p.now()
	if err := p.store.SaveJob(ctx, *job); err != nil {
		return nil, err
	}
	return job, nil
}

// =============================================================================
// READS
// =============================================================================

func (p *Processor) Jobs(ctx context.Context) ([]Job, error) {
	return p.store.ListJobs(ctx)
}

func (p *Processor) Job(ctx context.Context, id string) (*Job, error) {
	return p.store.GetJob(ctx, id)
}

// JobsByStatus filters the open jobs.
func (p *Processor) JobsByStatus(ctx context.Context, status JobStatus) ([]Job, error) {
	jobs, err := p.store.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	var out []Job
	for _, j := range jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}
