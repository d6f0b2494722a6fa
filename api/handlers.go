/*
handlers.go - HTTP API handlers for the dealer core

PURPOSE:
  Exposes the dealer core via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Parts & inventory:
    GET    /api/parts                  List catalog
    POST   /api/parts                  Create/update part (admin)
    GET    /api/parts/low-stock        Parts below reorder threshold
    GET    /api/parts/{id}             Get part
    DELETE /api/parts/{id}             Delete part (admin)
    POST   /api/parts/{id}/adjust      Manual stock adjustment (admin)
    GET    /api/parts/{id}/logs        Audit trail for one part
    GET    /api/inventory/logs         Full audit trail

  Sales:
    POST   /api/sales/checkout         Complete a sale
    GET    /api/sales                  Open sales
    GET    /api/sales/{id}             One sale

  Workshop:
    POST   /api/jobs                   Create job (QUEUED)
    GET    /api/jobs                   Open jobs (?status= filter)
    GET    /api/jobs/{id}              One job
    POST   /api/jobs/{id}/status       Advance status
    POST   /api/jobs/{id}/complete     Complete with bill

  Shift closing:
    GET    /api/reports                Report history
    POST   /api/reports/close          Manual close of day

  Notifications, staff, receipts, summary:
    GET    /api/notifications          Drawer contents
    POST   /api/notifications/read-all Mark all read
    DELETE /api/notifications/{id}     Dismiss one
    GET    /api/staff/...              Accounts and technicians
    GET    /api/receipts/{id}          Sale-or-job receipt (tagged union)
    GET    /api/summary                Dashboard aggregates

  Admin:
    POST   /api/admin/reset            Wipe and reseed (admin)

ERROR HANDLING:
  Domain errors map to HTTP status:
  - 400: validation failures, malformed input
  - 403: admin-gated operation without the role
  - 404: unknown part/sale/job
  - 409: insufficient stock, reconciliation failures, bad transitions
  - 500: everything else

ROLE GATING:
  Admin operations check the X-Staff-Role header for SUPER_ADMIN. Full
  authentication is out of scope; the header is trusted the way the
  original trusted its logged-in user object.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/staff"
	"github.com/trotech/dealer-core/workshop"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter wipes every collection. Both store implementations provide it.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *ledger.Ledger
	Sales    *sales.Processor
	Workshop *workshop.Processor
	Closing  *closing.Engine
	Notify   *notify.Emitter
	Staff    *staff.Service
	Resetter Resetter
	Seeder   *Seeder
	Log      *zap.Logger
}

const (
	headerStaffRole = "X-Staff-Role"
	headerStaffName = "X-Staff-Name"
)

func actor(r *http.Request) string {
	if name := r.Header.Get(headerStaffName); name != "" {
		return name
	}
	return "System"
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	role := staff.Role(r.Header.Get(headerStaffRole))
	if !role.CanAdminister() {
		writeError(w, http.StatusForbidden, "super admin role required", nil)
		return false
	}
	return true
}

// =============================================================================
// PARTS & INVENTORY
// =============================================================================

func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Ledger.Parts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list parts", err)
		return
	}
	dtos := make([]PartDTO, 0, len(parts))
	for _, p := range parts {
		dtos = append(dtos, toPartDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.Ledger.Part(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get part", err)
		return
	}
	if part == nil {
		writeError(w, http.StatusNotFound, "part not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPartDTO(*part))
}

func (h *Handler) SavePart(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req SavePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	category, err := ledger.ParseCategory(req.Category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if req.Name == "" || req.Stock < 0 || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "part needs a name, non-negative stock and a positive price", nil)
		return
	}

	part := ledger.Part{
		ID:          req.ID,
		Name:        req.Name,
		PartNumber:  req.PartNumber,
		Category:    category,
		Stock:       req.Stock,
		Price:       ledger.Money(req.Price),
		CostPrice:   ledger.Money(req.CostPrice),
		MinStock:    req.MinStock,
		LastUpdated: ledger.Today(),
	}
	status := http.StatusOK
	if part.ID == "" {
		part.ID = uuid.NewString()
		status = http.StatusCreated
	}

	if err := h.Ledger.SavePart(r.Context(), part); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save part", err)
		return
	}
	writeJSON(w, status, toPartDTO(part))
}

func (h *Handler) DeletePart(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.Ledger.DeletePart(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete part", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock is the admin's manual ledger mutation: restocks and
// corrections. Sales and workshop deductions never come through here.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	part, entry, err := h.Ledger.Adjust(r.Context(), ledger.Adjustment{
		PartID:      chi.URLParam(r, "id"),
		Delta:       req.Delta,
		Reason:      ledger.Reason(req.Reason),
		ReferenceID: req.ReferenceID,
		Actor:       actor(r),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdjustStockResponse{Part: toPartDTO(*part), Log: toLogEntryDTO(*entry)})
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Ledger.Logs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list logs", err)
		return
	}
	writeJSON(w, http.StatusOK, toLogEntryDTOs(logs))
}

func (h *Handler) ListPartLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Ledger.LogsByPart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list logs", err)
		return
	}
	writeJSON(w, http.StatusOK, toLogEntryDTOs(logs))
}

func toLogEntryDTOs(logs []ledger.LogEntry) []LogEntryDTO {
	dtos := make([]LogEntryDTO, 0, len(logs))
	for _, e := range logs {
		dtos = append(dtos, toLogEntryDTO(e))
	}
	return dtos
}

func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Ledger.LowStockParts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list low-stock parts", err)
		return
	}
	dtos := make([]PartDTO, 0, len(parts))
	for _, p := range parts {
		dtos = append(dtos, toPartDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SALES
// =============================================================================

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	items := make([]sales.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, sales.CartItem{PartID: it.PartID, Quantity: it.Quantity})
	}

	sale, err := h.Sales.CompleteSale(r.Context(), sales.Checkout{
		Customer:  req.Customer,
		BikeModel: req.BikeModel,
		Items:     items,
		Actor:     actor(r),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleDTO(*sale))
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	open, err := h.Sales.Sales(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sales", err)
		return
	}
	dtos := make([]SaleDTO, 0, len(open))
	for _, s := range open {
		dtos = append(dtos, toSaleDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.Sales.Sale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get sale", err)
		return
	}
	if sale == nil {
		writeError(w, http.StatusNotFound, "sale not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(*sale))
}

// =============================================================================
// WORKSHOP
// =============================================================================

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	job, err := h.Workshop.CreateJob(r.Context(), workshop.NewJob{
		Customer:     req.Customer,
		BikeModel:    req.BikeModel,
		ServiceType:  req.ServiceType,
		ServicePrice: req.ServicePrice,
		Mechanic:     req.Mechanic,
		Actor:        actor(r),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobDTO(*job))
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var (
		jobs []workshop.Job
		err  error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		jobs, err = h.Workshop.JobsByStatus(r.Context(), workshop.JobStatus(status))
	} else {
		jobs, err = h.Workshop.Jobs(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs", err)
		return
	}
	dtos := make([]JobDTO, 0, len(jobs))
	for _, j := range jobs {
		dtos = append(dtos, toJobDTO(j))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Workshop.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get job", err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job))
}

func (h *Handler) AdvanceJob(w http.ResponseWriter, r *http.Request) {
	var req AdvanceJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	job, err := h.Workshop.AdvanceStatus(r.Context(), chi.URLParam(r, "id"), workshop.JobStatus(req.Status))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if job == nil {
		// unknown job id is a silent no-op on this path
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job))
}

func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	var req CompleteJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	parts := make([]workshop.ConsumedPart, 0, len(req.PartsUsed))
	for _, p := range req.PartsUsed {
		parts = append(parts, workshop.ConsumedPart{PartID: p.PartID, Quantity: p.Quantity})
	}
	extras := make([]workshop.ExtraService, 0, len(req.AdditionalServices))
	for _, s := range req.AdditionalServices {
		extras = append(extras, workshop.ExtraService{Name: s.Name, Price: ledger.Money(s.Price)})
	}

	job, err := h.Workshop.CompleteJob(r.Context(), chi.URLParam(r, "id"), parts, extras)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job))
}

// =============================================================================
// SHIFT CLOSING
// =============================================================================

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Closing.Reports(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports", err)
		return
	}
	dtos := make([]ReportDTO, 0, len(reports))
	for _, rep := range reports {
		dtos = append(dtos, toReportDTO(rep))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CloseDay(w http.ResponseWriter, r *http.Request) {
	report, err := h.Closing.CloseDay(r.Context(), closing.TriggerManual)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to close day", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportDTO(*report))
}

// =============================================================================
// RECEIPTS
// =============================================================================

// GetReceipt resolves an id against sales first, then workshop jobs, and
// returns a tagged union so one endpoint serves both receipt layouts.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sale, err := h.Sales.Sale(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve receipt", err)
		return
	}
	if sale != nil {
		dto := toSaleDTO(*sale)
		writeJSON(w, http.StatusOK, ReceiptDTO{Kind: ReceiptSale, Sale: &dto})
		return
	}

	job, err := h.Workshop.Job(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve receipt", err)
		return
	}
	if job != nil {
		dto := toJobDTO(*job)
		writeJSON(w, http.StatusOK, ReceiptDTO{Kind: ReceiptWorkshop, Job: &dto})
		return
	}

	writeError(w, http.StatusNotFound, "no sale or job with that id", nil)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.Notify.Notifications(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	dtos := make([]NotificationDTO, 0, len(ns))
	for _, n := range ns {
		dtos = append(dtos, toNotificationDTO(n))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notify.MarkAllRead(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.Notify.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STAFF
// =============================================================================

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Staff.Accounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err)
		return
	}
	dtos := make([]AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		dtos = append(dtos, toAccountDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	acct, err := h.Staff.CreateAccount(r.Context(), staff.NewAccount{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(*acct))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.Staff.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	techs, err := h.Staff.Technicians(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list technicians", err)
		return
	}
	dtos := make([]TechnicianDTO, 0, len(techs))
	for _, t := range techs {
		dtos = append(dtos, toTechnicianDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req CreateTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	tech, err := h.Staff.CreateTechnician(r.Context(), staff.NewTechnician{
		Name:           req.Name,
		Specialization: req.Specialization,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTechnicianDTO(*tech))
}

func (h *Handler) DeleteTechnician(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.Staff.DeleteTechnician(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete technician", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUMMARY
// =============================================================================

// GetSummary builds the dashboard aggregates. Everything is derived
// deterministically from stored records; nothing is randomized.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	openSales, err := h.Sales.Sales(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary", err)
		return
	}
	jobs, err := h.Workshop.Jobs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary", err)
		return
	}
	lowStock, err := h.Ledger.LowStockParts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary", err)
		return
	}
	lastClosed, err := h.Closing.LastClosed(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary", err)
		return
	}

	var summary SummaryDTO
	salesTotal := decimal.Zero
	for _, s := range openSales {
		salesTotal = salesTotal.Add(s.Total)
	}
	workshopTotal := decimal.Zero
	for _, j := range jobs {
		if j.Status == workshop.StatusCompleted {
			workshopTotal = workshopTotal.Add(j.Total())
			summary.CompletedJobs++
		}
	}

	summary.OpenSalesTotal = salesTotal.InexactFloat64()
	summary.OpenWorkshopTotal = workshopTotal.InexactFloat64()
	summary.OpenGrossRevenue = salesTotal.Add(workshopTotal).InexactFloat64()
	summary.OpenSalesCount = len(openSales)
	summary.OpenJobsCount = len(jobs)
	summary.LowStockParts = len(lowStock)
	if !lastClosed.IsZero() {
		summary.LastClosedDate = lastClosed.String()
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// ADMIN
// =============================================================================

// ResetData wipes all collections and reseeds the demo dataset when a
// seeder is configured. Dev and demo use only.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if h.Resetter == nil {
		writeError(w, http.StatusNotImplemented, "reset not available with this store", nil)
		return
	}
	if err := h.Resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset data", err)
		return
	}
	if h.Seeder != nil {
		if err := h.Seeder.Seed(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reseed demo data", err)
			return
		}
	}
	h.Log.Info("data reset", zap.String("actor", actor(r)))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps core error types onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var ve *ledger.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ve.Messages})
		return
	}

	var re *workshop.ReconciliationError
	switch {
	case errors.Is(err, ledger.ErrPartNotFound):
		writeError(w, http.StatusNotFound, "part not found", err)
	case errors.Is(err, ledger.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient stock", err)
	case errors.As(err, &re):
		writeError(w, http.StatusConflict, "job could not be reconciled", err)
	case errors.Is(err, workshop.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid job status transition", err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid input", err)
	default:
		h.Log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = []string{err.Error()}
	}
	writeJSON(w, status, resp)
}
