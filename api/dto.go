/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts cross the wire as float64 for client convenience. They are
  produced from decimals at the edge only; nothing inside the core does
  float arithmetic.

RECEIPTS:
  A receipt can wrap a sale or a workshop job. The DTO is a tagged union:
  Kind discriminates, exactly one of Sale/Job is set.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/staff"
	"github.com/trotech/dealer-core/workshop"
)

// =============================================================================
// PARTS & INVENTORY
// =============================================================================

type PartDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PartNumber  string  `json:"part_number"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
	CostPrice   float64 `json:"cost_price,omitempty"`
	MinStock    int     `json:"min_stock"`
	LastUpdated string  `json:"last_updated"`
	LowStock    bool    `json:"low_stock"`
}

func toPartDTO(p ledger.Part) PartDTO {
	return PartDTO{
		ID:          p.ID,
		Name:        p.Name,
		PartNumber:  p.PartNumber,
		Category:    string(p.Category),
		Stock:       p.Stock,
		Price:       p.Price.InexactFloat64(),
		CostPrice:   p.CostPrice.InexactFloat64(),
		MinStock:    p.MinStock,
		LastUpdated: p.LastUpdated.String(),
		LowStock:    p.LowStock(),
	}
}

type SavePartRequest struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	PartNumber string  `json:"part_number"`
	Category   string  `json:"category"`
	Stock      int     `json:"stock"`
	Price      float64 `json:"price"`
	CostPrice  float64 `json:"cost_price,omitempty"`
	MinStock   int     `json:"min_stock"`
}

type AdjustStockRequest struct {
	Delta       int    `json:"delta"`
	Reason      string `json:"reason"`
	ReferenceID string `json:"reference_id,omitempty"`
}

type LogEntryDTO struct {
	ID          string `json:"id"`
	PartID      string `json:"part_id"`
	PartName    string `json:"part_name"`
	Change      int    `json:"change"`
	Reason      string `json:"reason"`
	ReferenceID string `json:"reference_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	Actor       string `json:"actor"`
}

func toLogEntryDTO(e ledger.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:          e.ID,
		PartID:      e.PartID,
		PartName:    e.PartName,
		Change:      e.Change,
		Reason:      string(e.Reason),
		ReferenceID: e.ReferenceID,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		Actor:       e.Actor,
	}
}

type AdjustStockResponse struct {
	Part PartDTO     `json:"part"`
	Log  LogEntryDTO `json:"log"`
}

// =============================================================================
// SALES
// =============================================================================

type LineItemDTO struct {
	PartID    string  `json:"part_id"`
	PartName  string  `json:"part_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type SaleDTO struct {
	ID           string        `json:"id"`
	CustomerName string        `json:"customer_name"`
	BikeModel    string        `json:"bike_model"`
	Items        []LineItemDTO `json:"items"`
	Subtotal     float64       `json:"subtotal"`
	Tax          float64       `json:"tax"`
	Total        float64       `json:"total"`
	Date         string        `json:"date"`
	CreatedAt    string        `json:"created_at"`
	Status       string        `json:"status"`
	CreatedBy    string        `json:"created_by,omitempty"`
}

func toSaleDTO(s sales.Sale) SaleDTO {
	items := make([]LineItemDTO, 0, len(s.Items))
	for _, li := range s.Items {
		items = append(items, LineItemDTO{
			PartID:    li.PartID,
			PartName:  li.PartName,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice.InexactFloat64(),
			LineTotal: li.LineTotal().InexactFloat64(),
		})
	}
	return SaleDTO{
		ID:           s.ID,
		CustomerName: s.CustomerName,
		BikeModel:    s.BikeModel,
		Items:        items,
		Subtotal:     s.Subtotal.InexactFloat64(),
		Tax:          s.Tax.InexactFloat64(),
		Total:        s.Total.InexactFloat64(),
		Date:         s.Date.String(),
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		Status:       string(s.Status),
		CreatedBy:    s.CreatedBy,
	}
}

type CheckoutItemRequest struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Customer  string                `json:"customer"`
	BikeModel string                `json:"bike_model"`
	Items     []CheckoutItemRequest `json:"items"`
}

// =============================================================================
// WORKSHOP
// =============================================================================

type UsedPartDTO struct {
	PartID    string  `json:"part_id"`
	PartName  string  `json:"part_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type ExtraServiceDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type JobDTO struct {
	ID                 string            `json:"id"`
	CustomerName       string            `json:"customer_name"`
	BikeModel          string            `json:"bike_model"`
	ServiceType        string            `json:"service_type"`
	ServicePrice       float64           `json:"service_price"`
	Mechanic           string            `json:"mechanic"`
	Status             string            `json:"status"`
	StartTime          string            `json:"start_time"`
	Date               string            `json:"date"`
	PartsUsed          []UsedPartDTO     `json:"parts_used,omitempty"`
	AdditionalServices []ExtraServiceDTO `json:"additional_services,omitempty"`
	CompletedAt        string            `json:"completed_at,omitempty"`
	Total              float64           `json:"total"`
}

func toJobDTO(j workshop.Job) JobDTO {
	dto := JobDTO{
		ID:           j.ID,
		CustomerName: j.CustomerName,
		BikeModel:    j.BikeModel,
		ServiceType:  j.ServiceType,
		ServicePrice: j.ServicePrice.InexactFloat64(),
		Mechanic:     j.Mechanic,
		Status:       string(j.Status),
		StartTime:    j.StartTime.Format(time.RFC3339),
		Date:         j.Date.String(),
		Total:        j.Total().InexactFloat64(),
	}
	for _, p := range j.PartsUsed {
		dto.PartsUsed = append(dto.PartsUsed, UsedPartDTO{
			PartID:    p.PartID,
			PartName:  p.PartName,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice.InexactFloat64(),
		})
	}
	for _, s := range j.AdditionalServices {
		dto.AdditionalServices = append(dto.AdditionalServices, ExtraServiceDTO{
			Name:  s.Name,
			Price: s.Price.InexactFloat64(),
		})
	}
	if !j.CompletedAt.IsZero() {
		dto.CompletedAt = j.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

type CreateJobRequest struct {
	Customer     string  `json:"customer"`
	BikeModel    string  `json:"bike_model"`
	ServiceType  string  `json:"service_type"`
	ServicePrice float64 `json:"service_price"`
	Mechanic     string  `json:"mechanic"`
}

type AdvanceJobRequest struct {
	Status string `json:"status"`
}

type CompleteJobRequest struct {
	PartsUsed          []CheckoutItemRequest `json:"parts_used"`
	AdditionalServices []ExtraServiceDTO     `json:"additional_services"`
}

// =============================================================================
// CLOSING
// =============================================================================

type ReportDTO struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	ClosedAt        string  `json:"closed_at"`
	Trigger         string  `json:"trigger"`
	TotalSales      float64 `json:"total_sales"`
	TotalWorkshop   float64 `json:"total_workshop"`
	GrossRevenue    float64 `json:"gross_revenue"`
	SalesCount      int     `json:"sales_count"`
	JobsCount       int     `json:"jobs_count"`
	PartsSoldVolume int     `json:"parts_sold_volume"`
}

func toReportDTO(r closing.DailyReport) ReportDTO {
	return ReportDTO{
		ID:              r.ID,
		Date:            r.Date.String(),
		ClosedAt:        r.ClosedAt.Format(time.RFC3339),
		Trigger:         string(r.Trigger),
		TotalSales:      r.TotalSales.InexactFloat64(),
		TotalWorkshop:   r.TotalWorkshop.InexactFloat64(),
		GrossRevenue:    r.GrossRevenue.InexactFloat64(),
		SalesCount:      r.SalesCount,
		JobsCount:       r.JobsCount,
		PartsSoldVolume: r.PartsSoldVolume,
	}
}

// =============================================================================
// RECEIPTS - tagged union over sale | workshop job
// =============================================================================

type ReceiptKind string

const (
	ReceiptSale     ReceiptKind = "sale"
	ReceiptWorkshop ReceiptKind = "workshop"
)

// ReceiptDTO discriminates on Kind; exactly one of Sale/Job is set.
type ReceiptDTO struct {
	Kind ReceiptKind `json:"kind"`
	Sale *SaleDTO    `json:"sale,omitempty"`
	Job  *JobDTO     `json:"job,omitempty"`
}

// =============================================================================
// NOTIFICATIONS & STAFF
// =============================================================================

type NotificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

func toNotificationDTO(n notify.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		Read:      n.Read,
	}
}

type AccountDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func toAccountDTO(a staff.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Username:  a.Username,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type TechnicianDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Status         string `json:"status"`
	JoinedDate     string `json:"joined_date"`
}

func toTechnicianDTO(t staff.Technician) TechnicianDTO {
	return TechnicianDTO{
		ID:             t.ID,
		Name:           t.Name,
		Specialization: t.Specialization,
		Status:         string(t.Status),
		JoinedDate:     t.JoinedDate.String(),
	}
}

type CreateTechnicianRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryDTO carries the dashboard aggregates. Everything here is derived
// deterministically from stored records.
type SummaryDTO struct {
	OpenSalesTotal    float64 `json:"open_sales_total"`
	OpenWorkshopTotal float64 `json:"open_workshop_total"`
	OpenGrossRevenue  float64 `json:"open_gross_revenue"`
	OpenSalesCount    int     `json:"open_sales_count"`
	OpenJobsCount     int     `json:"open_jobs_count"`
	CompletedJobs     int     `json:"completed_jobs"`
	LowStockParts     int     `json:"low_stock_parts"`
	LastClosedDate    string  `json:"last_closed_date,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
