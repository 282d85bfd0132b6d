package dto

import (
	"time"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	LocationID  string                `json:"location_id"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	MediaRefs   []string              `json:"media_refs"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	VendorID string `json:"vendor_id"`
}

// NoteRequest carries optional free text for transitions that accept a note.
type NoteRequest struct {
	Note string `json:"note"`
}

// ReasonRequest carries required free text for transitions that demand it.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         string                `json:"id"`
	Number     string                `json:"number"`
	LocationID string                `json:"location_id"`
	Category   string                `json:"category"`
	Status     domain.TicketStatus   `json:"status"`
	Step       string                `json:"current_step"`
	Priority   domain.TicketPriority `json:"priority"`
	VendorID   *string               `json:"vendor_id,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info, including the derived step,
// consistency, and the transitions the caller may invoke next.
type TicketDetailResponse struct {
	ID          string                  `json:"id"`
	Number      string                  `json:"number"`
	OrgID       string                  `json:"org_id"`
	LocationID  string                  `json:"location_id"`
	Category    string                  `json:"category"`
	Description string                  `json:"description"`
	Status      domain.TicketStatus     `json:"status"`
	Step        string                  `json:"current_step"`
	Priority    domain.TicketPriority   `json:"priority"`
	VendorID    *string                 `json:"vendor_id,omitempty"`
	MediaRefs   []string                `json:"media_refs,omitempty"`

	AdminApproved          bool       `json:"admin_approved"`
	WorkOrderCreated       bool       `json:"work_order_created"`
	InvoiceUploaded        bool       `json:"invoice_uploaded"`
	FinalApprovalRequested bool       `json:"final_approval_requested"`
	CompletionDate         *time.Time `json:"completion_date,omitempty"`
	VerificationDate       *time.Time `json:"verification_date,omitempty"`

	History    []domain.HistoryEntry   `json:"history"`
	WorkOrders []domain.WorkOrderEntry `json:"work_orders"`
	Notes      []domain.Note           `json:"notes,omitempty"`

	Consistent  bool     `json:"consistent"`
	Transitions []string `json:"available_transitions"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
