package events

import (
	"time"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketApproved  EventType = "ticket_approved"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventVendorResponded EventType = "vendor_responded"
	EventWorkStarted     EventType = "work_started"
	EventWorkPaused      EventType = "work_paused"
	EventWorkCompleted   EventType = "work_completed"
	EventTicketVerified  EventType = "ticket_verified"
	EventTicketEscalated EventType = "ticket_escalated"
	EventTicketCancelled EventType = "ticket_cancelled"
	EventStepChanged     EventType = "step_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by the workflow engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	LocationID string                `json:"location_id"`
	Category   string                `json:"category"`
	Priority   domain.TicketPriority `json:"priority"`
	Number     string                `json:"number"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	VendorID   string `json:"vendor_id"`
	LocationID string `json:"location_id"`
	Reassigned bool   `json:"reassigned"`
}

// VendorRespondedPayload payload.
type VendorRespondedPayload struct {
	Response domain.WorkOrderType `json:"response"`
	Note     string               `json:"note,omitempty"`
}

// StepChangedPayload payload.
type StepChangedPayload struct {
	OldStep   string              `json:"old_step"`
	NewStep   string              `json:"new_step"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	StalledFor  string                `json:"stalled_for"`
}
