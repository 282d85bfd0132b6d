// Package workflow implements the ticket state machine: the step vocabulary,
// the transitions between steps, and the guards and side effects attached to
// each transition.
package workflow

import "github.com/fixdesk/maintenance-service/internal/domain"

// Step is the canonical workflow position of a ticket. The persisted step is
// the single source of truth; the coarse display status is derived from it.
type Step string

const (
	StepCreated               Step = "created"
	StepPendingApproval       Step = "pending_approval"
	StepAssigned              Step = "assigned"
	StepWaitingVendorResponse Step = "waiting_vendor_response"
	StepVendorAccepted        Step = "vendor_accepted"
	StepVendorRejected        Step = "vendor_rejected"
	StepMoreInfoRequested     Step = "more_info_requested"
	StepWorkOrder             Step = "work_order"
	StepInProgress            Step = "in_progress"
	StepPaused                Step = "paused"
	StepInvoiceUploaded       Step = "invoice_uploaded"
	StepAwaitingApproval      Step = "awaiting_approval"
	StepCompleted             Step = "completed"
	StepCancelled             Step = "cancelled"
)

// stepOrder lists steps in nominal workflow order, used for display only; the
// graph itself is not linear (rejection and info requests loop back).
var stepOrder = []Step{
	StepCreated,
	StepPendingApproval,
	StepAssigned,
	StepWaitingVendorResponse,
	StepVendorAccepted,
	StepVendorRejected,
	StepMoreInfoRequested,
	StepWorkOrder,
	StepInProgress,
	StepPaused,
	StepInvoiceUploaded,
	StepAwaitingApproval,
	StepCompleted,
	StepCancelled,
}

var stepStatus = map[Step]domain.TicketStatus{
	StepCreated:               domain.TicketStatusNew,
	StepPendingApproval:       domain.TicketStatusNew,
	StepAssigned:              domain.TicketStatusAssigned,
	StepWaitingVendorResponse: domain.TicketStatusAssigned,
	StepVendorAccepted:        domain.TicketStatusAssigned,
	StepVendorRejected:        domain.TicketStatusRejected,
	StepMoreInfoRequested:     domain.TicketStatusMoreInfoNeeded,
	StepWorkOrder:             domain.TicketStatusAssigned,
	StepInProgress:            domain.TicketStatusInProgress,
	StepPaused:                domain.TicketStatusPaused,
	StepInvoiceUploaded:       domain.TicketStatusCompleted,
	StepAwaitingApproval:      domain.TicketStatusCompleted,
	StepCompleted:             domain.TicketStatusVerified,
	StepCancelled:             domain.TicketStatusCancelled,
}

// KnownStep reports whether the raw value is part of the step vocabulary.
func KnownStep(raw string) bool {
	_, ok := stepStatus[Step(raw)]
	return ok
}

// StatusForStep returns the display status for a step. Unknown steps map to
// New so that malformed documents surface as freshly created rather than
// silently terminal.
func StatusForStep(step Step) domain.TicketStatus {
	if status, ok := stepStatus[step]; ok {
		return status
	}
	return domain.TicketStatusNew
}

// Steps returns the vocabulary in nominal order.
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// DeriveStep resolves the workflow position of a ticket. A persisted step that
// matches the vocabulary is authoritative; otherwise the step is reconstructed
// from the display status plus the presence of specific log entries, which is
// how documents written before steps were canonical look.
func DeriveStep(t *domain.Ticket) Step {
	if KnownStep(t.CurrentStep) {
		return Step(t.CurrentStep)
	}
	switch t.Status {
	case domain.TicketStatusNew:
		return StepCreated
	case domain.TicketStatusAssigned:
		if t.HasWorkOrder(domain.WorkOrderVendorAccepted) {
			return StepVendorAccepted
		}
		if t.HasWorkOrder(domain.WorkOrderAssigned) {
			return StepWaitingVendorResponse
		}
		return StepAssigned
	case domain.TicketStatusRejected:
		return StepVendorRejected
	case domain.TicketStatusMoreInfoNeeded:
		return StepMoreInfoRequested
	case domain.TicketStatusInProgress:
		return StepInProgress
	case domain.TicketStatusPaused:
		return StepPaused
	case domain.TicketStatusCompleted:
		if t.FinalApprovalRequested || t.HasHistory(domain.HistoryFinalApprovalRequested) {
			return StepAwaitingApproval
		}
		if t.InvoiceUploaded || t.HasHistory(domain.HistoryInvoiceUploaded) {
			return StepInvoiceUploaded
		}
		return StepAwaitingApproval
	case domain.TicketStatusVerified:
		return StepCompleted
	case domain.TicketStatusCancelled:
		return StepCancelled
	default:
		return StepCreated
	}
}

// IsConsistent checks that a ticket's persisted fields agree with its workflow
// position. A ticket sitting in a vendor-facing step without a vendor, or a
// status that contradicts its step, is an anomaly callers should surface.
func IsConsistent(t *domain.Ticket) bool {
	step := DeriveStep(t)
	if KnownStep(t.CurrentStep) && t.Status != StatusForStep(step) {
		return false
	}
	switch step {
	case StepAssigned, StepWaitingVendorResponse, StepVendorAccepted, StepInProgress, StepPaused:
		if t.VendorID == nil || *t.VendorID == "" {
			return false
		}
	case StepCompleted:
		if t.VerificationDate == nil {
			return false
		}
	}
	if step == StepAwaitingApproval || step == StepInvoiceUploaded || step == StepCompleted {
		if t.CompletionDate == nil {
			return false
		}
	}
	return true
}
