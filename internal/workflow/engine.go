package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/maintenance-service/internal/access"
	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/events"
	"github.com/fixdesk/maintenance-service/internal/permission"
	"github.com/fixdesk/maintenance-service/internal/repository"
	apperrors "github.com/fixdesk/maintenance-service/pkg/util"
)

// Engine executes ticket workflow transitions. Every transition loads the
// current ticket, checks its guard and step precondition, appends exactly one
// record to the relevant log, and writes back with an optimistic revision
// check so racing transitions have exactly one winner.
type Engine struct {
	tickets   repository.TicketRepository
	vendors   repository.VendorRepository
	locations repository.LocationRepository
	subAdmins repository.SubAdminRepository
	guard     *access.Guard

	dispatcher events.Dispatcher
	now        func() time.Time
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	TicketRepo   repository.TicketRepository
	VendorRepo   repository.VendorRepository
	LocationRepo repository.LocationRepository
	SubAdminRepo repository.SubAdminRepository
	Guard        *access.Guard
	Dispatcher   events.Dispatcher
	Now          func() time.Time
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		tickets:    deps.TicketRepo,
		vendors:    deps.VendorRepo,
		locations:  deps.LocationRepo,
		subAdmins:  deps.SubAdminRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateInput describes a newly placed ticket.
type CreateInput struct {
	LocationID  string
	Category    string
	Description string
	Priority    domain.TicketPriority
	MediaRefs   []string
}

// Create places a new ticket at step created.
func (e *Engine) Create(ctx context.Context, actor domain.Actor, input CreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewInvalidInput("description required", nil)
	}
	location, err := e.locations.GetByID(ctx, input.LocationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("location", map[string]any{"location_id": input.LocationID})
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleSubAdmin {
		sub, err := e.loadSubAdmin(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !e.guard.HasLocationAccess(sub, location.ID) {
			return nil, apperrors.NewForbidden("no access to location")
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	now := e.now()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Number:      generateTicketNumber(),
		OrgID:       location.OrgID,
		LocationID:  location.ID,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		MediaRefs:   input.MediaRefs,
		CurrentStep: string(StepCreated),
		Status:      StatusForStep(StepCreated),
		History: []domain.HistoryEntry{{
			Action:    domain.HistoryCreated,
			Timestamp: now,
			By:        actor.ID,
		}},
		WorkOrders: []domain.WorkOrderEntry{},
		CreatedBy:  actor.ID,
	}
	if err := e.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			LocationID: ticket.LocationID,
			Category:   ticket.Category,
			Priority:   ticket.Priority,
			Number:     ticket.Number,
		},
	})
	return ticket, nil
}

// Approve marks the ticket admin-approved. Administrative, not tier-gated;
// has no step precondition and does not move the workflow.
func (e *Engine) Approve(ctx context.Context, actor domain.Actor, ticketID, note string) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAdministrative(ctx, actor, ticket); err != nil {
		return nil, err
	}
	if ticket.AdminApproved {
		return nil, apperrors.NewConflict("ticket already approved", nil)
	}
	ticket.AdminApproved = true
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryApproved,
		Timestamp: e.now(),
		By:        actor.ID,
		Note:      note,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{Type: events.EventTicketApproved, TicketID: ticket.ID})
	return ticket, nil
}

// Assign dispatches the ticket to a vendor and opens a work order. The vendor
// must belong to the ticket's organization; location-level vendor assignment
// is deliberately not required. Re-assignment from rejected or inconsistent
// states goes through the same path.
func (e *Engine) Assign(ctx context.Context, actor domain.Actor, ticketID, vendorID string) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	step := DeriveStep(ticket)
	if step == StepCompleted || step == StepCancelled {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"step": string(step)})
	}
	if !actor.IsRoot() {
		if actor.Role != domain.RoleSubAdmin {
			return nil, apperrors.NewForbidden("assignment requires a sub-admin or root")
		}
		sub, err := e.loadSubAdmin(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !e.guard.HasTicketTierAccess(sub, ticket.LocationID, 1) {
			return nil, apperrors.NewForbidden("no tier access at ticket location")
		}
	}

	vendor, err := e.vendors.GetByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("vendor", map[string]any{"vendor_id": vendorID})
		}
		return nil, apperrors.MapError(err)
	}
	location, err := e.locations.GetByID(ctx, ticket.LocationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("location", map[string]any{"location_id": ticket.LocationID})
		}
		return nil, apperrors.MapError(err)
	}
	if !vendor.InOrg(location.OrgID) {
		return nil, apperrors.NewForbidden("vendor does not belong to the ticket's organization")
	}
	if vendor.Status != domain.VendorStatusActive {
		return nil, apperrors.NewConflict("vendor inactive", map[string]any{"vendor_id": vendorID})
	}

	reassigned := ticket.VendorID != nil
	ticket.VendorID = &vendor.ID
	e.moveTo(ticket, StepWaitingVendorResponse)
	ticket.WorkOrders = append(ticket.WorkOrders, domain.WorkOrderEntry{
		Type:      domain.WorkOrderAssigned,
		Timestamp: e.now(),
		VendorID:  &vendor.ID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			VendorID:   vendor.ID,
			LocationID: ticket.LocationID,
			Reassigned: reassigned,
		},
	})
	return ticket, nil
}

// AcceptByVendor records the assigned vendor's acceptance.
func (e *Engine) AcceptByVendor(ctx context.Context, actor domain.Actor, ticketID, note string) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	if step := DeriveStep(ticket); step != StepWaitingVendorResponse {
		return nil, apperrors.NewConflict("ticket is not awaiting vendor response", map[string]any{"step": string(step)})
	}
	e.moveTo(ticket, StepVendorAccepted)
	ticket.WorkOrders = append(ticket.WorkOrders, domain.WorkOrderEntry{
		Type:      domain.WorkOrderVendorAccepted,
		Timestamp: e.now(),
		Note:      note,
		VendorID:  ticket.VendorID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publishVendorResponse(ctx, actor, ticket, domain.WorkOrderVendorAccepted, note)
	return ticket, nil
}

// RejectByVendor records the assigned vendor declining the work. The reason is
// required and embedded in the work-order note. A rejected ticket can be
// re-assigned, looping back to waiting_vendor_response.
func (e *Engine) RejectByVendor(ctx context.Context, actor domain.Actor, ticketID, reason string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewInvalidInput("rejection reason required", nil)
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	if step := DeriveStep(ticket); step != StepWaitingVendorResponse {
		return nil, apperrors.NewConflict("ticket is not awaiting vendor response", map[string]any{"step": string(step)})
	}
	e.moveTo(ticket, StepVendorRejected)
	ticket.WorkOrders = append(ticket.WorkOrders, domain.WorkOrderEntry{
		Type:      domain.WorkOrderVendorRejected,
		Timestamp: e.now(),
		Note:      "rejected: " + reason,
		VendorID:  ticket.VendorID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publishVendorResponse(ctx, actor, ticket, domain.WorkOrderVendorRejected, reason)
	return ticket, nil
}

// RequestMoreInfo records the assigned vendor asking for clarification.
func (e *Engine) RequestMoreInfo(ctx context.Context, actor domain.Actor, ticketID, infoNeeded string) (*domain.Ticket, error) {
	if strings.TrimSpace(infoNeeded) == "" {
		return nil, apperrors.NewInvalidInput("information request text required", nil)
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	if step := DeriveStep(ticket); step != StepWaitingVendorResponse {
		return nil, apperrors.NewConflict("ticket is not awaiting vendor response", map[string]any{"step": string(step)})
	}
	e.moveTo(ticket, StepMoreInfoRequested)
	ticket.WorkOrders = append(ticket.WorkOrders, domain.WorkOrderEntry{
		Type:      domain.WorkOrderMoreInfoRequested,
		Timestamp: e.now(),
		Note:      infoNeeded,
		VendorID:  ticket.VendorID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publishVendorResponse(ctx, actor, ticket, domain.WorkOrderMoreInfoRequested, infoNeeded)
	return ticket, nil
}

// ProvideMoreInfo answers an information request and returns the ticket to the
// vendor's queue. Allowed for the ticket creator, a tier-1 sub-admin at the
// location, or root.
func (e *Engine) ProvideMoreInfo(ctx context.Context, actor domain.Actor, ticketID, additionalInfo string) (*domain.Ticket, error) {
	if strings.TrimSpace(additionalInfo) == "" {
		return nil, apperrors.NewInvalidInput("additional information required", nil)
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if step := DeriveStep(ticket); step != StepMoreInfoRequested {
		return nil, apperrors.NewConflict("no open information request", map[string]any{"step": string(step)})
	}
	if !actor.IsRoot() && actor.ID != ticket.CreatedBy {
		if actor.Role != domain.RoleSubAdmin {
			return nil, apperrors.NewForbidden("only the creator or a sub-admin may provide information")
		}
		sub, err := e.loadSubAdmin(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !e.guard.HasTicketTierAccess(sub, ticket.LocationID, 1) {
			return nil, apperrors.NewForbidden("no tier access at ticket location")
		}
	}
	e.moveTo(ticket, StepWaitingVendorResponse)
	ticket.WorkOrders = append(ticket.WorkOrders, domain.WorkOrderEntry{
		Type:      domain.WorkOrderMoreInfoProvided,
		Timestamp: e.now(),
		Note:      additionalInfo,
		VendorID:  ticket.VendorID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publishVendorResponse(ctx, actor, ticket, domain.WorkOrderMoreInfoProvided, additionalInfo)
	return ticket, nil
}

// StartWork moves an accepted ticket into active work.
func (e *Engine) StartWork(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	step := DeriveStep(ticket)
	if step != StepVendorAccepted && step != StepAssigned && step != StepPaused {
		return nil, apperrors.NewConflict("work cannot start from current step", map[string]any{"step": string(step)})
	}
	e.moveTo(ticket, StepInProgress)
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryStarted,
		Timestamp: e.now(),
		By:        actor.ID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{Type: events.EventWorkStarted, TicketID: ticket.ID})
	return ticket, nil
}

// PauseWork suspends active work. The reason is required.
func (e *Engine) PauseWork(ctx context.Context, actor domain.Actor, ticketID, reason string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewInvalidInput("pause reason required", nil)
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	if step := DeriveStep(ticket); step != StepInProgress {
		return nil, apperrors.NewConflict("only in-progress work can pause", map[string]any{"step": string(step)})
	}
	e.moveTo(ticket, StepPaused)
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryPaused,
		Timestamp: e.now(),
		By:        actor.ID,
		Note:      reason,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{Type: events.EventWorkPaused, TicketID: ticket.ID})
	return ticket, nil
}

// CompleteWork finishes the job, stamps the completion date, and parks the
// ticket awaiting final sign-off. Notes are required.
func (e *Engine) CompleteWork(ctx context.Context, actor domain.Actor, ticketID, notes string) (*domain.Ticket, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, apperrors.NewInvalidInput("completion notes required", nil)
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	step := DeriveStep(ticket)
	if step != StepInProgress && step != StepPaused {
		return nil, apperrors.NewConflict("work is not in progress", map[string]any{"step": string(step)})
	}
	now := e.now()
	ticket.CompletionDate = &now
	e.moveTo(ticket, StepAwaitingApproval)
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryCompleted,
		Timestamp: now,
		By:        actor.ID,
		Note:      notes,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{Type: events.EventWorkCompleted, TicketID: ticket.ID})
	return ticket, nil
}

// CreateWorkOrder sets the work-order flag. Settable once.
func (e *Engine) CreateWorkOrder(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return e.setAuxiliaryFlag(ctx, actor, ticketID, auxWorkOrder)
}

// UploadInvoice sets the invoice flag. Settable once.
func (e *Engine) UploadInvoice(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return e.setAuxiliaryFlag(ctx, actor, ticketID, auxInvoice)
}

// RequestFinalApproval sets the final-approval flag. Settable once.
func (e *Engine) RequestFinalApproval(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return e.setAuxiliaryFlag(ctx, actor, ticketID, auxFinalApproval)
}

// VerifyCompletion is the final sign-off, the only transition into the
// terminal verified state. Requires subadmin.verifyJobCompleted or root.
func (e *Engine) VerifyCompletion(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsRoot() && !actor.HasPermission(permission.SubAdminVerifyJobCompleted) {
		return nil, apperrors.NewForbidden("verification permission required")
	}
	if step := DeriveStep(ticket); step != StepAwaitingApproval {
		return nil, apperrors.NewConflict("ticket is not awaiting final approval", map[string]any{"step": string(step)})
	}
	now := e.now()
	ticket.VerificationDate = &now
	e.moveTo(ticket, StepCompleted)
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryVerified,
		Timestamp: now,
		By:        actor.ID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{Type: events.EventTicketVerified, TicketID: ticket.ID})
	return ticket, nil
}

// Cancel terminates the ticket. Administrative; refused once the ticket is
// verified or already cancelled.
func (e *Engine) Cancel(ctx context.Context, actor domain.Actor, ticketID, reason string) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAdministrative(ctx, actor, ticket); err != nil {
		return nil, err
	}
	step := DeriveStep(ticket)
	if step == StepCompleted || step == StepCancelled {
		return nil, apperrors.NewConflict("ticket is already closed", map[string]any{"step": string(step)})
	}
	e.moveTo(ticket, StepCancelled)
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryCancelled,
		Timestamp: e.now(),
		By:        actor.ID,
		Note:      reason,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, actor, events.Event{Type: events.EventTicketCancelled, TicketID: ticket.ID})
	return ticket, nil
}

// AddNote appends a free-text annotation, separate from the history log.
func (e *Engine) AddNote(ctx context.Context, actor domain.Actor, ticketID, text string) (*domain.Ticket, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewInvalidInput("note text required", nil)
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.Notes = append(ticket.Notes, domain.Note{
		Text: strings.TrimSpace(text),
		Date: e.now(),
		By:   actor.ID,
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// EscalatePriority bumps a stalled ticket one priority level and records the
// escalation. Invoked by the escalation sweep, not exposed over HTTP.
func (e *Engine) EscalatePriority(ctx context.Context, ticketID string, stalledFor time.Duration) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	next, ok := nextPriority(ticket.Priority)
	if !ok {
		return ticket, nil
	}
	old := ticket.Priority
	ticket.Priority = next
	ticket.History = append(ticket.History, domain.HistoryEntry{
		Action:    domain.HistoryEscalated,
		Timestamp: e.now(),
		By:        "system",
		Note:      fmt.Sprintf("priority raised from %s to %s after %s without vendor response", old, next, stalledFor),
	})
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	e.publish(ctx, domain.Actor{ID: "system", Role: domain.RoleRoot}, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticket.ID,
		Payload: events.TicketEscalatedPayload{
			OldPriority: old,
			NewPriority: next,
			StalledFor:  stalledFor.String(),
		},
	})
	return ticket, nil
}

type auxiliaryFlag int

const (
	auxWorkOrder auxiliaryFlag = iota
	auxInvoice
	auxFinalApproval
)

// setAuxiliaryFlag handles the three once-only flags. None of them moves the
// workflow step.
func (e *Engine) setAuxiliaryFlag(ctx context.Context, actor domain.Actor, ticketID string, flag auxiliaryFlag) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAssignedVendor(actor, ticket); err != nil {
		return nil, err
	}
	now := e.now()
	switch flag {
	case auxWorkOrder:
		if ticket.WorkOrderCreated {
			return nil, apperrors.NewConflict("work order already created", nil)
		}
		ticket.WorkOrderCreated = true
		ticket.History = append(ticket.History, domain.HistoryEntry{
			Action: domain.HistoryWorkOrderCreated, Timestamp: now, By: actor.ID,
		})
	case auxInvoice:
		if ticket.InvoiceUploaded {
			return nil, apperrors.NewConflict("invoice already uploaded", nil)
		}
		ticket.InvoiceUploaded = true
		ticket.History = append(ticket.History, domain.HistoryEntry{
			Action: domain.HistoryInvoiceUploaded, Timestamp: now, By: actor.ID,
		})
	case auxFinalApproval:
		if ticket.FinalApprovalRequested {
			return nil, apperrors.NewConflict("final approval already requested", nil)
		}
		ticket.FinalApprovalRequested = true
		ticket.History = append(ticket.History, domain.HistoryEntry{
			Action: domain.HistoryFinalApprovalRequested, Timestamp: now, By: actor.ID,
		})
	}
	if err := e.tickets.UpdateWithRevision(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (e *Engine) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := e.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (e *Engine) loadSubAdmin(ctx context.Context, id string) (*domain.SubAdmin, error) {
	sub, err := e.subAdmins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("sub-admin", map[string]any{"subadmin_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// requireAssignedVendor checks that the actor is the vendor the ticket is
// assigned to. Root bypasses the identity check. A vendor-facing step with no
// vendor on record is surfaced as an inconsistent state.
func (e *Engine) requireAssignedVendor(actor domain.Actor, ticket *domain.Ticket) error {
	if actor.IsRoot() {
		return nil
	}
	if ticket.VendorID == nil || *ticket.VendorID == "" {
		return apperrors.NewInconsistentState("ticket has no assigned vendor", map[string]any{
			"ticket_id": ticket.ID,
			"step":      ticket.CurrentStep,
		})
	}
	if actor.Role != domain.RoleVendor || actor.ID != *ticket.VendorID {
		return apperrors.NewForbidden("only the assigned vendor may perform this action")
	}
	return nil
}

// requireAdministrative gates approve/cancel: root, admin, or a sub-admin with
// location access at the ticket's location.
func (e *Engine) requireAdministrative(ctx context.Context, actor domain.Actor, ticket *domain.Ticket) error {
	if actor.IsRoot() || actor.Role == domain.RoleAdmin {
		return nil
	}
	if actor.Role != domain.RoleSubAdmin {
		return apperrors.NewForbidden("administrative role required")
	}
	sub, err := e.loadSubAdmin(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !e.guard.HasLocationAccess(sub, ticket.LocationID) {
		return apperrors.NewForbidden("no access to ticket location")
	}
	return nil
}

// moveTo sets the canonical step and its derived display status.
func (e *Engine) moveTo(ticket *domain.Ticket, step Step) {
	ticket.CurrentStep = string(step)
	ticket.Status = StatusForStep(step)
}

func (e *Engine) publish(ctx context.Context, actor domain.Actor, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	event.Actor = events.Actor{ID: actor.ID, Role: actor.Role}
	_ = e.dispatcher.Publish(ctx, event)
}

func (e *Engine) publishVendorResponse(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, response domain.WorkOrderType, note string) {
	e.publish(ctx, actor, events.Event{
		Type:     events.EventVendorResponded,
		TicketID: ticket.ID,
		Payload: events.VendorRespondedPayload{
			Response: response,
			Note:     note,
		},
	})
}

func nextPriority(p domain.TicketPriority) (domain.TicketPriority, bool) {
	switch p {
	case domain.TicketPriorityLow:
		return domain.TicketPriorityMedium, true
	case domain.TicketPriorityMedium:
		return domain.TicketPriorityHigh, true
	case domain.TicketPriorityHigh:
		return domain.TicketPriorityCritical, true
	default:
		return p, false
	}
}

func generateTicketNumber() string {
	return "MT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
