package workflow

import (
	"context"
	"errors"

	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/permission"
	"github.com/fixdesk/maintenance-service/internal/repository"
	apperrors "github.com/fixdesk/maintenance-service/pkg/util"
)

// TicketView is a ticket together with its derived workflow position, used by
// callers deciding which transitions to offer next.
type TicketView struct {
	Ticket      *domain.Ticket
	Step        Step
	Consistent  bool
	Transitions []string
}

// Get returns the ticket with derived step, consistency, and the transitions
// the actor may legally invoke next.
func (e *Engine) Get(ctx context.Context, actor domain.Actor, ticketID string) (*TicketView, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	var sub *domain.SubAdmin
	if actor.Role == domain.RoleSubAdmin {
		sub, err = e.subAdmins.GetByID(ctx, actor.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.MapError(err)
		}
	}
	return &TicketView{
		Ticket:      ticket,
		Step:        DeriveStep(ticket),
		Consistent:  IsConsistent(ticket),
		Transitions: AvailableTransitions(ticket, actor, sub, e.guard),
	}, nil
}

// List returns tickets matching the filter, scoped to the sub-admin's
// accessible locations when the actor is a sub-admin.
func (e *Engine) List(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	switch actor.Role {
	case domain.RoleVendor:
		filter.VendorID = &actor.ID
	case domain.RoleUser, domain.RoleTechnician:
		filter.CreatedBy = &actor.ID
	case domain.RoleSubAdmin:
		sub, err := e.loadSubAdmin(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		orgLocations, err := e.locations.ListByOrg(ctx, sub.OrgID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		accessible := e.guard.AccessibleLocations(sub, orgLocations)
		ids := make([]string, 0, len(accessible))
		for _, loc := range accessible {
			ids = append(ids, loc.ID)
		}
		if len(ids) == 0 {
			return []domain.Ticket{}, nil
		}
		filter.LocationIDs = ids
	}
	tickets, err := e.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListInconsistent returns tickets whose persisted fields contradict their
// workflow position, so callers can offer a uniform repair affordance
// (typically re-assignment) instead of special-casing in presentation code.
func (e *Engine) ListInconsistent(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := e.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	var out []domain.Ticket
	for i := range tickets {
		if !IsConsistent(&tickets[i]) {
			out = append(out, tickets[i])
		}
	}
	return out, nil
}

// AvailableTransitions lists the transition names legal for the actor at the
// ticket's current step. Pure over the snapshots handed in; sub may be nil for
// non-sub-admin actors.
func AvailableTransitions(t *domain.Ticket, actor domain.Actor, sub *domain.SubAdmin, guard Guard) []string {
	step := DeriveStep(t)
	var out []string

	assignable := step != StepCompleted && step != StepCancelled
	canAssign := actor.IsRoot() ||
		(actor.Role == domain.RoleSubAdmin && sub != nil && guard.HasTicketTierAccess(sub, t.LocationID, 1))
	if assignable && canAssign {
		out = append(out, "assign")
	}

	administrative := actor.IsRoot() || actor.Role == domain.RoleAdmin ||
		(actor.Role == domain.RoleSubAdmin && sub != nil && guard.HasLocationAccess(sub, t.LocationID))
	if administrative && !t.AdminApproved {
		out = append(out, "approve")
	}
	if administrative && step != StepCompleted && step != StepCancelled {
		out = append(out, "cancel")
	}

	assignedVendor := actor.IsRoot() ||
		(actor.Role == domain.RoleVendor && t.VendorID != nil && *t.VendorID == actor.ID)
	if assignedVendor {
		switch step {
		case StepWaitingVendorResponse:
			out = append(out, "accept", "reject", "request_more_info")
		case StepVendorAccepted, StepAssigned:
			out = append(out, "start_work")
		case StepInProgress:
			out = append(out, "pause_work", "complete_work")
		case StepPaused:
			out = append(out, "start_work", "complete_work")
		}
	}

	if step == StepMoreInfoRequested && (actor.IsRoot() || actor.ID == t.CreatedBy || canAssign) {
		out = append(out, "provide_more_info")
	}

	if step == StepAwaitingApproval &&
		(actor.IsRoot() || actor.HasPermission(permission.SubAdminVerifyJobCompleted)) {
		out = append(out, "verify")
	}

	return out
}

// Guard is the subset of access-guard behavior the transition query needs.
type Guard interface {
	HasLocationAccess(sub *domain.SubAdmin, locationID string) bool
	HasTicketTierAccess(sub *domain.SubAdmin, locationID string, tier int) bool
}
