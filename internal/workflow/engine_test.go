package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixdesk/maintenance-service/internal/access"
	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/events"
	"github.com/fixdesk/maintenance-service/internal/permission"
	"github.com/fixdesk/maintenance-service/internal/repository"
	apperrors "github.com/fixdesk/maintenance-service/pkg/util"
)

var (
	rootActor    = domain.Actor{ID: "root-1", Role: domain.RoleRoot}
	adminActor   = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	creatorActor = domain.Actor{ID: "user-1", Role: domain.RoleUser}
	vendorActor  = domain.Actor{ID: "vendor-1", Role: domain.RoleVendor}
)

type engineFixture struct {
	engine     *Engine
	tickets    *fakeTicketRepo
	vendors    *fakeVendorRepo
	locations  *fakeLocationRepo
	subAdmins  *fakeSubAdminRepo
	dispatcher *captureDispatcher
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		tickets: newFakeTicketRepo(),
		vendors: newFakeVendorRepo(
			&domain.Vendor{ID: "vendor-1", Name: "Acme Repairs", OrgIDs: []string{"org-1"}, Tier: 1, Status: domain.VendorStatusActive},
			&domain.Vendor{ID: "vendor-2", Name: "Backup Crew", OrgIDs: []string{"org-1"}, Tier: 2, Status: domain.VendorStatusActive},
			&domain.Vendor{ID: "vendor-other-org", Name: "Elsewhere Ltd", OrgIDs: []string{"org-2"}, Tier: 1, Status: domain.VendorStatusActive},
			&domain.Vendor{ID: "vendor-inactive", Name: "Gone Fishing", OrgIDs: []string{"org-1"}, Tier: 1, Status: domain.VendorStatusInactive},
		),
		locations: newFakeLocationRepo(
			&domain.Location{ID: "loc-1", OrgID: "org-1", Name: "Main Street", Active: true},
			&domain.Location{ID: "loc-2", OrgID: "org-1", Name: "River Road", Active: true},
		),
		subAdmins: newFakeSubAdminRepo(
			&domain.SubAdmin{
				ID:    "sub-1",
				OrgID: "org-1",
				Permissions: []string{
					permission.SubAdminAssignLocation,
					permission.SubAdminAcceptTicket,
				},
			},
			&domain.SubAdmin{
				ID:                  "sub-restricted",
				OrgID:               "org-1",
				Permissions:         []string{permission.SubAdminAcceptTicket},
				AssignedLocationIDs: []string{"loc-2"},
			},
		),
		dispatcher: &captureDispatcher{},
	}
	f.engine = NewEngine(Dependencies{
		TicketRepo:   f.tickets,
		VendorRepo:   f.vendors,
		LocationRepo: f.locations,
		SubAdminRepo: f.subAdmins,
		Guard:        access.NewGuard(access.Policy{EmptyAssignmentGrantsAll: true}),
		Dispatcher:   f.dispatcher,
	})
	return f
}

func (f *engineFixture) create(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.engine.Create(context.Background(), creatorActor, CreateInput{
		LocationID:  "loc-1",
		Category:    "plumbing",
		Description: "kitchen sink is leaking",
	})
	require.NoError(t, err)
	return ticket
}

func (f *engineFixture) assigned(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := f.create(t)
	ticket, err := f.engine.Assign(context.Background(), rootActor, ticket.ID, "vendor-1")
	require.NoError(t, err)
	return ticket
}

func (f *engineFixture) inProgress(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := f.assigned(t)
	_, err := f.engine.AcceptByVendor(context.Background(), vendorActor, ticket.ID, "")
	require.NoError(t, err)
	ticket, err = f.engine.StartWork(context.Background(), vendorActor, ticket.ID)
	require.NoError(t, err)
	return ticket
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateTicket(t *testing.T) {
	f := newEngineFixture(t)

	ticket := f.create(t)

	assert.Equal(t, string(StepCreated), ticket.CurrentStep)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "org-1", ticket.OrgID)
	assert.Equal(t, "user-1", ticket.CreatedBy)
	assert.True(t, strings.HasPrefix(ticket.Number, "MT-"))
	assert.Nil(t, ticket.VendorID)
	assert.Empty(t, ticket.WorkOrders)
	require.Len(t, ticket.History, 1)
	assert.Equal(t, domain.HistoryCreated, ticket.History[0].Action)
	assert.Equal(t, "user-1", ticket.History[0].By)

	event, ok := f.dispatcher.lastOfType(events.EventTicketCreated)
	require.True(t, ok)
	assert.Equal(t, ticket.ID, event.TicketID)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, creatorActor, CreateInput{LocationID: "loc-1", Description: "   "})
	requireDomainCode(t, err, "INVALID_INPUT")

	_, err = f.engine.Create(ctx, creatorActor, CreateInput{LocationID: "loc-missing", Description: "broken door"})
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestCreateTicketSubAdminLocationGuard(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	restricted := domain.Actor{ID: "sub-restricted", Role: domain.RoleSubAdmin}
	_, err := f.engine.Create(ctx, restricted, CreateInput{LocationID: "loc-1", Description: "fence damaged"})
	requireDomainCode(t, err, "FORBIDDEN")

	_, err = f.engine.Create(ctx, restricted, CreateInput{LocationID: "loc-2", Description: "fence damaged"})
	require.NoError(t, err)
}

func TestAssign(t *testing.T) {
	f := newEngineFixture(t)
	ticket := f.create(t)

	assigned, err := f.engine.Assign(context.Background(), rootActor, ticket.ID, "vendor-1")
	require.NoError(t, err)

	assert.Equal(t, string(StepWaitingVendorResponse), assigned.CurrentStep)
	assert.Equal(t, domain.TicketStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.VendorID)
	assert.Equal(t, "vendor-1", *assigned.VendorID)
	require.Len(t, assigned.WorkOrders, 1)
	assert.Equal(t, domain.WorkOrderAssigned, assigned.WorkOrders[0].Type)

	event, ok := f.dispatcher.lastOfType(events.EventTicketAssigned)
	require.True(t, ok)
	payload := event.Payload.(events.TicketAssignedPayload)
	assert.Equal(t, "vendor-1", payload.VendorID)
	assert.False(t, payload.Reassigned)
}

func TestAssignGuards(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		actor    domain.Actor
		vendorID string
		wantCode string
	}{
		{"vendor role cannot assign", vendorActor, "vendor-1", "FORBIDDEN"},
		{"plain user cannot assign", creatorActor, "vendor-1", "FORBIDDEN"},
		{"sub-admin without location access", domain.Actor{ID: "sub-restricted", Role: domain.RoleSubAdmin}, "vendor-1", "FORBIDDEN"},
		{"unknown vendor", rootActor, "vendor-missing", "NOT_FOUND"},
		{"vendor outside organization", rootActor, "vendor-other-org", "FORBIDDEN"},
		{"inactive vendor", rootActor, "vendor-inactive", "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := f.create(t)
			_, err := f.engine.Assign(ctx, tt.actor, ticket.ID, tt.vendorID)
			requireDomainCode(t, err, tt.wantCode)

			stored, getErr := f.tickets.GetByID(ctx, ticket.ID)
			require.NoError(t, getErr)
			assert.Equal(t, string(StepCreated), stored.CurrentStep)
			assert.Nil(t, stored.VendorID)
			assert.Empty(t, stored.WorkOrders)
		})
	}
}

func TestAssignBySubAdminWithTierAccess(t *testing.T) {
	f := newEngineFixture(t)
	ticket := f.create(t)

	subActor := domain.Actor{ID: "sub-1", Role: domain.RoleSubAdmin}
	assigned, err := f.engine.Assign(context.Background(), subActor, ticket.ID, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, string(StepWaitingVendorResponse), assigned.CurrentStep)
}

func TestVendorAccept(t *testing.T) {
	f := newEngineFixture(t)
	ticket := f.assigned(t)

	accepted, err := f.engine.AcceptByVendor(context.Background(), vendorActor, ticket.ID, "on it")
	require.NoError(t, err)

	assert.Equal(t, string(StepVendorAccepted), accepted.CurrentStep)
	assert.Equal(t, domain.TicketStatusAssigned, accepted.Status)
	require.Len(t, accepted.WorkOrders, 2)
	assert.Equal(t, domain.WorkOrderVendorAccepted, accepted.WorkOrders[1].Type)
}

func TestVendorResponseGuards(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.assigned(t)

	otherVendor := domain.Actor{ID: "vendor-2", Role: domain.RoleVendor}
	_, err := f.engine.AcceptByVendor(ctx, otherVendor, ticket.ID, "")
	requireDomainCode(t, err, "FORBIDDEN")

	_, err = f.engine.RejectByVendor(ctx, vendorActor, ticket.ID, "  ")
	requireDomainCode(t, err, "INVALID_INPUT")

	// Once accepted the ticket is no longer awaiting a response.
	_, err = f.engine.AcceptByVendor(ctx, vendorActor, ticket.ID, "")
	require.NoError(t, err)
	_, err = f.engine.RejectByVendor(ctx, vendorActor, ticket.ID, "changed my mind")
	requireDomainCode(t, err, "CONFLICT")
}

func TestRejectAndReassign(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.assigned(t)

	rejected, err := f.engine.RejectByVendor(ctx, vendorActor, ticket.ID, "no parts available")
	require.NoError(t, err)
	assert.Equal(t, string(StepVendorRejected), rejected.CurrentStep)
	assert.Equal(t, domain.TicketStatusRejected, rejected.Status)
	require.Len(t, rejected.WorkOrders, 2)
	assert.Equal(t, domain.WorkOrderVendorRejected, rejected.WorkOrders[1].Type)
	assert.Equal(t, "rejected: no parts available", rejected.WorkOrders[1].Note)

	reassigned, err := f.engine.Assign(ctx, rootActor, ticket.ID, "vendor-2")
	require.NoError(t, err)
	assert.Equal(t, string(StepWaitingVendorResponse), reassigned.CurrentStep)
	assert.Equal(t, "vendor-2", *reassigned.VendorID)

	event, ok := f.dispatcher.lastOfType(events.EventTicketAssigned)
	require.True(t, ok)
	assert.True(t, event.Payload.(events.TicketAssignedPayload).Reassigned)

	// The rejection stays on record after re-assignment.
	require.Len(t, reassigned.WorkOrders, 3)
	assert.Equal(t, domain.WorkOrderVendorRejected, reassigned.WorkOrders[1].Type)
}

func TestMoreInfoRoundTrip(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.assigned(t)

	asked, err := f.engine.RequestMoreInfo(ctx, vendorActor, ticket.ID, "which floor?")
	require.NoError(t, err)
	assert.Equal(t, string(StepMoreInfoRequested), asked.CurrentStep)
	assert.Equal(t, domain.TicketStatusMoreInfoNeeded, asked.Status)

	stranger := domain.Actor{ID: "user-99", Role: domain.RoleUser}
	_, err = f.engine.ProvideMoreInfo(ctx, stranger, ticket.ID, "third")
	requireDomainCode(t, err, "FORBIDDEN")

	answered, err := f.engine.ProvideMoreInfo(ctx, creatorActor, ticket.ID, "third floor, unit 3B")
	require.NoError(t, err)
	assert.Equal(t, string(StepWaitingVendorResponse), answered.CurrentStep)
	require.Len(t, answered.WorkOrders, 3)
	assert.Equal(t, domain.WorkOrderMoreInfoProvided, answered.WorkOrders[2].Type)
}

func TestWorkLifecycle(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.inProgress(t)

	assert.Equal(t, string(StepInProgress), ticket.CurrentStep)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)

	_, err := f.engine.PauseWork(ctx, vendorActor, ticket.ID, "")
	requireDomainCode(t, err, "INVALID_INPUT")

	paused, err := f.engine.PauseWork(ctx, vendorActor, ticket.ID, "waiting for parts")
	require.NoError(t, err)
	assert.Equal(t, string(StepPaused), paused.CurrentStep)
	assert.Equal(t, domain.TicketStatusPaused, paused.Status)

	resumed, err := f.engine.StartWork(ctx, vendorActor, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StepInProgress), resumed.CurrentStep)

	completed, err := f.engine.CompleteWork(ctx, vendorActor, ticket.ID, "replaced the trap and resealed")
	require.NoError(t, err)
	assert.Equal(t, string(StepAwaitingApproval), completed.CurrentStep)
	assert.Equal(t, domain.TicketStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletionDate)

	// Completed work cannot restart.
	_, err = f.engine.StartWork(ctx, vendorActor, ticket.ID)
	requireDomainCode(t, err, "CONFLICT")
}

func TestAuxiliaryFlagsSetOnce(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.inProgress(t)

	tests := []struct {
		name string
		call func() (*domain.Ticket, error)
	}{
		{"work order", func() (*domain.Ticket, error) { return f.engine.CreateWorkOrder(ctx, vendorActor, ticket.ID) }},
		{"invoice", func() (*domain.Ticket, error) { return f.engine.UploadInvoice(ctx, vendorActor, ticket.ID) }},
		{"final approval", func() (*domain.Ticket, error) { return f.engine.RequestFinalApproval(ctx, vendorActor, ticket.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, string(StepInProgress), updated.CurrentStep)

			_, err = tt.call()
			requireDomainCode(t, err, "CONFLICT")
		})
	}
}

func TestVerifyCompletion(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.inProgress(t)
	_, err := f.engine.CompleteWork(ctx, vendorActor, ticket.ID, "done")
	require.NoError(t, err)

	noPerm := domain.Actor{ID: "sub-1", Role: domain.RoleSubAdmin}
	_, err = f.engine.VerifyCompletion(ctx, noPerm, ticket.ID)
	requireDomainCode(t, err, "FORBIDDEN")

	verifier := domain.Actor{
		ID:          "sub-verifier",
		Role:        domain.RoleSubAdmin,
		Permissions: []string{permission.SubAdminVerifyJobCompleted},
	}
	verified, err := f.engine.VerifyCompletion(ctx, verifier, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StepCompleted), verified.CurrentStep)
	assert.Equal(t, domain.TicketStatusVerified, verified.Status)
	require.NotNil(t, verified.VerificationDate)

	// Verified is terminal.
	_, err = f.engine.VerifyCompletion(ctx, rootActor, ticket.ID)
	requireDomainCode(t, err, "CONFLICT")
	_, err = f.engine.Cancel(ctx, rootActor, ticket.ID, "oops")
	requireDomainCode(t, err, "CONFLICT")
	_, err = f.engine.Assign(ctx, rootActor, ticket.ID, "vendor-2")
	requireDomainCode(t, err, "CONFLICT")
}

func TestVerifyRequiresAwaitingApproval(t *testing.T) {
	f := newEngineFixture(t)
	ticket := f.inProgress(t)

	_, err := f.engine.VerifyCompletion(context.Background(), rootActor, ticket.ID)
	requireDomainCode(t, err, "CONFLICT")
}

func TestApprove(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	_, err := f.engine.Approve(ctx, creatorActor, ticket.ID, "")
	requireDomainCode(t, err, "FORBIDDEN")

	approved, err := f.engine.Approve(ctx, adminActor, ticket.ID, "budget cleared")
	require.NoError(t, err)
	assert.True(t, approved.AdminApproved)
	// Approval does not move the workflow.
	assert.Equal(t, string(StepCreated), approved.CurrentStep)
	require.Len(t, approved.History, 2)
	assert.Equal(t, domain.HistoryApproved, approved.History[1].Action)

	_, err = f.engine.Approve(ctx, adminActor, ticket.ID, "")
	requireDomainCode(t, err, "CONFLICT")
}

func TestCancel(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.assigned(t)

	cancelled, err := f.engine.Cancel(ctx, adminActor, ticket.ID, "duplicate ticket")
	require.NoError(t, err)
	assert.Equal(t, string(StepCancelled), cancelled.CurrentStep)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)

	_, err = f.engine.Cancel(ctx, adminActor, ticket.ID, "again")
	requireDomainCode(t, err, "CONFLICT")
	_, err = f.engine.Assign(ctx, rootActor, ticket.ID, "vendor-2")
	requireDomainCode(t, err, "CONFLICT")
}

func TestAddNote(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	_, err := f.engine.AddNote(ctx, creatorActor, ticket.ID, "  ")
	requireDomainCode(t, err, "INVALID_INPUT")

	noted, err := f.engine.AddNote(ctx, creatorActor, ticket.ID, "tenant available after 2pm")
	require.NoError(t, err)
	require.Len(t, noted.Notes, 1)
	assert.Equal(t, "tenant available after 2pm", noted.Notes[0].Text)
	assert.Equal(t, "user-1", noted.Notes[0].By)
	// Notes do not touch the history log.
	require.Len(t, noted.History, 1)
}

func TestEscalatePriority(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.assigned(t)

	escalated, err := f.engine.EscalatePriority(ctx, ticket.ID, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, escalated.Priority)
	last := escalated.History[len(escalated.History)-1]
	assert.Equal(t, domain.HistoryEscalated, last.Action)
	assert.Equal(t, "system", last.By)

	// critical is the ceiling; escalation there is a no-op write-free pass.
	escalated, err = f.engine.EscalatePriority(ctx, ticket.ID, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityCritical, escalated.Priority)
	historyLen := len(escalated.History)

	unchanged, err := f.engine.EscalatePriority(ctx, ticket.ID, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityCritical, unchanged.Priority)
	assert.Len(t, unchanged.History, historyLen)
}

func TestHistoryAppendOnlyThroughLifecycle(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	steps := []func() (*domain.Ticket, error){
		func() (*domain.Ticket, error) { return f.engine.Approve(ctx, adminActor, ticket.ID, "") },
		func() (*domain.Ticket, error) { return f.engine.Assign(ctx, rootActor, ticket.ID, "vendor-1") },
		func() (*domain.Ticket, error) { return f.engine.AcceptByVendor(ctx, vendorActor, ticket.ID, "") },
		func() (*domain.Ticket, error) { return f.engine.StartWork(ctx, vendorActor, ticket.ID) },
		func() (*domain.Ticket, error) { return f.engine.CompleteWork(ctx, vendorActor, ticket.ID, "done") },
		func() (*domain.Ticket, error) { return f.engine.VerifyCompletion(ctx, rootActor, ticket.ID) },
	}

	prevHistory := len(ticket.History)
	prevOrders := len(ticket.WorkOrders)
	var current *domain.Ticket
	for _, transition := range steps {
		var err error
		current, err = transition()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(current.History), prevHistory)
		assert.GreaterOrEqual(t, len(current.WorkOrders), prevOrders)
		prevHistory = len(current.History)
		prevOrders = len(current.WorkOrders)
	}

	actions := make([]domain.HistoryAction, 0, len(current.History))
	for _, entry := range current.History {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []domain.HistoryAction{
		domain.HistoryCreated,
		domain.HistoryApproved,
		domain.HistoryStarted,
		domain.HistoryCompleted,
		domain.HistoryVerified,
	}, actions)
	assert.True(t, IsConsistent(current))
}

func TestTransitionNotFound(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Assign(ctx, rootActor, "no-such-ticket", "vendor-1")
	requireDomainCode(t, err, "NOT_FOUND")
	_, err = f.engine.StartWork(ctx, vendorActor, "no-such-ticket")
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestRevisionConflictSurfacesAsConflict(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.create(t)

	// A concurrent writer bumps the revision between the engine's load and
	// its write-back.
	f.tickets.updateErr = repository.ErrRevisionConflict
	_, err := f.engine.Approve(ctx, adminActor, ticket.ID, "")
	requireDomainCode(t, err, "CONFLICT")
	f.tickets.updateErr = nil

	// The refused write left nothing behind.
	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, stored.AdminApproved)
	require.Len(t, stored.History, 1)
}

func TestMissingVendorIsInconsistentState(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	ticket := f.assigned(t)

	// Corrupt the stored document the way legacy writers could.
	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	stored.VendorID = nil
	require.NoError(t, f.tickets.UpdateWithRevision(ctx, stored))

	_, err = f.engine.AcceptByVendor(ctx, vendorActor, ticket.ID, "")
	requireDomainCode(t, err, "INCONSISTENT_STATE")
}
