package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

func TestStatusForStep(t *testing.T) {
	tests := []struct {
		step Step
		want domain.TicketStatus
	}{
		{StepCreated, domain.TicketStatusNew},
		{StepPendingApproval, domain.TicketStatusNew},
		{StepAssigned, domain.TicketStatusAssigned},
		{StepWaitingVendorResponse, domain.TicketStatusAssigned},
		{StepVendorAccepted, domain.TicketStatusAssigned},
		{StepVendorRejected, domain.TicketStatusRejected},
		{StepMoreInfoRequested, domain.TicketStatusMoreInfoNeeded},
		{StepInProgress, domain.TicketStatusInProgress},
		{StepPaused, domain.TicketStatusPaused},
		{StepInvoiceUploaded, domain.TicketStatusCompleted},
		{StepAwaitingApproval, domain.TicketStatusCompleted},
		{StepCompleted, domain.TicketStatusVerified},
		{StepCancelled, domain.TicketStatusCancelled},
		{Step("garbage"), domain.TicketStatusNew},
	}
	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForStep(tt.step))
		})
	}
}

func TestKnownStep(t *testing.T) {
	for _, step := range Steps() {
		assert.True(t, KnownStep(string(step)), string(step))
	}
	assert.False(t, KnownStep(""))
	assert.False(t, KnownStep("Assigned"))
}

func TestDeriveStepPersistedStepWins(t *testing.T) {
	vendorID := "vendor-1"
	ticket := &domain.Ticket{
		CurrentStep: string(StepPaused),
		Status:      domain.TicketStatusAssigned,
		VendorID:    &vendorID,
	}
	assert.Equal(t, StepPaused, DeriveStep(ticket))
}

func TestDeriveStepLegacyFallback(t *testing.T) {
	vendorID := "vendor-1"
	tests := []struct {
		name   string
		ticket domain.Ticket
		want   Step
	}{
		{
			name:   "new without step",
			ticket: domain.Ticket{Status: domain.TicketStatusNew},
			want:   StepCreated,
		},
		{
			name:   "assigned without logs",
			ticket: domain.Ticket{Status: domain.TicketStatusAssigned, VendorID: &vendorID},
			want:   StepAssigned,
		},
		{
			name: "assigned with dispatch on record",
			ticket: domain.Ticket{
				Status:     domain.TicketStatusAssigned,
				VendorID:   &vendorID,
				WorkOrders: []domain.WorkOrderEntry{{Type: domain.WorkOrderAssigned}},
			},
			want: StepWaitingVendorResponse,
		},
		{
			name: "assigned with acceptance on record",
			ticket: domain.Ticket{
				Status:   domain.TicketStatusAssigned,
				VendorID: &vendorID,
				WorkOrders: []domain.WorkOrderEntry{
					{Type: domain.WorkOrderAssigned},
					{Type: domain.WorkOrderVendorAccepted},
				},
			},
			want: StepVendorAccepted,
		},
		{
			name:   "rejected",
			ticket: domain.Ticket{Status: domain.TicketStatusRejected},
			want:   StepVendorRejected,
		},
		{
			name:   "completed defaults to awaiting approval",
			ticket: domain.Ticket{Status: domain.TicketStatusCompleted},
			want:   StepAwaitingApproval,
		},
		{
			name: "completed with invoice",
			ticket: domain.Ticket{
				Status:          domain.TicketStatusCompleted,
				InvoiceUploaded: true,
			},
			want: StepInvoiceUploaded,
		},
		{
			name: "final approval outranks invoice",
			ticket: domain.Ticket{
				Status:                 domain.TicketStatusCompleted,
				InvoiceUploaded:        true,
				FinalApprovalRequested: true,
			},
			want: StepAwaitingApproval,
		},
		{
			name:   "verified",
			ticket: domain.Ticket{Status: domain.TicketStatusVerified},
			want:   StepCompleted,
		},
		{
			name:   "unknown status",
			ticket: domain.Ticket{Status: domain.TicketStatus("Bogus")},
			want:   StepCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStep(&tt.ticket))
		})
	}
}

func TestIsConsistent(t *testing.T) {
	vendorID := "vendor-1"
	now := time.Now()
	tests := []struct {
		name   string
		ticket domain.Ticket
		want   bool
	}{
		{
			name:   "fresh ticket",
			ticket: domain.Ticket{CurrentStep: string(StepCreated), Status: domain.TicketStatusNew},
			want:   true,
		},
		{
			name: "status contradicts step",
			ticket: domain.Ticket{
				CurrentStep: string(StepInProgress),
				Status:      domain.TicketStatusNew,
				VendorID:    &vendorID,
			},
			want: false,
		},
		{
			name: "vendor-facing step without vendor",
			ticket: domain.Ticket{
				CurrentStep: string(StepWaitingVendorResponse),
				Status:      domain.TicketStatusAssigned,
			},
			want: false,
		},
		{
			name: "awaiting approval without completion date",
			ticket: domain.Ticket{
				CurrentStep: string(StepAwaitingApproval),
				Status:      domain.TicketStatusCompleted,
				VendorID:    &vendorID,
			},
			want: false,
		},
		{
			name: "verified without verification date",
			ticket: domain.Ticket{
				CurrentStep:    string(StepCompleted),
				Status:         domain.TicketStatusVerified,
				VendorID:       &vendorID,
				CompletionDate: &now,
			},
			want: false,
		},
		{
			name: "fully verified",
			ticket: domain.Ticket{
				CurrentStep:      string(StepCompleted),
				Status:           domain.TicketStatusVerified,
				VendorID:         &vendorID,
				CompletionDate:   &now,
				VerificationDate: &now,
			},
			want: true,
		},
		{
			name: "cancelled needs nothing else",
			ticket: domain.Ticket{
				CurrentStep: string(StepCancelled),
				Status:      domain.TicketStatusCancelled,
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConsistent(&tt.ticket))
		})
	}
}
