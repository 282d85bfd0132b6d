package domain

import "time"

// TicketStatus is the coarse display status derived from the workflow step.
type TicketStatus string

const (
	TicketStatusNew            TicketStatus = "New"
	TicketStatusAssigned       TicketStatus = "Assigned"
	TicketStatusInProgress     TicketStatus = "In Progress"
	TicketStatusPaused         TicketStatus = "Paused"
	TicketStatusRejected       TicketStatus = "Rejected"
	TicketStatusMoreInfoNeeded TicketStatus = "More Info Needed"
	TicketStatusCompleted      TicketStatus = "Completed"
	TicketStatusVerified       TicketStatus = "Verified"
	TicketStatusCancelled      TicketStatus = "Cancelled"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// HistoryAction identifies a lifecycle action recorded in the ticket history log.
type HistoryAction string

const (
	HistoryCreated                HistoryAction = "created"
	HistoryApproved               HistoryAction = "approved"
	HistoryStarted                HistoryAction = "started"
	HistoryPaused                 HistoryAction = "paused"
	HistoryCompleted              HistoryAction = "completed"
	HistoryVerified               HistoryAction = "verified"
	HistoryCancelled              HistoryAction = "cancelled"
	HistoryEscalated              HistoryAction = "escalated"
	HistoryWorkOrderCreated       HistoryAction = "work_order_created"
	HistoryInvoiceUploaded        HistoryAction = "invoice_uploaded"
	HistoryFinalApprovalRequested HistoryAction = "final_approval_requested"
)

// WorkOrderType identifies a vendor-facing workflow event.
type WorkOrderType string

const (
	WorkOrderAssigned          WorkOrderType = "assigned"
	WorkOrderVendorAccepted    WorkOrderType = "vendor_accepted"
	WorkOrderVendorRejected    WorkOrderType = "vendor_rejected"
	WorkOrderMoreInfoRequested WorkOrderType = "more_info_requested"
	WorkOrderMoreInfoProvided  WorkOrderType = "more_info_provided"
)

// HistoryEntry is an immutable lifecycle audit record. Entries are only ever
// appended; no prior entry is edited or removed.
type HistoryEntry struct {
	Action    HistoryAction `bson:"action" json:"action"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
	By        string        `bson:"by" json:"by"`
	Note      string        `bson:"note,omitempty" json:"note,omitempty"`
}

// WorkOrderEntry is an immutable vendor-facing workflow record, kept as a
// second log next to History.
type WorkOrderEntry struct {
	Type      WorkOrderType `bson:"type" json:"type"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
	Note      string        `bson:"note,omitempty" json:"note,omitempty"`
	VendorID  *string       `bson:"vendor_id,omitempty" json:"vendor_id,omitempty"`
}

// Note is a free-text annotation, separate from the history log.
type Note struct {
	Text string    `bson:"text" json:"text"`
	Date time.Time `bson:"date" json:"date"`
	By   string    `bson:"by" json:"by"`
}

// Ticket is the central aggregate for maintenance requests.
//
// CurrentStep is the single persisted source of truth for workflow position;
// Status is derived from it and stored only for display and querying. Legacy
// documents without a step are tolerated read-side via step derivation.
type Ticket struct {
	ID          string         `bson:"_id" json:"id"`
	Number      string         `bson:"number" json:"number"`
	OrgID       string         `bson:"org_id" json:"org_id"`
	LocationID  string         `bson:"location_id" json:"location_id"`
	Category    string         `bson:"category" json:"category"`
	Description string         `bson:"description" json:"description"`
	Priority    TicketPriority `bson:"priority" json:"priority"`
	MediaRefs   []string       `bson:"media_refs,omitempty" json:"media_refs,omitempty"`

	CurrentStep string       `bson:"current_step" json:"current_step"`
	Status      TicketStatus `bson:"status" json:"status"`
	VendorID    *string      `bson:"vendor_id,omitempty" json:"vendor_id,omitempty"`

	AdminApproved          bool       `bson:"admin_approved" json:"admin_approved"`
	WorkOrderCreated       bool       `bson:"work_order_created" json:"work_order_created"`
	InvoiceUploaded        bool       `bson:"invoice_uploaded" json:"invoice_uploaded"`
	FinalApprovalRequested bool       `bson:"final_approval_requested" json:"final_approval_requested"`
	CompletionDate         *time.Time `bson:"completion_date,omitempty" json:"completion_date,omitempty"`
	VerificationDate       *time.Time `bson:"verification_date,omitempty" json:"verification_date,omitempty"`

	History    []HistoryEntry   `bson:"history" json:"history"`
	WorkOrders []WorkOrderEntry `bson:"work_orders" json:"work_orders"`
	Notes      []Note           `bson:"notes,omitempty" json:"notes,omitempty"`

	// Revision is a monotonic counter compared on write so that two racing
	// transitions against the same ticket have exactly one winner.
	Revision int64 `bson:"revision" json:"revision"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasWorkOrder reports whether the work-order log contains an entry of the
// given type.
func (t *Ticket) HasWorkOrder(kind WorkOrderType) bool {
	for _, entry := range t.WorkOrders {
		if entry.Type == kind {
			return true
		}
	}
	return false
}

// HasHistory reports whether the history log contains an entry for the given
// action.
func (t *Ticket) HasHistory(action HistoryAction) bool {
	for _, entry := range t.History {
		if entry.Action == action {
			return true
		}
	}
	return false
}
