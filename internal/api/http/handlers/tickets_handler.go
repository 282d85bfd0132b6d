package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/maintenance-service/internal/api/dto"
	"github.com/fixdesk/maintenance-service/internal/auth"
	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/repository"
	"github.com/fixdesk/maintenance-service/internal/workflow"
	apperrors "github.com/fixdesk/maintenance-service/pkg/util"
)

// TicketsHandler exposes the workflow transitions over HTTP.
type TicketsHandler struct {
	engine *workflow.Engine
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(engine *workflow.Engine) *TicketsHandler {
	return &TicketsHandler{engine: engine}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if req.LocationID == "" || req.Description == "" {
		return apperrors.NewInvalidInput("location_id and description required", nil)
	}
	ticket, err := h.engine.Create(c.UserContext(), actor, workflow.CreateInput{
		LocationID:  req.LocationID,
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
		MediaRefs:   req.MediaRefs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.engine.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListInconsistent GET /tickets/inconsistent.
func (h *TicketsHandler) ListInconsistent(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.engine.ListInconsistent(c.UserContext(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	view, err := h.engine.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view)})
}

// Approve POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	return h.noteTransition(c, h.engine.Approve)
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if req.VendorID == "" {
		return apperrors.NewInvalidInput("vendor_id required", nil)
	}
	ticket, err := h.engine.Assign(c.UserContext(), actor, c.Params("id"), req.VendorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Accept POST /tickets/:id/accept.
func (h *TicketsHandler) Accept(c *fiber.Ctx) error {
	return h.noteTransition(c, h.engine.AcceptByVendor)
}

// Reject POST /tickets/:id/reject.
func (h *TicketsHandler) Reject(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.RejectByVendor)
}

// RequestMoreInfo POST /tickets/:id/request-info.
func (h *TicketsHandler) RequestMoreInfo(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.RequestMoreInfo)
}

// ProvideMoreInfo POST /tickets/:id/provide-info.
func (h *TicketsHandler) ProvideMoreInfo(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.ProvideMoreInfo)
}

// StartWork POST /tickets/:id/start.
func (h *TicketsHandler) StartWork(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.engine.StartWork(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// PauseWork POST /tickets/:id/pause.
func (h *TicketsHandler) PauseWork(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.PauseWork)
}

// CompleteWork POST /tickets/:id/complete.
func (h *TicketsHandler) CompleteWork(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.CompleteWork)
}

// CreateWorkOrder POST /tickets/:id/work-order.
func (h *TicketsHandler) CreateWorkOrder(c *fiber.Ctx) error {
	return h.flagTransition(c, h.engine.CreateWorkOrder)
}

// UploadInvoice POST /tickets/:id/invoice.
func (h *TicketsHandler) UploadInvoice(c *fiber.Ctx) error {
	return h.flagTransition(c, h.engine.UploadInvoice)
}

// RequestFinalApproval POST /tickets/:id/request-final-approval.
func (h *TicketsHandler) RequestFinalApproval(c *fiber.Ctx) error {
	return h.flagTransition(c, h.engine.RequestFinalApproval)
}

// Verify POST /tickets/:id/verify.
func (h *TicketsHandler) Verify(c *fiber.Ctx) error {
	return h.flagTransition(c, h.engine.VerifyCompletion)
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.Cancel)
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.engine.AddNote)
}

func (h *TicketsHandler) noteTransition(c *fiber.Ctx, fn func(context.Context, domain.Actor, string, string) (*domain.Ticket, error)) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.NoteRequest
	_ = c.BodyParser(&req)
	ticket, err := fn(c.UserContext(), actor, c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func (h *TicketsHandler) reasonTransition(c *fiber.Ctx, fn func(context.Context, domain.Actor, string, string) (*domain.Ticket, error)) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	ticket, err := fn(c.UserContext(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func (h *TicketsHandler) flagTransition(c *fiber.Ctx, fn func(context.Context, domain.Actor, string) (*domain.Ticket, error)) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := fn(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if stepStr := c.Query("step"); stepStr != "" {
		for _, part := range strings.Split(stepStr, ",") {
			filter.Steps = append(filter.Steps, strings.TrimSpace(part))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 {
		pageSize = 20
	}
	filter.Offset = int64((page - 1) * pageSize)
	filter.Limit = int64(pageSize)
	return filter
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         t.ID,
		Number:     t.Number,
		LocationID: t.LocationID,
		Category:   t.Category,
		Status:     t.Status,
		Step:       t.CurrentStep,
		Priority:   t.Priority,
		VendorID:   t.VendorID,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func ticketDetail(view *workflow.TicketView) dto.TicketDetailResponse {
	t := view.Ticket
	return dto.TicketDetailResponse{
		ID:          t.ID,
		Number:      t.Number,
		OrgID:       t.OrgID,
		LocationID:  t.LocationID,
		Category:    t.Category,
		Description: t.Description,
		Status:      t.Status,
		Step:        string(view.Step),
		Priority:    t.Priority,
		VendorID:    t.VendorID,
		MediaRefs:   t.MediaRefs,

		AdminApproved:          t.AdminApproved,
		WorkOrderCreated:       t.WorkOrderCreated,
		InvoiceUploaded:        t.InvoiceUploaded,
		FinalApprovalRequested: t.FinalApprovalRequested,
		CompletionDate:         t.CompletionDate,
		VerificationDate:       t.VerificationDate,

		History:    t.History,
		WorkOrders: t.WorkOrders,
		Notes:      t.Notes,

		Consistent:  view.Consistent,
		Transitions: view.Transitions,

		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
