package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PacifistaPx0/helpdesk/internal/api/dto"
	"github.com/PacifistaPx0/helpdesk/internal/auth"
	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/service"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

func caller(c *fiber.Ctx) (*service.CallerRef, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return &service.CallerRef{UserID: identity.UserID, Role: identity.Role}, nil
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	ref, err := caller(c)
	if err != nil {
		return err
	}

	var req dto.TicketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), ref.UserID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"ticket": dto.NewTicketResponse(ticket, h.tickets.Breached(ticket)),
	})
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	ref, err := caller(c)
	if err != nil {
		return err
	}

	filter := service.ListFilter{
		Limit:    c.QueryInt("limit", 20),
		Offset:   c.QueryInt("offset", 0),
		Breached: c.QueryBool("breached", false),
	}
	if status := c.Query("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
		}
	}
	if priority := c.Query("priority"); priority != "" {
		for _, p := range strings.Split(priority, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
		}
	}
	if term := c.Query("search"); term != "" {
		filter.SearchTerm = &term
	}

	tickets, err := h.tickets.List(c.UserContext(), ref, filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"tickets": h.renderList(tickets)})
}

// Recent handles GET /tickets/recent.
func (h *TicketsHandler) Recent(c *fiber.Ctx) error {
	tickets, err := h.tickets.Recent(c.UserContext(), c.QueryInt("limit", 5))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": h.renderList(tickets)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ref, err := caller(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Get(c.UserContext(), ref, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ticket": dto.NewTicketResponse(ticket, h.tickets.Breached(ticket)),
	})
}

// Update handles PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	ref, err := caller(c)
	if err != nil {
		return err
	}

	var req dto.TicketUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Update(c.UserContext(), ref, c.Params("id"), service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ticket": dto.NewTicketResponse(ticket, h.tickets.Breached(ticket)),
	})
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	ref, err := caller(c)
	if err != nil {
		return err
	}

	var req dto.TicketAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	ticket, err := h.tickets.Assign(c.UserContext(), ref.UserID, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ticket": dto.NewTicketResponse(ticket, h.tickets.Breached(ticket)),
	})
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *TicketsHandler) renderList(tickets []domain.Ticket) []dto.TicketResponse {
	out := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		out = append(out, dto.NewTicketResponse(ticket, h.tickets.Breached(ticket)))
	}
	return out
}
