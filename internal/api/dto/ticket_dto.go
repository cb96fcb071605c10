package dto

import (
	"time"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
)

// TicketCreateRequest payload for opening a ticket.
type TicketCreateRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// TicketUpdateRequest payload for partial updates.
type TicketUpdateRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// TicketAssignRequest payload for assignment.
type TicketAssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketResponse is the wire view of a ticket, with the breach predicate
// evaluated at render time.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	RequesterID string                `json:"requester_id"`
	AssigneeID  *string               `json:"assignee_id,omitempty"`
	SLABreachAt *time.Time            `json:"sla_breach_at,omitempty"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
	SLABreached bool                  `json:"sla_breached"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket to its wire view.
func NewTicketResponse(ticket *domain.Ticket, breached bool) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		RequesterID: ticket.RequesterID,
		AssigneeID:  ticket.AssigneeID,
		SLABreachAt: ticket.SLABreachAt,
		ResolvedAt:  ticket.ResolvedAt,
		SLABreached: breached,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
