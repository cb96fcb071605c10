package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/events"
	"github.com/PacifistaPx0/helpdesk/internal/repository"
	"github.com/PacifistaPx0/helpdesk/internal/sla"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows and applies the SLA engine on
// every write.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	engine     *sla.Engine
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, users repository.UserRepository, engine *sla.Engine, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{
		tickets:    tickets,
		users:      users,
		engine:     engine,
		dispatcher: dispatcher,
	}
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
}

// TicketUpdateInput describes a partial ticket update. Nil fields are left
// untouched.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
}

// ListFilter describes list query options.
type ListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Breached   bool
	Limit      int
	Offset     int
}

// Create opens a ticket for the requester and stamps the SLA deadline. The
// deadline is computed exactly once here and never recomputed afterwards.
func (s *TicketService) Create(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		RequesterID: requesterID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	s.engine.StampCreate(ticket)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  requesterID,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			Priority:    ticket.Priority,
			SLABreachAt: ticket.SLABreachAt,
		},
	})
	return ticket, nil
}

// Get fetches a ticket. End-users may only see tickets they requested.
func (s *TicketService) Get(ctx context.Context, caller *CallerRef, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if caller.Role == domain.RoleEndUser && ticket.RequesterID != caller.UserID {
		return nil, apperrors.NewForbidden("insufficient permissions", nil)
	}
	return ticket, nil
}

// CallerRef identifies the acting user for ownership checks. Resource-scoped
// checks live here in the service, not in the route guard.
type CallerRef struct {
	UserID string
	Role   domain.UserRole
}

// List returns tickets visible to the caller. End-users are scoped to their
// own tickets; staff see everything matching the filter.
func (s *TicketService) List(ctx context.Context, caller *CallerRef, filter ListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if caller.Role == domain.RoleEndUser {
		repoFilter.RequesterID = &caller.UserID
	}
	if filter.Breached {
		now := s.engine.Now()
		repoFilter.BreachedAt = &now
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// Recent returns the most recently created tickets.
func (s *TicketService) Recent(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit > 50 {
		limit = 50
	}
	if limit < 1 {
		limit = 5
	}
	return s.tickets.ListRecent(ctx, limit)
}

// Update applies a partial update. Status transitions go through the SLA
// engine so the first move into RESOLVED stamps the resolution time; priority
// edits never retarget the frozen deadline.
func (s *TicketService) Update(ctx context.Context, caller *CallerRef, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title required", nil)
		}
		ticket.Title = title
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		ticket.Category = *input.Category
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}

	oldStatus := ticket.Status
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		s.engine.StampStatus(ticket, *input.Status)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if input.Status != nil && oldStatus != ticket.Status {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  caller.UserID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// Assign sets the assignee and moves OPEN tickets into IN_PROGRESS. The
// assignee must be an active agent or admin.
func (s *TicketService) Assign(ctx context.Context, actorID, ticketID, assigneeID string) (*domain.Ticket, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", nil)
		}
		return nil, err
	}
	if assignee.Role == domain.RoleEndUser || !assignee.Active {
		return nil, apperrors.NewValidationError("assignee must be an active agent or admin", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	ticket.AssigneeID = &assigneeID
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return err
	}
	return nil
}

// Breached reports the breach predicate for a single ticket.
func (s *TicketService) Breached(ticket *domain.Ticket) bool {
	return s.engine.Breached(ticket)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.engine.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
