package service

import (
	"context"
	"time"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/repository"
	"github.com/PacifistaPx0/helpdesk/internal/sla"
)

// DashboardStats aggregates read-only ticket metrics.
type DashboardStats struct {
	TotalTickets          int `json:"total_tickets"`
	OpenTickets           int `json:"open_tickets"`
	AssignedToMe          int `json:"assigned_to_me"`
	SLABreaches           int `json:"sla_breaches"`
	ResolvedToday         int `json:"resolved_today"`
	AverageResolutionTime int `json:"average_resolution_hours"`
}

// DashboardService composes count queries over the ticket store. It has no
// write side effects; breach counts are evaluated against the clock at query
// time, never cached.
type DashboardService struct {
	tickets repository.TicketRepository
	engine  *sla.Engine
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository, engine *sla.Engine) *DashboardService {
	return &DashboardService{tickets: tickets, engine: engine}
}

// Stats assembles dashboard metrics for the caller. The assigned-to-me count
// is only meaningful for agents and admins; end-users get zero.
func (s *DashboardService) Stats(ctx context.Context, userID string, role domain.UserRole) (*DashboardStats, error) {
	stats := &DashboardStats{}

	total, err := s.tickets.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalTickets = total

	open, err := s.tickets.CountByStatus(ctx, domain.TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	stats.OpenTickets = open

	if role == domain.RoleAgent || role == domain.RoleAdmin {
		assigned, err := s.tickets.CountByAssignee(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats.AssignedToMe = assigned
	}

	now := s.engine.Now()
	breaches, err := s.tickets.CountBreached(ctx, now)
	if err != nil {
		return nil, err
	}
	stats.SLABreaches = breaches

	// "Resolved today" uses UTC calendar-day boundaries.
	dayStart := now.UTC().Truncate(24 * time.Hour)
	resolvedToday, err := s.tickets.CountResolvedSince(ctx, dayStart)
	if err != nil {
		return nil, err
	}
	stats.ResolvedToday = resolvedToday

	avg, err := s.tickets.AverageResolutionHours(ctx)
	if err != nil {
		avg = 0
	}
	stats.AverageResolutionTime = avg

	return stats, nil
}
