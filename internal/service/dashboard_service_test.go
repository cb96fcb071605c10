package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/events"
	"github.com/PacifistaPx0/helpdesk/internal/sla"
)

func TestDashboardStats(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &now
	engine := sla.NewEngine().WithClock(func() time.Time { return *clock })

	tickets := newMemTicketRepo()
	users := newMemUserRepo()
	ticketSvc := NewTicketService(tickets, users, engine, events.NewInMemoryDispatcher())
	dashboard := NewDashboardService(tickets, engine)

	requester := &domain.User{Email: "user@helpdesk.local", Role: domain.RoleEndUser, Active: true}
	require.NoError(t, users.Create(context.Background(), requester))
	agent := &domain.User{Email: "agent@helpdesk.local", Role: domain.RoleAgent, Active: true}
	require.NoError(t, users.Create(context.Background(), agent))

	caller := &CallerRef{UserID: agent.ID, Role: domain.RoleAgent}

	// Critical ticket that will breach after 4h.
	breacher, err := ticketSvc.Create(context.Background(), requester.ID, TicketCreateInput{
		Title: "outage", Priority: domain.TicketPriorityCritical,
	})
	require.NoError(t, err)

	// Low priority ticket, assigned to the agent, resolved today.
	resolvedTicket, err := ticketSvc.Create(context.Background(), requester.ID, TicketCreateInput{
		Title: "slow laptop", Priority: domain.TicketPriorityLow,
	})
	require.NoError(t, err)
	_, err = ticketSvc.Assign(context.Background(), agent.ID, resolvedTicket.ID, agent.ID)
	require.NoError(t, err)

	*clock = now.Add(2 * time.Hour)
	resolved := domain.TicketStatusResolved
	_, err = ticketSvc.Update(context.Background(), caller, resolvedTicket.ID, TicketUpdateInput{Status: &resolved})
	require.NoError(t, err)

	// Advance past the critical deadline.
	*clock = now.Add(5 * time.Hour)

	stats, err := dashboard.Stats(context.Background(), agent.ID, domain.RoleAgent)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalTickets)
	assert.Equal(t, 1, stats.OpenTickets)
	assert.Equal(t, 1, stats.AssignedToMe)
	assert.Equal(t, 1, stats.SLABreaches)
	assert.Equal(t, 1, stats.ResolvedToday)
	assert.Equal(t, 2, stats.AverageResolutionTime)
	assert.True(t, ticketSvc.Breached(breacher), "stats agree with the per-ticket predicate")

	// End-users never see an assigned-to-me count.
	userStats, err := dashboard.Stats(context.Background(), requester.ID, domain.RoleEndUser)
	require.NoError(t, err)
	assert.Equal(t, 0, userStats.AssignedToMe)
}

func TestDashboardBreachCountTracksClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &now
	engine := sla.NewEngine().WithClock(func() time.Time { return *clock })

	tickets := newMemTicketRepo()
	users := newMemUserRepo()
	ticketSvc := NewTicketService(tickets, users, engine, events.NewInMemoryDispatcher())
	dashboard := NewDashboardService(tickets, engine)

	requester := &domain.User{Email: "user@helpdesk.local", Role: domain.RoleEndUser, Active: true}
	require.NoError(t, users.Create(context.Background(), requester))

	_, err := ticketSvc.Create(context.Background(), requester.ID, TicketCreateInput{
		Title: "high", Priority: domain.TicketPriorityHigh,
	})
	require.NoError(t, err)

	stats, err := dashboard.Stats(context.Background(), requester.ID, domain.RoleEndUser)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.SLABreaches)

	*clock = now.Add(8*time.Hour + time.Minute)

	stats, err = dashboard.Stats(context.Background(), requester.ID, domain.RoleEndUser)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SLABreaches, "breach count is derived at query time")
}
