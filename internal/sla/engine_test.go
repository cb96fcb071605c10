package sla_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
	"github.com/PacifistaPx0/helpdesk/internal/sla"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStampCreateDeadlineTable(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		priority domain.TicketPriority
		hours    int
	}{
		{domain.TicketPriorityCritical, 4},
		{domain.TicketPriorityHigh, 8},
		{domain.TicketPriorityMedium, 24},
		{domain.TicketPriorityLow, 72},
		{domain.TicketPriority("BOGUS"), 24},
		{domain.TicketPriority(""), 24},
	}

	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			engine := sla.NewEngine().WithClock(fixedClock(createdAt))
			ticket := &domain.Ticket{Priority: tc.priority, Status: domain.TicketStatusOpen}

			engine.StampCreate(ticket)

			require.NotNil(t, ticket.SLABreachAt)
			assert.Equal(t, createdAt.Add(time.Duration(tc.hours)*time.Hour), *ticket.SLABreachAt)
		})
	}
}

func TestBreachPredicateBoundary(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:      domain.TicketStatusOpen,
		SLABreachAt: &deadline,
	}

	assert.False(t, sla.IsBreached(ticket, deadline.Add(-time.Second)))
	assert.False(t, sla.IsBreached(ticket, deadline), "not breached at the deadline instant exactly")
	assert.True(t, sla.IsBreached(ticket, deadline.Add(time.Nanosecond)))
}

func TestBreachPredicateIgnoresResolvedAndClosed(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	wellPast := deadline.Add(48 * time.Hour)

	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		ticket := &domain.Ticket{Status: status, SLABreachAt: &deadline}
		assert.False(t, sla.IsBreached(ticket, wellPast), "status %s never breaches", status)
	}

	for _, status := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress} {
		ticket := &domain.Ticket{Status: status, SLABreachAt: &deadline}
		assert.True(t, sla.IsBreached(ticket, wellPast), "status %s breaches past deadline", status)
	}
}

func TestBreachPredicateNilDeadline(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.TicketStatusOpen}
	assert.False(t, sla.IsBreached(ticket, time.Now()))
}

func TestStampStatusResolutionIdempotent(t *testing.T) {
	resolveTime := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	engine := sla.NewEngine().WithClock(fixedClock(resolveTime))

	ticket := &domain.Ticket{Status: domain.TicketStatusOpen}

	engine.StampStatus(ticket, domain.TicketStatusResolved)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, resolveTime, *ticket.ResolvedAt)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)

	// Reopen and resolve again later; the original stamp must survive.
	later := resolveTime.Add(3 * time.Hour)
	engine.WithClock(fixedClock(later))

	engine.StampStatus(ticket, domain.TicketStatusOpen)
	require.NotNil(t, ticket.ResolvedAt, "reopening does not clear the stamp")
	assert.Equal(t, resolveTime, *ticket.ResolvedAt)

	engine.StampStatus(ticket, domain.TicketStatusResolved)
	assert.Equal(t, resolveTime, *ticket.ResolvedAt, "second resolution keeps the first stamp")
}

func TestStampStatusOtherTransitionsUntouched(t *testing.T) {
	engine := sla.NewEngine()
	ticket := &domain.Ticket{Status: domain.TicketStatusOpen}

	engine.StampStatus(ticket, domain.TicketStatusInProgress)
	assert.Nil(t, ticket.ResolvedAt)

	engine.StampStatus(ticket, domain.TicketStatusClosed)
	assert.Nil(t, ticket.ResolvedAt, "closing without resolving never stamps")
}
