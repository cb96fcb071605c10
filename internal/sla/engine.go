// Package sla computes and monitors per-ticket resolution deadlines.
package sla

import (
	"time"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
)

// Resolution hours per priority. This table is the policy itself, not a
// tunable: dashboards, filters and breach counts all derive from it.
const (
	hoursCritical = 4
	hoursHigh     = 8
	hoursMedium   = 24
	hoursLow      = 72
	hoursDefault  = 24
)

// Engine stamps deadlines and resolution times and evaluates the breach
// predicate. It is stateless apart from the injected clock.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// DeadlineHours returns the resolution window for a priority. Unrecognized
// priorities fall back to the default window so the ticket is still
// creatable.
func DeadlineHours(priority domain.TicketPriority) int {
	switch priority {
	case domain.TicketPriorityCritical:
		return hoursCritical
	case domain.TicketPriorityHigh:
		return hoursHigh
	case domain.TicketPriorityMedium:
		return hoursMedium
	case domain.TicketPriorityLow:
		return hoursLow
	default:
		return hoursDefault
	}
}

// StampCreate sets the breach deadline from the ticket priority. Called
// exactly once at creation; later priority edits do not retarget the
// deadline.
func (e *Engine) StampCreate(ticket *domain.Ticket) {
	breachAt := e.now().Add(time.Duration(DeadlineHours(ticket.Priority)) * time.Hour)
	ticket.SLABreachAt = &breachAt
}

// StampStatus records the resolution time on the first transition into
// RESOLVED. No other transition touches ResolvedAt, and a later
// RESOLVED->OPEN->RESOLVED cycle keeps the original stamp.
func (e *Engine) StampStatus(ticket *domain.Ticket, newStatus domain.TicketStatus) {
	if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		resolvedAt := e.now()
		ticket.ResolvedAt = &resolvedAt
	}
	ticket.Status = newStatus
}

// IsBreached reports whether the ticket has passed its deadline while still
// open. Evaluated at query time, never cached: two calls can disagree as the
// clock crosses the deadline. False at the deadline instant exactly.
func IsBreached(ticket *domain.Ticket, now time.Time) bool {
	if ticket.SLABreachAt == nil {
		return false
	}
	if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
		return false
	}
	return now.After(*ticket.SLABreachAt)
}

// Breached evaluates IsBreached against the engine clock.
func (e *Engine) Breached(ticket *domain.Ticket) bool {
	return IsBreached(ticket, e.now())
}
