package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PacifistaPx0/helpdesk/internal/domain"
)

// TicketFilter captures list query parameters.
type TicketFilter struct {
	RequesterID *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	BreachedAt  *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence and the dashboard counts.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Ticket, error)

	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int, error)
	CountByAssignee(ctx context.Context, assigneeID string) (int, error)
	CountBreached(ctx context.Context, now time.Time) (int, error)
	CountResolvedSince(ctx context.Context, since time.Time) (int, error)
	AverageResolutionHours(ctx context.Context) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category, status, priority,
               requester_id, assignee_id, sla_breach_at, resolved_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, status, priority, requester_id, assignee_id, sla_breach_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.SLABreachAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	// sla_breach_at is deliberately absent: the deadline is frozen at creation.
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, status=$4, priority=$5,
            assignee_id=$6, resolved_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.AssigneeID,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.SLABreachAt,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	addArg := func(val any) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.RequesterID != nil {
		clauses = append(clauses, "requester_id="+addArg(*filter.RequesterID))
	}
	if filter.AssigneeID != nil {
		clauses = append(clauses, "assignee_id="+addArg(*filter.AssigneeID))
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "status = ANY("+addArg(filter.Statuses)+")")
	}
	if len(filter.Priorities) > 0 {
		clauses = append(clauses, "priority = ANY("+addArg(filter.Priorities)+")")
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		term := "%" + *filter.SearchTerm + "%"
		placeholder := addArg(term)
		clauses = append(clauses, "(title ILIKE "+placeholder+" OR description ILIKE "+placeholder+")")
	}
	if filter.BreachedAt != nil {
		clauses = append(clauses,
			"sla_breach_at < "+addArg(*filter.BreachedAt)+" AND status NOT IN ('RESOLVED','CLOSED')")
	}

	query := base + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + addArg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + addArg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTickets(rows)
}

func (r *ticketRepository) ListRecent(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Status,
			&ticket.Priority,
			&ticket.RequesterID,
			&ticket.AssigneeID,
			&ticket.SLABreachAt,
			&ticket.ResolvedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) CountAll(ctx context.Context) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM tickets`)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, status domain.TicketStatus) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM tickets WHERE status=$1`, status)
}

func (r *ticketRepository) CountByAssignee(ctx context.Context, assigneeID string) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM tickets WHERE assignee_id=$1`, assigneeID)
}

// CountBreached mirrors the sla.IsBreached predicate in SQL: past the
// deadline and not yet resolved or closed.
func (r *ticketRepository) CountBreached(ctx context.Context, now time.Time) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE sla_breach_at IS NOT NULL AND sla_breach_at < $1
          AND status NOT IN ('RESOLVED','CLOSED')`
	return r.countWhere(ctx, query, now)
}

func (r *ticketRepository) CountResolvedSince(ctx context.Context, since time.Time) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM tickets WHERE resolved_at >= $1`, since)
}

func (r *ticketRepository) AverageResolutionHours(ctx context.Context) (int, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600), 0)
        FROM tickets WHERE resolved_at IS NOT NULL`
	var avg float64
	if err := r.pool.QueryRow(ctx, query).Scan(&avg); err != nil {
		return 0, err
	}
	return int(avg), nil
}

func (r *ticketRepository) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
