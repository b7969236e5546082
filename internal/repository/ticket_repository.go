package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-portal/internal/domain"
)

// TicketFilter captures list parameters. Nil enums and an empty search match everything;
// Limit <= 0 means no limit.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Search   string
	Limit    int
	Offset   int
}

// TicketChanges is a partial update. Nil fields are left untouched; AssignedTo pointing at an
// empty string clears the assignee.
type TicketChanges struct {
	Title         *string
	Description   *string
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	Category      *domain.TicketCategory
	CustomerName  *string
	CustomerEmail *string
	AssignedTo    *string
	UpdatedAt     time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Update applies changes in a single statement and returns the stored row.
	Update(ctx context.Context, id string, changes TicketChanges) (*domain.Ticket, error)
}

const ticketColumns = `id, title, description, status, priority, category, customer_name, customer_email,
               assigned_to, created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, category, customer_name,
            customer_email, assigned_to, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.AssignedTo,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return translatePgError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translatePgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if pattern, ok := LikePattern(filter.Search); ok {
		args = append(args, pattern)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(title ILIKE %[1]s ESCAPE '\' OR description ILIKE %[1]s ESCAPE '\' OR customer_name ILIKE %[1]s ESCAPE '\')`,
			placeholder))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Update(ctx context.Context, id string, changes TicketChanges) (*domain.Ticket, error) {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if changes.Title != nil {
		set("title", *changes.Title)
	}
	if changes.Description != nil {
		set("description", *changes.Description)
	}
	if changes.Status != nil {
		set("status", *changes.Status)
	}
	if changes.Priority != nil {
		set("priority", *changes.Priority)
	}
	if changes.Category != nil {
		set("category", *changes.Category)
	}
	if changes.CustomerName != nil {
		set("customer_name", *changes.CustomerName)
	}
	if changes.CustomerEmail != nil {
		set("customer_email", *changes.CustomerEmail)
	}
	if changes.AssignedTo != nil {
		set("assigned_to", AssigneeValue(changes.AssignedTo))
	}
	set("updated_at", changes.UpdatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translatePgError(err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// LikePattern turns a search term into a LIKE pattern with wildcards escaped by '\'.
// ok is false for a blank term.
func LikePattern(search string) (pattern string, ok bool) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", false
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%", true
}

// AssigneeValue maps an explicit empty assignee to NULL.
func AssigneeValue(assignedTo *string) *string {
	if assignedTo == nil || *assignedTo == "" {
		return nil
	}
	value := *assignedTo
	return &value
}
