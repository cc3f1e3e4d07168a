package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmac/repair-tracker/internal/domain"
)

// TicketSort captures list ordering. Field must be one of the whitelisted
// columns; anything else falls back to created_at.
type TicketSort struct {
	Field     string
	Ascending bool
}

var sortableTicketColumns = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"ticket_number": true,
	"status":        true,
	"priority":      true,
	"customer_name": true,
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, sort TicketSort) ([]domain.Ticket, error)
	ListOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, description, status, priority, customer_name,
       customer_email, customer_phone, device_type, price, user_id, assigned_to,
       created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, description, status, priority, customer_name,
            customer_email, customer_phone, device_type, price, user_id, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerPhone,
		ticket.DeviceType,
		ticket.Price,
		ticket.UserID,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET description=$1, status=$2, priority=$3, customer_name=$4,
            customer_email=$5, customer_phone=$6, device_type=$7, price=$8,
            assigned_to=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerPhone,
		ticket.DeviceType,
		ticket.Price,
		ticket.AssignedTo,
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

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, sort TicketSort) ([]domain.Ticket, error) {
	field := sort.Field
	if !sortableTicketColumns[field] {
		field = "created_at"
	}
	direction := "DESC"
	if sort.Ascending {
		direction = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY %s %s`, ticketColumns, field, direction)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListOpenCreatedBefore returns tickets created strictly before cutoff that
// are not in the closed state. "Chiuso" is the single terminal label the
// stale sweep excludes.
func (r *ticketRepository) ListOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE created_at < $1 AND status <> $2 ORDER BY created_at ASC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, cutoff, domain.TicketStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
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

func ticketFields(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.CustomerPhone,
		&ticket.DeviceType,
		&ticket.Price,
		&ticket.UserID,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
