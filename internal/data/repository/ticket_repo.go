package repository

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindByHoldID(ctx context.Context, holdID uuid.UUID) (*entity.Ticket, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

// Create stores the ticket header. Its seats are the hold's seat snapshot and
// are read back from hold_seats.
func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, code, hold_id, showtime_id, customer_name, customer_email, customer_phone, total_price_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		ticket.ID,
		ticket.Code,
		ticket.HoldID,
		ticket.ShowtimeID,
		ticket.Customer.Name,
		ticket.Customer.Email,
		ticket.Customer.Phone,
		ticket.TotalPrice,
		ticket.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("hold_id", ticket.HoldID.String()),
			zap.String("code", ticket.Code),
		)
		return fmt.Errorf("failed to create ticket for hold %s: %w", ticket.HoldID, err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	return r.findOne(ctx, "id", id)
}

func (r *ticketRepository) FindByHoldID(ctx context.Context, holdID uuid.UUID) (*entity.Ticket, error) {
	return r.findOne(ctx, "hold_id", holdID)
}

func (r *ticketRepository) findOne(ctx context.Context, column string, value uuid.UUID) (*entity.Ticket, error) {
	q := conn(ctx, r.db)

	query := `
		SELECT t.id, t.code, t.hold_id, t.showtime_id, t.customer_name, t.customer_email, t.customer_phone,
		       t.total_price_cents, t.created_at,
		       p.id, p.amount_cents, p.method, p.status, p.transaction_ref, p.created_at
		FROM tickets t
		LEFT JOIN payments p ON p.ticket_id = t.id
		WHERE t.` + column + ` = $1
	`

	var (
		ticket        entity.Ticket
		paymentID     *uuid.UUID
		amount        *int64
		method        *string
		status        *entity.PaymentStatus
		transactionID *string
		paidAt        *time.Time
	)
	err := q.QueryRow(ctx, query, value).Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.HoldID,
		&ticket.ShowtimeID,
		&ticket.Customer.Name,
		&ticket.Customer.Email,
		&ticket.Customer.Phone,
		&ticket.TotalPrice,
		&ticket.CreatedAt,
		&paymentID,
		&amount,
		&method,
		&status,
		&transactionID,
		&paidAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("Failed to find ticket",
			zap.Error(err),
			zap.String(column, value.String()),
		)
		return nil, fmt.Errorf("failed to find ticket by %s %s: %w", column, value, err)
	}

	if paymentID != nil {
		ticket.Payment = &entity.Payment{
			BaseSimple:     entity.BaseSimple{ID: *paymentID},
			TicketID:       ticket.ID,
			Amount:         *amount,
			Method:         *method,
			Status:         *status,
			TransactionRef: transactionID,
		}
		if paidAt != nil {
			ticket.Payment.CreatedAt = *paidAt
		}
		ticket.Customer.PaymentMethod = *method
		ticket.Customer.TransactionRef = transactionID
	}

	hold := &entity.Hold{BaseSimple: entity.BaseSimple{ID: ticket.HoldID}}
	if err := loadHoldSeats(ctx, q, []*entity.Hold{hold}); err != nil {
		r.log.Error("Failed to load ticket seats",
			zap.Error(err),
			zap.String("ticket_id", ticket.ID.String()),
		)
		return nil, fmt.Errorf("failed to load seats of ticket %s: %w", ticket.ID, err)
	}
	ticket.Seats = hold.Seats

	return &ticket, nil
}
