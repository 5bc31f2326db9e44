package repository

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, ticket_id, amount_cents, method, status, transaction_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		payment.ID,
		payment.TicketID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionRef,
		payment.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("ticket_id", payment.TicketID.String()),
		)
		return fmt.Errorf("failed to create payment for ticket %s: %w", payment.TicketID, err)
	}

	return nil
}

func (r *paymentRepository) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, ticket_id, amount_cents, method, status, transaction_ref, created_at
		FROM payments
		WHERE ticket_id = $1
	`

	var payment entity.Payment
	err := conn(ctx, r.db).QueryRow(ctx, query, ticketID).Scan(
		&payment.ID,
		&payment.TicketID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.TransactionRef,
		&payment.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ticket ID",
			zap.Error(err),
			zap.String("ticket_id", ticketID.String()),
		)
		return nil, fmt.Errorf("failed to find payment of ticket %s: %w", ticketID, err)
	}

	return &payment, nil
}
