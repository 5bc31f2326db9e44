package repository

import (
	"context"
	"testing"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryTicket_CreateFindWithPayment(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(zap.NewNop())

	ticket := &entity.Ticket{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: baseTime},
		Code:       "TCK-20250101-190000-0001",
		HoldID:     uuid.New(),
		ShowtimeID: uuid.New(),
		Customer:   entity.CustomerInfo{Name: "Rani", Email: "rani@example.com"},
		Seats:      []entity.HoldSeat{{SeatID: uuid.New(), SeatNumber: "C4", Price: 60000}},
		TotalPrice: 60000,
	}
	ref := "PAY-1234"
	payment := &entity.Payment{
		BaseSimple:     entity.BaseSimple{ID: uuid.New(), CreatedAt: baseTime},
		TicketID:       ticket.ID,
		Amount:         60000,
		Method:         "card",
		Status:         entity.PaymentStatusCompleted,
		TransactionRef: &ref,
	}

	err := repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.Ticket.Create(ctx, ticket); err != nil {
			return err
		}
		return repo.Payment.Create(ctx, payment)
	})
	require.NoError(t, err)

	got, err := repo.Ticket.FindByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Payment)
	assert.Equal(t, payment.ID, got.Payment.ID)
	assert.Equal(t, "card", got.Customer.PaymentMethod)
	assert.Equal(t, ticket.Seats, got.Seats)

	byHold, err := repo.Ticket.FindByHoldID(ctx, ticket.HoldID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, byHold.ID)

	// one ticket per hold
	dup := *ticket
	dup.ID = uuid.New()
	dup.Code = "TCK-OTHER"
	assert.Error(t, repo.Ticket.Create(ctx, &dup))

	missing, err := repo.Ticket.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
