package repository

import (
	"cinema-reservation/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Tx      Transactor
	Seat    SeatRepository
	Hold    HoldRepository
	Ticket  TicketRepository
	Payment PaymentRepository
}

// NewRepository builds the Postgres backed store.
func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	tx := NewTransactor(db, log)
	return &Repository{
		Tx:      tx,
		Seat:    NewSeatRepository(db, tx, log),
		Hold:    NewHoldRepository(db, tx, log),
		Ticket:  NewTicketRepository(db, log),
		Payment: NewPaymentRepository(db, log),
	}
}

// NewMemoryRepository builds a process local store. State is lost on exit.
func NewMemoryRepository(log *zap.Logger) *Repository {
	payments := NewMemoryPaymentRepository(log)
	return &Repository{
		Tx:      memoryTransactor{},
		Seat:    NewMemorySeatRepository(log),
		Hold:    NewMemoryHoldRepository(log),
		Ticket:  NewMemoryTicketRepository(payments, log),
		Payment: payments,
	}
}
