package repository

import (
	"context"
	"fmt"
	"sync"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryTicketRepository struct {
	mu       sync.RWMutex
	tickets  map[uuid.UUID]*entity.Ticket
	byHold   map[uuid.UUID]uuid.UUID
	payments PaymentRepository
	log      *zap.Logger
}

func NewMemoryTicketRepository(payments PaymentRepository, log *zap.Logger) TicketRepository {
	return &memoryTicketRepository{
		tickets:  make(map[uuid.UUID]*entity.Ticket),
		byHold:   make(map[uuid.UUID]uuid.UUID),
		payments: payments,
		log:      log.With(zap.String("repository", "ticket_memory")),
	}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHold[ticket.HoldID]; exists {
		return fmt.Errorf("failed to create ticket for hold %s: already ticketed", ticket.HoldID)
	}
	for _, t := range r.tickets {
		if t.Code == ticket.Code {
			return fmt.Errorf("failed to create ticket for hold %s: duplicate code %s", ticket.HoldID, ticket.Code)
		}
	}

	stored := *ticket
	stored.Seats = append([]entity.HoldSeat(nil), ticket.Seats...)
	stored.Payment = nil
	r.tickets[stored.ID] = &stored
	r.byHold[stored.HoldID] = stored.ID
	return nil
}

func (r *memoryTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	r.mu.RLock()
	t, ok := r.tickets[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.withPayment(ctx, t)
}

func (r *memoryTicketRepository) FindByHoldID(ctx context.Context, holdID uuid.UUID) (*entity.Ticket, error) {
	r.mu.RLock()
	id, ok := r.byHold[holdID]
	t := r.tickets[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.withPayment(ctx, t)
}

func (r *memoryTicketRepository) withPayment(ctx context.Context, t *entity.Ticket) (*entity.Ticket, error) {
	out := *t
	out.Seats = append([]entity.HoldSeat(nil), t.Seats...)

	payment, err := r.payments.FindByTicketID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		out.Payment = payment
		out.Customer.PaymentMethod = payment.Method
		out.Customer.TransactionRef = payment.TransactionRef
	}
	return &out, nil
}

type memoryPaymentRepository struct {
	mu       sync.RWMutex
	byTicket map[uuid.UUID]*entity.Payment
	log      *zap.Logger
}

func NewMemoryPaymentRepository(log *zap.Logger) PaymentRepository {
	return &memoryPaymentRepository{
		byTicket: make(map[uuid.UUID]*entity.Payment),
		log:      log.With(zap.String("repository", "payment_memory")),
	}
}

func (r *memoryPaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTicket[payment.TicketID]; exists {
		return fmt.Errorf("failed to create payment for ticket %s: already paid", payment.TicketID)
	}
	stored := *payment
	r.byTicket[payment.TicketID] = &stored
	return nil
}

func (r *memoryPaymentRepository) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byTicket[ticketID]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}
