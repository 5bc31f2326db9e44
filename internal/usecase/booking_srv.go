package usecase

import (
	"context"
	"errors"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/event"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPaymentMethod = "cash"

// BookingService turns a live hold into a ticket.
type BookingService interface {
	ConfirmHold(ctx context.Context, holdID uuid.UUID, customer entity.CustomerInfo) (*entity.Ticket, error)
	GetTicket(ctx context.Context, ticketID uuid.UUID) (*entity.Ticket, error)
}

type bookingService struct {
	repo    *repository.Repository
	sweeper ExpirySweeper
	clock   clock.Clock
	notify  *notifier
	log     *zap.Logger
}

func newBookingService(repo *repository.Repository, sweeper ExpirySweeper, clk clock.Clock, notify *notifier, log *zap.Logger) BookingService {
	return &bookingService{
		repo:    repo,
		sweeper: sweeper,
		clock:   clk,
		notify:  notify,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) ConfirmHold(ctx context.Context, holdID uuid.UUID, customer entity.CustomerInfo) (*entity.Ticket, error) {
	hold, err := s.repo.Hold.FindByID(ctx, holdID)
	if err != nil {
		return nil, fmt.Errorf("find hold: %w", err)
	}
	if hold == nil {
		return nil, ErrHoldNotFound
	}

	switch hold.Status {
	case entity.HoldStatusExpired:
		return nil, ErrHoldExpired
	case entity.HoldStatusConfirmed, entity.HoldStatusCancelled:
		return nil, ErrHoldAlreadyResolved
	}

	now := s.clock.Now()
	if hold.IsExpired(now) {
		if _, err := s.sweeper.ExpireHold(ctx, hold, now); err != nil {
			s.log.Warn("Opportunistic expiry failed", zap.Error(err), zap.String("hold_id", holdID.String()))
		}
		s.log.Info("Confirm rejected, hold expired", zap.String("hold_id", holdID.String()))
		return nil, ErrHoldExpired
	}

	ticket := &entity.Ticket{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		Code:       utils.GenerateTicketCode(now),
		HoldID:     hold.ID,
		ShowtimeID: hold.ShowtimeID,
		Customer:   customer,
		Seats:      append([]entity.HoldSeat(nil), hold.Seats...),
		TotalPrice: hold.TotalPrice(),
	}
	method := customer.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}
	ref := customer.TransactionRef
	if ref == nil {
		generated := utils.GenerateTransactionRef()
		ref = &generated
	}
	ticket.Payment = &entity.Payment{
		BaseSimple:     entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		TicketID:       ticket.ID,
		Amount:         ticket.TotalPrice,
		Method:         method,
		Status:         entity.PaymentStatusCompleted,
		TransactionRef: ref,
	}
	ticket.Customer.PaymentMethod = method
	ticket.Customer.TransactionRef = ref

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Hold.CompareAndSetStatus(ctx, hold.ID, entity.HoldStatusActive, entity.HoldStatusConfirmed, now)
		if err != nil {
			return fmt.Errorf("confirm hold: %w", err)
		}
		if !ok {
			return s.lostRace(ctx, hold.ID)
		}

		if err := s.bookSeats(ctx, hold); err != nil {
			return err
		}

		if err := s.repo.Ticket.Create(ctx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		if err := s.repo.Payment.Create(ctx, ticket.Payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		var bookingErr *BookingError
		if !errors.As(err, &bookingErr) {
			s.log.Error("Failed to confirm hold", zap.Error(err), zap.String("hold_id", holdID.String()))
		}
		return nil, err
	}

	hold.Status = entity.HoldStatusConfirmed
	hold.ResolvedAt = &now
	s.notify.seatsChanged(ctx, hold.ShowtimeID)
	s.notify.holdEvent(ctx, event.TypeHoldConfirmed, hold, ticket, now)

	s.log.Info("Hold confirmed",
		zap.String("hold_id", hold.ID.String()),
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("code", ticket.Code),
		zap.Int64("total_price", ticket.TotalPrice),
	)
	return ticket, nil
}

// lostRace explains a failed Active -> Confirmed compare-and-set.
func (s *bookingService) lostRace(ctx context.Context, holdID uuid.UUID) error {
	current, err := s.repo.Hold.FindByID(ctx, holdID)
	if err != nil {
		return fmt.Errorf("find hold: %w", err)
	}
	if current != nil && current.Status == entity.HoldStatusExpired {
		return ErrHoldExpired
	}
	return ErrHoldAlreadyResolved
}

// bookSeats moves every seat of a just-confirmed hold Held -> Booked. The hold
// owns these seats exclusively, so any miss is a bug.
func (s *bookingService) bookSeats(ctx context.Context, hold *entity.Hold) error {
	for _, seat := range hold.Seats {
		ok, err := s.repo.Seat.TryTransition(ctx, seat.SeatID, entity.SeatStateHeld, entity.SeatStateBooked)
		if err != nil {
			return fmt.Errorf("book seat %s: %w", seat.SeatID, err)
		}
		if !ok {
			current, _ := s.repo.Seat.FindByID(ctx, seat.SeatID)
			fields := []zap.Field{
				zap.String("hold_id", hold.ID.String()),
				zap.String("seat_id", seat.SeatID.String()),
				zap.Stack("stack"),
			}
			if current != nil {
				fields = append(fields, zap.String("seat_state", string(current.State)))
			}
			s.log.Error("Integrity fault: seat of active hold is not held", fields...)
			return &BookingError{
				Code:    CodeIntegrityFault,
				Message: "seat owned by hold was not held at confirm time",
				SeatIDs: []uuid.UUID{seat.SeatID},
			}
		}
	}
	return nil
}

func (s *bookingService) GetTicket(ctx context.Context, ticketID uuid.UUID) (*entity.Ticket, error) {
	ticket, err := s.repo.Ticket.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, newError(CodeNotFound, "ticket %s not found", ticketID)
	}
	return ticket, nil
}
