package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService manages the seat inventory of showtimes.
type InventoryService interface {
	ScheduleShowtime(ctx context.Context, showtimeID uuid.UUID, req *request.ScheduleShowtimeRequest) ([]*entity.Seat, error)
	RemoveShowtime(ctx context.Context, showtimeID uuid.UUID) (int, error)
	// UpdateSeatPrice only affects holds created afterwards.
	UpdateSeatPrice(ctx context.Context, seatID uuid.UUID, price int64) (*entity.Seat, error)
	Summary(ctx context.Context, showtimeID uuid.UUID) (map[entity.SeatState]int, error)
}

type inventoryService struct {
	repo   *repository.Repository
	clock  clock.Clock
	notify *notifier
	log    *zap.Logger
}

func newInventoryService(repo *repository.Repository, clk clock.Clock, notify *notifier, log *zap.Logger) InventoryService {
	return &inventoryService{
		repo:   repo,
		clock:  clk,
		notify: notify,
		log:    log.With(zap.String("service", "inventory")),
	}
}

func (s *inventoryService) ScheduleShowtime(ctx context.Context, showtimeID uuid.UUID, req *request.ScheduleShowtimeRequest) ([]*entity.Seat, error) {
	if showtimeID == uuid.Nil {
		return nil, newError(CodeInvalidRequest, "showtime id is required")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Schedule showtime validation failed", zap.Any("errors", errs))
		return nil, newError(CodeInvalidRequest, "%s", utils.FormatValidationErrors(errs))
	}

	counts, err := s.repo.Seat.CountByState(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("count seats: %w", err)
	}
	if total(counts) > 0 {
		return nil, newError(CodeInvalidRequest, "showtime %s is already scheduled", showtimeID)
	}

	now := s.clock.Now()
	seats := make([]*entity.Seat, 0, len(req.Seats))
	labels := make(map[string]bool, len(req.Seats))
	for _, in := range req.Seats {
		row := strings.ToUpper(in.SeatRow)
		label := row + strconv.Itoa(in.SeatColumn)
		if labels[label] {
			return nil, newError(CodeInvalidRequest, "duplicate seat %s", label)
		}
		labels[label] = true

		seats = append(seats, &entity.Seat{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			ShowtimeID:   showtimeID,
			SeatNumber:   label,
			SeatRow:      row,
			SeatColumn:   in.SeatColumn,
			Class:        entity.SeatClass(in.Class),
			Price:        in.Price,
			State:        entity.SeatStateAvailable,
		})
	}

	if err := s.repo.Seat.CreateBatch(ctx, seats); err != nil {
		return nil, fmt.Errorf("create seats: %w", err)
	}
	s.notify.seatsChanged(ctx, showtimeID)

	s.log.Info("Showtime scheduled",
		zap.String("showtime_id", showtimeID.String()),
		zap.Int("seat_count", len(seats)),
	)
	return seats, nil
}

func (s *inventoryService) RemoveShowtime(ctx context.Context, showtimeID uuid.UUID) (int, error) {
	counts, err := s.repo.Seat.CountByState(ctx, showtimeID)
	if err != nil {
		return 0, fmt.Errorf("count seats: %w", err)
	}
	n := total(counts)
	if n == 0 {
		return 0, newError(CodeNotFound, "showtime %s has no seats", showtimeID)
	}

	busy, err := s.repo.Seat.DeleteByShowtime(ctx, showtimeID)
	if err != nil {
		return 0, fmt.Errorf("delete seats: %w", err)
	}
	if len(busy) > 0 {
		s.log.Warn("Showtime removal blocked by held or booked seats",
			zap.String("showtime_id", showtimeID.String()),
			zap.Int("busy", len(busy)),
		)
		return 0, &BookingError{
			Code:    CodeSeatUnavailable,
			Message: "showtime has held or booked seats",
			SeatIDs: busy,
		}
	}
	s.notify.seatsChanged(ctx, showtimeID)

	s.log.Info("Showtime removed",
		zap.String("showtime_id", showtimeID.String()),
		zap.Int("seat_count", n),
	)
	return n, nil
}

func (s *inventoryService) UpdateSeatPrice(ctx context.Context, seatID uuid.UUID, price int64) (*entity.Seat, error) {
	if price < 0 {
		return nil, newError(CodeInvalidRequest, "price must not be negative")
	}

	ok, err := s.repo.Seat.UpdatePrice(ctx, seatID, price)
	if err != nil {
		return nil, fmt.Errorf("update price: %w", err)
	}
	if !ok {
		return nil, newError(CodeNotFound, "seat %s not found", seatID)
	}

	seat, err := s.repo.Seat.FindByID(ctx, seatID)
	if err != nil {
		return nil, fmt.Errorf("find seat: %w", err)
	}
	if seat == nil {
		return nil, newError(CodeNotFound, "seat %s not found", seatID)
	}
	s.notify.seatsChanged(ctx, seat.ShowtimeID)

	s.log.Info("Seat price updated",
		zap.String("seat_id", seatID.String()),
		zap.Int64("price", price),
	)
	return seat, nil
}

func (s *inventoryService) Summary(ctx context.Context, showtimeID uuid.UUID) (map[entity.SeatState]int, error) {
	counts, err := s.repo.Seat.CountByState(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("count seats: %w", err)
	}
	if total(counts) == 0 {
		return nil, newError(CodeNotFound, "showtime %s has no seats", showtimeID)
	}
	return counts, nil
}

func total(counts map[entity.SeatState]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
