package usecase

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatService is the read side used by seat map screens.
type SeatService interface {
	// ListSeats returns every seat of the showtime. An unknown showtime
	// yields an empty list.
	ListSeats(ctx context.Context, showtimeID uuid.UUID) ([]response.SeatResponse, error)
}

type seatService struct {
	repo       *repository.Repository
	sweeper    ExpirySweeper
	clock      clock.Clock
	lazyExpiry bool
	notify     *notifier
	log        *zap.Logger
}

func newSeatService(repo *repository.Repository, sweeper ExpirySweeper, clk clock.Clock, lazyExpiry bool, notify *notifier, log *zap.Logger) SeatService {
	return &seatService{
		repo:       repo,
		sweeper:    sweeper,
		clock:      clk,
		lazyExpiry: lazyExpiry,
		notify:     notify,
		log:        log.With(zap.String("service", "seat")),
	}
}

func (s *seatService) ListSeats(ctx context.Context, showtimeID uuid.UUID) ([]response.SeatResponse, error) {
	if s.lazyExpiry {
		// expiring here invalidates the cached map, so a hit below is fresh
		if _, err := s.sweeper.SweepShowtime(ctx, showtimeID, s.clock.Now()); err != nil {
			s.log.Warn("Lazy expiry failed", zap.Error(err), zap.String("showtime_id", showtimeID.String()))
		}
	}

	var cached []response.SeatResponse
	if s.notify.cachedSeatMap(ctx, showtimeID, &cached) {
		return cached, nil
	}

	seats, err := s.repo.Seat.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}

	result := make([]response.SeatResponse, 0, len(seats))
	for _, seat := range seats {
		result = append(result, response.SeatToResponse(seat))
	}

	if len(result) > 0 {
		s.notify.storeSeatMap(ctx, showtimeID, result)
	}
	return result, nil
}
