package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/event"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HoldService reserves seat sets all-or-nothing for a limited time.
type HoldService interface {
	CreateHold(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID) (*entity.Hold, error)
	// CancelHold reports whether this call cancelled the hold. Terminal
	// holds are a no-op.
	CancelHold(ctx context.Context, holdID uuid.UUID) (bool, error)
	GetHold(ctx context.Context, holdID uuid.UUID) (*entity.Hold, error)
	TTL() time.Duration
}

type holdService struct {
	repo       *repository.Repository
	sweeper    ExpirySweeper
	clock      clock.Clock
	ttl        time.Duration
	lazyExpiry bool
	notify     *notifier
	log        *zap.Logger
}

func newHoldService(repo *repository.Repository, sweeper ExpirySweeper, config utils.HoldConfig, clk clock.Clock, notify *notifier, log *zap.Logger) HoldService {
	return &holdService{
		repo:       repo,
		sweeper:    sweeper,
		clock:      clk,
		ttl:        config.TTL,
		lazyExpiry: config.LazyExpiry,
		notify:     notify,
		log:        log.With(zap.String("service", "hold")),
	}
}

func (s *holdService) TTL() time.Duration { return s.ttl }

func (s *holdService) CreateHold(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID) (*entity.Hold, error) {
	if showtimeID == uuid.Nil {
		return nil, newError(CodeInvalidRequest, "showtime id is required")
	}
	if len(seatIDs) == 0 {
		return nil, newError(CodeInvalidRequest, "at least one seat is required")
	}
	if dups := duplicateIDs(seatIDs); len(dups) > 0 {
		return nil, invalidSeats("duplicate seat ids", dups)
	}

	seats, err := s.repo.Seat.FindByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("find seats: %w", err)
	}

	found := make(map[uuid.UUID]*entity.Seat, len(seats))
	for _, seat := range seats {
		if seat.ShowtimeID == showtimeID {
			found[seat.ID] = seat
		}
	}
	var foreign []uuid.UUID
	for _, id := range seatIDs {
		if _, ok := found[id]; !ok {
			foreign = append(foreign, id)
		}
	}
	if len(foreign) > 0 {
		s.log.Warn("Hold requested seats outside showtime",
			zap.String("showtime_id", showtimeID.String()),
			zap.Stringers("seat_ids", foreign),
		)
		return nil, invalidSeats("seats do not belong to the showtime", foreign)
	}

	// fixed acquisition order keeps overlapping requests from livelocking
	ordered := make([]*entity.Seat, 0, len(found))
	for _, seat := range found {
		ordered = append(ordered, seat)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ID[:], ordered[j].ID[:]) < 0
	})

	for attempt := 0; ; attempt++ {
		conflicts, err := s.acquire(ctx, ordered)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			break
		}

		if attempt == 0 && s.lazyExpiry {
			n, err := s.sweeper.SweepShowtime(ctx, showtimeID, s.clock.Now())
			if err != nil {
				s.log.Warn("Lazy expiry failed", zap.Error(err), zap.String("showtime_id", showtimeID.String()))
			}
			if n > 0 {
				continue
			}
		}

		s.log.Warn("Seats unavailable",
			zap.String("showtime_id", showtimeID.String()),
			zap.Stringers("seat_ids", conflicts),
		)
		return nil, seatUnavailable(conflicts)
	}

	now := s.clock.Now()
	hold := &entity.Hold{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		ShowtimeID: showtimeID,
		Seats:      make([]entity.HoldSeat, len(ordered)),
		Status:     entity.HoldStatusActive,
		ExpiresAt:  now.Add(s.ttl),
	}
	for i, seat := range ordered {
		// price is captured now; later price changes do not touch this hold
		hold.Seats[i] = entity.HoldSeat{
			SeatID:     seat.ID,
			SeatNumber: seat.SeatNumber,
			Class:      seat.Class,
			Price:      seat.Price,
		}
	}

	if err := s.repo.Hold.Create(ctx, hold); err != nil {
		s.rollback(ctx, hold.ID, hold.SeatIDs())
		return nil, fmt.Errorf("create hold: %w", err)
	}

	s.notify.seatsChanged(ctx, showtimeID)
	s.notify.holdEvent(ctx, event.TypeHoldCreated, hold, nil, now)

	s.log.Info("Hold created",
		zap.String("hold_id", hold.ID.String()),
		zap.String("showtime_id", showtimeID.String()),
		zap.Int("seat_count", len(hold.Seats)),
		zap.Time("expires_at", hold.ExpiresAt),
	)
	return hold, nil
}

// acquire moves every seat Available -> Held in order, keeping a list of
// compensations. On the first conflict it undoes what it took and reports
// every requested seat that is not available right now.
func (s *holdService) acquire(ctx context.Context, seats []*entity.Seat) ([]uuid.UUID, error) {
	acquired := make([]uuid.UUID, 0, len(seats))

	for i, seat := range seats {
		ok, err := s.repo.Seat.TryTransition(ctx, seat.ID, entity.SeatStateAvailable, entity.SeatStateHeld)
		if err != nil {
			s.rollback(ctx, uuid.Nil, acquired)
			return nil, fmt.Errorf("acquire seat %s: %w", seat.ID, err)
		}
		if ok {
			acquired = append(acquired, seat.ID)
			continue
		}

		s.rollback(ctx, uuid.Nil, acquired)

		conflicts := []uuid.UUID{seat.ID}
		rest := make([]uuid.UUID, 0, len(seats)-i-1)
		for _, r := range seats[i+1:] {
			rest = append(rest, r.ID)
		}
		if len(rest) > 0 {
			current, err := s.repo.Seat.FindByIDs(ctx, rest)
			if err != nil {
				s.log.Warn("Failed to probe remaining seats", zap.Error(err))
			}
			for _, c := range current {
				if c.State != entity.SeatStateAvailable {
					conflicts = append(conflicts, c.ID)
				}
			}
		}
		return conflicts, nil
	}
	return nil, nil
}

func (s *holdService) rollback(ctx context.Context, holdID uuid.UUID, seatIDs []uuid.UUID) {
	if len(seatIDs) == 0 {
		return
	}
	if err := releaseSeats(ctx, s.repo.Seat, s.log, holdID, seatIDs); err != nil {
		s.log.Error("Failed to roll back seat acquisition",
			zap.Error(err),
			zap.Stringers("seat_ids", seatIDs),
		)
	}
}

func (s *holdService) CancelHold(ctx context.Context, holdID uuid.UUID) (bool, error) {
	hold, err := s.repo.Hold.FindByID(ctx, holdID)
	if err != nil {
		return false, fmt.Errorf("find hold: %w", err)
	}
	if hold == nil {
		return false, ErrHoldNotFound
	}
	if hold.Status.IsTerminal() {
		return false, nil
	}

	now := s.clock.Now()
	if hold.IsExpired(now) {
		// past its lifetime the hold belongs to the sweeper
		if _, err := s.sweeper.ExpireHold(ctx, hold, now); err != nil {
			return false, err
		}
		return false, nil
	}

	ok, err := s.repo.Hold.CompareAndSetStatus(ctx, holdID, entity.HoldStatusActive, entity.HoldStatusCancelled, now)
	if err != nil {
		return false, fmt.Errorf("cancel hold: %w", err)
	}
	if !ok {
		return false, nil
	}

	_ = releaseSeats(ctx, s.repo.Seat, s.log, hold.ID, hold.SeatIDs())

	hold.Status = entity.HoldStatusCancelled
	hold.ResolvedAt = &now
	s.notify.seatsChanged(ctx, hold.ShowtimeID)
	s.notify.holdEvent(ctx, event.TypeHoldCancelled, hold, nil, now)

	s.log.Info("Hold cancelled",
		zap.String("hold_id", hold.ID.String()),
		zap.String("showtime_id", hold.ShowtimeID.String()),
		zap.Int("seat_count", len(hold.Seats)),
	)
	return true, nil
}

func (s *holdService) GetHold(ctx context.Context, holdID uuid.UUID) (*entity.Hold, error) {
	hold, err := s.repo.Hold.FindByID(ctx, holdID)
	if err != nil {
		return nil, fmt.Errorf("find hold: %w", err)
	}
	if hold == nil {
		return nil, ErrHoldNotFound
	}

	now := s.clock.Now()
	if hold.Status == entity.HoldStatusActive && hold.IsExpired(now) {
		if _, err := s.sweeper.ExpireHold(ctx, hold, now); err != nil {
			s.log.Warn("Lazy expiry failed", zap.Error(err), zap.String("hold_id", holdID.String()))
			return hold, nil
		}
		if fresh, err := s.repo.Hold.FindByID(ctx, holdID); err == nil && fresh != nil {
			hold = fresh
		}
	}
	return hold, nil
}

func duplicateIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]int, len(ids))
	var dups []uuid.UUID
	for _, id := range ids {
		if seen[id] == 1 {
			dups = append(dups, id)
		}
		seen[id]++
	}
	return dups
}
