package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/event"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpirySweeper is the only actor that moves holds Active -> Expired.
type ExpirySweeper interface {
	// SweepExpired expires every Active hold with expiry <= now and
	// recovers orphaned held seats. It returns the number of holds expired.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	SweepShowtime(ctx context.Context, showtimeID uuid.UUID, now time.Time) (int, error)
	// ExpireHold reports false when the hold is not yet due or another
	// terminal transition won.
	ExpireHold(ctx context.Context, hold *entity.Hold, now time.Time) (bool, error)
	// Run sweeps on every tick of the injected clock until ctx is done.
	Run(ctx context.Context)
}

type expirySweeper struct {
	repo     *repository.Repository
	clock    clock.Clock
	interval time.Duration
	batch    int
	ttl      time.Duration
	notify   *notifier
	log      *zap.Logger
}

func newExpirySweeper(repo *repository.Repository, config utils.HoldConfig, clk clock.Clock, notify *notifier, log *zap.Logger) ExpirySweeper {
	return &expirySweeper{
		repo:     repo,
		clock:    clk,
		interval: config.SweepInterval,
		batch:    config.SweepBatch,
		ttl:      config.TTL,
		notify:   notify,
		log:      log.With(zap.String("service", "expiry")),
	}
}

func (s *expirySweeper) ExpireHold(ctx context.Context, hold *entity.Hold, now time.Time) (bool, error) {
	if hold.Status != entity.HoldStatusActive || !hold.IsExpired(now) {
		return false, nil
	}

	ok, err := s.repo.Hold.CompareAndSetStatus(ctx, hold.ID, entity.HoldStatusActive, entity.HoldStatusExpired, now)
	if err != nil {
		return false, fmt.Errorf("expire hold %s: %w", hold.ID, err)
	}
	if !ok {
		// confirm or cancel got there first
		return false, nil
	}

	// the hold is Expired from here on; a failed release is logged inside
	// and recovered by the orphan pass
	_ = releaseSeats(ctx, s.repo.Seat, s.log, hold.ID, hold.SeatIDs())

	expired := hold.Clone()
	expired.Status = entity.HoldStatusExpired
	expired.ResolvedAt = &now

	s.notify.seatsChanged(ctx, hold.ShowtimeID)
	s.notify.holdEvent(ctx, event.TypeHoldExpired, expired, nil, now)

	s.log.Info("Hold expired",
		zap.String("hold_id", hold.ID.String()),
		zap.String("showtime_id", hold.ShowtimeID.String()),
		zap.Int("seat_count", len(hold.Seats)),
		zap.Time("expires_at", hold.ExpiresAt),
	)
	return true, nil
}

func (s *expirySweeper) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	for {
		holds, err := s.repo.Hold.FindExpired(ctx, now, s.batch)
		if err != nil {
			return expired, fmt.Errorf("find expired holds: %w", err)
		}

		progressed := 0
		for _, hold := range holds {
			ok, err := s.ExpireHold(ctx, hold, now)
			if err != nil {
				s.log.Error("Failed to expire hold",
					zap.Error(err),
					zap.String("hold_id", hold.ID.String()),
				)
				continue
			}
			progressed++
			if ok {
				expired++
			}
		}

		// stop on a short page, or when nothing moved so a failing hold
		// cannot spin the loop
		if len(holds) < s.batch || progressed == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return expired, err
		}
	}

	released, err := s.repo.Seat.ReleaseOrphaned(ctx, now.Add(-s.ttl))
	if err != nil {
		return expired, fmt.Errorf("release orphaned seats: %w", err)
	}
	if released > 0 {
		s.log.Warn("Released orphaned held seats", zap.Int("count", released))
	}

	return expired, nil
}

func (s *expirySweeper) SweepShowtime(ctx context.Context, showtimeID uuid.UUID, now time.Time) (int, error) {
	holds, err := s.repo.Hold.FindExpiredByShowtime(ctx, showtimeID, now)
	if err != nil {
		return 0, fmt.Errorf("find expired holds of showtime %s: %w", showtimeID, err)
	}

	expired := 0
	for _, hold := range holds {
		ok, err := s.ExpireHold(ctx, hold, now)
		if err != nil {
			return expired, err
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

func (s *expirySweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Expiry sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C():
			n, err := s.SweepExpired(ctx, s.clock.Now())
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.log.Error("Sweep failed", zap.Error(err), zap.Int("expired", n))
				continue
			}
			if n > 0 {
				s.log.Info("Sweep completed", zap.Int("expired", n))
			} else {
				s.log.Debug("Sweep completed", zap.Int("expired", 0))
			}
		}
	}
}
