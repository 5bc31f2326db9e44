package usecase

import (
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Hold      HoldService
	Booking   BookingService
	Sweeper   ExpirySweeper
	Seat      SeatService
	Inventory InventoryService
	Clock     clock.Clock
}

// Dependencies are the outside collaborators of the services. Zero values
// fall back to the system clock, no cache and no events.
type Dependencies struct {
	Clock  clock.Clock
	Cache  SeatCache
	Events EventPublisher
}

func NewService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) *Service {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Cache == nil {
		deps.Cache = noopCache{}
	}
	if deps.Events == nil {
		deps.Events = noopPublisher{}
	}

	notify := &notifier{
		cache:  deps.Cache,
		events: deps.Events,
		log:    log.With(zap.String("service", "notify")),
	}
	sweeper := newExpirySweeper(repo, config.Hold, deps.Clock, notify, log)

	return &Service{
		Hold:      newHoldService(repo, sweeper, config.Hold, deps.Clock, notify, log),
		Booking:   newBookingService(repo, sweeper, deps.Clock, notify, log),
		Sweeper:   sweeper,
		Seat:      newSeatService(repo, sweeper, deps.Clock, config.Hold.LazyExpiry, notify, log),
		Inventory: newInventoryService(repo, deps.Clock, notify, log),
		Clock:     deps.Clock,
	}
}
