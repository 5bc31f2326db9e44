package usecase

import (
	"context"
	"encoding/json"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/dto/event"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatCache stores rendered seat maps per showtime.
type SeatCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher ships booking events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte) error         { return nil }
func (noopCache) Delete(context.Context, ...string) error           { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

func seatMapKey(showtimeID uuid.UUID) string {
	return "seats:" + showtimeID.String()
}

const sideEffectTimeout = 3 * time.Second

// notifier runs the best-effort side effects of a state change. Failures are
// logged and never surface to the caller.
type notifier struct {
	cache  SeatCache
	events EventPublisher
	log    *zap.Logger
}

func (n *notifier) seatsChanged(ctx context.Context, showtimeID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := n.cache.Delete(ctx, seatMapKey(showtimeID)); err != nil {
		n.log.Warn("Failed to invalidate seat map cache",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
	}
}

func (n *notifier) cachedSeatMap(ctx context.Context, showtimeID uuid.UUID, out any) bool {
	data, ok, err := n.cache.Get(ctx, seatMapKey(showtimeID))
	if err != nil {
		n.log.Warn("Failed to read seat map cache",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (n *notifier) storeSeatMap(ctx context.Context, showtimeID uuid.UUID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := n.cache.Set(ctx, seatMapKey(showtimeID), data); err != nil {
		n.log.Warn("Failed to write seat map cache",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
	}
}

func (n *notifier) holdEvent(ctx context.Context, eventType string, hold *entity.Hold, ticket *entity.Ticket, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	seatIDs := make([]string, len(hold.Seats))
	for i, s := range hold.Seats {
		seatIDs[i] = s.SeatID.String()
	}

	evt := event.HoldEvent{
		Type:       eventType,
		HoldID:     hold.ID.String(),
		ShowtimeID: hold.ShowtimeID.String(),
		SeatIDs:    seatIDs,
		Status:     string(hold.Status),
		TotalPrice: hold.TotalPrice(),
		ExpiresAt:  hold.ExpiresAt,
		OccurredAt: at,
	}
	if ticket != nil {
		evt.TicketID = ticket.ID.String()
		evt.TicketCode = ticket.Code
	}

	if err := n.events.Publish(ctx, hold.ID.String(), evt); err != nil {
		n.log.Warn("Failed to publish hold event",
			zap.Error(err),
			zap.String("type", eventType),
			zap.String("hold_id", hold.ID.String()),
		)
	}
}
