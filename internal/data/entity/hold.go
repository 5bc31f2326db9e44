package entity

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusConfirmed HoldStatus = "confirmed"
	HoldStatusExpired   HoldStatus = "expired"
	HoldStatusCancelled HoldStatus = "cancelled"
)

// IsTerminal reports whether the status can no longer change.
func (s HoldStatus) IsTerminal() bool {
	return s == HoldStatusConfirmed || s == HoldStatusExpired || s == HoldStatusCancelled
}

// HoldSeat is a seat owned by a hold, with its price captured when the hold
// was created.
type HoldSeat struct {
	SeatID     uuid.UUID `db:"seat_id"`
	SeatNumber string    `db:"seat_number"`
	Class      SeatClass `db:"seat_class"`
	Price      int64     `db:"price_cents"`
}

// Hold is one booking attempt in progress. While Active it exclusively owns
// its seats; exactly one terminal transition ends it.
type Hold struct {
	BaseSimple
	ShowtimeID uuid.UUID  `db:"showtime_id"`
	Seats      []HoldSeat `db:"-"`
	Status     HoldStatus `db:"status"`
	ExpiresAt  time.Time  `db:"expires_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
}

func (h *Hold) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(h.Seats))
	for i, s := range h.Seats {
		ids[i] = s.SeatID
	}
	return ids
}

func (h *Hold) TotalPrice() int64 {
	var total int64
	for _, s := range h.Seats {
		total += s.Price
	}
	return total
}

// IsExpired reports whether the hold's lifetime is over at now.
func (h *Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// Clone returns a deep copy safe to hand out of a store.
func (h *Hold) Clone() *Hold {
	c := *h
	c.Seats = append([]HoldSeat(nil), h.Seats...)
	if h.ResolvedAt != nil {
		at := *h.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}
