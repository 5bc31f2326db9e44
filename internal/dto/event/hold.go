package event

import "time"

// Event types published on the booking topic/queue.
const (
	TypeHoldCreated   = "hold.created"
	TypeHoldCancelled = "hold.cancelled"
	TypeHoldExpired   = "hold.expired"
	TypeHoldConfirmed = "hold.confirmed"
)

// HoldEvent describes one hold lifecycle change. It is published after the
// change is committed; consumers must tolerate duplicates and reordering.
type HoldEvent struct {
	Type       string    `json:"type"`
	HoldID     string    `json:"holdId"`
	ShowtimeID string    `json:"showtimeId"`
	SeatIDs    []string  `json:"seatIds"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"totalPrice"`
	ExpiresAt  time.Time `json:"expiresAt"`
	TicketID   string    `json:"ticketId,omitempty"`
	TicketCode string    `json:"ticketCode,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
