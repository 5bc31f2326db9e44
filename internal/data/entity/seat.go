package entity

import "github.com/google/uuid"

// SeatState is the reservation state of a seat for its showtime.
// Allowed transitions: available -> held -> booked, held -> available.
type SeatState string

const (
	SeatStateAvailable SeatState = "available"
	SeatStateHeld      SeatState = "held"
	SeatStateBooked    SeatState = "booked"
)

func (s SeatState) Valid() bool {
	switch s {
	case SeatStateAvailable, SeatStateHeld, SeatStateBooked:
		return true
	}
	return false
}

type SeatClass string

const (
	SeatClassStandard SeatClass = "standard"
	SeatClassVIP      SeatClass = "vip"
	SeatClassCouple   SeatClass = "couple"
)

// Seat is one seat of one showtime. Identity fields never change after the
// showtime is scheduled; State and Version move with every transition.
type Seat struct {
	BaseNoDelete
	ShowtimeID uuid.UUID `db:"showtime_id"`
	SeatNumber string    `db:"seat_number"` // A1, A2, B1, etc.
	SeatRow    string    `db:"seat_row"`    // A, B, C, etc.
	SeatColumn int       `db:"seat_column"` // 1, 2, 3, etc.
	Class      SeatClass `db:"seat_class"`
	Price      int64     `db:"price_cents"`
	State      SeatState `db:"status"`
	Version    int64     `db:"version"`
}
