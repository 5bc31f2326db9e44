package entity

import "github.com/google/uuid"

type CustomerInfo struct {
	Name           string  `db:"customer_name"`
	Email          string  `db:"customer_email"`
	Phone          string  `db:"customer_phone"`
	PaymentMethod  string  `db:"-"`
	TransactionRef *string `db:"-"`
}

// Ticket is the immutable result of confirming a hold.
type Ticket struct {
	BaseSimple
	Code       string       `db:"code"`
	HoldID     uuid.UUID    `db:"hold_id"`
	ShowtimeID uuid.UUID    `db:"showtime_id"`
	Customer   CustomerInfo `db:"-"`
	Seats      []HoldSeat   `db:"-"`
	TotalPrice int64        `db:"total_price_cents"`
	Payment    *Payment     `db:"-"`
}
