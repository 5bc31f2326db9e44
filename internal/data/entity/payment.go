package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	BaseSimple
	TicketID       uuid.UUID     `db:"ticket_id"`
	Amount         int64         `db:"amount_cents"`
	Method         string        `db:"method"`
	Status         PaymentStatus `db:"status"`
	TransactionRef *string       `db:"transaction_ref"`
}
