package response

import (
	"math"
	"time"

	"cinema-reservation/internal/data/entity"
)

// HoldCreatedResponse is the answer to a successful hold request.
type HoldCreatedResponse struct {
	HoldID     string    `json:"holdId"`
	TTLSeconds int64     `json:"ttlSeconds"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type HoldResponse struct {
	HoldID           string             `json:"holdId"`
	ShowtimeID       string             `json:"showtimeId"`
	Status           entity.HoldStatus  `json:"status"`
	SeatIDs          []string           `json:"seatIds"`
	Seats            []HoldSeatResponse `json:"seats"`
	TotalPrice       int64              `json:"totalPrice"`
	ExpiresAt        time.Time          `json:"expiresAt"`
	RemainingSeconds int64              `json:"remainingSeconds"`
	ResolvedAt       *time.Time         `json:"resolvedAt,omitempty"`
}

type HoldSeatResponse struct {
	SeatID     string `json:"seatId"`
	SeatNumber string `json:"seatNumber"`
	SeatType   string `json:"seatType"`
	Price      int64  `json:"price"`
}

type CancelResponse struct {
	Success bool `json:"success"`
}

type ConfirmResponse struct {
	Ticket TicketResponse `json:"ticket"`
}

type TicketResponse struct {
	TicketID   string             `json:"ticketId"`
	Code       string             `json:"code"`
	HoldID     string             `json:"holdId"`
	ShowtimeID string             `json:"showtimeId"`
	Customer   CustomerResponse   `json:"customer"`
	Seats      []HoldSeatResponse `json:"seats"`
	TotalPrice int64              `json:"totalPrice"`
	Payment    *PaymentResponse   `json:"payment,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type CustomerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type PaymentResponse struct {
	PaymentID      string               `json:"paymentId"`
	Amount         int64                `json:"amount"`
	Method         string               `json:"method"`
	Status         entity.PaymentStatus `json:"status"`
	TransactionRef *string              `json:"transactionRef,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// Helper converters

// TTLSeconds rounds up so a client never sees 0 for a live hold.
func TTLSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}

func HoldCreatedToResponse(hold *entity.Hold, now time.Time) HoldCreatedResponse {
	return HoldCreatedResponse{
		HoldID:     hold.ID.String(),
		TTLSeconds: TTLSeconds(hold.ExpiresAt.Sub(now)),
		ExpiresAt:  hold.ExpiresAt,
	}
}

func HoldSeatsToResponse(seats []entity.HoldSeat) []HoldSeatResponse {
	out := make([]HoldSeatResponse, len(seats))
	for i, s := range seats {
		out[i] = HoldSeatResponse{
			SeatID:     s.SeatID.String(),
			SeatNumber: s.SeatNumber,
			SeatType:   string(s.Class),
			Price:      s.Price,
		}
	}
	return out
}

func HoldToResponse(hold *entity.Hold, now time.Time) HoldResponse {
	var remaining int64
	if hold.Status == entity.HoldStatusActive {
		remaining = TTLSeconds(hold.ExpiresAt.Sub(now))
	}
	seatIDs := make([]string, len(hold.Seats))
	for i, s := range hold.Seats {
		seatIDs[i] = s.SeatID.String()
	}
	return HoldResponse{
		HoldID:           hold.ID.String(),
		ShowtimeID:       hold.ShowtimeID.String(),
		Status:           hold.Status,
		SeatIDs:          seatIDs,
		Seats:            HoldSeatsToResponse(hold.Seats),
		TotalPrice:       hold.TotalPrice(),
		ExpiresAt:        hold.ExpiresAt,
		RemainingSeconds: remaining,
		ResolvedAt:       hold.ResolvedAt,
	}
}

func TicketToResponse(ticket *entity.Ticket) TicketResponse {
	resp := TicketResponse{
		TicketID:   ticket.ID.String(),
		Code:       ticket.Code,
		HoldID:     ticket.HoldID.String(),
		ShowtimeID: ticket.ShowtimeID.String(),
		Customer: CustomerResponse{
			Name:  ticket.Customer.Name,
			Email: ticket.Customer.Email,
			Phone: ticket.Customer.Phone,
		},
		Seats:      HoldSeatsToResponse(ticket.Seats),
		TotalPrice: ticket.TotalPrice,
		CreatedAt:  ticket.CreatedAt,
	}
	if p := ticket.Payment; p != nil {
		resp.Payment = &PaymentResponse{
			PaymentID:      p.ID.String(),
			Amount:         p.Amount,
			Method:         p.Method,
			Status:         p.Status,
			TransactionRef: p.TransactionRef,
			CreatedAt:      p.CreatedAt,
		}
	}
	return resp
}
