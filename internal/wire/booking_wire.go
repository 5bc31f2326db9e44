package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/confirm - turn an active hold into a ticket
	r.Post("/api/confirm", bookingHandler.ConfirmHold)

	// GET /api/tickets/{id} - ticket with seats and payment
	r.Get("/api/tickets/{id}", bookingHandler.GetTicket)
}
