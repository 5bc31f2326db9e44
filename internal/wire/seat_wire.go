package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSeat(r chi.Router, seatHandler *adaptor.SeatHandler) {
	// GET /api/seats?showtimeId= - seat map of one showtime
	r.Get("/api/seats", seatHandler.ListSeats)
}
