package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireHold(r chi.Router, holdHandler *adaptor.HoldHandler, limiter *middleware.RateLimiter) {
	// POST /api/hold - reserve seats for the hold TTL, limited per client
	r.With(limiter.Handler).Post("/api/hold", holdHandler.CreateHold)

	// POST /api/cancel - release a hold early
	r.Post("/api/cancel", holdHandler.CancelHold)

	// GET /api/holds/{id} - hold status and server side countdown
	r.Get("/api/holds/{id}", holdHandler.GetHold)
}
