package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler) {
	r.Route("/api/admin", func(r chi.Router) {
		// Showtime inventory
		r.Post("/showtimes/{id}/seats", adminHandler.ScheduleShowtime)
		r.Get("/showtimes/{id}", adminHandler.ShowtimeSummary)
		r.Delete("/showtimes/{id}", adminHandler.RemoveShowtime)

		// PUT /api/admin/seats/{id}/price - applies to holds created afterwards
		r.Put("/seats/{id}/price", adminHandler.UpdateSeatPrice)

		// POST /api/admin/sweep - run one expiry pass now
		r.Post("/sweep", adminHandler.Sweep)
	})
}
