package adaptor

import (
	"net/http"

	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type SeatHandler struct {
	service usecase.SeatService
	log     *zap.Logger
}

func NewSeatHandler(service usecase.SeatService, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		service: service,
		log:     log.With(zap.String("handler", "seat")),
	}
}

// ListSeats handles GET /api/seats?showtimeId=
func (h *SeatHandler) ListSeats(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("showtimeId")
	if raw == "" {
		utils.ResponseError(w, http.StatusBadRequest, string(usecase.CodeInvalidRequest), "showtimeId is required", nil)
		return
	}
	showtimeID, ok := parseID(w, raw, "showtimeId")
	if !ok {
		return
	}

	seats, err := h.service.ListSeats(r.Context(), showtimeID)
	if err != nil {
		handleServiceError(w, h.log, err, "list seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}
