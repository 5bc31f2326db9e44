package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	inventory usecase.InventoryService
	sweeper   usecase.ExpirySweeper
	clock     clock.Clock
	log       *zap.Logger
}

func NewAdminHandler(inventory usecase.InventoryService, sweeper usecase.ExpirySweeper, clk clock.Clock, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		inventory: inventory,
		sweeper:   sweeper,
		clock:     clk,
		log:       log.With(zap.String("handler", "admin")),
	}
}

// ScheduleShowtime handles POST /api/admin/showtimes/{id}/seats
func (h *AdminHandler) ScheduleShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, ok := parseID(w, chi.URLParam(r, "id"), "showtime id")
	if !ok {
		return
	}

	var req request.ScheduleShowtimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		validationFailed(w, validationErrors)
		return
	}

	seats, err := h.inventory.ScheduleShowtime(r.Context(), showtimeID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "schedule showtime")
		return
	}

	resp := response.ScheduleResponse{
		ShowtimeID: showtimeID.String(),
		Seats:      make([]response.SeatResponse, len(seats)),
	}
	for i, seat := range seats {
		resp.Seats[i] = response.SeatToResponse(seat)
	}
	utils.ResponseCreated(w, "success", resp)
}

// RemoveShowtime handles DELETE /api/admin/showtimes/{id}
func (h *AdminHandler) RemoveShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, ok := parseID(w, chi.URLParam(r, "id"), "showtime id")
	if !ok {
		return
	}

	removed, err := h.inventory.RemoveShowtime(r.Context(), showtimeID)
	if err != nil {
		handleServiceError(w, h.log, err, "remove showtime")
		return
	}

	utils.ResponseSuccess(w, "success", response.RemoveShowtimeResponse{
		ShowtimeID:   showtimeID.String(),
		RemovedSeats: removed,
	})
}

// ShowtimeSummary handles GET /api/admin/showtimes/{id}
func (h *AdminHandler) ShowtimeSummary(w http.ResponseWriter, r *http.Request) {
	showtimeID, ok := parseID(w, chi.URLParam(r, "id"), "showtime id")
	if !ok {
		return
	}

	counts, err := h.inventory.Summary(r.Context(), showtimeID)
	if err != nil {
		handleServiceError(w, h.log, err, "showtime summary")
		return
	}

	utils.ResponseSuccess(w, "success", response.SummaryToResponse(showtimeID.String(), counts))
}

// UpdateSeatPrice handles PUT /api/admin/seats/{id}/price
func (h *AdminHandler) UpdateSeatPrice(w http.ResponseWriter, r *http.Request) {
	seatID, ok := parseID(w, chi.URLParam(r, "id"), "seat id")
	if !ok {
		return
	}

	var req request.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		validationFailed(w, validationErrors)
		return
	}

	seat, err := h.inventory.UpdateSeatPrice(r.Context(), seatID, req.Price)
	if err != nil {
		handleServiceError(w, h.log, err, "update seat price")
		return
	}

	utils.ResponseSuccess(w, "success", response.SeatToResponse(seat))
}

// Sweep handles POST /api/admin/sweep
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	expired, err := h.sweeper.SweepExpired(r.Context(), h.clock.Now())
	if err != nil {
		handleServiceError(w, h.log, err, "sweep")
		return
	}

	utils.ResponseSuccess(w, "success", response.SweepResponse{Expired: expired})
}
