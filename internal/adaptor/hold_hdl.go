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

type HoldHandler struct {
	service usecase.HoldService
	clock   clock.Clock
	log     *zap.Logger
}

func NewHoldHandler(service usecase.HoldService, clk clock.Clock, log *zap.Logger) *HoldHandler {
	return &HoldHandler{
		service: service,
		clock:   clk,
		log:     log.With(zap.String("handler", "hold")),
	}
}

// CreateHold handles POST /api/hold
func (h *HoldHandler) CreateHold(w http.ResponseWriter, r *http.Request) {
	var req request.CreateHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		validationFailed(w, validationErrors)
		return
	}

	showtimeID, ok := parseID(w, req.ShowtimeID, "showtimeId")
	if !ok {
		return
	}
	seatIDs, err := utils.ParseUUIDs(req.SeatIDs)
	if err != nil {
		utils.ResponseError(w, http.StatusBadRequest, string(usecase.CodeInvalidRequest), err.Error(), nil)
		return
	}

	hold, err := h.service.CreateHold(r.Context(), showtimeID, seatIDs)
	if err != nil {
		handleServiceError(w, h.log, err, "create hold")
		return
	}

	utils.ResponseCreated(w, "success", response.HoldCreatedToResponse(hold, h.clock.Now()))
}

// CancelHold handles POST /api/cancel
func (h *HoldHandler) CancelHold(w http.ResponseWriter, r *http.Request) {
	var req request.CancelHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		validationFailed(w, validationErrors)
		return
	}

	holdID, ok := parseID(w, req.HoldID, "holdId")
	if !ok {
		return
	}

	cancelled, err := h.service.CancelHold(r.Context(), holdID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel hold")
		return
	}

	utils.ResponseSuccess(w, "success", response.CancelResponse{Success: cancelled})
}

// GetHold handles GET /api/holds/{id}
func (h *HoldHandler) GetHold(w http.ResponseWriter, r *http.Request) {
	holdID, ok := parseID(w, chi.URLParam(r, "id"), "hold id")
	if !ok {
		return
	}

	hold, err := h.service.GetHold(r.Context(), holdID)
	if err != nil {
		handleServiceError(w, h.log, err, "get hold")
		return
	}

	utils.ResponseSuccess(w, "success", response.HoldToResponse(hold, h.clock.Now()))
}
