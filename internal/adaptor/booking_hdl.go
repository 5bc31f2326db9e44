package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// ConfirmHold handles POST /api/confirm
func (h *BookingHandler) ConfirmHold(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmHoldRequest
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

	info := req.CustomerInfo
	ticket, err := h.service.ConfirmHold(r.Context(), holdID, entity.CustomerInfo{
		Name:           info.Name,
		Email:          info.Email,
		Phone:          info.Phone,
		PaymentMethod:  info.PaymentMethod,
		TransactionRef: info.TransactionRef,
	})
	if err != nil {
		handleServiceError(w, h.log, err, "confirm hold")
		return
	}

	utils.ResponseCreated(w, "success", response.ConfirmResponse{Ticket: response.TicketToResponse(ticket)})
}

// GetTicket handles GET /api/tickets/{id}
func (h *BookingHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := parseID(w, chi.URLParam(r, "id"), "ticket id")
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), ticketID)
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", response.TicketToResponse(ticket))
}
