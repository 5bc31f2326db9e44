package adaptor

import (
	"cinema-reservation/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Seat    *SeatHandler
	Hold    *HoldHandler
	Booking *BookingHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Seat:    NewSeatHandler(service.Seat, log),
		Hold:    NewHoldHandler(service.Hold, service.Clock, log),
		Booking: NewBookingHandler(service.Booking, log),
		Admin:   NewAdminHandler(service.Inventory, service.Sweeper, service.Clock, log),
	}
}
