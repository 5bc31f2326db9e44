package request

type CreateHoldRequest struct {
	ShowtimeID string   `json:"showtimeId" validate:"required,uuid"`
	SeatIDs    []string `json:"seatIds" validate:"required,min=1,max=20,dive,uuid"`
}

type CancelHoldRequest struct {
	HoldID string `json:"holdId" validate:"required,uuid"`
}

type ConfirmHoldRequest struct {
	HoldID       string              `json:"holdId" validate:"required,uuid"`
	CustomerInfo CustomerInfoRequest `json:"customerInfo" validate:"required"`
}

type CustomerInfoRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Email          string  `json:"email" validate:"required,email,max=255"`
	Phone          string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	PaymentMethod  string  `json:"paymentMethod,omitempty" validate:"omitempty,max=50"`
	TransactionRef *string `json:"transactionRef,omitempty" validate:"omitempty,max=100"`
}
