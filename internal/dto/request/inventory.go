package request

type ScheduleShowtimeRequest struct {
	Seats []SeatInput `json:"seats" validate:"required,min=1,dive"`
}

type SeatInput struct {
	SeatRow    string `json:"seatRow" validate:"required,alpha,max=5"`
	SeatColumn int    `json:"seatColumn" validate:"required,min=1,max=999"`
	Class      string `json:"seatType" validate:"required,oneof=standard vip couple"`
	Price      int64  `json:"price" validate:"min=0"`
}

type UpdatePriceRequest struct {
	Price int64 `json:"price" validate:"min=0"`
}
