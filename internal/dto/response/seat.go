package response

import "cinema-reservation/internal/data/entity"

// Client facing seat status names.
const (
	SeatStatusAvailable = "Available"
	SeatStatusPending   = "Pending"
	SeatStatusBooked    = "Booked"
)

type SeatResponse struct {
	SeatID     string `json:"seatId"`
	SeatNumber string `json:"seatNumber"`
	SeatRow    string `json:"seatRow"`
	SeatColumn int    `json:"seatColumn"`
	SeatType   string `json:"seatType"`
	Price      int64  `json:"price"`
	Status     string `json:"status"`
}

func SeatStatus(state entity.SeatState) string {
	switch state {
	case entity.SeatStateHeld:
		return SeatStatusPending
	case entity.SeatStateBooked:
		return SeatStatusBooked
	default:
		return SeatStatusAvailable
	}
}

func SeatToResponse(seat *entity.Seat) SeatResponse {
	return SeatResponse{
		SeatID:     seat.ID.String(),
		SeatNumber: seat.SeatNumber,
		SeatRow:    seat.SeatRow,
		SeatColumn: seat.SeatColumn,
		SeatType:   string(seat.Class),
		Price:      seat.Price,
		Status:     SeatStatus(seat.State),
	}
}

type ScheduleResponse struct {
	ShowtimeID string         `json:"showtimeId"`
	Seats      []SeatResponse `json:"seats"`
}

type ShowtimeSummaryResponse struct {
	ShowtimeID string `json:"showtimeId"`
	Available  int    `json:"available"`
	Pending    int    `json:"pending"`
	Booked     int    `json:"booked"`
	Total      int    `json:"total"`
}

func SummaryToResponse(showtimeID string, counts map[entity.SeatState]int) ShowtimeSummaryResponse {
	s := ShowtimeSummaryResponse{
		ShowtimeID: showtimeID,
		Available:  counts[entity.SeatStateAvailable],
		Pending:    counts[entity.SeatStateHeld],
		Booked:     counts[entity.SeatStateBooked],
	}
	s.Total = s.Available + s.Pending + s.Booked
	return s
}

type RemoveShowtimeResponse struct {
	ShowtimeID   string `json:"showtimeId"`
	RemovedSeats int    `json:"removedSeats"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}
