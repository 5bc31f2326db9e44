package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	CodeSeatUnavailable     ErrorCode = "SeatUnavailable"
	CodeHoldNotFound        ErrorCode = "HoldNotFound"
	CodeHoldExpired         ErrorCode = "HoldExpired"
	CodeHoldAlreadyResolved ErrorCode = "HoldAlreadyResolved"
	CodeInvalidRequest      ErrorCode = "InvalidRequest"
	CodeIntegrityFault      ErrorCode = "IntegrityFault"
	CodeNotFound            ErrorCode = "NotFound"
)

// BookingError is the typed outcome of a rejected booking operation.
// errors.Is matches on Code, so callers can compare against the sentinels.
type BookingError struct {
	Code    ErrorCode
	Message string
	SeatIDs []uuid.UUID
	Err     error
}

func (e *BookingError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.SeatIDs) > 0 {
		ids := make([]string, len(e.SeatIDs))
		for i, id := range e.SeatIDs {
			ids[i] = id.String()
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(ids, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BookingError) Unwrap() error { return e.Err }

func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

var (
	ErrSeatUnavailable     = &BookingError{Code: CodeSeatUnavailable, Message: "seats are no longer available"}
	ErrHoldNotFound        = &BookingError{Code: CodeHoldNotFound, Message: "hold not found"}
	ErrHoldExpired         = &BookingError{Code: CodeHoldExpired, Message: "hold expired"}
	ErrHoldAlreadyResolved = &BookingError{Code: CodeHoldAlreadyResolved, Message: "hold already resolved"}
	ErrInvalidRequest      = &BookingError{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrIntegrityFault      = &BookingError{Code: CodeIntegrityFault, Message: "seat state integrity fault"}
	ErrNotFound            = &BookingError{Code: CodeNotFound, Message: "not found"}
)

func newError(code ErrorCode, format string, args ...any) *BookingError {
	return &BookingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func seatUnavailable(seatIDs []uuid.UUID) *BookingError {
	return &BookingError{
		Code:    CodeSeatUnavailable,
		Message: "seats are no longer available, please reselect",
		SeatIDs: seatIDs,
	}
}

func invalidSeats(message string, seatIDs []uuid.UUID) *BookingError {
	return &BookingError{Code: CodeInvalidRequest, Message: message, SeatIDs: seatIDs}
}
