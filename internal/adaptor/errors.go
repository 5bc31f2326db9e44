package adaptor

import (
	"errors"
	"net/http"

	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client facing messages per error code.
var errorMessages = map[usecase.ErrorCode]string{
	usecase.CodeSeatUnavailable:     "These seats are no longer available, please reselect",
	usecase.CodeHoldNotFound:        "Hold not found",
	usecase.CodeHoldExpired:         "Your seat hold expired, please select again",
	usecase.CodeHoldAlreadyResolved: "Hold already resolved",
	usecase.CodeIntegrityFault:      "Internal server error",
}

var errorStatus = map[usecase.ErrorCode]int{
	usecase.CodeSeatUnavailable:     http.StatusConflict,
	usecase.CodeHoldNotFound:        http.StatusNotFound,
	usecase.CodeHoldExpired:         http.StatusGone,
	usecase.CodeHoldAlreadyResolved: http.StatusConflict,
	usecase.CodeInvalidRequest:      http.StatusBadRequest,
	usecase.CodeIntegrityFault:      http.StatusInternalServerError,
	usecase.CodeNotFound:            http.StatusNotFound,
}

type seatErrorBody struct {
	Code    usecase.ErrorCode `json:"code"`
	SeatIDs []string          `json:"seatIds"`
}

// handleServiceError maps a service error onto the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var bErr *usecase.BookingError
	if !errors.As(err, &bErr) {
		log.Error(operation+" failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	status, ok := errorStatus[bErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	message, ok := errorMessages[bErr.Code]
	if !ok {
		message = bErr.Message
	}

	fields := []zap.Field{zap.Error(err), zap.String("operation", operation), zap.String("code", string(bErr.Code))}
	if status >= http.StatusInternalServerError {
		log.Error(operation+" failed", fields...)
	} else {
		log.Warn(operation+" rejected", fields...)
	}

	var details any
	if len(bErr.SeatIDs) > 0 {
		details = seatErrorBody{Code: bErr.Code, SeatIDs: uuidStrings(bErr.SeatIDs)}
	}
	utils.ResponseError(w, status, string(bErr.Code), message, details)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// parseID reads a uuid path or body value, answering 400 when malformed.
func parseID(w http.ResponseWriter, value, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		utils.ResponseError(w, http.StatusBadRequest, string(usecase.CodeInvalidRequest), "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func validationFailed(w http.ResponseWriter, errs any) {
	utils.ResponseError(w, http.StatusBadRequest, string(usecase.CodeInvalidRequest), "Validation failed", errs)
}

func invalidBody(w http.ResponseWriter) {
	utils.ResponseError(w, http.StatusBadRequest, string(usecase.CodeInvalidRequest), "Invalid request body", nil)
}
