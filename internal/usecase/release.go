package usecase

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// releaseSeats moves seats Held -> Available in reverse acquisition order.
// Every seat is attempted even when an earlier one fails. Seats found in any
// other state are reported as an integrity fault.
func releaseSeats(ctx context.Context, seats repository.SeatRepository, log *zap.Logger, holdID uuid.UUID, seatIDs []uuid.UUID) error {
	// compensation must finish even if the caller went away
	ctx = context.WithoutCancel(ctx)

	var (
		faults   []uuid.UUID
		firstErr error
	)
	for i := len(seatIDs) - 1; i >= 0; i-- {
		id := seatIDs[i]
		ok, err := seats.TryTransition(ctx, id, entity.SeatStateHeld, entity.SeatStateAvailable)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("release seat %s: %w", id, err)
			}
			continue
		}
		if !ok {
			faults = append(faults, id)
		}
	}

	if len(faults) > 0 {
		log.Error("Integrity fault: seat owned by hold was not held",
			zap.String("hold_id", holdID.String()),
			zap.Stringers("seat_ids", faults),
			zap.Stack("stack"),
		)
		return &BookingError{
			Code:    CodeIntegrityFault,
			Message: "seat owned by hold was not held",
			SeatIDs: faults,
			Err:     firstErr,
		}
	}
	if firstErr != nil {
		log.Error("Failed to release seats",
			zap.Error(firstErr),
			zap.String("hold_id", holdID.String()),
		)
	}
	return firstErr
}
