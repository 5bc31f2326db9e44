package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/event"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfirmHold_Success(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("A1", "A2")
	f.clk.Advance(5 * time.Minute)

	ticket, err := f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())
	require.NoError(t, err)

	assert.Equal(t, hold.ID, ticket.HoldID)
	assert.Equal(t, 2*seatPrice, ticket.TotalPrice)
	assert.Regexp(t, `^TCK-\d{8}-\d{6}-\d{4}$`, ticket.Code)
	require.NotNil(t, ticket.Payment)
	assert.Equal(t, entity.PaymentStatusCompleted, ticket.Payment.Status)
	assert.Equal(t, ticket.TotalPrice, ticket.Payment.Amount)
	assert.Equal(t, defaultPaymentMethod, ticket.Payment.Method)
	require.NotNil(t, ticket.Payment.TransactionRef)

	assert.Equal(t, entity.HoldStatusConfirmed, f.storedHold(hold.ID).Status)
	assert.Equal(t, entity.SeatStateBooked, f.state("A1"))
	assert.Equal(t, entity.SeatStateBooked, f.state("A2"))

	stored, err := f.svc.Booking.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Code, stored.Code)
	assert.Equal(t, ticket.Seats, stored.Seats)
	require.NotNil(t, stored.Payment)
	assert.Equal(t, ticket.Payment.ID, stored.Payment.ID)

	assert.Equal(t, []string{event.TypeHoldCreated, event.TypeHoldConfirmed}, f.events.types())
}

func TestConfirmHold_UsesClientPaymentDetails(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("B2")
	ref := "VA-889123"
	info := customer()
	info.PaymentMethod = "virtual_account"
	info.TransactionRef = &ref

	ticket, err := f.svc.Booking.ConfirmHold(f.ctx, hold.ID, info)

	require.NoError(t, err)
	assert.Equal(t, "virtual_account", ticket.Payment.Method)
	assert.Equal(t, &ref, ticket.Payment.TransactionRef)
}

func TestConfirmHold_Unknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Booking.ConfirmHold(f.ctx, uuid.New(), customer())

	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestConfirmHold_AfterCancel(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("A3")
	_, err := f.svc.Hold.CancelHold(f.ctx, hold.ID)
	require.NoError(t, err)

	_, err = f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())

	assert.ErrorIs(t, err, ErrHoldAlreadyResolved)
	assert.Equal(t, entity.SeatStateAvailable, f.state("A3"))
}

func TestConfirmHold_Twice(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("A3")
	_, err := f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())
	require.NoError(t, err)

	_, err = f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())

	assert.ErrorIs(t, err, ErrHoldAlreadyResolved)
}

func TestConfirmHold_AfterSweepReturnsExpired(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("B1")

	f.clk.Advance(16 * time.Minute)
	n, err := f.svc.Sweeper.SweepExpired(f.ctx, f.clk.Now())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())

	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Equal(t, entity.SeatStateAvailable, f.state("B1"))
}

func TestConfirmHold_LapsedHoldIsNeverConfirmed(t *testing.T) {
	for _, past := range []time.Duration{15 * time.Minute, 15*time.Minute + time.Nanosecond, 3 * time.Hour} {
		t.Run(past.String(), func(t *testing.T) {
			f := newFixture(t)
			hold := f.hold("B1", "B2")
			f.clk.Advance(past)

			_, err := f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())

			assert.ErrorIs(t, err, ErrHoldExpired)
			assert.Equal(t, entity.HoldStatusExpired, f.storedHold(hold.ID).Status)
			assert.Equal(t, entity.SeatStateAvailable, f.state("B1"))
			assert.Equal(t, entity.SeatStateAvailable, f.state("B2"))
		})
	}
}

func TestConfirmHold_PriceSnapshot(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("A1")

	_, err := f.svc.Inventory.UpdateSeatPrice(f.ctx, f.seats["A1"], 99000)
	require.NoError(t, err)

	ticket, err := f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())

	require.NoError(t, err)
	assert.Equal(t, seatPrice, ticket.TotalPrice)
	assert.Equal(t, seatPrice, ticket.Seats[0].Price)
}

func TestConfirmHold_IntegrityFault(t *testing.T) {
	f := newFixture(t)
	hold := f.hold("A1", "A2")
	f.repo.Seat = &faultySeats{
		SeatRepository: f.repo.Seat,
		refuse: func(id uuid.UUID, expected, next entity.SeatState) bool {
			return next == entity.SeatStateBooked
		},
	}

	_, err := f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())

	require.ErrorIs(t, err, ErrIntegrityFault)
	var bErr *BookingError
	require.True(t, errors.As(err, &bErr))
	assert.Len(t, bErr.SeatIDs, 1)
}

func TestConfirmHold_ConcurrentWithCancel(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 25; i++ {
		hold := f.hold("A1", "A2")

		var (
			wg         sync.WaitGroup
			confirmErr error
			cancelled  bool
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())
		}()
		go func() {
			defer wg.Done()
			var err error
			cancelled, err = f.svc.Hold.CancelHold(f.ctx, hold.ID)
			assert.NoError(t, err)
		}()
		wg.Wait()

		confirmed := confirmErr == nil
		require.NotEqual(t, confirmed, cancelled, "exactly one terminal transition wins")
		if confirmed {
			assert.Equal(t, entity.SeatStateBooked, f.state("A1"))
			return
		}
		assert.ErrorIs(t, confirmErr, ErrHoldAlreadyResolved)
		assert.Equal(t, entity.SeatStateAvailable, f.state("A1"))
		assert.Equal(t, entity.SeatStateAvailable, f.state("A2"))
	}
}

func TestConfirmHold_ConcurrentWithSweeper(t *testing.T) {
	labels := []string{"A1", "A2", "A3", "A4", "A5", "B1", "B2", "B3", "B4", "B5"}
	f := newFixture(t)

	for _, label := range labels {
		hold := f.hold(label)
		due := hold.ExpiresAt

		var (
			wg         sync.WaitGroup
			confirmErr error
			expired    bool
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = f.svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())
		}()
		go func() {
			defer wg.Done()
			var err error
			expired, err = f.svc.Sweeper.ExpireHold(f.ctx, hold, due)
			assert.NoError(t, err)
		}()
		wg.Wait()

		stored := f.storedHold(hold.ID)
		if confirmErr == nil {
			assert.False(t, expired)
			assert.Equal(t, entity.HoldStatusConfirmed, stored.Status)
			assert.Equal(t, entity.SeatStateBooked, f.state(label))
		} else {
			assert.True(t, expired)
			assert.ErrorIs(t, confirmErr, ErrHoldExpired)
			assert.Equal(t, entity.HoldStatusExpired, stored.Status)
			assert.Equal(t, entity.SeatStateAvailable, f.state(label))
		}
	}
}

func TestConfirmHold_PublishFailureDoesNotFailRequest(t *testing.T) {
	repo := repository.NewMemoryRepository(zap.NewNop())
	clk := clock.NewManual(startTime)
	events := &mockPublisher{}
	events.On("Publish", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("event.HoldEvent")).
		Return(errors.New("broker unavailable"))

	svc := NewService(repo, testConfig(), Dependencies{Clock: clk, Events: events}, zap.NewNop())
	f := &fixture{t: t, ctx: t.Context(), clk: clk, repo: repo, svc: svc, showtimeID: uuid.New(), seats: map[string]uuid.UUID{}}
	seatID := uuid.New()
	require.NoError(t, repo.Seat.CreateBatch(f.ctx, []*entity.Seat{{
		BaseNoDelete: entity.BaseNoDelete{ID: seatID},
		ShowtimeID:   f.showtimeID,
		SeatNumber:   "C1",
		SeatRow:      "C",
		SeatColumn:   1,
		Class:        entity.SeatClassVIP,
		Price:        80000,
		State:        entity.SeatStateAvailable,
	}}))

	hold, err := svc.Hold.CreateHold(f.ctx, f.showtimeID, []uuid.UUID{seatID})
	require.NoError(t, err)
	ticket, err := svc.Booking.ConfirmHold(f.ctx, hold.ID, customer())
	require.NoError(t, err)
	assert.Equal(t, int64(80000), ticket.TotalPrice)

	events.AssertNumberOfCalls(t, "Publish", 2)
	events.AssertCalled(t, "Publish", mock.Anything, hold.ID.String(), mock.MatchedBy(func(e event.HoldEvent) bool {
		return e.Type == event.TypeHoldConfirmed && e.TicketID == ticket.ID.String()
	}))
}

func TestGetTicket_Unknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Booking.GetTicket(f.ctx, uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
}
