package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/event"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var startTime = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

const seatPrice int64 = 50000

type fixture struct {
	t          *testing.T
	ctx        context.Context
	clk        *clock.Manual
	repo       *repository.Repository
	svc        *Service
	events     *recordingPublisher
	cache      *mapCache
	showtimeID uuid.UUID
	seats      map[string]uuid.UUID
}

func testConfig() *utils.Config {
	return &utils.Config{
		Hold: utils.HoldConfig{
			TTL:           15 * time.Minute,
			SweepInterval: 30 * time.Second,
			SweepBatch:    100,
			LazyExpiry:    true,
		},
	}
}

// newFixture schedules one showtime with rows A and B, five seats each.
func newFixture(t *testing.T, opts ...func(*utils.Config)) *fixture {
	t.Helper()

	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		clk:        clock.NewManual(startTime),
		repo:       repository.NewMemoryRepository(zap.NewNop()),
		events:     &recordingPublisher{},
		cache:      newMapCache(),
		showtimeID: uuid.New(),
		seats:      make(map[string]uuid.UUID),
	}
	f.svc = NewService(f.repo, cfg, Dependencies{Clock: f.clk, Cache: f.cache, Events: f.events}, zap.NewNop())

	var inputs []request.SeatInput
	for _, row := range []string{"A", "B"} {
		for col := 1; col <= 5; col++ {
			inputs = append(inputs, request.SeatInput{SeatRow: row, SeatColumn: col, Class: "standard", Price: seatPrice})
		}
	}
	seats, err := f.svc.Inventory.ScheduleShowtime(f.ctx, f.showtimeID, &request.ScheduleShowtimeRequest{Seats: inputs})
	require.NoError(t, err)
	for _, s := range seats {
		f.seats[s.SeatNumber] = s.ID
	}
	return f
}

func (f *fixture) ids(labels ...string) []uuid.UUID {
	ids := make([]uuid.UUID, len(labels))
	for i, l := range labels {
		id, ok := f.seats[l]
		require.True(f.t, ok, "unknown seat %s", l)
		ids[i] = id
	}
	return ids
}

func (f *fixture) state(label string) entity.SeatState {
	seat, err := f.repo.Seat.FindByID(f.ctx, f.seats[label])
	require.NoError(f.t, err)
	require.NotNil(f.t, seat)
	return seat.State
}

func (f *fixture) hold(labels ...string) *entity.Hold {
	hold, err := f.svc.Hold.CreateHold(f.ctx, f.showtimeID, f.ids(labels...))
	require.NoError(f.t, err)
	return hold
}

func (f *fixture) storedHold(id uuid.UUID) *entity.Hold {
	hold, err := f.repo.Hold.FindByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, hold)
	return hold
}

func customer() entity.CustomerInfo {
	return entity.CustomerInfo{Name: "Sari", Email: "sari@example.com", Phone: "08123456789"}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.HoldEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload.(event.HoldEvent))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, payload any) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.deletes++
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// faultySeats refuses chosen transitions to simulate a corrupted inventory.
type faultySeats struct {
	repository.SeatRepository
	refuse func(seatID uuid.UUID, expected, next entity.SeatState) bool
}

func (f *faultySeats) TryTransition(ctx context.Context, seatID uuid.UUID, expected, next entity.SeatState) (bool, error) {
	if f.refuse(seatID, expected, next) {
		return false, nil
	}
	return f.SeatRepository.TryTransition(ctx, seatID, expected, next)
}

// failingHolds cannot store new holds.
type failingHolds struct {
	repository.HoldRepository
}

func (failingHolds) Create(ctx context.Context, hold *entity.Hold) error {
	return errors.New("disk full")
}
