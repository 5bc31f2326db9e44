package repository

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seat state and version share one word so a transition is a single CAS:
// bits 0-1 hold the state code, the rest the version.
const (
	stateBits = 2
	stateMask = 1<<stateBits - 1
)

var stateCodes = map[entity.SeatState]uint64{
	entity.SeatStateAvailable: 0,
	entity.SeatStateHeld:      1,
	entity.SeatStateBooked:    2,
}

var codeStates = [...]entity.SeatState{
	entity.SeatStateAvailable,
	entity.SeatStateHeld,
	entity.SeatStateBooked,
}

type memorySeat struct {
	seat      entity.Seat // identity fields only, never mutated after insert
	word      atomic.Uint64
	price     atomic.Int64
	updatedAt atomic.Int64
}

func (m *memorySeat) snapshot() *entity.Seat {
	s := m.seat
	w := m.word.Load()
	s.State = codeStates[w&stateMask]
	s.Version = int64(w >> stateBits)
	s.Price = m.price.Load()
	s.UpdatedAt = time.Unix(0, m.updatedAt.Load()).UTC()
	return &s
}

type memorySeatRepository struct {
	// mu guards the maps. Transitions only take the read lock; the seat word
	// itself is updated with atomics.
	mu         sync.RWMutex
	seats      map[uuid.UUID]*memorySeat
	byShowtime map[uuid.UUID][]*memorySeat
	log        *zap.Logger
}

func NewMemorySeatRepository(log *zap.Logger) SeatRepository {
	return &memorySeatRepository{
		seats:      make(map[uuid.UUID]*memorySeat),
		byShowtime: make(map[uuid.UUID][]*memorySeat),
		log:        log.With(zap.String("repository", "seat_memory")),
	}
}

func (r *memorySeatRepository) ListByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]*entity.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byShowtime[showtimeID]
	seats := make([]*entity.Seat, 0, len(list))
	for _, m := range list {
		seats = append(seats, m.snapshot())
	}
	return seats, nil
}

func (r *memorySeatRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.seats[id]
	if !ok {
		return nil, nil
	}
	return m.snapshot(), nil
}

func (r *memorySeatRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error) {
	r.mu.RLock()
	seats := make([]*entity.Seat, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if m, ok := r.seats[id]; ok {
			seats = append(seats, m.snapshot())
		}
	}
	r.mu.RUnlock()

	sort.Slice(seats, func(i, j int) bool {
		return bytes.Compare(seats[i].ID[:], seats[j].ID[:]) < 0
	})
	return seats, nil
}

func (r *memorySeatRepository) TryTransition(ctx context.Context, seatID uuid.UUID, expected, next entity.SeatState) (bool, error) {
	from, ok := stateCodes[expected]
	if !ok {
		return false, fmt.Errorf("invalid seat state %q", expected)
	}
	to, ok := stateCodes[next]
	if !ok {
		return false, fmt.Errorf("invalid seat state %q", next)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.seats[seatID]
	if !ok {
		return false, nil
	}

	for {
		w := m.word.Load()
		if w&stateMask != from {
			return false, nil
		}
		nw := ((w>>stateBits)+1)<<stateBits | to
		if m.word.CompareAndSwap(w, nw) {
			m.updatedAt.Store(time.Now().UnixNano())
			return true, nil
		}
	}
}

func (r *memorySeatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make(map[uuid.UUID]map[string]struct{})
	label := func(showtimeID uuid.UUID) map[string]struct{} {
		set, ok := labels[showtimeID]
		if !ok {
			set = make(map[string]struct{})
			for _, m := range r.byShowtime[showtimeID] {
				set[m.seat.SeatNumber] = struct{}{}
			}
			labels[showtimeID] = set
		}
		return set
	}

	// validate everything first so a failed batch leaves no trace
	for _, s := range seats {
		if _, exists := r.seats[s.ID]; exists {
			return fmt.Errorf("failed to create seats: duplicate seat id %s", s.ID)
		}
		if _, ok := stateCodes[s.State]; !ok {
			return fmt.Errorf("failed to create seats: invalid state %q", s.State)
		}
		set := label(s.ShowtimeID)
		if _, dup := set[s.SeatNumber]; dup {
			return fmt.Errorf("failed to create seats: duplicate seat number %s", s.SeatNumber)
		}
		set[s.SeatNumber] = struct{}{}
	}

	touched := make(map[uuid.UUID]struct{})
	for _, s := range seats {
		m := &memorySeat{seat: *s}
		m.word.Store(uint64(s.Version)<<stateBits | stateCodes[s.State])
		m.price.Store(s.Price)
		m.updatedAt.Store(s.UpdatedAt.UnixNano())
		r.seats[s.ID] = m
		r.byShowtime[s.ShowtimeID] = append(r.byShowtime[s.ShowtimeID], m)
		touched[s.ShowtimeID] = struct{}{}
	}

	for showtimeID := range touched {
		list := r.byShowtime[showtimeID]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].seat.SeatRow != list[j].seat.SeatRow {
				return list[i].seat.SeatRow < list[j].seat.SeatRow
			}
			return list[i].seat.SeatColumn < list[j].seat.SeatColumn
		})
	}

	r.log.Debug("Seats created", zap.Int("count", len(seats)))
	return nil
}

func (r *memorySeatRepository) DeleteByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error) {
	// the write lock excludes every in-flight transition
	r.mu.Lock()
	defer r.mu.Unlock()

	var busy []uuid.UUID
	list := r.byShowtime[showtimeID]
	for _, m := range list {
		if m.word.Load()&stateMask != stateCodes[entity.SeatStateAvailable] {
			busy = append(busy, m.seat.ID)
		}
	}
	if len(busy) > 0 {
		sort.Slice(busy, func(i, j int) bool { return bytes.Compare(busy[i][:], busy[j][:]) < 0 })
		return busy, nil
	}

	for _, m := range list {
		delete(r.seats, m.seat.ID)
	}
	delete(r.byShowtime, showtimeID)
	return nil, nil
}

func (r *memorySeatRepository) UpdatePrice(ctx context.Context, seatID uuid.UUID, price int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.seats[seatID]
	if !ok {
		return false, nil
	}
	m.price.Store(price)
	m.updatedAt.Store(time.Now().UnixNano())
	return true, nil
}

func (r *memorySeatRepository) CountByState(ctx context.Context, showtimeID uuid.UUID) (map[entity.SeatState]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[entity.SeatState]int)
	for _, m := range r.byShowtime[showtimeID] {
		counts[codeStates[m.word.Load()&stateMask]]++
	}
	return counts, nil
}

// ReleaseOrphaned is a no-op in memory: seats and holds live and die with
// the same process, so a held seat always has its hold.
func (r *memorySeatRepository) ReleaseOrphaned(ctx context.Context, heldBefore time.Time) (int, error) {
	return 0, nil
}
