package repository

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// expiryQueue is a min-heap of holds keyed by expiry.
type expiryQueue []*entity.Hold

func (q expiryQueue) Len() int { return len(q) }
func (q expiryQueue) Less(i, j int) bool {
	return q[i].ExpiresAt.Before(q[j].ExpiresAt)
}
func (q expiryQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *expiryQueue) Push(x any)   { *q = append(*q, x.(*entity.Hold)) }
func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return h
}

type memoryHoldRepository struct {
	mu     sync.Mutex
	holds  map[uuid.UUID]*entity.Hold
	queue  expiryQueue
	active map[uuid.UUID]map[uuid.UUID]struct{} // showtime -> active hold ids
	log    *zap.Logger
}

func NewMemoryHoldRepository(log *zap.Logger) HoldRepository {
	return &memoryHoldRepository{
		holds:  make(map[uuid.UUID]*entity.Hold),
		active: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		log:    log.With(zap.String("repository", "hold_memory")),
	}
}

func (r *memoryHoldRepository) Create(ctx context.Context, hold *entity.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.holds[hold.ID]; exists {
		return fmt.Errorf("failed to create hold %s: already exists", hold.ID)
	}

	stored := hold.Clone()
	r.holds[stored.ID] = stored
	if stored.Status == entity.HoldStatusActive {
		heap.Push(&r.queue, stored)
		set, ok := r.active[stored.ShowtimeID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			r.active[stored.ShowtimeID] = set
		}
		set[stored.ID] = struct{}{}
	}
	return nil
}

func (r *memoryHoldRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hold, ok := r.holds[id]
	if !ok {
		return nil, nil
	}
	return hold.Clone(), nil
}

func (r *memoryHoldRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.HoldStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hold, ok := r.holds[id]
	if !ok || hold.Status != expected {
		return false, nil
	}

	hold.Status = next
	if next.IsTerminal() {
		resolved := at
		hold.ResolvedAt = &resolved
		if set, ok := r.active[hold.ShowtimeID]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(r.active, hold.ShowtimeID)
			}
		}
	}
	return true, nil
}

// FindExpired pops due holds off the queue. Holds that already left Active
// are dropped for good; the rest go back until their status changes.
func (r *memoryHoldRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []*entity.Hold
	for r.queue.Len() > 0 && len(due) < limit {
		top := r.queue[0]
		if !top.IsExpired(now) {
			break
		}
		heap.Pop(&r.queue)
		if top.Status == entity.HoldStatusActive {
			due = append(due, top)
		}
	}

	out := make([]*entity.Hold, len(due))
	for i, h := range due {
		heap.Push(&r.queue, h)
		out[i] = h.Clone()
	}
	return out, nil
}

func (r *memoryHoldRepository) FindExpiredByShowtime(ctx context.Context, showtimeID uuid.UUID, now time.Time) ([]*entity.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Hold
	for id := range r.active[showtimeID] {
		if h := r.holds[id]; h.IsExpired(now) {
			out = append(out, h.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}
