package repository

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// HoldRepository is the hold registry. A hold leaves Active exactly once,
// through CompareAndSetStatus.
type HoldRepository interface {
	Create(ctx context.Context, hold *entity.Hold) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hold, error)
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.HoldStatus, at time.Time) (bool, error)

	// Expiry queries return Active holds with expires_at <= now, oldest first.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Hold, error)
	FindExpiredByShowtime(ctx context.Context, showtimeID uuid.UUID, now time.Time) ([]*entity.Hold, error)
}

type holdRepository struct {
	db  database.PgxIface
	tx  Transactor
	log *zap.Logger
}

func NewHoldRepository(db database.PgxIface, tx Transactor, log *zap.Logger) HoldRepository {
	return &holdRepository{
		db:  db,
		tx:  tx,
		log: log.With(zap.String("repository", "hold")),
	}
}

func (r *holdRepository) Create(ctx context.Context, hold *entity.Hold) error {
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)

		_, err := q.Exec(ctx, `
			INSERT INTO holds (id, showtime_id, status, expires_at, created_at, resolved_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			hold.ID,
			hold.ShowtimeID,
			hold.Status,
			hold.ExpiresAt,
			hold.CreatedAt,
			hold.ResolvedAt,
		)
		if err != nil {
			return err
		}

		for i, seat := range hold.Seats {
			_, err := q.Exec(ctx, `
				INSERT INTO hold_seats (hold_id, seat_id, position, seat_number, seat_class, price_cents)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				hold.ID, seat.SeatID, i, seat.SeatNumber, seat.Class, seat.Price,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to create hold",
			zap.Error(err),
			zap.String("hold_id", hold.ID.String()),
			zap.String("showtime_id", hold.ShowtimeID.String()),
		)
		return fmt.Errorf("failed to create hold %s: %w", hold.ID, err)
	}
	return nil
}

const holdColumns = `id, showtime_id, status, expires_at, created_at, resolved_at`

func scanHold(row pgx.Row) (*entity.Hold, error) {
	var hold entity.Hold
	err := row.Scan(
		&hold.ID,
		&hold.ShowtimeID,
		&hold.Status,
		&hold.ExpiresAt,
		&hold.CreatedAt,
		&hold.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

func (r *holdRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hold, error) {
	q := conn(ctx, r.db)

	hold, err := scanHold(q.QueryRow(ctx, `SELECT `+holdColumns+` FROM holds WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("Failed to find hold by ID",
			zap.Error(err),
			zap.String("hold_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find hold %s: %w", id, err)
	}

	if err := loadHoldSeats(ctx, q, []*entity.Hold{hold}); err != nil {
		r.log.Error("Failed to load hold seats",
			zap.Error(err),
			zap.String("hold_id", id.String()),
		)
		return nil, fmt.Errorf("failed to load seats of hold %s: %w", id, err)
	}
	return hold, nil
}

// loadHoldSeats fills Seats of every hold, keeping acquisition order.
func loadHoldSeats(ctx context.Context, q querier, holds []*entity.Hold) error {
	if len(holds) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(holds))
	byID := make(map[uuid.UUID]*entity.Hold, len(holds))
	for i, h := range holds {
		ids[i] = h.ID
		byID[h.ID] = h
	}

	rows, err := q.Query(ctx, `
		SELECT hold_id, seat_id, seat_number, seat_class, price_cents
		FROM hold_seats
		WHERE hold_id = ANY($1)
		ORDER BY hold_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			holdID uuid.UUID
			seat   entity.HoldSeat
		)
		if err := rows.Scan(&holdID, &seat.SeatID, &seat.SeatNumber, &seat.Class, &seat.Price); err != nil {
			return err
		}
		if h, ok := byID[holdID]; ok {
			h.Seats = append(h.Seats, seat)
		}
	}
	return rows.Err()
}

func (r *holdRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.HoldStatus, at time.Time) (bool, error) {
	var resolvedAt *time.Time
	if next.IsTerminal() {
		resolvedAt = &at
	}

	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE holds SET status = $3, resolved_at = $4
		WHERE id = $1 AND status = $2`,
		id, expected, next, resolvedAt,
	)
	if err != nil {
		r.log.Error("Failed to update hold status",
			zap.Error(err),
			zap.String("hold_id", id.String()),
			zap.String("from", string(expected)),
			zap.String("to", string(next)),
		)
		return false, fmt.Errorf("failed to update status of hold %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *holdRepository) queryHolds(ctx context.Context, query string, args ...any) ([]*entity.Hold, error) {
	q := conn(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var holds []*entity.Hold
	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		holds = append(holds, hold)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadHoldSeats(ctx, q, holds); err != nil {
		return nil, err
	}
	return holds, nil
}

func (r *holdRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Hold, error) {
	holds, err := r.queryHolds(ctx, `
		SELECT `+holdColumns+`
		FROM holds
		WHERE status = 'active' AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired holds", zap.Error(err))
		return nil, fmt.Errorf("failed to find expired holds: %w", err)
	}
	return holds, nil
}

func (r *holdRepository) FindExpiredByShowtime(ctx context.Context, showtimeID uuid.UUID, now time.Time) ([]*entity.Hold, error) {
	holds, err := r.queryHolds(ctx, `
		SELECT `+holdColumns+`
		FROM holds
		WHERE showtime_id = $1 AND status = 'active' AND expires_at <= $2
		ORDER BY expires_at`, showtimeID, now)
	if err != nil {
		r.log.Error("Failed to find expired holds of showtime",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("failed to find expired holds of showtime %s: %w", showtimeID, err)
	}
	return holds, nil
}
