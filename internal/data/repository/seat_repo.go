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

// SeatRepository is the seat inventory store. TryTransition is the only way
// a seat changes state and it is linearizable per seat.
type SeatRepository interface {
	ListByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]*entity.Seat, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error)
	TryTransition(ctx context.Context, seatID uuid.UUID, expected, next entity.SeatState) (bool, error)

	// Inventory lifecycle
	CreateBatch(ctx context.Context, seats []*entity.Seat) error
	DeleteByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error)
	UpdatePrice(ctx context.Context, seatID uuid.UUID, price int64) (bool, error)
	CountByState(ctx context.Context, showtimeID uuid.UUID) (map[entity.SeatState]int, error)
	ReleaseOrphaned(ctx context.Context, heldBefore time.Time) (int, error)
}

type seatRepository struct {
	db  database.PgxIface
	tx  Transactor
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, tx Transactor, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		tx:  tx,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, showtime_id, seat_number, seat_row, seat_column, seat_class, price_cents, status, version, created_at, updated_at`

func scanSeat(row pgx.Row) (*entity.Seat, error) {
	var seat entity.Seat
	err := row.Scan(
		&seat.ID,
		&seat.ShowtimeID,
		&seat.SeatNumber,
		&seat.SeatRow,
		&seat.SeatColumn,
		&seat.Class,
		&seat.Price,
		&seat.State,
		&seat.Version,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepository) querySeats(ctx context.Context, query string, args ...any) ([]*entity.Seat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *seatRepository) ListByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]*entity.Seat, error) {
	query := `SELECT ` + seatColumns + `
		FROM show_seats
		WHERE showtime_id = $1
		ORDER BY seat_row, seat_column`

	seats, err := r.querySeats(ctx, query, showtimeID)
	if err != nil {
		r.log.Error("Failed to list seats by showtime",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("failed to list seats of showtime %s: %w", showtimeID, err)
	}
	return seats, nil
}

func (r *seatRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM show_seats WHERE id = $1`

	seat, err := scanSeat(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("Failed to find seat by ID",
			zap.Error(err),
			zap.String("seat_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find seat %s: %w", id, err)
	}
	return seat, nil
}

// FindByIDs returns the seats that exist, in ascending id order. Missing ids
// are simply absent from the result.
func (r *seatRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + seatColumns + `
		FROM show_seats
		WHERE id = ANY($1)
		ORDER BY id`

	seats, err := r.querySeats(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find seats by IDs",
			zap.Error(err),
			zap.Int("count", len(ids)),
		)
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}
	return seats, nil
}

// TryTransition moves a seat from expected to next in a single conditional
// UPDATE. Row level locking makes it linearizable per seat.
func (r *seatRepository) TryTransition(ctx context.Context, seatID uuid.UUID, expected, next entity.SeatState) (bool, error) {
	query := `
		UPDATE show_seats
		SET status = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := conn(ctx, r.db).Exec(ctx, query, seatID, expected, next)
	if err != nil {
		r.log.Error("Failed to transition seat",
			zap.Error(err),
			zap.String("seat_id", seatID.String()),
			zap.String("from", string(expected)),
			zap.String("to", string(next)),
		)
		return false, fmt.Errorf("failed to transition seat %s: %w", seatID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// Build batch insert
	const cols = 10
	query := `INSERT INTO show_seats (id, showtime_id, seat_number, seat_row, seat_column, seat_class, price_cents, status, created_at, updated_at) VALUES `
	args := make([]any, 0, len(seats)*cols)

	for i, seat := range seats {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*cols+1, i*cols+2, i*cols+3, i*cols+4, i*cols+5,
			i*cols+6, i*cols+7, i*cols+8, i*cols+9, i*cols+10)

		args = append(args,
			seat.ID,
			seat.ShowtimeID,
			seat.SeatNumber,
			seat.SeatRow,
			seat.SeatColumn,
			seat.Class,
			seat.Price,
			seat.State,
			seat.CreatedAt,
			seat.UpdatedAt,
		)
	}

	if _, err := conn(ctx, r.db).Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("failed to create seats: %w", err)
	}

	return nil
}

// DeleteByShowtime removes every seat of a showtime, but only when all of
// them are available. Otherwise nothing is deleted and the busy seat ids are
// returned.
func (r *seatRepository) DeleteByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error) {
	var busy []uuid.UUID

	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)

		rows, err := q.Query(ctx, `
			SELECT id, status FROM show_seats
			WHERE showtime_id = $1
			ORDER BY id
			FOR UPDATE`, showtimeID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var (
				id    uuid.UUID
				state entity.SeatState
			)
			if err := rows.Scan(&id, &state); err != nil {
				rows.Close()
				return err
			}
			if state != entity.SeatStateAvailable {
				busy = append(busy, id)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(busy) > 0 {
			return nil
		}
		_, err = q.Exec(ctx, `DELETE FROM show_seats WHERE showtime_id = $1`, showtimeID)
		return err
	})
	if err != nil {
		r.log.Error("Failed to delete seats of showtime",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("failed to delete seats of showtime %s: %w", showtimeID, err)
	}

	return busy, nil
}

func (r *seatRepository) UpdatePrice(ctx context.Context, seatID uuid.UUID, price int64) (bool, error) {
	query := `UPDATE show_seats SET price_cents = $2, updated_at = NOW() WHERE id = $1`

	tag, err := conn(ctx, r.db).Exec(ctx, query, seatID, price)
	if err != nil {
		r.log.Error("Failed to update seat price",
			zap.Error(err),
			zap.String("seat_id", seatID.String()),
		)
		return false, fmt.Errorf("failed to update price of seat %s: %w", seatID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *seatRepository) CountByState(ctx context.Context, showtimeID uuid.UUID) (map[entity.SeatState]int, error) {
	query := `SELECT status, COUNT(*) FROM show_seats WHERE showtime_id = $1 GROUP BY status`

	rows, err := conn(ctx, r.db).Query(ctx, query, showtimeID)
	if err != nil {
		r.log.Error("Failed to count seats by state",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("failed to count seats of showtime %s: %w", showtimeID, err)
	}
	defer rows.Close()

	counts := make(map[entity.SeatState]int)
	for rows.Next() {
		var (
			state entity.SeatState
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("failed to scan seat count: %w", err)
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

// ReleaseOrphaned frees seats left Held without an active hold owning them,
// which happens when a process dies between acquiring seats and recording
// the hold. Only seats untouched since heldBefore are considered.
func (r *seatRepository) ReleaseOrphaned(ctx context.Context, heldBefore time.Time) (int, error) {
	query := `
		UPDATE show_seats s
		SET status = 'available', version = s.version + 1, updated_at = NOW()
		WHERE s.status = 'held'
		  AND s.updated_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM hold_seats hs
			JOIN holds h ON h.id = hs.hold_id
			WHERE hs.seat_id = s.id AND h.status = 'active'
		  )
	`

	tag, err := conn(ctx, r.db).Exec(ctx, query, heldBefore)
	if err != nil {
		r.log.Error("Failed to release orphaned seats", zap.Error(err))
		return 0, fmt.Errorf("failed to release orphaned seats: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
