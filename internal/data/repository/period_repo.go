package repository

import (
	"context"
	"fmt"

	"ferienpass/internal/data/entity"
	"ferienpass/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PeriodRepository interface {
	Create(ctx context.Context, period *entity.Period) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Period, error)
	FindActive(ctx context.Context) (*entity.Period, error)
	FindAll(ctx context.Context) ([]*entity.Period, error)
	Update(ctx context.Context, period *entity.Period) error
}

type periodRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPeriodRepository(db database.PgxIface, log *zap.Logger) PeriodRepository {
	return &periodRepository{
		db:  db,
		log: log.With(zap.String("repository", "period")),
	}
}

const periodColumns = `id, title, phase, active, confirmable, finalizable,
	prebooking_start, prebooking_end, booking_start, booking_end,
	execution_start, execution_end, cancellation_date, pass_system,
	fixed_system_limit, max_bookings_per_attendee, all_inclusive,
	booking_cost, book_finalized, matched_at, created_at, updated_at`

func (r *periodRepository) Create(ctx context.Context, period *entity.Period) error {
	query := `
		INSERT INTO periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.db.Exec(ctx, query,
		period.ID,
		period.Title,
		period.Phase,
		period.Active,
		period.Confirmable,
		period.Finalizable,
		period.PrebookingStart,
		period.PrebookingEnd,
		period.BookingStart,
		period.BookingEnd,
		period.ExecutionStart,
		period.ExecutionEnd,
		period.CancellationDate,
		period.PassSystem,
		period.FixedSystemLimit,
		period.MaxBookingsPerAttendee,
		period.AllInclusive,
		period.BookingCost,
		period.BookFinalized,
		period.MatchedAt,
		period.CreatedAt,
		period.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create period",
			zap.Error(err),
			zap.String("title", period.Title),
		)
		return fmt.Errorf("create period %s: %w", period.Title, err)
	}

	return nil
}

func (r *periodRepository) scanPeriod(row pgx.Row) (*entity.Period, error) {
	var period entity.Period
	err := row.Scan(
		&period.ID,
		&period.Title,
		&period.Phase,
		&period.Active,
		&period.Confirmable,
		&period.Finalizable,
		&period.PrebookingStart,
		&period.PrebookingEnd,
		&period.BookingStart,
		&period.BookingEnd,
		&period.ExecutionStart,
		&period.ExecutionEnd,
		&period.CancellationDate,
		&period.PassSystem,
		&period.FixedSystemLimit,
		&period.MaxBookingsPerAttendee,
		&period.AllInclusive,
		&period.BookingCost,
		&period.BookFinalized,
		&period.MatchedAt,
		&period.CreatedAt,
		&period.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE id = $1`

	period, err := r.scanPeriod(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find period by ID", zap.Error(err), zap.String("period_id", id.String()))
		return nil, fmt.Errorf("find period by ID %s: %w", id.String(), err)
	}
	return period, nil
}

func (r *periodRepository) FindActive(ctx context.Context) (*entity.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE active = TRUE`

	period, err := r.scanPeriod(r.db.QueryRow(ctx, query))
	if err != nil {
		r.log.Error("Failed to find active period", zap.Error(err))
		return nil, fmt.Errorf("find active period: %w", err)
	}
	return period, nil
}

func (r *periodRepository) FindAll(ctx context.Context) ([]*entity.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods ORDER BY execution_start DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list periods", zap.Error(err))
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	var periods []*entity.Period
	for rows.Next() {
		period, err := r.scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period row: %w", err)
		}
		periods = append(periods, period)
	}

	return periods, nil
}

func (r *periodRepository) Update(ctx context.Context, period *entity.Period) error {
	query := `
		UPDATE periods
		SET title = $2, phase = $3, active = $4, confirmable = $5, finalizable = $6,
		    prebooking_start = $7, prebooking_end = $8, booking_start = $9,
		    booking_end = $10, execution_start = $11, execution_end = $12,
		    cancellation_date = $13, pass_system = $14, fixed_system_limit = $15,
		    max_bookings_per_attendee = $16, all_inclusive = $17, booking_cost = $18,
		    book_finalized = $19, matched_at = $20, updated_at = $21
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		period.ID,
		period.Title,
		period.Phase,
		period.Active,
		period.Confirmable,
		period.Finalizable,
		period.PrebookingStart,
		period.PrebookingEnd,
		period.BookingStart,
		period.BookingEnd,
		period.ExecutionStart,
		period.ExecutionEnd,
		period.CancellationDate,
		period.PassSystem,
		period.FixedSystemLimit,
		period.MaxBookingsPerAttendee,
		period.AllInclusive,
		period.BookingCost,
		period.BookFinalized,
		period.MatchedAt,
		period.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update period", zap.Error(err), zap.String("period_id", period.ID.String()))
		return fmt.Errorf("update period %s: %w", period.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("period %s not found", period.ID.String())
	}

	return nil
}
