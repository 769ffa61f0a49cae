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

type OccasionRepository interface {
	Create(ctx context.Context, occasion *entity.Occasion) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Occasion, error)
	FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Occasion, error)
	Update(ctx context.Context, occasion *entity.Occasion) error
	SetFlagged(ctx context.Context, ids []uuid.UUID, flagged bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type occasionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOccasionRepository(db database.PgxIface, log *zap.Logger) OccasionRepository {
	return &occasionRepository{
		db:  db,
		log: log.With(zap.String("repository", "occasion")),
	}
}

const occasionColumns = `id, activity_id, period_id, min_age, max_age,
	min_spots, max_spots, cost, cancelled, flagged, created_at, updated_at`

func (r *occasionRepository) Create(ctx context.Context, occasion *entity.Occasion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create occasion: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO occasions (` + occasionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = tx.Exec(ctx, query,
		occasion.ID,
		occasion.ActivityID,
		occasion.PeriodID,
		occasion.MinAge,
		occasion.MaxAge,
		occasion.MinSpots,
		occasion.MaxSpots,
		occasion.Cost,
		occasion.Cancelled,
		occasion.Flagged,
		occasion.CreatedAt,
		occasion.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create occasion",
			zap.Error(err),
			zap.String("activity_id", occasion.ActivityID.String()),
		)
		return fmt.Errorf("create occasion: %w", err)
	}

	if err := r.insertDates(ctx, tx, occasion); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *occasionRepository) insertDates(ctx context.Context, tx pgx.Tx, occasion *entity.Occasion) error {
	for _, d := range occasion.Dates {
		_, err := tx.Exec(ctx,
			`INSERT INTO occasion_dates (occasion_id, start_time, end_time) VALUES ($1, $2, $3)`,
			occasion.ID, d.Start, d.End,
		)
		if err != nil {
			return fmt.Errorf("insert occasion date: %w", err)
		}
	}
	return nil
}

func (r *occasionRepository) scanOccasion(row pgx.Row) (*entity.Occasion, error) {
	var occasion entity.Occasion
	err := row.Scan(
		&occasion.ID,
		&occasion.ActivityID,
		&occasion.PeriodID,
		&occasion.MinAge,
		&occasion.MaxAge,
		&occasion.MinSpots,
		&occasion.MaxSpots,
		&occasion.Cost,
		&occasion.Cancelled,
		&occasion.Flagged,
		&occasion.CreatedAt,
		&occasion.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &occasion, nil
}

func (r *occasionRepository) loadDates(ctx context.Context, occasions map[uuid.UUID]*entity.Occasion) error {
	if len(occasions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(occasions))
	for id := range occasions {
		ids = append(ids, id)
	}

	rows, err := r.db.Query(ctx,
		`SELECT occasion_id, start_time, end_time
		 FROM occasion_dates
		 WHERE occasion_id = ANY($1)
		 ORDER BY start_time`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load occasion dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var occasionID uuid.UUID
		var d entity.DateRange
		if err := rows.Scan(&occasionID, &d.Start, &d.End); err != nil {
			return fmt.Errorf("scan occasion date row: %w", err)
		}
		if occasion, ok := occasions[occasionID]; ok {
			occasion.Dates = append(occasion.Dates, d)
		}
	}

	return nil
}

func (r *occasionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Occasion, error) {
	query := `SELECT ` + occasionColumns + ` FROM occasions WHERE id = $1`

	occasion, err := r.scanOccasion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find occasion by ID", zap.Error(err), zap.String("occasion_id", id.String()))
		return nil, fmt.Errorf("find occasion by ID %s: %w", id.String(), err)
	}
	if occasion == nil {
		return nil, nil
	}

	if err := r.loadDates(ctx, map[uuid.UUID]*entity.Occasion{occasion.ID: occasion}); err != nil {
		return nil, err
	}

	return occasion, nil
}

func (r *occasionRepository) FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Occasion, error) {
	query := `SELECT ` + occasionColumns + ` FROM occasions WHERE period_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, periodID)
	if err != nil {
		r.log.Error("Failed to find occasions by period",
			zap.Error(err),
			zap.String("period_id", periodID.String()),
		)
		return nil, fmt.Errorf("find occasions by period %s: %w", periodID.String(), err)
	}
	defer rows.Close()

	var occasions []*entity.Occasion
	byID := make(map[uuid.UUID]*entity.Occasion)
	for rows.Next() {
		occasion, err := r.scanOccasion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occasion row: %w", err)
		}
		occasions = append(occasions, occasion)
		byID[occasion.ID] = occasion
	}
	rows.Close()

	if err := r.loadDates(ctx, byID); err != nil {
		return nil, err
	}

	return occasions, nil
}

func (r *occasionRepository) Update(ctx context.Context, occasion *entity.Occasion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update occasion: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE occasions
		SET activity_id = $2, period_id = $3, min_age = $4, max_age = $5,
		    min_spots = $6, max_spots = $7, cost = $8, cancelled = $9,
		    flagged = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query,
		occasion.ID,
		occasion.ActivityID,
		occasion.PeriodID,
		occasion.MinAge,
		occasion.MaxAge,
		occasion.MinSpots,
		occasion.MaxSpots,
		occasion.Cost,
		occasion.Cancelled,
		occasion.Flagged,
		occasion.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update occasion", zap.Error(err), zap.String("occasion_id", occasion.ID.String()))
		return fmt.Errorf("update occasion %s: %w", occasion.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("occasion %s not found", occasion.ID.String())
	}

	if _, err := tx.Exec(ctx, `DELETE FROM occasion_dates WHERE occasion_id = $1`, occasion.ID); err != nil {
		return fmt.Errorf("clear occasion dates: %w", err)
	}
	if err := r.insertDates(ctx, tx, occasion); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *occasionRepository) SetFlagged(ctx context.Context, ids []uuid.UUID, flagged bool) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE occasions SET flagged = $2, updated_at = NOW() WHERE id = ANY($1)`

	_, err := r.db.Exec(ctx, query, ids, flagged)
	if err != nil {
		r.log.Error("Failed to flag occasions", zap.Error(err), zap.Int("count", len(ids)))
		return fmt.Errorf("flag occasions: %w", err)
	}

	return nil
}

func (r *occasionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete occasion: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM occasion_dates WHERE occasion_id = $1`, id); err != nil {
		return fmt.Errorf("delete occasion dates: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM occasions WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete occasion", zap.Error(err), zap.String("occasion_id", id.String()))
		return fmt.Errorf("delete occasion %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("occasion %s not found", id.String())
	}

	return tx.Commit(ctx)
}
