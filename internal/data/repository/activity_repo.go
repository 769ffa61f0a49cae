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

type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	FindTitlesByPeriod(ctx context.Context, periodID uuid.UUID) (map[uuid.UUID]string, error)
	Update(ctx context.Context, activity *entity.Activity) error
}

type activityRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewActivityRepository(db database.PgxIface, log *zap.Logger) ActivityRepository {
	return &activityRepository{
		db:  db,
		log: log.With(zap.String("repository", "activity")),
	}
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	query := `
		INSERT INTO activities (id, title, organiser, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		activity.ID,
		activity.Title,
		activity.Organiser,
		activity.OwnerID,
		activity.CreatedAt,
		activity.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create activity", zap.Error(err), zap.String("title", activity.Title))
		return fmt.Errorf("create activity %s: %w", activity.Title, err)
	}

	return nil
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	query := `
		SELECT id, title, organiser, owner_id, created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	var activity entity.Activity
	err := r.db.QueryRow(ctx, query, id).Scan(
		&activity.ID,
		&activity.Title,
		&activity.Organiser,
		&activity.OwnerID,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find activity by ID", zap.Error(err), zap.String("activity_id", id.String()))
		return nil, fmt.Errorf("find activity by ID %s: %w", id.String(), err)
	}

	return &activity, nil
}

// FindTitlesByPeriod maps the period's occasion ids to their activity
// titles, used for invoice line texts.
func (r *activityRepository) FindTitlesByPeriod(ctx context.Context, periodID uuid.UUID) (map[uuid.UUID]string, error) {
	query := `
		SELECT o.id, a.title
		FROM occasions o
		JOIN activities a ON a.id = o.activity_id
		WHERE o.period_id = $1
	`

	rows, err := r.db.Query(ctx, query, periodID)
	if err != nil {
		r.log.Error("Failed to load activity titles",
			zap.Error(err),
			zap.String("period_id", periodID.String()),
		)
		return nil, fmt.Errorf("load activity titles for period %s: %w", periodID.String(), err)
	}
	defer rows.Close()

	titles := make(map[uuid.UUID]string)
	for rows.Next() {
		var occasionID uuid.UUID
		var title string
		if err := rows.Scan(&occasionID, &title); err != nil {
			return nil, fmt.Errorf("scan activity title row: %w", err)
		}
		titles[occasionID] = title
	}

	return titles, nil
}

func (r *activityRepository) Update(ctx context.Context, activity *entity.Activity) error {
	query := `
		UPDATE activities
		SET title = $2, organiser = $3, owner_id = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		activity.ID,
		activity.Title,
		activity.Organiser,
		activity.OwnerID,
		activity.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update activity", zap.Error(err), zap.String("activity_id", activity.ID.String()))
		return fmt.Errorf("update activity %s: %w", activity.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("activity %s not found", activity.ID.String())
	}

	return nil
}
