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

type AttendeeRepository interface {
	Create(ctx context.Context, attendee *entity.Attendee) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Attendee, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Attendee, error)
	FindByName(ctx context.Context, userID uuid.UUID, firstName, lastName string) (*entity.Attendee, error)
	FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Attendee, error)
	Update(ctx context.Context, attendee *entity.Attendee) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type attendeeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAttendeeRepository(db database.PgxIface, log *zap.Logger) AttendeeRepository {
	return &attendeeRepository{
		db:  db,
		log: log.With(zap.String("repository", "attendee")),
	}
}

const attendeeColumns = `id, user_id, first_name, last_name, birth_date, gender, notes, created_at, updated_at`

func (r *attendeeRepository) Create(ctx context.Context, attendee *entity.Attendee) error {
	query := `
		INSERT INTO attendees (` + attendeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		attendee.ID,
		attendee.UserID,
		attendee.FirstName,
		attendee.LastName,
		attendee.BirthDate,
		attendee.Gender,
		attendee.Notes,
		attendee.CreatedAt,
		attendee.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create attendee",
			zap.Error(err),
			zap.String("user_id", attendee.UserID.String()),
		)
		return fmt.Errorf("create attendee %s: %w", attendee.Name(), err)
	}

	return nil
}

func (r *attendeeRepository) scanAttendee(row pgx.Row) (*entity.Attendee, error) {
	var attendee entity.Attendee
	err := row.Scan(
		&attendee.ID,
		&attendee.UserID,
		&attendee.FirstName,
		&attendee.LastName,
		&attendee.BirthDate,
		&attendee.Gender,
		&attendee.Notes,
		&attendee.CreatedAt,
		&attendee.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (r *attendeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = $1`

	attendee, err := r.scanAttendee(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find attendee by ID", zap.Error(err), zap.String("attendee_id", id.String()))
		return nil, fmt.Errorf("find attendee by ID %s: %w", id.String(), err)
	}
	return attendee, nil
}

func (r *attendeeRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE user_id = $1 ORDER BY first_name, last_name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find attendees by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find attendees by user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var attendees []*entity.Attendee
	for rows.Next() {
		attendee, err := r.scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendee row: %w", err)
		}
		attendees = append(attendees, attendee)
	}

	return attendees, nil
}

// FindByName looks up an attendee under one guardian by exact name,
// used for the per-owner uniqueness check.
func (r *attendeeRepository) FindByName(ctx context.Context, userID uuid.UUID, firstName, lastName string) (*entity.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE user_id = $1 AND first_name = $2 AND last_name = $3
	`

	attendee, err := r.scanAttendee(r.db.QueryRow(ctx, query, userID, firstName, lastName))
	if err != nil {
		r.log.Error("Failed to find attendee by name", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find attendee by name: %w", err)
	}
	return attendee, nil
}

// FindByPeriodID returns the attendees holding at least one
// non-cancelled booking in the period.
func (r *attendeeRepository) FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Attendee, error) {
	query := `
		SELECT DISTINCT a.id, a.user_id, a.first_name, a.last_name, a.birth_date,
		       a.gender, a.notes, a.created_at, a.updated_at
		FROM attendees a
		JOIN bookings b ON b.attendee_id = a.id
		WHERE b.period_id = $1 AND b.state != 'cancelled'
	`

	rows, err := r.db.Query(ctx, query, periodID)
	if err != nil {
		r.log.Error("Failed to find attendees by period",
			zap.Error(err),
			zap.String("period_id", periodID.String()),
		)
		return nil, fmt.Errorf("find attendees by period %s: %w", periodID.String(), err)
	}
	defer rows.Close()

	var attendees []*entity.Attendee
	for rows.Next() {
		attendee, err := r.scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendee row: %w", err)
		}
		attendees = append(attendees, attendee)
	}

	return attendees, nil
}

func (r *attendeeRepository) Update(ctx context.Context, attendee *entity.Attendee) error {
	query := `
		UPDATE attendees
		SET first_name = $2, last_name = $3, birth_date = $4, gender = $5,
		    notes = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		attendee.ID,
		attendee.FirstName,
		attendee.LastName,
		attendee.BirthDate,
		attendee.Gender,
		attendee.Notes,
		attendee.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update attendee", zap.Error(err), zap.String("attendee_id", attendee.ID.String()))
		return fmt.Errorf("update attendee %s: %w", attendee.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("attendee %s not found", attendee.ID.String())
	}

	return nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM attendees WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete attendee", zap.Error(err), zap.String("attendee_id", id.String()))
		return fmt.Errorf("delete attendee %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("attendee %s not found", id.String())
	}

	return nil
}
