package repository

import (
	"context"
	"fmt"

	"ferienpass/internal/data/entity"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Booking, error)
	FindByUserAndPeriod(ctx context.Context, userID, periodID uuid.UUID) ([]*entity.Booking, error)
	FindBlocking(ctx context.Context, attendeeID, occasionID uuid.UUID) (*entity.Booking, error)
	CountAcceptedByOccasion(ctx context.Context, occasionID uuid.UUID) (int, error)
	CountStarred(ctx context.Context, attendeeID, periodID uuid.UUID) (int, error)
	CountNonCancelledByOccasion(ctx context.Context, occasionID uuid.UUID) (int, error)
	Update(ctx context.Context, booking *entity.Booking) error
	UpdateState(ctx context.Context, bookingID uuid.UUID, state entity.BookingState) error
	UpdateStatesBatch(ctx context.Context, ids []uuid.UUID, state entity.BookingState) error
	DenyOpenByPeriod(ctx context.Context, periodID uuid.UUID) ([]uuid.UUID, error)

	// ReserveAccepted inserts the booking with state accepted inside one
	// transaction that holds the occasion row lock while re-checking the
	// duplicate, capacity and per-attendee limit invariants. The counts
	// are live aggregates, never cached counters. attendeeLimit 0 means
	// unlimited.
	ReserveAccepted(ctx context.Context, booking *entity.Booking, maxSpots, attendeeLimit int) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, attendee_id, occasion_id, period_id, user_id,
	group_code, state, cost, priority, ignore_age, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.AttendeeID,
		booking.OccasionID,
		booking.PeriodID,
		booking.UserID,
		booking.GroupCode,
		booking.State,
		booking.Cost,
		booking.Priority,
		booking.IgnoreAge,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("attendee_id", booking.AttendeeID.String()),
			zap.String("occasion_id", booking.OccasionID.String()),
		)
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.AttendeeID,
		&booking.OccasionID,
		&booking.PeriodID,
		&booking.UserID,
		&booking.GroupCode,
		&booking.State,
		&booking.Cost,
		&booking.Priority,
		&booking.IgnoreAge,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}
	return booking, nil
}

// FindByPeriodID returns all non-cancelled bookings of the period,
// ordered by creation time. This is the matching engine's snapshot.
func (r *bookingRepository) FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE period_id = $1 AND state != 'cancelled'
		ORDER BY created_at, id
	`

	return r.queryBookings(ctx, query, periodID)
}

func (r *bookingRepository) FindByUserAndPeriod(ctx context.Context, userID, periodID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND period_id = $2 AND state != 'cancelled'
		ORDER BY created_at, id
	`

	return r.queryBookings(ctx, query, userID, periodID)
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query bookings", zap.Error(err))
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// FindBlocking returns the booking occupying the (attendee, occasion)
// slot, i.e. one in state open or accepted, or nil.
func (r *bookingRepository) FindBlocking(ctx context.Context, attendeeID, occasionID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE attendee_id = $1 AND occasion_id = $2 AND state IN ('open', 'accepted')
		LIMIT 1
	`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, attendeeID, occasionID))
	if err != nil {
		r.log.Error("Failed to check blocking booking",
			zap.Error(err),
			zap.String("attendee_id", attendeeID.String()),
			zap.String("occasion_id", occasionID.String()),
		)
		return nil, fmt.Errorf("check blocking booking: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) CountAcceptedByOccasion(ctx context.Context, occasionID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE occasion_id = $1 AND state = 'accepted'`

	var count int
	if err := r.db.QueryRow(ctx, query, occasionID).Scan(&count); err != nil {
		r.log.Error("Failed to count accepted bookings",
			zap.Error(err),
			zap.String("occasion_id", occasionID.String()),
		)
		return 0, fmt.Errorf("count accepted bookings for occasion %s: %w", occasionID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) CountStarred(ctx context.Context, attendeeID, periodID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE attendee_id = $1 AND period_id = $2 AND priority > 0
		  AND state IN ('open', 'accepted')
	`

	var count int
	if err := r.db.QueryRow(ctx, query, attendeeID, periodID).Scan(&count); err != nil {
		r.log.Error("Failed to count starred bookings",
			zap.Error(err),
			zap.String("attendee_id", attendeeID.String()),
		)
		return 0, fmt.Errorf("count starred bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) CountNonCancelledByOccasion(ctx context.Context, occasionID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE occasion_id = $1 AND state != 'cancelled'`

	var count int
	if err := r.db.QueryRow(ctx, query, occasionID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings for occasion",
			zap.Error(err),
			zap.String("occasion_id", occasionID.String()),
		)
		return 0, fmt.Errorf("count bookings for occasion %s: %w", occasionID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET group_code = $2, state = $3, cost = $4, priority = $5,
		    ignore_age = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.GroupCode,
		booking.State,
		booking.Cost,
		booking.Priority,
		booking.IgnoreAge,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", booking.ID.String())
	}

	return nil
}

func (r *bookingRepository) UpdateState(ctx context.Context, bookingID uuid.UUID, state entity.BookingState) error {
	query := `UPDATE bookings SET state = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, state)
	if err != nil {
		r.log.Error("Failed to update booking state",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("state", string(state)),
		)
		return fmt.Errorf("update booking %s state to %s: %w", bookingID.String(), string(state), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) UpdateStatesBatch(ctx context.Context, ids []uuid.UUID, state entity.BookingState) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE bookings SET state = $2, updated_at = NOW() WHERE id = ANY($1)`

	_, err := r.db.Exec(ctx, query, ids, state)
	if err != nil {
		r.log.Error("Failed to batch update booking states",
			zap.Error(err),
			zap.String("state", string(state)),
			zap.Int("count", len(ids)),
		)
		return fmt.Errorf("batch update %d bookings to %s: %w", len(ids), string(state), err)
	}

	return nil
}

// DenyOpenByPeriod marks every remaining open booking of the period as
// denied and returns the affected ids.
func (r *bookingRepository) DenyOpenByPeriod(ctx context.Context, periodID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE bookings SET state = 'denied', updated_at = NOW()
		WHERE period_id = $1 AND state = 'open'
		RETURNING id
	`

	rows, err := r.db.Query(ctx, query, periodID)
	if err != nil {
		r.log.Error("Failed to deny open bookings",
			zap.Error(err),
			zap.String("period_id", periodID.String()),
		)
		return nil, fmt.Errorf("deny open bookings for period %s: %w", periodID.String(), err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan denied booking id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (r *bookingRepository) ReserveAccepted(ctx context.Context, booking *entity.Booking, maxSpots, attendeeLimit int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reservation: %w", err)
	}
	defer tx.Rollback(ctx)

	// Hold the occasion row for the duration of the check-and-insert so
	// concurrent reservations on the same occasion serialize here.
	var occasionID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM occasions WHERE id = $1 FOR UPDATE`,
		booking.OccasionID,
	).Scan(&occasionID)
	if err == pgx.ErrNoRows {
		return apperrors.NotFoundWithID("occasion", booking.OccasionID.String())
	}
	if err != nil {
		return fmt.Errorf("lock occasion %s: %w", booking.OccasionID.String(), err)
	}

	if attendeeLimit > 0 {
		// Reservations for the same attendee on different occasions hold
		// different occasion locks, so the limit check serializes on the
		// attendee row instead.
		var attendeeID uuid.UUID
		err = tx.QueryRow(ctx,
			`SELECT id FROM attendees WHERE id = $1 FOR UPDATE`,
			booking.AttendeeID,
		).Scan(&attendeeID)
		if err != nil {
			return fmt.Errorf("lock attendee %s: %w", booking.AttendeeID.String(), err)
		}

		var attendeeAccepted int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM bookings
			 WHERE attendee_id = $1 AND period_id = $2 AND state = 'accepted'`,
			booking.AttendeeID, booking.PeriodID,
		).Scan(&attendeeAccepted)
		if err != nil {
			return fmt.Errorf("reservation attendee limit check: %w", err)
		}
		if attendeeAccepted >= attendeeLimit {
			return apperrors.Conflict("attendee booking limit reached")
		}
	}

	var blocking int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE attendee_id = $1 AND occasion_id = $2 AND state IN ('open', 'accepted')`,
		booking.AttendeeID, booking.OccasionID,
	).Scan(&blocking)
	if err != nil {
		return fmt.Errorf("reservation duplicate check: %w", err)
	}
	if blocking > 0 {
		return apperrors.DuplicateRegistration(booking.AttendeeID.String(), booking.OccasionID.String())
	}

	var accepted int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE occasion_id = $1 AND state = 'accepted'`,
		booking.OccasionID,
	).Scan(&accepted)
	if err != nil {
		return fmt.Errorf("reservation capacity check: %w", err)
	}
	if accepted >= maxSpots {
		return apperrors.CapacityExceeded(booking.OccasionID.String())
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		booking.ID,
		booking.AttendeeID,
		booking.OccasionID,
		booking.PeriodID,
		booking.UserID,
		booking.GroupCode,
		booking.State,
		booking.Cost,
		booking.Priority,
		booking.IgnoreAge,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert reservation",
			zap.Error(err),
			zap.String("occasion_id", booking.OccasionID.String()),
		)
		return fmt.Errorf("insert reservation: %w", err)
	}

	return tx.Commit(ctx)
}
