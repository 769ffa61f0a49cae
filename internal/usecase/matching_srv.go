package usecase

import (
	"context"
	"time"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/internal/dto/response"
	"ferienpass/internal/matching"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MatchingService interface {
	// RunMatching executes one allocation pass over the period's open
	// wishlist bookings. A second run on the same period while one is
	// in flight is rejected, not queued.
	RunMatching(ctx context.Context, periodID string) (*response.MatchingRunResponse, error)
}

type matchingService struct {
	repo   *repository.Repository
	events *events.Dispatcher
	runs   *tryLocks
	log    *zap.Logger
}

func NewMatchingService(repo *repository.Repository, dispatcher *events.Dispatcher, log *zap.Logger) MatchingService {
	return &matchingService{
		repo:   repo,
		events: dispatcher,
		runs:   newTryLocks(),
		log:    log.With(zap.String("service", "matching")),
	}
}

func (s *matchingService) RunMatching(ctx context.Context, periodID string) (*response.MatchingRunResponse, error) {
	id, err := uuid.Parse(periodID)
	if err != nil {
		return nil, apperrors.Validation("invalid period ID format", nil)
	}

	if !s.runs.TryLock(id) {
		return nil, apperrors.Conflict("a matching run is already in progress for this period")
	}
	defer s.runs.Unlock(id)

	period, err := s.repo.Period.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load period", err)
	}
	if period == nil {
		return nil, apperrors.NotFoundWithID("period", periodID)
	}
	if period.Phase != entity.PhaseWishlist {
		return nil, apperrors.Conflict("matching only runs during the wishlist phase")
	}

	input, err := s.loadSnapshot(ctx, period)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := matching.Run(*input)

	if err := s.repo.Booking.UpdateStatesBatch(ctx, result.Accepted, entity.BookingStateAccepted); err != nil {
		return nil, apperrors.Internal("failed to persist accepted bookings", err)
	}
	if err := s.repo.Booking.UpdateStatesBatch(ctx, result.Denied, entity.BookingStateDenied); err != nil {
		return nil, apperrors.Internal("failed to persist denied bookings", err)
	}
	if err := s.repo.Occasion.SetFlagged(ctx, result.FlaggedOccasions, true); err != nil {
		return nil, apperrors.Internal("failed to flag undersubscribed occasions", err)
	}

	matchedAt := time.Now()
	period.MatchedAt = &matchedAt
	period.UpdatedAt = matchedAt
	if err := s.repo.Period.Update(ctx, period); err != nil {
		return nil, apperrors.Internal("failed to record matching run", err)
	}

	s.events.Dispatch(events.Event{Type: events.MatchingFinished, PeriodID: period.ID})
	s.log.Info("Matching run finished",
		zap.String("period_id", period.ID.String()),
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("denied", len(result.Denied)),
		zap.Int("flagged_occasions", len(result.FlaggedOccasions)),
		zap.Duration("took", time.Since(start)))

	return &response.MatchingRunResponse{
		PeriodID:         period.ID.String(),
		Accepted:         len(result.Accepted),
		Denied:           len(result.Denied),
		FlaggedOccasions: len(result.FlaggedOccasions),
		MatchedAt:        matchedAt,
	}, nil
}

// loadSnapshot assembles the consistent input the engine runs on.
func (s *matchingService) loadSnapshot(ctx context.Context, period *entity.Period) (*matching.Input, error) {
	occasions, err := s.repo.Occasion.FindByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load occasions", err)
	}

	bookings, err := s.repo.Booking.FindByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load bookings", err)
	}

	attendees, err := s.repo.Attendee.FindByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load attendees", err)
	}

	ages := make(map[uuid.UUID]int, len(attendees))
	for _, attendee := range attendees {
		ages[attendee.ID] = attendee.AgeOn(period.ExecutionStart)
	}

	return &matching.Input{
		Period:    period,
		Occasions: occasions,
		Bookings:  bookings,
		Ages:      ages,
	}, nil
}
