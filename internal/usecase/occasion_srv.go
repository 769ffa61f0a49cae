package usecase

import (
	"context"
	"time"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/internal/dto/request"
	"ferienpass/internal/dto/response"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/events"
	"ferienpass/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OccasionService interface {
	CreateActivity(ctx context.Context, userID string, req *request.CreateActivityRequest) (*response.ActivityResponse, error)
	CreateOccasion(ctx context.Context, req *request.CreateOccasionRequest) (*response.OccasionResponse, error)
	GetOccasion(ctx context.Context, occasionID string) (*response.OccasionResponse, error)
	ListOccasions(ctx context.Context, periodID string) ([]*response.OccasionResponse, error)
	UpdateOccasion(ctx context.Context, occasionID string, req *request.UpdateOccasionRequest) (*response.OccasionResponse, error)
	DuplicateOccasion(ctx context.Context, occasionID string) (*response.OccasionResponse, error)
	CancelOccasion(ctx context.Context, occasionID string) error
	DeleteOccasion(ctx context.Context, occasionID string) error
}

type occasionService struct {
	repo   *repository.Repository
	events *events.Dispatcher
	log    *zap.Logger
}

func NewOccasionService(repo *repository.Repository, dispatcher *events.Dispatcher, log *zap.Logger) OccasionService {
	return &occasionService{
		repo:   repo,
		events: dispatcher,
		log:    log.With(zap.String("service", "occasion")),
	}
}

func (s *occasionService) CreateActivity(ctx context.Context, userID string, req *request.CreateActivityRequest) (*response.ActivityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create activity validation failed", zap.Any("errors", errs))
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	now := time.Now()
	activity := &entity.Activity{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:     req.Title,
		Organiser: req.Organiser,
		OwnerID:   ownerID,
	}

	if err := s.repo.Activity.Create(ctx, activity); err != nil {
		s.log.Error("Failed to create activity", zap.Error(err), zap.String("title", req.Title))
		return nil, apperrors.Internal("failed to create activity", err)
	}

	s.log.Info("Activity created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("title", activity.Title))

	resp := response.ActivityToResponse(activity)
	return &resp, nil
}

func (s *occasionService) CreateOccasion(ctx context.Context, req *request.CreateOccasionRequest) (*response.OccasionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create occasion validation failed", zap.Any("errors", errs))
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	activityID, err := uuid.Parse(req.ActivityID)
	if err != nil {
		return nil, apperrors.Validation("invalid activity ID format", nil)
	}
	periodID, err := uuid.Parse(req.PeriodID)
	if err != nil {
		return nil, apperrors.Validation("invalid period ID format", nil)
	}

	activity, err := s.repo.Activity.FindByID(ctx, activityID)
	if err != nil {
		return nil, apperrors.Internal("failed to load activity", err)
	}
	if activity == nil {
		return nil, apperrors.NotFoundWithID("activity", req.ActivityID)
	}

	period, err := s.repo.Period.FindByID(ctx, periodID)
	if err != nil {
		return nil, apperrors.Internal("failed to load period", err)
	}
	if period == nil {
		return nil, apperrors.NotFoundWithID("period", req.PeriodID)
	}
	if period.ReadOnly() {
		return nil, apperrors.Conflict("archived periods are read-only")
	}

	if req.MinSpots > req.MaxSpots {
		return nil, apperrors.Validation("min_spots must not exceed max_spots", nil)
	}

	dates, err := parseDateRanges(req.Dates)
	if err != nil {
		return nil, err
	}

	var cost *decimal.Decimal
	if req.Cost != nil {
		c, err := decimal.NewFromString(*req.Cost)
		if err != nil || c.IsNegative() {
			return nil, apperrors.Validation("invalid cost", nil)
		}
		cost = &c
	}

	now := time.Now()
	occasion := &entity.Occasion{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ActivityID: activityID,
		PeriodID:   periodID,
		Dates:      dates,
		MinAge:     req.MinAge,
		MaxAge:     req.MaxAge,
		MinSpots:   req.MinSpots,
		MaxSpots:   req.MaxSpots,
		Cost:       cost,
	}

	if err := s.repo.Occasion.Create(ctx, occasion); err != nil {
		s.log.Error("Failed to create occasion", zap.Error(err))
		return nil, apperrors.Internal("failed to create occasion", err)
	}

	s.log.Info("Occasion created",
		zap.String("occasion_id", occasion.ID.String()),
		zap.String("activity_id", req.ActivityID))

	resp := response.OccasionToResponse(occasion, 0)
	return &resp, nil
}

func (s *occasionService) GetOccasion(ctx context.Context, occasionID string) (*response.OccasionResponse, error) {
	occasion, err := s.findOccasion(ctx, occasionID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.repo.Booking.CountAcceptedByOccasion(ctx, occasion.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to count accepted bookings", err)
	}

	resp := response.OccasionToResponse(occasion, accepted)
	return &resp, nil
}

func (s *occasionService) ListOccasions(ctx context.Context, periodID string) ([]*response.OccasionResponse, error) {
	periodUUID, err := uuid.Parse(periodID)
	if err != nil {
		return nil, apperrors.Validation("invalid period ID format", nil)
	}

	occasions, err := s.repo.Occasion.FindByPeriodID(ctx, periodUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to list occasions", err)
	}

	resps := make([]*response.OccasionResponse, len(occasions))
	for i, occasion := range occasions {
		accepted, err := s.repo.Booking.CountAcceptedByOccasion(ctx, occasion.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count accepted bookings", err)
		}
		resp := response.OccasionToResponse(occasion, accepted)
		resps[i] = &resp
	}
	return resps, nil
}

func (s *occasionService) UpdateOccasion(ctx context.Context, occasionID string, req *request.UpdateOccasionRequest) (*response.OccasionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	occasion, err := s.findOccasion(ctx, occasionID)
	if err != nil {
		return nil, err
	}
	if occasion.Cancelled {
		return nil, apperrors.Conflict("cancelled occasions cannot be edited")
	}

	if req.MinAge != nil {
		occasion.MinAge = *req.MinAge
	}
	if req.MaxAge != nil {
		occasion.MaxAge = *req.MaxAge
	}
	if occasion.MinAge > occasion.MaxAge {
		return nil, apperrors.Validation("min_age must not exceed max_age", nil)
	}
	if req.MinSpots != nil {
		occasion.MinSpots = *req.MinSpots
	}
	if req.MaxSpots != nil {
		// Shrinking below the current acceptance count would strand
		// accepted bookings, so that is refused.
		accepted, err := s.repo.Booking.CountAcceptedByOccasion(ctx, occasion.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count accepted bookings", err)
		}
		if *req.MaxSpots < accepted {
			return nil, apperrors.Conflict("max_spots cannot drop below the accepted booking count")
		}
		occasion.MaxSpots = *req.MaxSpots
	}
	if occasion.MinSpots > occasion.MaxSpots {
		return nil, apperrors.Validation("min_spots must not exceed max_spots", nil)
	}
	if req.Cost != nil {
		c, err := decimal.NewFromString(*req.Cost)
		if err != nil || c.IsNegative() {
			return nil, apperrors.Validation("invalid cost", nil)
		}
		occasion.Cost = &c
	}
	if len(req.Dates) > 0 {
		dates, err := parseDateRanges(req.Dates)
		if err != nil {
			return nil, err
		}
		occasion.Dates = dates
	}
	occasion.UpdatedAt = time.Now()

	if err := s.repo.Occasion.Update(ctx, occasion); err != nil {
		s.log.Error("Failed to update occasion", zap.Error(err), zap.String("occasion_id", occasionID))
		return nil, apperrors.Internal("failed to update occasion", err)
	}

	accepted, err := s.repo.Booking.CountAcceptedByOccasion(ctx, occasion.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to count accepted bookings", err)
	}

	resp := response.OccasionToResponse(occasion, accepted)
	return &resp, nil
}

// DuplicateOccasion clones the occasion's configuration into a fresh
// one with no bookings. Dates are copied as-is and usually edited right
// after.
func (s *occasionService) DuplicateOccasion(ctx context.Context, occasionID string) (*response.OccasionResponse, error) {
	source, err := s.findOccasion(ctx, occasionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	clone := &entity.Occasion{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ActivityID: source.ActivityID,
		PeriodID:   source.PeriodID,
		Dates:      append([]entity.DateRange(nil), source.Dates...),
		MinAge:     source.MinAge,
		MaxAge:     source.MaxAge,
		MinSpots:   source.MinSpots,
		MaxSpots:   source.MaxSpots,
	}
	if source.Cost != nil {
		cost := *source.Cost
		clone.Cost = &cost
	}

	if err := s.repo.Occasion.Create(ctx, clone); err != nil {
		s.log.Error("Failed to duplicate occasion", zap.Error(err), zap.String("occasion_id", occasionID))
		return nil, apperrors.Internal("failed to duplicate occasion", err)
	}

	s.log.Info("Occasion duplicated",
		zap.String("source_id", occasionID),
		zap.String("occasion_id", clone.ID.String()))

	resp := response.OccasionToResponse(clone, 0)
	return &resp, nil
}

// CancelOccasion marks the occasion cancelled and explicitly cancels
// its open and accepted bookings. Nothing cascades implicitly; every
// affected booking gets its own state change and event.
func (s *occasionService) CancelOccasion(ctx context.Context, occasionID string) error {
	occasion, err := s.findOccasion(ctx, occasionID)
	if err != nil {
		return err
	}
	if occasion.Cancelled {
		return nil
	}

	occasion.Cancelled = true
	occasion.UpdatedAt = time.Now()
	if err := s.repo.Occasion.Update(ctx, occasion); err != nil {
		s.log.Error("Failed to cancel occasion", zap.Error(err), zap.String("occasion_id", occasionID))
		return apperrors.Internal("failed to cancel occasion", err)
	}

	bookings, err := s.repo.Booking.FindByPeriodID(ctx, occasion.PeriodID)
	if err != nil {
		return apperrors.Internal("failed to load bookings", err)
	}

	var cancelled []uuid.UUID
	for _, booking := range bookings {
		if booking.OccasionID != occasion.ID || !booking.BlocksRegistration() {
			continue
		}
		cancelled = append(cancelled, booking.ID)
		s.events.Dispatch(events.Event{
			Type:       events.BookingCancelled,
			PeriodID:   booking.PeriodID,
			OccasionID: occasion.ID,
			BookingID:  booking.ID,
			AttendeeID: booking.AttendeeID,
			UserID:     booking.UserID,
		})
	}
	if err := s.repo.Booking.UpdateStatesBatch(ctx, cancelled, entity.BookingStateCancelled); err != nil {
		return apperrors.Internal("failed to cancel bookings", err)
	}

	s.events.Dispatch(events.Event{
		Type:       events.OccasionCancelled,
		PeriodID:   occasion.PeriodID,
		OccasionID: occasion.ID,
	})
	s.log.Info("Occasion cancelled",
		zap.String("occasion_id", occasionID),
		zap.Int("bookings_cancelled", len(cancelled)))
	return nil
}

// DeleteOccasion removes an occasion that never had bookings. Anything
// with booking history is cancelled instead so the records survive.
func (s *occasionService) DeleteOccasion(ctx context.Context, occasionID string) error {
	occasion, err := s.findOccasion(ctx, occasionID)
	if err != nil {
		return err
	}

	count, err := s.repo.Booking.CountNonCancelledByOccasion(ctx, occasion.ID)
	if err != nil {
		return apperrors.Internal("failed to count bookings", err)
	}
	if count > 0 {
		return apperrors.Conflict("occasions with bookings cannot be deleted, cancel instead")
	}

	if err := s.repo.Occasion.Delete(ctx, occasion.ID); err != nil {
		s.log.Error("Failed to delete occasion", zap.Error(err), zap.String("occasion_id", occasionID))
		return apperrors.Internal("failed to delete occasion", err)
	}

	s.log.Info("Occasion deleted", zap.String("occasion_id", occasionID))
	return nil
}

func (s *occasionService) findOccasion(ctx context.Context, occasionID string) (*entity.Occasion, error) {
	id, err := uuid.Parse(occasionID)
	if err != nil {
		return nil, apperrors.Validation("invalid occasion ID format", nil)
	}

	occasion, err := s.repo.Occasion.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load occasion", err)
	}
	if occasion == nil {
		return nil, apperrors.NotFoundWithID("occasion", occasionID)
	}
	return occasion, nil
}

func parseDateRanges(reqs []request.OccasionDateRequest) ([]entity.DateRange, error) {
	dates := make([]entity.DateRange, len(reqs))
	for i, d := range reqs {
		start, err := time.Parse(time.RFC3339, d.Start)
		if err != nil {
			return nil, apperrors.Validation("invalid date start", nil)
		}
		end, err := time.Parse(time.RFC3339, d.End)
		if err != nil {
			return nil, apperrors.Validation("invalid date end", nil)
		}
		if !end.After(start) {
			return nil, apperrors.Validation("date end must be after start", nil)
		}
		dates[i] = entity.DateRange{Start: start, End: end}
	}

	// Ranges must not overlap each other.
	for i := 1; i < len(dates); i++ {
		if dates[i].Start.Before(dates[i-1].End) {
			return nil, apperrors.Validation("occasion dates must be ordered and non-overlapping", nil)
		}
	}

	return dates, nil
}
