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

type PeriodService interface {
	CreatePeriod(ctx context.Context, req *request.CreatePeriodRequest) (*response.PeriodResponse, error)
	UpdatePeriod(ctx context.Context, periodID string, req *request.UpdatePeriodRequest) (*response.PeriodResponse, error)
	GetPeriod(ctx context.Context, periodID string) (*response.PeriodResponse, error)
	GetActivePeriod(ctx context.Context) (*response.PeriodResponse, error)
	ListPeriods(ctx context.Context) ([]*response.PeriodResponse, error)
	ActivatePeriod(ctx context.Context, periodID string) error

	// Phase transitions. Each either fully succeeds or leaves the
	// period untouched.
	StartBookingPhase(ctx context.Context, periodID string) error
	ConfirmPeriod(ctx context.Context, periodID string) error
	FinalizePeriod(ctx context.Context, periodID string) error
	ArchivePeriod(ctx context.Context, periodID string) error
}

type periodService struct {
	repo     *repository.Repository
	invoices InvoiceService
	events   *events.Dispatcher
	log      *zap.Logger
}

func NewPeriodService(repo *repository.Repository, invoices InvoiceService, dispatcher *events.Dispatcher, log *zap.Logger) PeriodService {
	return &periodService{
		repo:     repo,
		invoices: invoices,
		events:   dispatcher,
		log:      log.With(zap.String("service", "period")),
	}
}

func (s *periodService) CreatePeriod(ctx context.Context, req *request.CreatePeriodRequest) (*response.PeriodResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create period validation failed", zap.Any("errors", errs))
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	prebookingStart, err := parseDate(req.PrebookingStart)
	if err != nil {
		return nil, apperrors.Validation("invalid prebooking_start", nil)
	}
	prebookingEnd, err := parseDate(req.PrebookingEnd)
	if err != nil {
		return nil, apperrors.Validation("invalid prebooking_end", nil)
	}
	bookingStart, err := parseDate(req.BookingStart)
	if err != nil {
		return nil, apperrors.Validation("invalid booking_start", nil)
	}
	bookingEnd, err := parseDate(req.BookingEnd)
	if err != nil {
		return nil, apperrors.Validation("invalid booking_end", nil)
	}
	executionStart, err := parseDate(req.ExecutionStart)
	if err != nil {
		return nil, apperrors.Validation("invalid execution_start", nil)
	}
	executionEnd, err := parseDate(req.ExecutionEnd)
	if err != nil {
		return nil, apperrors.Validation("invalid execution_end", nil)
	}

	// The three windows must follow each other without overlap.
	if prebookingEnd.Before(prebookingStart) || bookingEnd.Before(bookingStart) ||
		executionEnd.Before(executionStart) ||
		bookingStart.Before(prebookingEnd) || executionStart.Before(bookingEnd) {
		return nil, apperrors.Validation("period windows must be ordered: prebooking, booking, execution", nil)
	}

	bookingCost, err := decimal.NewFromString(req.BookingCost)
	if err != nil || bookingCost.IsNegative() {
		return nil, apperrors.Validation("invalid booking_cost", nil)
	}

	var cancellationDate *time.Time
	if req.CancellationDate != nil {
		d, err := parseDate(*req.CancellationDate)
		if err != nil {
			return nil, apperrors.Validation("invalid cancellation_date", nil)
		}
		cancellationDate = &d
	}

	now := time.Now()
	period := &entity.Period{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:                  req.Title,
		Phase:                  entity.PhaseWishlist,
		Active:                 false,
		Confirmable:            req.Confirmable,
		Finalizable:            req.Finalizable,
		PrebookingStart:        prebookingStart,
		PrebookingEnd:          prebookingEnd,
		BookingStart:           bookingStart,
		BookingEnd:             bookingEnd,
		ExecutionStart:         executionStart,
		ExecutionEnd:           executionEnd,
		CancellationDate:       cancellationDate,
		PassSystem:             entity.PassSystem(req.PassSystem),
		FixedSystemLimit:       req.FixedSystemLimit,
		MaxBookingsPerAttendee: req.MaxBookingsPerAttendee,
		AllInclusive:           req.AllInclusive,
		BookingCost:            bookingCost,
		BookFinalized:          req.BookFinalized,
	}

	if err := s.repo.Period.Create(ctx, period); err != nil {
		s.log.Error("Failed to create period", zap.Error(err))
		return nil, apperrors.Internal("failed to create period", err)
	}

	s.log.Info("Period created",
		zap.String("period_id", period.ID.String()),
		zap.String("title", period.Title))

	resp := response.PeriodToResponse(period)
	return &resp, nil
}

func (s *periodService) UpdatePeriod(ctx context.Context, periodID string, req *request.UpdatePeriodRequest) (*response.PeriodResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.ReadOnly() {
		return nil, apperrors.Conflict("archived periods are read-only")
	}

	if req.Title != nil {
		period.Title = *req.Title
	}
	if req.CancellationDate != nil {
		d, err := parseDate(*req.CancellationDate)
		if err != nil {
			return nil, apperrors.Validation("invalid cancellation_date", nil)
		}
		period.CancellationDate = &d
	}
	if req.FixedSystemLimit != nil {
		period.FixedSystemLimit = req.FixedSystemLimit
	}
	if req.MaxBookingsPerAttendee != nil {
		period.MaxBookingsPerAttendee = req.MaxBookingsPerAttendee
	}
	if req.BookingCost != nil {
		// Booking costs are frozen onto bookings at confirmation;
		// changing the rate afterwards would desync invoices.
		if period.Confirmed() {
			return nil, apperrors.Conflict("booking cost cannot change after confirmation")
		}
		cost, err := decimal.NewFromString(*req.BookingCost)
		if err != nil || cost.IsNegative() {
			return nil, apperrors.Validation("invalid booking_cost", nil)
		}
		period.BookingCost = cost
	}
	if req.BookFinalized != nil {
		period.BookFinalized = *req.BookFinalized
	}
	period.UpdatedAt = time.Now()

	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.log.Error("Failed to update period", zap.Error(err), zap.String("period_id", periodID))
		return nil, apperrors.Internal("failed to update period", err)
	}

	resp := response.PeriodToResponse(period)
	return &resp, nil
}

func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*response.PeriodResponse, error) {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	resp := response.PeriodToResponse(period)
	return &resp, nil
}

func (s *periodService) GetActivePeriod(ctx context.Context) (*response.PeriodResponse, error) {
	period, err := s.repo.Period.FindActive(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to load active period", err)
	}
	if period == nil {
		return nil, apperrors.NotFound("active period")
	}
	resp := response.PeriodToResponse(period)
	return &resp, nil
}

func (s *periodService) ListPeriods(ctx context.Context) ([]*response.PeriodResponse, error) {
	periods, err := s.repo.Period.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list periods", err)
	}

	resps := make([]*response.PeriodResponse, len(periods))
	for i, period := range periods {
		resp := response.PeriodToResponse(period)
		resps[i] = &resp
	}
	return resps, nil
}

// ActivatePeriod makes the period the single active one. The previous
// active period is deactivated first.
func (s *periodService) ActivatePeriod(ctx context.Context, periodID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if period.ReadOnly() {
		return apperrors.Conflict("archived periods cannot be activated")
	}

	current, err := s.repo.Period.FindActive(ctx)
	if err != nil {
		return apperrors.Internal("failed to load active period", err)
	}
	if current != nil && current.ID != period.ID {
		current.Active = false
		current.UpdatedAt = time.Now()
		if err := s.repo.Period.Update(ctx, current); err != nil {
			return apperrors.Internal("failed to deactivate current period", err)
		}
	}

	period.Active = true
	period.UpdatedAt = time.Now()
	if err := s.repo.Period.Update(ctx, period); err != nil {
		return apperrors.Internal("failed to activate period", err)
	}

	s.log.Info("Period activated", zap.String("period_id", period.ID.String()))
	return nil
}

// StartBookingPhase closes the wishlist. It requires a completed
// matching run so every booking already carries its verdict.
func (s *periodService) StartBookingPhase(ctx context.Context, periodID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if !period.CanTransition(entity.PhaseBooking) {
		return apperrors.InvalidPhaseTransition(string(period.Phase), string(entity.PhaseBooking))
	}
	if period.MatchedAt == nil {
		return apperrors.Conflict("matching must run before the booking phase opens")
	}

	period.Phase = entity.PhaseBooking
	period.UpdatedAt = time.Now()
	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.log.Error("Failed to start booking phase", zap.Error(err), zap.String("period_id", periodID))
		return apperrors.Internal("failed to start booking phase", err)
	}

	s.log.Info("Booking phase started", zap.String("period_id", period.ID.String()))
	return nil
}

// ConfirmPeriod locks in the matching results: remaining open bookings
// are denied (kept when BookFinalized allows late booking of leftovers)
// and every accepted booking gets its cost frozen from the occasion.
func (s *periodService) ConfirmPeriod(ctx context.Context, periodID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if !period.CanTransition(entity.PhaseConfirmed) {
		return apperrors.InvalidPhaseTransition(string(period.Phase), string(entity.PhaseConfirmed))
	}

	if !period.BookFinalized {
		deniedIDs, err := s.repo.Booking.DenyOpenByPeriod(ctx, period.ID)
		if err != nil {
			return apperrors.Internal("failed to deny open bookings", err)
		}
		for _, id := range deniedIDs {
			s.events.Dispatch(events.Event{
				Type:      events.BookingDenied,
				PeriodID:  period.ID,
				BookingID: id,
			})
		}
		s.log.Info("Open bookings denied on confirmation",
			zap.String("period_id", period.ID.String()),
			zap.Int("denied", len(deniedIDs)))
	}

	if err := s.freezeCosts(ctx, period); err != nil {
		return err
	}

	period.Phase = entity.PhaseConfirmed
	period.UpdatedAt = time.Now()
	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.log.Error("Failed to confirm period", zap.Error(err), zap.String("period_id", periodID))
		return apperrors.Internal("failed to confirm period", err)
	}

	s.events.Dispatch(events.Event{Type: events.PeriodConfirmed, PeriodID: period.ID})
	s.log.Info("Period confirmed", zap.String("period_id", period.ID.String()))
	return nil
}

// freezeCosts copies each accepted booking's current occasion price
// onto the booking row. Later occasion price edits no longer affect
// confirmed bookings.
func (s *periodService) freezeCosts(ctx context.Context, period *entity.Period) error {
	occasions, err := s.repo.Occasion.FindByPeriodID(ctx, period.ID)
	if err != nil {
		return apperrors.Internal("failed to load occasions", err)
	}
	costs := make(map[uuid.UUID]decimal.Decimal, len(occasions))
	for _, occasion := range occasions {
		costs[occasion.ID] = occasion.TotalCost(period)
	}

	bookings, err := s.repo.Booking.FindByPeriodID(ctx, period.ID)
	if err != nil {
		return apperrors.Internal("failed to load bookings", err)
	}

	for _, booking := range bookings {
		if booking.State != entity.BookingStateAccepted {
			continue
		}
		cost, ok := costs[booking.OccasionID]
		if !ok {
			continue
		}
		if booking.Cost.Equal(cost) {
			continue
		}
		booking.Cost = cost
		booking.UpdatedAt = time.Now()
		if err := s.repo.Booking.Update(ctx, booking); err != nil {
			return apperrors.Internal("failed to freeze booking cost", err)
		}
	}

	return nil
}

// FinalizePeriod freezes the books and recomputes every payer's
// invoice one last time.
func (s *periodService) FinalizePeriod(ctx context.Context, periodID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if !period.Finalizable {
		return apperrors.Conflict("period is not finalizable")
	}
	if !period.CanTransition(entity.PhaseFinalized) {
		return apperrors.InvalidPhaseTransition(string(period.Phase), string(entity.PhaseFinalized))
	}

	if err := s.invoices.RecomputeAll(ctx, period.ID); err != nil {
		return err
	}

	period.Phase = entity.PhaseFinalized
	period.UpdatedAt = time.Now()
	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.log.Error("Failed to finalize period", zap.Error(err), zap.String("period_id", periodID))
		return apperrors.Internal("failed to finalize period", err)
	}

	s.events.Dispatch(events.Event{Type: events.PeriodFinalized, PeriodID: period.ID})
	s.log.Info("Period finalized", zap.String("period_id", period.ID.String()))
	return nil
}

func (s *periodService) ArchivePeriod(ctx context.Context, periodID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if !period.CanTransition(entity.PhaseArchived) {
		return apperrors.InvalidPhaseTransition(string(period.Phase), string(entity.PhaseArchived))
	}

	period.Phase = entity.PhaseArchived
	period.Active = false
	period.UpdatedAt = time.Now()
	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.log.Error("Failed to archive period", zap.Error(err), zap.String("period_id", periodID))
		return apperrors.Internal("failed to archive period", err)
	}

	s.log.Info("Period archived", zap.String("period_id", period.ID.String()))
	return nil
}

func (s *periodService) findPeriod(ctx context.Context, periodID string) (*entity.Period, error) {
	id, err := uuid.Parse(periodID)
	if err != nil {
		return nil, apperrors.Validation("invalid period ID format", nil)
	}

	period, err := s.repo.Period.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load period", err)
	}
	if period == nil {
		return nil, apperrors.NotFoundWithID("period", periodID)
	}
	return period, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
