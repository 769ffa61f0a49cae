package usecase

import (
	"context"
	"time"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/internal/dto/request"
	"ferienpass/internal/dto/response"
	"ferienpass/internal/ticket"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/events"
	"ferienpass/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BookingService interface {
	// Guardian operations. The operator flag unlocks the age waiver on
	// registration requests; guardians asking for it are refused.
	CreateWishlistBooking(ctx context.Context, userID string, req *request.CreateWishlistBookingRequest, operator bool) (*response.BookingResponse, error)
	ReserveBooking(ctx context.Context, userID string, req *request.ReserveBookingRequest, operator bool) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, userID, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, userID, bookingID string, operator bool) error
	GetUserBookings(ctx context.Context, userID, periodID string) ([]*response.BookingResponse, error)

	// Operator overrides.
	AcceptBooking(ctx context.Context, bookingID string) error
	DenyBooking(ctx context.Context, bookingID string) error
	BlockBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo         *repository.Repository
	events       *events.Dispatcher
	tickets      *ticket.Registry
	occasionLock *keyedMutex
	log          *zap.Logger
}

func NewBookingService(repo *repository.Repository, dispatcher *events.Dispatcher, tickets *ticket.Registry, log *zap.Logger) BookingService {
	return &bookingService{
		repo:         repo,
		events:       dispatcher,
		tickets:      tickets,
		occasionLock: newKeyedMutex(),
		log:          log.With(zap.String("service", "booking")),
	}
}

// CreateWishlistBooking registers a wish during the wishlist phase. The
// booking stays open until the matching run decides it.
func (s *bookingService) CreateWishlistBooking(ctx context.Context, userID string, req *request.CreateWishlistBookingRequest, operator bool) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create wishlist booking validation failed", zap.Any("errors", errs))
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}
	if req.IgnoreAge && !operator {
		return nil, apperrors.Forbidden("only operators may waive the age check")
	}

	target, err := s.loadTarget(ctx, userID, req.AttendeeID, req.OccasionID)
	if err != nil {
		return nil, err
	}

	if target.period.Phase != entity.PhaseWishlist {
		return nil, apperrors.Conflict("wishlist registrations are only possible during the wishlist phase")
	}

	if err := s.checkRegistrable(ctx, target, req.IgnoreAge); err != nil {
		return nil, err
	}

	if req.Priority > 0 {
		starred, err := s.repo.Booking.CountStarred(ctx, target.attendee.ID, target.period.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count starred bookings", err)
		}
		if starred >= entity.MaxStarredBookings {
			return nil, apperrors.Conflict("starred booking limit reached")
		}
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AttendeeID: target.attendee.ID,
		OccasionID: target.occasion.ID,
		PeriodID:   target.period.ID,
		UserID:     target.user,
		GroupCode:  req.GroupCode,
		State:      entity.BookingStateOpen,
		Cost:       decimal.Zero,
		Priority:   req.Priority,
		IgnoreAge:  req.IgnoreAge,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.log.Error("Failed to create wishlist booking", zap.Error(err))
		return nil, apperrors.Internal("failed to create booking", err)
	}

	s.log.Info("Wishlist booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("attendee_id", req.AttendeeID),
		zap.String("occasion_id", req.OccasionID))

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ReserveBooking books a concrete spot during the booking phase. The
// per-occasion mutex plus the transactional capacity check in the
// repository guarantee the occasion never exceeds max_spots, no matter
// how many requests race.
func (s *bookingService) ReserveBooking(ctx context.Context, userID string, req *request.ReserveBookingRequest, operator bool) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reserve booking validation failed", zap.Any("errors", errs))
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}
	if req.IgnoreAge && !operator {
		return nil, apperrors.Forbidden("only operators may waive the age check")
	}

	target, err := s.loadTarget(ctx, userID, req.AttendeeID, req.OccasionID)
	if err != nil {
		return nil, err
	}

	switch target.period.Phase {
	case entity.PhaseBooking:
	case entity.PhaseConfirmed:
		// Leftover spots stay bookable after confirmation when the
		// period allows it.
		if !target.period.BookFinalized {
			return nil, apperrors.Conflict("direct booking is closed for this period")
		}
	default:
		return nil, apperrors.Conflict("direct booking is only possible during the booking phase")
	}

	if err := s.checkRegistrable(ctx, target, req.IgnoreAge); err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AttendeeID: target.attendee.ID,
		OccasionID: target.occasion.ID,
		PeriodID:   target.period.ID,
		UserID:     target.user,
		GroupCode:  req.GroupCode,
		State:      entity.BookingStateAccepted,
		Cost:       target.occasion.TotalCost(target.period),
		IgnoreAge:  req.IgnoreAge,
	}

	// The per-attendee limit is checked inside the same transaction as
	// capacity, so racing reservations on different occasions cannot
	// push an attendee over it.
	s.occasionLock.Lock(target.occasion.ID)
	err = s.repo.Booking.ReserveAccepted(ctx, booking, target.occasion.MaxSpots, target.period.EffectiveLimit())
	s.occasionLock.Unlock(target.occasion.ID)
	if err != nil {
		s.log.Warn("Reservation rejected",
			zap.Error(err),
			zap.String("occasion_id", req.OccasionID))
		return nil, err
	}

	s.events.Dispatch(events.Event{
		Type:       events.BookingAccepted,
		PeriodID:   booking.PeriodID,
		OccasionID: booking.OccasionID,
		BookingID:  booking.ID,
		AttendeeID: booking.AttendeeID,
		UserID:     booking.UserID,
	})
	s.log.Info("Booking reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("occasion_id", req.OccasionID))

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// UpdateBooking adjusts priority or group code of an open booking
// during the wishlist phase.
func (s *bookingService) UpdateBooking(ctx context.Context, userID, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	booking, err := s.findOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.State != entity.BookingStateOpen {
		return nil, apperrors.Conflict("only open bookings can be edited")
	}

	period, err := s.repo.Period.FindByID(ctx, booking.PeriodID)
	if err != nil || period == nil {
		return nil, apperrors.Internal("failed to load period", err)
	}
	if period.Phase != entity.PhaseWishlist {
		return nil, apperrors.Conflict("bookings can only be edited during the wishlist phase")
	}

	if req.Priority != nil && *req.Priority != booking.Priority {
		if *req.Priority > 0 {
			starred, err := s.repo.Booking.CountStarred(ctx, booking.AttendeeID, booking.PeriodID)
			if err != nil {
				return nil, apperrors.Internal("failed to count starred bookings", err)
			}
			if starred >= entity.MaxStarredBookings {
				return nil, apperrors.Conflict("starred booking limit reached")
			}
		}
		booking.Priority = *req.Priority
	}
	if req.GroupCode != nil {
		booking.GroupCode = req.GroupCode
	}
	booking.UpdatedAt = time.Now()

	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		s.log.Error("Failed to update booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, apperrors.Internal("failed to update booking", err)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// CancelBooking cancels an open or accepted booking. Guardians are
// bound by the period's cancellation window once the period is
// confirmed; operators are not.
func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID string, operator bool) error {
	var booking *entity.Booking
	var err error
	if operator {
		booking, err = s.findBooking(ctx, bookingID)
	} else {
		booking, err = s.findOwnedBooking(ctx, userID, bookingID)
	}
	if err != nil {
		return err
	}

	if !booking.CanTransition(entity.BookingStateCancelled) {
		return apperrors.Conflict("booking cannot be cancelled in its current state")
	}

	if !operator {
		period, err := s.repo.Period.FindByID(ctx, booking.PeriodID)
		if err != nil || period == nil {
			return apperrors.Internal("failed to load period", err)
		}
		if !period.CancellationAllowed(time.Now()) {
			// Late requests go to the operator work queue instead of
			// being dropped.
			if s.tickets != nil {
				if _, terr := s.tickets.Open(ticket.KindBookingCancellation, booking.ID, "guardian requested cancellation after the deadline"); terr != nil {
					s.log.Warn("Failed to file cancellation ticket", zap.Error(terr))
				}
			}
			return apperrors.CancellationWindowClosed()
		}
	}

	if err := s.repo.Booking.UpdateState(ctx, booking.ID, entity.BookingStateCancelled); err != nil {
		s.log.Error("Failed to cancel booking", zap.Error(err), zap.String("booking_id", bookingID))
		return apperrors.Internal("failed to cancel booking", err)
	}

	s.events.Dispatch(events.Event{
		Type:       events.BookingCancelled,
		PeriodID:   booking.PeriodID,
		OccasionID: booking.OccasionID,
		BookingID:  booking.ID,
		AttendeeID: booking.AttendeeID,
		UserID:     booking.UserID,
	})
	s.log.Info("Booking cancelled", zap.String("booking_id", bookingID))
	return nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID, periodID string) ([]*response.BookingResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}
	periodUUID, err := uuid.Parse(periodID)
	if err != nil {
		return nil, apperrors.Validation("invalid period ID format", nil)
	}

	bookings, err := s.repo.Booking.FindByUserAndPeriod(ctx, userUUID, periodUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to list bookings", err)
	}

	resps := make([]*response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		resp := response.BookingToResponse(booking)
		resps[i] = &resp
	}
	return resps, nil
}

// AcceptBooking is the operator override that forces a booking in,
// still subject to the capacity invariant.
func (s *bookingService) AcceptBooking(ctx context.Context, bookingID string) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanTransition(entity.BookingStateAccepted) {
		return apperrors.Conflict("booking cannot be accepted in its current state")
	}

	occasion, err := s.repo.Occasion.FindByID(ctx, booking.OccasionID)
	if err != nil || occasion == nil {
		return apperrors.Internal("failed to load occasion", err)
	}
	if occasion.Cancelled {
		return apperrors.Conflict("occasion is cancelled")
	}

	s.occasionLock.Lock(occasion.ID)
	defer s.occasionLock.Unlock(occasion.ID)

	accepted, err := s.repo.Booking.CountAcceptedByOccasion(ctx, occasion.ID)
	if err != nil {
		return apperrors.Internal("failed to count accepted bookings", err)
	}
	if accepted >= occasion.MaxSpots {
		return apperrors.CapacityExceeded(occasion.ID.String())
	}

	if err := s.repo.Booking.UpdateState(ctx, booking.ID, entity.BookingStateAccepted); err != nil {
		return apperrors.Internal("failed to accept booking", err)
	}

	s.events.Dispatch(events.Event{
		Type:       events.BookingAccepted,
		PeriodID:   booking.PeriodID,
		OccasionID: booking.OccasionID,
		BookingID:  booking.ID,
		AttendeeID: booking.AttendeeID,
		UserID:     booking.UserID,
	})
	s.log.Info("Booking accepted by operator", zap.String("booking_id", bookingID))
	return nil
}

func (s *bookingService) DenyBooking(ctx context.Context, bookingID string) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanTransition(entity.BookingStateDenied) {
		return apperrors.Conflict("booking cannot be denied in its current state")
	}

	if err := s.repo.Booking.UpdateState(ctx, booking.ID, entity.BookingStateDenied); err != nil {
		return apperrors.Internal("failed to deny booking", err)
	}

	s.events.Dispatch(events.Event{
		Type:       events.BookingDenied,
		PeriodID:   booking.PeriodID,
		OccasionID: booking.OccasionID,
		BookingID:  booking.ID,
		AttendeeID: booking.AttendeeID,
		UserID:     booking.UserID,
	})
	s.log.Info("Booking denied by operator", zap.String("booking_id", bookingID))
	return nil
}

// BlockBooking suspends an accepted booking, e.g. while a payment
// dispute is sorted out. The spot is freed while blocked; re-accepting
// goes through the capacity check again.
func (s *bookingService) BlockBooking(ctx context.Context, bookingID string) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanTransition(entity.BookingStateBlocked) {
		return apperrors.Conflict("booking cannot be blocked in its current state")
	}

	if err := s.repo.Booking.UpdateState(ctx, booking.ID, entity.BookingStateBlocked); err != nil {
		return apperrors.Internal("failed to block booking", err)
	}

	s.events.Dispatch(events.Event{
		Type:       events.BookingBlocked,
		PeriodID:   booking.PeriodID,
		OccasionID: booking.OccasionID,
		BookingID:  booking.ID,
		AttendeeID: booking.AttendeeID,
		UserID:     booking.UserID,
	})
	s.log.Info("Booking blocked", zap.String("booking_id", bookingID))
	return nil
}

// bookingTarget bundles the validated participants of a registration.
type bookingTarget struct {
	user     uuid.UUID
	attendee *entity.Attendee
	occasion *entity.Occasion
	period   *entity.Period
}

func (s *bookingService) loadTarget(ctx context.Context, userID, attendeeID, occasionID string) (*bookingTarget, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}
	attendeeUUID, err := uuid.Parse(attendeeID)
	if err != nil {
		return nil, apperrors.Validation("invalid attendee ID format", nil)
	}
	occasionUUID, err := uuid.Parse(occasionID)
	if err != nil {
		return nil, apperrors.Validation("invalid occasion ID format", nil)
	}

	attendee, err := s.repo.Attendee.FindByID(ctx, attendeeUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to load attendee", err)
	}
	if attendee == nil {
		return nil, apperrors.NotFoundWithID("attendee", attendeeID)
	}
	if attendee.UserID != userUUID {
		return nil, apperrors.Forbidden("attendee belongs to another account")
	}

	occasion, err := s.repo.Occasion.FindByID(ctx, occasionUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to load occasion", err)
	}
	if occasion == nil {
		return nil, apperrors.NotFoundWithID("occasion", occasionID)
	}

	period, err := s.repo.Period.FindByID(ctx, occasion.PeriodID)
	if err != nil || period == nil {
		return nil, apperrors.Internal("failed to load period", err)
	}

	return &bookingTarget{
		user:     userUUID,
		attendee: attendee,
		occasion: occasion,
		period:   period,
	}, nil
}

// checkRegistrable enforces the invariants shared by wishlist and
// direct registration: live occasion, no second open or accepted
// booking for the pair, attendee age within range unless an operator
// waived it.
func (s *bookingService) checkRegistrable(ctx context.Context, target *bookingTarget, ignoreAge bool) error {
	if target.occasion.Cancelled {
		return apperrors.Conflict("occasion is cancelled")
	}

	blocking, err := s.repo.Booking.FindBlocking(ctx, target.attendee.ID, target.occasion.ID)
	if err != nil {
		return apperrors.Internal("failed to check existing bookings", err)
	}
	if blocking != nil {
		return apperrors.DuplicateRegistration(target.attendee.ID.String(), target.occasion.ID.String())
	}

	if !ignoreAge {
		referenceDay := target.period.ExecutionStart
		if len(target.occasion.Dates) > 0 {
			referenceDay = target.occasion.Dates[0].Start
		}
		age := target.attendee.AgeOn(referenceDay)
		if !target.occasion.AgeOK(age) {
			return apperrors.AgeRangeViolation(age, target.occasion.MinAge, target.occasion.MaxAge)
		}
	}

	return nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperrors.Validation("invalid booking ID format", nil)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load booking", err)
	}
	if booking == nil {
		return nil, apperrors.NotFoundWithID("booking", bookingID)
	}
	return booking, nil
}

func (s *bookingService) findOwnedBooking(ctx context.Context, userID, bookingID string) (*entity.Booking, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userUUID {
		return nil, apperrors.Forbidden("booking belongs to another account")
	}
	return booking, nil
}
