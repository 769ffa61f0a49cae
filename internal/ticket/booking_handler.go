package ticket

import (
	"context"

	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/events"

	"go.uber.org/zap"
)

// KindBookingCancellation is filed when a guardian asks to cancel an
// accepted booking after the period's cancellation window closed.
const KindBookingCancellation = "booking.cancellation"

// BookingCancellationHandler resolves late cancellation requests: on
// close the booking is cancelled by operator authority.
type BookingCancellationHandler struct {
	repo   *repository.Repository
	events *events.Dispatcher
	log    *zap.Logger
}

func NewBookingCancellationHandler(repo *repository.Repository, dispatcher *events.Dispatcher, log *zap.Logger) *BookingCancellationHandler {
	return &BookingCancellationHandler{
		repo:   repo,
		events: dispatcher,
		log:    log.With(zap.String("handler", KindBookingCancellation)),
	}
}

func (h *BookingCancellationHandler) Kind() string {
	return KindBookingCancellation
}

func (h *BookingCancellationHandler) Links(ctx context.Context, t *Ticket) []Link {
	links := []Link{{Rel: "booking", ID: t.SubjectID}}
	booking, err := h.repo.Booking.FindByID(ctx, t.SubjectID)
	if err != nil || booking == nil {
		return links
	}
	return append(links,
		Link{Rel: "attendee", ID: booking.AttendeeID},
		Link{Rel: "occasion", ID: booking.OccasionID},
	)
}

func (h *BookingCancellationHandler) CanClose(ctx context.Context, t *Ticket) bool {
	booking, err := h.repo.Booking.FindByID(ctx, t.SubjectID)
	if err != nil || booking == nil {
		return false
	}
	return booking.CanTransition(entity.BookingStateCancelled) ||
		booking.State == entity.BookingStateCancelled
}

func (h *BookingCancellationHandler) OnAccept(ctx context.Context, t *Ticket) error {
	return nil
}

func (h *BookingCancellationHandler) OnClose(ctx context.Context, t *Ticket) error {
	booking, err := h.repo.Booking.FindByID(ctx, t.SubjectID)
	if err != nil {
		return err
	}
	if booking == nil || booking.State == entity.BookingStateCancelled {
		return nil
	}

	if err := h.repo.Booking.UpdateState(ctx, booking.ID, entity.BookingStateCancelled); err != nil {
		return err
	}

	// Cancelling here must trigger the same reactions as a regular
	// cancellation, invoice recomputation included.
	h.events.Dispatch(events.Event{
		Type:       events.BookingCancelled,
		PeriodID:   booking.PeriodID,
		OccasionID: booking.OccasionID,
		BookingID:  booking.ID,
		AttendeeID: booking.AttendeeID,
		UserID:     booking.UserID,
	})

	h.log.Info("Late cancellation granted",
		zap.String("booking_id", booking.ID.String()))
	return nil
}
