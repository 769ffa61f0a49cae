package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingState string

const (
	BookingStateOpen      BookingState = "open"
	BookingStateAccepted  BookingState = "accepted"
	BookingStateDenied    BookingState = "denied"
	BookingStateBlocked   BookingState = "blocked"
	BookingStateCancelled BookingState = "cancelled"
)

// MaxStarredBookings caps the number of priority stars an attendee may
// hand out per period during the wishlist phase.
const MaxStarredBookings = 3

// Booking assigns an attendee to an occasion. At most one booking per
// (attendee, occasion) pair may be open or accepted at any time;
// cancelled and denied bookings do not block re-registration.
type Booking struct {
	Base
	AttendeeID uuid.UUID       `db:"attendee_id"`
	OccasionID uuid.UUID       `db:"occasion_id"`
	PeriodID   uuid.UUID       `db:"period_id"`
	UserID     uuid.UUID       `db:"user_id"`
	GroupCode  *string         `db:"group_code"`
	State      BookingState    `db:"state"`
	Cost       decimal.Decimal `db:"cost"`
	Priority   int             `db:"priority"`
	IgnoreAge  bool            `db:"ignore_age"`
}

// Starred reports whether the guardian marked this as a top choice.
func (b *Booking) Starred() bool {
	return b.Priority > 0
}

// BlocksRegistration reports whether this booking occupies the
// (attendee, occasion) slot for the uniqueness check.
func (b *Booking) BlocksRegistration() bool {
	return b.State == BookingStateOpen || b.State == BookingStateAccepted
}

// bookingTransitions lists the legal state changes. cancelled -> open is
// deliberately absent: reactivation happens through a fresh booking.
var bookingTransitions = map[BookingState][]BookingState{
	BookingStateOpen:      {BookingStateAccepted, BookingStateDenied, BookingStateCancelled},
	BookingStateAccepted:  {BookingStateCancelled, BookingStateBlocked},
	BookingStateDenied:    {},
	BookingStateBlocked:   {BookingStateAccepted},
	BookingStateCancelled: {},
}

// CanTransition reports whether moving to the given state is legal.
func (b *Booking) CanTransition(to BookingState) bool {
	for _, s := range bookingTransitions[b.State] {
		if s == to {
			return true
		}
	}
	return false
}
