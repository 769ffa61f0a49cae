package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PeriodPhase string

const (
	PhaseWishlist  PeriodPhase = "wishlist"
	PhaseBooking   PeriodPhase = "booking"
	PhaseConfirmed PeriodPhase = "confirmed"
	PhaseFinalized PeriodPhase = "finalized"
	PhaseArchived  PeriodPhase = "archived"
)

type PassSystem string

const (
	PassSystemOpen  PassSystem = "open"
	PassSystemFixed PassSystem = "fixed"
)

// Period is one year's campaign. The phase only ever moves forward:
// wishlist -> booking -> confirmed -> finalized -> archived.
type Period struct {
	Base
	Title                  string          `db:"title"`
	Phase                  PeriodPhase     `db:"phase"`
	Active                 bool            `db:"active"`
	Confirmable            bool            `db:"confirmable"`
	Finalizable            bool            `db:"finalizable"`
	PrebookingStart        time.Time       `db:"prebooking_start"`
	PrebookingEnd          time.Time       `db:"prebooking_end"`
	BookingStart           time.Time       `db:"booking_start"`
	BookingEnd             time.Time       `db:"booking_end"`
	ExecutionStart         time.Time       `db:"execution_start"`
	ExecutionEnd           time.Time       `db:"execution_end"`
	CancellationDate       *time.Time      `db:"cancellation_date"`
	PassSystem             PassSystem      `db:"pass_system"`
	FixedSystemLimit       *int            `db:"fixed_system_limit"`
	MaxBookingsPerAttendee *int            `db:"max_bookings_per_attendee"`
	AllInclusive           bool            `db:"all_inclusive"`
	BookingCost            decimal.Decimal `db:"booking_cost"`
	BookFinalized          bool            `db:"book_finalized"`
	MatchedAt              *time.Time      `db:"matched_at"`
}

// phaseOrder maps each phase to its position in the lifecycle.
var phaseOrder = map[PeriodPhase]int{
	PhaseWishlist:  0,
	PhaseBooking:   1,
	PhaseConfirmed: 2,
	PhaseFinalized: 3,
	PhaseArchived:  4,
}

// CanTransition reports whether moving to the given phase is legal.
// Transitions are monotonic and skip at most nothing: confirm is modeled
// as wishlist->booking (booking opens) and booking->confirmed, finalize
// as confirmed->finalized (also allowed straight from booking), archive
// as the terminal step.
func (p *Period) CanTransition(to PeriodPhase) bool {
	from, ok := phaseOrder[p.Phase]
	if !ok {
		return false
	}
	target, ok := phaseOrder[to]
	if !ok {
		return false
	}

	switch to {
	case PhaseBooking:
		return p.Phase == PhaseWishlist
	case PhaseConfirmed:
		return p.Phase == PhaseBooking
	case PhaseFinalized:
		return p.Phase == PhaseBooking || p.Phase == PhaseConfirmed
	case PhaseArchived:
		return p.Phase == PhaseFinalized || (!p.Finalizable && target > from)
	default:
		return false
	}
}

// ReadOnly reports whether the period refuses all mutations.
func (p *Period) ReadOnly() bool {
	return p.Phase == PhaseArchived
}

// Confirmed reports whether the wishlist phase is over.
func (p *Period) Confirmed() bool {
	return phaseOrder[p.Phase] >= phaseOrder[PhaseConfirmed]
}

// Finalized reports whether invoices have been frozen.
func (p *Period) Finalized() bool {
	return phaseOrder[p.Phase] >= phaseOrder[PhaseFinalized]
}

// EffectiveLimit returns the per-attendee acceptance cap, or 0 if there
// is none. Under the fixed pass system the fixed limit wins.
func (p *Period) EffectiveLimit() int {
	if p.PassSystem == PassSystemFixed && p.FixedSystemLimit != nil {
		return *p.FixedSystemLimit
	}
	if p.MaxBookingsPerAttendee != nil {
		return *p.MaxBookingsPerAttendee
	}
	return 0
}

// CancellationAllowed reports whether a guardian may still cancel an
// accepted booking at the given time. Before confirmation cancellation
// is always allowed; afterwards the cancellation date gates it.
func (p *Period) CancellationAllowed(now time.Time) bool {
	if !p.Confirmed() {
		return true
	}
	if p.CancellationDate == nil {
		return false
	}
	return !now.After(*p.CancellationDate)
}
