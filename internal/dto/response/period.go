package response

import (
	"time"

	"ferienpass/internal/data/entity"
)

type PeriodResponse struct {
	ID                     string             `json:"id"`
	Title                  string             `json:"title"`
	Phase                  entity.PeriodPhase `json:"phase"`
	Active                 bool               `json:"active"`
	Confirmable            bool               `json:"confirmable"`
	Finalizable            bool               `json:"finalizable"`
	PrebookingStart        time.Time          `json:"prebooking_start"`
	PrebookingEnd          time.Time          `json:"prebooking_end"`
	BookingStart           time.Time          `json:"booking_start"`
	BookingEnd             time.Time          `json:"booking_end"`
	ExecutionStart         time.Time          `json:"execution_start"`
	ExecutionEnd           time.Time          `json:"execution_end"`
	CancellationDate       *time.Time         `json:"cancellation_date,omitempty"`
	PassSystem             entity.PassSystem  `json:"pass_system"`
	FixedSystemLimit       *int               `json:"fixed_system_limit,omitempty"`
	MaxBookingsPerAttendee *int               `json:"max_bookings_per_attendee,omitempty"`
	AllInclusive           bool               `json:"all_inclusive"`
	BookingCost            string             `json:"booking_cost"`
	BookFinalized          bool               `json:"book_finalized"`
	MatchedAt              *time.Time         `json:"matched_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

func PeriodToResponse(period *entity.Period) PeriodResponse {
	return PeriodResponse{
		ID:                     period.ID.String(),
		Title:                  period.Title,
		Phase:                  period.Phase,
		Active:                 period.Active,
		Confirmable:            period.Confirmable,
		Finalizable:            period.Finalizable,
		PrebookingStart:        period.PrebookingStart,
		PrebookingEnd:          period.PrebookingEnd,
		BookingStart:           period.BookingStart,
		BookingEnd:             period.BookingEnd,
		ExecutionStart:         period.ExecutionStart,
		ExecutionEnd:           period.ExecutionEnd,
		CancellationDate:       period.CancellationDate,
		PassSystem:             period.PassSystem,
		FixedSystemLimit:       period.FixedSystemLimit,
		MaxBookingsPerAttendee: period.MaxBookingsPerAttendee,
		AllInclusive:           period.AllInclusive,
		BookingCost:            period.BookingCost.StringFixed(2),
		BookFinalized:          period.BookFinalized,
		MatchedAt:              period.MatchedAt,
		CreatedAt:              period.CreatedAt,
	}
}
