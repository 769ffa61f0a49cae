package request

type CreatePeriodRequest struct {
	Title                  string  `json:"title" validate:"required,min=3,max=100"`
	PrebookingStart        string  `json:"prebooking_start" validate:"required"`
	PrebookingEnd          string  `json:"prebooking_end" validate:"required"`
	BookingStart           string  `json:"booking_start" validate:"required"`
	BookingEnd             string  `json:"booking_end" validate:"required"`
	ExecutionStart         string  `json:"execution_start" validate:"required"`
	ExecutionEnd           string  `json:"execution_end" validate:"required"`
	CancellationDate       *string `json:"cancellation_date,omitempty"`
	PassSystem             string  `json:"pass_system" validate:"required,oneof=open fixed"`
	FixedSystemLimit       *int    `json:"fixed_system_limit,omitempty" validate:"omitempty,min=0"`
	MaxBookingsPerAttendee *int    `json:"max_bookings_per_attendee,omitempty" validate:"omitempty,min=0"`
	AllInclusive           bool    `json:"all_inclusive"`
	BookingCost            string  `json:"booking_cost" validate:"required"`
	BookFinalized          bool    `json:"book_finalized"`
	Confirmable            bool    `json:"confirmable"`
	Finalizable            bool    `json:"finalizable"`
}

type UpdatePeriodRequest struct {
	Title                  *string `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	CancellationDate       *string `json:"cancellation_date,omitempty"`
	FixedSystemLimit       *int    `json:"fixed_system_limit,omitempty" validate:"omitempty,min=0"`
	MaxBookingsPerAttendee *int    `json:"max_bookings_per_attendee,omitempty" validate:"omitempty,min=0"`
	BookingCost            *string `json:"booking_cost,omitempty"`
	BookFinalized          *bool   `json:"book_finalized,omitempty"`
}
