package request

type CreateWishlistBookingRequest struct {
	AttendeeID string  `json:"attendee_id" validate:"required,uuid4"`
	OccasionID string  `json:"occasion_id" validate:"required,uuid4"`
	Priority   int     `json:"priority" validate:"min=0,max=1"`
	GroupCode  *string `json:"group_code,omitempty" validate:"omitempty,min=4,max=32"`
	// IgnoreAge waives the age range check. Operators only.
	IgnoreAge bool `json:"ignore_age,omitempty"`
}

type ReserveBookingRequest struct {
	AttendeeID string  `json:"attendee_id" validate:"required,uuid4"`
	OccasionID string  `json:"occasion_id" validate:"required,uuid4"`
	GroupCode  *string `json:"group_code,omitempty" validate:"omitempty,min=4,max=32"`
	// IgnoreAge waives the age range check. Operators only.
	IgnoreAge bool `json:"ignore_age,omitempty"`
}

type UpdateBookingRequest struct {
	Priority  *int    `json:"priority,omitempty" validate:"omitempty,min=0,max=1"`
	GroupCode *string `json:"group_code,omitempty" validate:"omitempty,min=4,max=32"`
}
