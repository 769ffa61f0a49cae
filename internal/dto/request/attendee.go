package request

type CreateAttendeeRequest struct {
	FirstName string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string  `json:"last_name" validate:"required,min=1,max=100"`
	BirthDate string  `json:"birth_date" validate:"required"`
	Gender    string  `json:"gender" validate:"omitempty,oneof=female male other"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateAttendeeRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	BirthDate *string `json:"birth_date,omitempty"`
	Gender    *string `json:"gender,omitempty" validate:"omitempty,oneof=female male other"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
