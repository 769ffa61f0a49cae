package request

type CreateActivityRequest struct {
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Organiser string `json:"organiser" validate:"required,min=2,max=200"`
}

type OccasionDateRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type CreateOccasionRequest struct {
	ActivityID string                `json:"activity_id" validate:"required,uuid4"`
	PeriodID   string                `json:"period_id" validate:"required,uuid4"`
	MinAge     int                   `json:"min_age" validate:"min=0,max=99"`
	MaxAge     int                   `json:"max_age" validate:"min=0,max=99,gtefield=MinAge"`
	MinSpots   int                   `json:"min_spots" validate:"min=0"`
	MaxSpots   int                   `json:"max_spots" validate:"required,min=1"`
	Cost       *string               `json:"cost,omitempty"`
	Dates      []OccasionDateRequest `json:"dates" validate:"required,min=1,dive"`
}

type UpdateOccasionRequest struct {
	MinAge   *int                  `json:"min_age,omitempty" validate:"omitempty,min=0,max=99"`
	MaxAge   *int                  `json:"max_age,omitempty" validate:"omitempty,min=0,max=99"`
	MinSpots *int                  `json:"min_spots,omitempty" validate:"omitempty,min=0"`
	MaxSpots *int                  `json:"max_spots,omitempty" validate:"omitempty,min=1"`
	Cost     *string               `json:"cost,omitempty"`
	Dates    []OccasionDateRequest `json:"dates,omitempty" validate:"omitempty,min=1,dive"`
}
