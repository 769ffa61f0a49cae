package response

import (
	"time"

	"ferienpass/internal/data/entity"
)

type AttendeeResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	BirthDate time.Time     `json:"birth_date"`
	Gender    entity.Gender `json:"gender,omitempty"`
	Notes     *string       `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func AttendeeToResponse(attendee *entity.Attendee) AttendeeResponse {
	return AttendeeResponse{
		ID:        attendee.ID.String(),
		UserID:    attendee.UserID.String(),
		FirstName: attendee.FirstName,
		LastName:  attendee.LastName,
		BirthDate: attendee.BirthDate,
		Gender:    attendee.Gender,
		Notes:     attendee.Notes,
		CreatedAt: attendee.CreatedAt,
	}
}
