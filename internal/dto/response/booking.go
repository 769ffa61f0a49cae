package response

import (
	"time"

	"ferienpass/internal/data/entity"
)

type BookingResponse struct {
	ID            string              `json:"id"`
	AttendeeID    string              `json:"attendee_id"`
	AttendeeName  string              `json:"attendee_name,omitempty"`
	OccasionID    string              `json:"occasion_id"`
	ActivityTitle string              `json:"activity_title,omitempty"`
	PeriodID      string              `json:"period_id"`
	GroupCode     *string             `json:"group_code,omitempty"`
	State         entity.BookingState `json:"state"`
	Cost          string              `json:"cost"`
	Priority      int                 `json:"priority"`
	CreatedAt     time.Time           `json:"created_at"`
}

type MatchingRunResponse struct {
	PeriodID         string    `json:"period_id"`
	Accepted         int       `json:"accepted"`
	Denied           int       `json:"denied"`
	FlaggedOccasions int       `json:"flagged_occasions"`
	MatchedAt        time.Time `json:"matched_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:         booking.ID.String(),
		AttendeeID: booking.AttendeeID.String(),
		OccasionID: booking.OccasionID.String(),
		PeriodID:   booking.PeriodID.String(),
		GroupCode:  booking.GroupCode,
		State:      booking.State,
		Cost:       booking.Cost.StringFixed(2),
		Priority:   booking.Priority,
		CreatedAt:  booking.CreatedAt,
	}
}
