package response

import (
	"time"

	"ferienpass/internal/data/entity"
)

type ActivityResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Organiser string    `json:"organiser"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type OccasionDateResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type OccasionResponse struct {
	ID            string                 `json:"id"`
	ActivityID    string                 `json:"activity_id"`
	ActivityTitle string                 `json:"activity_title,omitempty"`
	PeriodID      string                 `json:"period_id"`
	Dates         []OccasionDateResponse `json:"dates"`
	MinAge        int                    `json:"min_age"`
	MaxAge        int                    `json:"max_age"`
	MinSpots      int                    `json:"min_spots"`
	MaxSpots      int                    `json:"max_spots"`
	Cost          *string                `json:"cost,omitempty"`
	Cancelled     bool                   `json:"cancelled"`
	Flagged       bool                   `json:"flagged"`
	AcceptedCount int                    `json:"accepted_count"`
	CreatedAt     time.Time              `json:"created_at"`
}

func ActivityToResponse(activity *entity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        activity.ID.String(),
		Title:     activity.Title,
		Organiser: activity.Organiser,
		OwnerID:   activity.OwnerID.String(),
		CreatedAt: activity.CreatedAt,
	}
}

func OccasionToResponse(occasion *entity.Occasion, acceptedCount int) OccasionResponse {
	dates := make([]OccasionDateResponse, len(occasion.Dates))
	for i, d := range occasion.Dates {
		dates[i] = OccasionDateResponse{Start: d.Start, End: d.End}
	}

	resp := OccasionResponse{
		ID:            occasion.ID.String(),
		ActivityID:    occasion.ActivityID.String(),
		PeriodID:      occasion.PeriodID.String(),
		Dates:         dates,
		MinAge:        occasion.MinAge,
		MaxAge:        occasion.MaxAge,
		MinSpots:      occasion.MinSpots,
		MaxSpots:      occasion.MaxSpots,
		Cancelled:     occasion.Cancelled,
		Flagged:       occasion.Flagged,
		AcceptedCount: acceptedCount,
		CreatedAt:     occasion.CreatedAt,
	}

	if occasion.Cost != nil {
		cost := occasion.Cost.StringFixed(2)
		resp.Cost = &cost
	}

	return resp
}
