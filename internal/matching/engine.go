// Package matching implements the batch allocation run ("Zuteilung")
// that converts open wishlist bookings into accepted or denied ones.
//
// The engine is a priority-weighted greedy assignment over a consistent
// snapshot: it never touches storage itself and re-running it on an
// unchanged input produces the identical outcome.
package matching

import (
	"sort"

	"ferienpass/internal/data/entity"

	"github.com/google/uuid"
)

// Input is the snapshot the engine works on. Bookings must contain all
// non-cancelled bookings of the period: accepted ones count toward
// capacity and per-attendee limits, open ones are assigned.
type Input struct {
	Period    *entity.Period
	Occasions []*entity.Occasion
	Bookings  []*entity.Booking

	// Ages holds each attendee's age at the period's execution start.
	Ages map[uuid.UUID]int
}

// Result lists the state changes the caller should persist.
type Result struct {
	Accepted []uuid.UUID
	Denied   []uuid.UUID

	// FlaggedOccasions are occasions left below their minimum spots.
	// They are flagged for operator review, never auto-cancelled.
	FlaggedOccasions []uuid.UUID
}

// Run executes one matching pass.
//
// Candidates within an occasion are ordered by priority stars first,
// then by how many acceptances the attendee already holds (fewer wins),
// then by creation time and id as tie-breaks. Bookings sharing a group
// code are pulled next to their group's best-ranked member so the group
// is processed as one ordered list; each member still consumes its own
// spot and counts against its own attendee limit.
func Run(in Input) Result {
	occasions := make([]*entity.Occasion, len(in.Occasions))
	copy(occasions, in.Occasions)
	sort.Slice(occasions, func(i, j int) bool {
		if !occasions[i].CreatedAt.Equal(occasions[j].CreatedAt) {
			return occasions[i].CreatedAt.Before(occasions[j].CreatedAt)
		}
		return occasions[i].ID.String() < occasions[j].ID.String()
	})

	limit := in.Period.EffectiveLimit()

	acceptedByAttendee := make(map[uuid.UUID]int)
	acceptedByOccasion := make(map[uuid.UUID]int)
	openByOccasion := make(map[uuid.UUID][]*entity.Booking)

	for _, b := range in.Bookings {
		switch b.State {
		case entity.BookingStateAccepted:
			acceptedByAttendee[b.AttendeeID]++
			acceptedByOccasion[b.OccasionID]++
		case entity.BookingStateOpen:
			openByOccasion[b.OccasionID] = append(openByOccasion[b.OccasionID], b)
		}
	}

	var result Result

	for _, occasion := range occasions {
		candidates := openByOccasion[occasion.ID]
		if len(candidates) == 0 {
			continue
		}

		if occasion.Cancelled {
			for _, b := range candidates {
				result.Denied = append(result.Denied, b.ID)
			}
			continue
		}

		orderCandidates(candidates, acceptedByAttendee)
		candidates = regroup(candidates)

		for _, b := range candidates {
			age, known := in.Ages[b.AttendeeID]
			if known && !b.IgnoreAge && !occasion.AgeOK(age) {
				// age mismatch denies without consuming a spot
				result.Denied = append(result.Denied, b.ID)
				continue
			}

			if limit > 0 && acceptedByAttendee[b.AttendeeID] >= limit {
				result.Denied = append(result.Denied, b.ID)
				continue
			}

			if acceptedByOccasion[occasion.ID] >= occasion.MaxSpots {
				result.Denied = append(result.Denied, b.ID)
				continue
			}

			result.Accepted = append(result.Accepted, b.ID)
			acceptedByAttendee[b.AttendeeID]++
			acceptedByOccasion[occasion.ID]++
		}
	}

	for _, occasion := range occasions {
		if occasion.Cancelled {
			continue
		}
		if occasion.MinSpots > 0 && acceptedByOccasion[occasion.ID] < occasion.MinSpots {
			result.FlaggedOccasions = append(result.FlaggedOccasions, occasion.ID)
		}
	}

	return result
}

// orderCandidates sorts the open bookings of one occasion in place.
func orderCandidates(candidates []*entity.Booking, acceptedByAttendee map[uuid.UUID]int) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if acceptedByAttendee[a.AttendeeID] != acceptedByAttendee[b.AttendeeID] {
			return acceptedByAttendee[a.AttendeeID] < acceptedByAttendee[b.AttendeeID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// regroup pulls bookings that share a group code next to the best-ranked
// member of their group, preserving relative order otherwise.
func regroup(candidates []*entity.Booking) []*entity.Booking {
	grouped := make(map[string][]*entity.Booking)
	for _, b := range candidates {
		if b.GroupCode != nil && *b.GroupCode != "" {
			grouped[*b.GroupCode] = append(grouped[*b.GroupCode], b)
		}
	}
	if len(grouped) == 0 {
		return candidates
	}

	out := make([]*entity.Booking, 0, len(candidates))
	seen := make(map[uuid.UUID]bool, len(candidates))
	for _, b := range candidates {
		if seen[b.ID] {
			continue
		}
		if b.GroupCode != nil && *b.GroupCode != "" {
			for _, member := range grouped[*b.GroupCode] {
				if !seen[member.ID] {
					seen[member.ID] = true
					out = append(out, member)
				}
			}
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}
