package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateRange is one scheduled block of an occasion. Ranges are stored
// ordered and non-overlapping.
type DateRange struct {
	Start time.Time `db:"start_time" json:"start"`
	End   time.Time `db:"end_time" json:"end"`
}

// Occasion is a single capacity-bounded session of an activity within
// a period.
type Occasion struct {
	Base
	ActivityID uuid.UUID        `db:"activity_id"`
	PeriodID   uuid.UUID        `db:"period_id"`
	Dates      []DateRange      `db:"-"`
	MinAge     int              `db:"min_age"`
	MaxAge     int              `db:"max_age"`
	MinSpots   int              `db:"min_spots"`
	MaxSpots   int              `db:"max_spots"`
	Cost       *decimal.Decimal `db:"cost"`
	Cancelled  bool             `db:"cancelled"`
	Flagged    bool             `db:"flagged"`
}

// AgeOK reports whether the given age falls in the eligible range
// (inclusive on both ends).
func (o *Occasion) AgeOK(age int) bool {
	return o.MinAge <= age && age <= o.MaxAge
}

// BaseCost returns the occasion's own cost, zero when free.
func (o *Occasion) BaseCost() decimal.Decimal {
	if o.Cost == nil {
		return decimal.Zero
	}
	return *o.Cost
}

// TotalCost is what a single booking of this occasion costs under the
// period's pricing model. Itemized periods fold the per-booking
// surcharge into the occasion cost; all-inclusive periods charge the
// pass fee separately, once per attendee.
func (o *Occasion) TotalCost(period *Period) decimal.Decimal {
	cost := o.BaseCost()
	if !period.AllInclusive {
		cost = cost.Add(period.BookingCost)
	}
	return cost
}

// Activity is the thin parent of occasions. The full activity content
// (description, images, organiser pages) lives in the CMS layer; the
// core only needs the title for invoices and notifications.
type Activity struct {
	Base
	Title     string    `db:"title"`
	Organiser string    `db:"organiser"`
	OwnerID   uuid.UUID `db:"owner_id"`
}
