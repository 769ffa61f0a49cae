// Package billing derives invoice items from accepted bookings.
//
// Derivation is a pure function of the period's pricing policy and the
// payer's accepted bookings, so recomputing any number of times settles
// on the same item set: existing derived items are diffed against the
// desired ones instead of being blindly re-added.
package billing

import (
	"sort"

	"ferienpass/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a desired invoice position, before it is persisted.
type Item struct {
	Kind       entity.InvoiceItemKind
	BookingID  *uuid.UUID
	AttendeeID *uuid.UUID
	Text       string
	Amount     decimal.Decimal
}

// Texts resolves display strings for derived items.
type Texts struct {
	// ActivityTitles maps occasion ids to the activity title shown on
	// the occasion_cost line.
	ActivityTitles map[uuid.UUID]string

	// AllInclusiveFee is the label of the pass fee line ("Passport").
	AllInclusiveFee string
}

// Derive computes the items one payer owes for their accepted bookings.
//
// All-inclusive periods charge the pass fee once per attendee with at
// least one accepted booking, plus each occasion's own cost. Itemized
// periods charge the booking's frozen cost, which already folds in the
// per-booking surcharge.
func Derive(period *entity.Period, bookings []*entity.Booking, texts Texts) []Item {
	sorted := make([]*entity.Booking, len(bookings))
	copy(sorted, bookings)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	var items []Item
	feeCharged := make(map[uuid.UUID]bool)

	for _, b := range sorted {
		if b.State != entity.BookingStateAccepted {
			continue
		}

		if period.AllInclusive && period.BookingCost.IsPositive() && !feeCharged[b.AttendeeID] {
			feeCharged[b.AttendeeID] = true
			attendeeID := b.AttendeeID
			items = append(items, Item{
				Kind:       entity.ItemKindAllInclusiveFee,
				AttendeeID: &attendeeID,
				Text:       texts.AllInclusiveFee,
				Amount:     period.BookingCost,
			})
		}

		bookingID := b.ID
		attendeeID := b.AttendeeID
		items = append(items, Item{
			Kind:       entity.ItemKindOccasionCost,
			BookingID:  &bookingID,
			AttendeeID: &attendeeID,
			Text:       texts.ActivityTitles[b.OccasionID],
			Amount:     b.Cost,
		})
	}

	return items
}

// Diff compares desired against existing items and returns the items to
// create and the ids of items to remove. Paid items are frozen: they are
// never removed even when no longer derivable. Donations, discounts and
// manual adjustments are not derived and never touched.
func Diff(existing []*entity.InvoiceItem, desired []Item) (create []Item, remove []uuid.UUID) {
	type key struct {
		kind    entity.InvoiceItemKind
		subject uuid.UUID
	}

	itemKey := func(kind entity.InvoiceItemKind, bookingID, attendeeID *uuid.UUID) (key, bool) {
		switch kind {
		case entity.ItemKindOccasionCost:
			if bookingID == nil {
				return key{}, false
			}
			return key{kind, *bookingID}, true
		case entity.ItemKindAllInclusiveFee:
			if attendeeID == nil {
				return key{}, false
			}
			return key{kind, *attendeeID}, true
		default:
			return key{}, false
		}
	}

	current := make(map[key]*entity.InvoiceItem)
	for _, item := range existing {
		if !item.Derived() {
			continue
		}
		if k, ok := itemKey(item.Kind, item.BookingID, item.AttendeeID); ok {
			current[k] = item
		}
	}

	wanted := make(map[key]bool, len(desired))
	for _, want := range desired {
		k, ok := itemKey(want.Kind, want.BookingID, want.AttendeeID)
		if !ok {
			continue
		}
		wanted[k] = true

		have, exists := current[k]
		if !exists {
			create = append(create, want)
			continue
		}
		if !have.Paid && !have.Amount.Equal(want.Amount) {
			remove = append(remove, have.ID)
			create = append(create, want)
		}
	}

	for k, item := range current {
		if !wanted[k] && !item.Paid {
			remove = append(remove, item.ID)
		}
	}

	return create, remove
}

// Total sums the non-removed amounts of an item set.
func Total(items []*entity.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
