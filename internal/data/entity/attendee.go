package entity

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

// Attendee is a child profile owned by exactly one guardian. No two
// attendees under the same guardian may share first and last name.
type Attendee struct {
	Base
	UserID    uuid.UUID `db:"user_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	BirthDate time.Time `db:"birth_date"`
	Gender    Gender    `db:"gender"`
	Notes     *string   `db:"notes"`
}

// Name returns the display name used on invoices and notifications.
func (a *Attendee) Name() string {
	return a.FirstName + " " + a.LastName
}

// AgeOn returns the attendee's age in full years on the given date.
func (a *Attendee) AgeOn(day time.Time) int {
	age := day.Year() - a.BirthDate.Year()
	anniversary := time.Date(day.Year(), a.BirthDate.Month(), a.BirthDate.Day(),
		0, 0, 0, 0, day.Location())
	if day.Before(anniversary) {
		age--
	}
	return age
}
