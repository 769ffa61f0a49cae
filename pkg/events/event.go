package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	BookingAccepted   EventType = "booking.accepted"
	BookingDenied     EventType = "booking.denied"
	BookingBlocked    EventType = "booking.blocked"
	BookingCancelled  EventType = "booking.cancelled"
	OccasionCancelled EventType = "occasion.cancelled"
	PeriodConfirmed   EventType = "period.confirmed"
	PeriodFinalized   EventType = "period.finalized"
	MatchingFinished  EventType = "matching.finished"
	InvoiceUpdated    EventType = "invoice.updated"
)

// Event is the payload handed to listeners. Fields beyond Type are
// filled as applicable; zero uuids mean "not involved".
type Event struct {
	Type       EventType
	PeriodID   uuid.UUID
	OccasionID uuid.UUID
	BookingID  uuid.UUID
	AttendeeID uuid.UUID
	UserID     uuid.UUID
	OccurredAt time.Time
}

type Listener func(Event)
