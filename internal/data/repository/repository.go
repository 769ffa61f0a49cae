package repository

import (
	"ferienpass/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Period      PeriodRepository
	Activity    ActivityRepository
	Occasion    OccasionRepository
	Attendee    AttendeeRepository
	Booking     BookingRepository
	Invoice     InvoiceRepository
	InvoiceItem InvoiceItemRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Period:      NewPeriodRepository(db, log),
		Activity:    NewActivityRepository(db, log),
		Occasion:    NewOccasionRepository(db, log),
		Attendee:    NewAttendeeRepository(db, log),
		Booking:     NewBookingRepository(db, log),
		Invoice:     NewInvoiceRepository(db, log),
		InvoiceItem: NewInvoiceItemRepository(db, log),
	}
}
