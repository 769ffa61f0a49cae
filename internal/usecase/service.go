package usecase

import (
	"ferienpass/internal/data/repository"
	"ferienpass/internal/ticket"
	"ferienpass/pkg/events"
	"ferienpass/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Period   PeriodService
	Occasion OccasionService
	Attendee AttendeeService
	Booking  BookingService
	Matching MatchingService
	Invoice  InvoiceService
	Tickets  *ticket.Registry
}

func NewService(repo *repository.Repository, config *utils.Config, dispatcher *events.Dispatcher, log *zap.Logger) *Service {
	invoice := NewInvoiceService(repo, config, dispatcher, log)

	tickets := ticket.NewRegistry(log)
	tickets.Register(ticket.NewBookingCancellationHandler(repo, dispatcher, log))

	return &Service{
		Auth:     NewAuthService(repo, config, log),
		User:     NewUserService(repo.User, log),
		Period:   NewPeriodService(repo, invoice, dispatcher, log),
		Occasion: NewOccasionService(repo, dispatcher, log),
		Attendee: NewAttendeeService(repo, log),
		Booking:  NewBookingService(repo, dispatcher, tickets, log),
		Matching: NewMatchingService(repo, dispatcher, log),
		Invoice:  invoice,
		Tickets:  tickets,
	}
}
