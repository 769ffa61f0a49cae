package wire

import (
	"context"
	"net/http"
	"time"

	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/internal/usecase"
	"ferienpass/pkg/events"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	dispatcher := events.NewDispatcher(logger)
	service := usecase.NewService(repo, config, dispatcher, logger)
	handler := adaptor.NewHandler(service, logger)

	wireListeners(dispatcher, service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

// wireListeners connects event-driven reactions: confirming a period
// derives every payer's invoice, and later booking changes keep the
// affected payer's invoice in sync.
func wireListeners(dispatcher *events.Dispatcher, service *usecase.Service, logger *zap.Logger) {
	recompute := func(e events.Event) {
		if e.UserID == uuid.Nil || e.PeriodID == uuid.Nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := service.Invoice.Recompute(ctx, e.PeriodID, e.UserID); err != nil {
			logger.Warn("Invoice recompute after booking change failed",
				zap.Error(err),
				zap.String("user_id", e.UserID.String()))
		}
	}

	dispatcher.Listen(events.BookingAccepted, recompute)
	dispatcher.Listen(events.BookingDenied, recompute)
	dispatcher.Listen(events.BookingBlocked, recompute)
	dispatcher.Listen(events.BookingCancelled, recompute)

	dispatcher.Listen(events.PeriodConfirmed, func(e events.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := service.Invoice.RecomputeAll(ctx, e.PeriodID); err != nil {
			logger.Error("Invoice derivation after confirmation failed",
				zap.Error(err),
				zap.String("period_id", e.PeriodID.String()))
		}
	})
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wirePeriod(r, handler.Period, repo, config, logger)
	wireOccasion(r, handler.Occasion, repo, config, logger)
	wireAttendee(r, handler.Attendee, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wireInvoice(r, handler.Invoice, repo, config, logger)
	wireTicket(r, handler.Ticket, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
