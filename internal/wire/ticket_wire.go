package wire

import (
	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireTicket configures the operator work queue routes.
func wireTicket(
	r chi.Router,
	ticketHandler *adaptor.TicketHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Operator(log))

		r.Get("/api/tickets", ticketHandler.List)
		r.Post("/api/tickets/{id}/accept", ticketHandler.Accept)
		r.Post("/api/tickets/{id}/close", ticketHandler.Close)
	})
}
