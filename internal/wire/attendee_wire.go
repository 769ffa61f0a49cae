package wire

import (
	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAttendee(
	r chi.Router,
	attendeeHandler *adaptor.AttendeeHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/attendees", attendeeHandler.Create)
		r.Get("/api/attendees", attendeeHandler.List)
		r.Get("/api/attendees/{id}", attendeeHandler.Get)
		r.Patch("/api/attendees/{id}", attendeeHandler.Update)
		r.Delete("/api/attendees/{id}", attendeeHandler.Delete)
	})
}
