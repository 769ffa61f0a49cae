package wire

import (
	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wirePeriod configures period routes. Reading is open to every
// authenticated account; creating periods and driving the phase
// machine is operator work.
func wirePeriod(
	r chi.Router,
	periodHandler *adaptor.PeriodHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Get("/api/periods", periodHandler.List)
		r.Get("/api/periods/active", periodHandler.GetActive)
		r.Get("/api/periods/{id}", periodHandler.Get)
	})

	// ==================== OPERATOR ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Operator(log))

		r.Post("/api/periods", periodHandler.Create)
		r.Patch("/api/periods/{id}", periodHandler.Update)
		r.Post("/api/periods/{id}/activate", periodHandler.Activate)
		r.Post("/api/periods/{id}/matching", periodHandler.RunMatching)
		r.Post("/api/periods/{id}/start-booking", periodHandler.StartBooking)
		r.Post("/api/periods/{id}/confirm", periodHandler.Confirm)
		r.Post("/api/periods/{id}/finalize", periodHandler.Finalize)
		r.Post("/api/periods/{id}/archive", periodHandler.Archive)
	})
}
