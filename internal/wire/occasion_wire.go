package wire

import (
	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOccasion(
	r chi.Router,
	occasionHandler *adaptor.OccasionHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Get("/api/occasions/{id}", occasionHandler.Get)
		r.Get("/api/periods/{id}/occasions", occasionHandler.List)
	})

	// ==================== OPERATOR ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Operator(log))

		r.Post("/api/activities", occasionHandler.CreateActivity)
		r.Post("/api/occasions", occasionHandler.Create)
		r.Patch("/api/occasions/{id}", occasionHandler.Update)
		r.Post("/api/occasions/{id}/duplicate", occasionHandler.Duplicate)
		r.Post("/api/occasions/{id}/cancel", occasionHandler.Cancel)
		r.Delete("/api/occasions/{id}", occasionHandler.Delete)
	})
}
