package wire

import (
	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireBooking configures booking routes. Guardians manage their own
// wishlist and reservations; deciding individual bookings by hand is
// operator work.
func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/bookings/wishlist", bookingHandler.CreateWishlist)
		r.Post("/api/bookings/reserve", bookingHandler.Reserve)
		r.Patch("/api/bookings/{id}", bookingHandler.Update)
		r.Post("/api/bookings/{id}/cancel", bookingHandler.Cancel)
		r.Get("/api/periods/{id}/bookings", bookingHandler.List)
	})

	// ==================== OPERATOR ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Operator(log))

		r.Post("/api/bookings/{id}/accept", bookingHandler.Accept)
		r.Post("/api/bookings/{id}/deny", bookingHandler.Deny)
		r.Post("/api/bookings/{id}/block", bookingHandler.Block)
	})
}
