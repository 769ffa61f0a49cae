package wire

import (
	"ferienpass/internal/adaptor"
	"ferienpass/internal/data/repository"
	"ferienpass/pkg/middleware"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireInvoice(
	r chi.Router,
	invoiceHandler *adaptor.InvoiceHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Get("/api/invoices", invoiceHandler.List)
		r.Get("/api/invoices/{id}", invoiceHandler.Get)
	})

	// ==================== OPERATOR ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Operator(log))

		r.Get("/api/periods/{id}/invoices", invoiceHandler.ListByPeriod)
		r.Post("/api/invoices/{id}/items", invoiceHandler.AddItem)
		r.Delete("/api/invoice-items/{id}", invoiceHandler.RemoveItem)
		r.Post("/api/invoice-items/{id}/pay", invoiceHandler.MarkItemPaid)
		r.Post("/api/invoice-items/{id}/unpay", invoiceHandler.UnmarkItemPaid)
	})
}
