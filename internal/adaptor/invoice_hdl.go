package adaptor

import (
	"encoding/json"
	"net/http"

	"ferienpass/internal/dto/request"
	"ferienpass/internal/dto/response"
	"ferienpass/internal/usecase"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	service usecase.InvoiceService
	log     *zap.Logger
}

func NewInvoiceHandler(service usecase.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		log:     log,
	}
}

// Get handles GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetInvoice(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "get invoice")
		return
	}

	utils.ResponseSuccess(w, "Invoice retrieved", resp)
}

// List handles GET /api/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetUserInvoices(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err, "list invoices")
		return
	}

	utils.ResponseSuccess(w, "Invoices retrieved", resp)
}

// ListByPeriod handles GET /api/periods/{id}/invoices (operator)
func (h *InvoiceHandler) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListPeriodInvoices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "list period invoices")
		return
	}

	page := parsePagination(r)
	total := int64(len(invoices))
	offset := page.Offset()
	if offset > len(invoices) {
		offset = len(invoices)
	}
	end := offset + page.Limit()
	if end > len(invoices) {
		end = len(invoices)
	}

	resp := response.NewPaginatedResponse(invoices[offset:end], page.Page, page.Limit(), total)
	utils.ResponseSuccess(w, "Invoices retrieved", resp)
}

// AddItem handles POST /api/invoices/{id}/items (operator)
func (h *InvoiceHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req request.AddInvoiceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.AddManualItem(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "add invoice item")
		return
	}

	utils.ResponseCreated(w, "Invoice item added", resp)
}

// RemoveItem handles DELETE /api/invoice-items/{id} (operator)
func (h *InvoiceHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "remove invoice item")
		return
	}

	utils.ResponseSuccess(w, "Invoice item removed", nil)
}

// MarkItemPaid handles POST /api/invoice-items/{id}/pay (operator)
func (h *InvoiceHandler) MarkItemPaid(w http.ResponseWriter, r *http.Request) {
	var req request.MarkItemPaidRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	if err := h.service.MarkItemPaid(r.Context(), chi.URLParam(r, "id"), &req); err != nil {
		respondError(w, h.log, err, "mark invoice item paid")
		return
	}

	utils.ResponseSuccess(w, "Invoice item marked paid", nil)
}

// UnmarkItemPaid handles POST /api/invoice-items/{id}/unpay (operator)
func (h *InvoiceHandler) UnmarkItemPaid(w http.ResponseWriter, r *http.Request) {
	if err := h.service.UnmarkItemPaid(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "unmark invoice item paid")
		return
	}

	utils.ResponseSuccess(w, "Invoice item payment reverted", nil)
}
