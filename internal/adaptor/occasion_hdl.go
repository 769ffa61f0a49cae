package adaptor

import (
	"encoding/json"
	"net/http"

	"ferienpass/internal/dto/request"
	"ferienpass/internal/usecase"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OccasionHandler struct {
	service usecase.OccasionService
	log     *zap.Logger
}

func NewOccasionHandler(service usecase.OccasionService, log *zap.Logger) *OccasionHandler {
	return &OccasionHandler{
		service: service,
		log:     log,
	}
}

// CreateActivity handles POST /api/activities
func (h *OccasionHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req request.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreateActivity(r.Context(), userID, &req)
	if err != nil {
		respondError(w, h.log, err, "create activity")
		return
	}

	utils.ResponseCreated(w, "Activity created", resp)
}

// Create handles POST /api/occasions
func (h *OccasionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOccasionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreateOccasion(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err, "create occasion")
		return
	}

	utils.ResponseCreated(w, "Occasion created", resp)
}

// Get handles GET /api/occasions/{id}
func (h *OccasionHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetOccasion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "get occasion")
		return
	}

	utils.ResponseSuccess(w, "Occasion retrieved", resp)
}

// List handles GET /api/periods/{id}/occasions
func (h *OccasionHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListOccasions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "list occasions")
		return
	}

	utils.ResponseSuccess(w, "Occasions retrieved", resp)
}

// Update handles PATCH /api/occasions/{id}
func (h *OccasionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateOccasionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.UpdateOccasion(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "update occasion")
		return
	}

	utils.ResponseSuccess(w, "Occasion updated", resp)
}

// Duplicate handles POST /api/occasions/{id}/duplicate
func (h *OccasionHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.DuplicateOccasion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "duplicate occasion")
		return
	}

	utils.ResponseCreated(w, "Occasion duplicated", resp)
}

// Cancel handles POST /api/occasions/{id}/cancel
func (h *OccasionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelOccasion(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "cancel occasion")
		return
	}

	utils.ResponseSuccess(w, "Occasion cancelled", nil)
}

// Delete handles DELETE /api/occasions/{id}
func (h *OccasionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOccasion(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "delete occasion")
		return
	}

	utils.ResponseSuccess(w, "Occasion deleted", nil)
}
