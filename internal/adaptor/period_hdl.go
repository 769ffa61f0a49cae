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

type PeriodHandler struct {
	service  usecase.PeriodService
	matching usecase.MatchingService
	log      *zap.Logger
}

func NewPeriodHandler(service usecase.PeriodService, matching usecase.MatchingService, log *zap.Logger) *PeriodHandler {
	return &PeriodHandler{
		service:  service,
		matching: matching,
		log:      log,
	}
}

// Create handles POST /api/periods
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePeriodRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreatePeriod(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err, "create period")
		return
	}

	utils.ResponseCreated(w, "Period created", resp)
}

// Update handles PATCH /api/periods/{id}
func (h *PeriodHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePeriodRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.UpdatePeriod(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "update period")
		return
	}

	utils.ResponseSuccess(w, "Period updated", resp)
}

// Get handles GET /api/periods/{id}
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "get period")
		return
	}

	utils.ResponseSuccess(w, "Period retrieved", resp)
}

// GetActive handles GET /api/periods/active
func (h *PeriodHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetActivePeriod(r.Context())
	if err != nil {
		respondError(w, h.log, err, "get active period")
		return
	}

	utils.ResponseSuccess(w, "Active period retrieved", resp)
}

// List handles GET /api/periods
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListPeriods(r.Context())
	if err != nil {
		respondError(w, h.log, err, "list periods")
		return
	}

	utils.ResponseSuccess(w, "Periods retrieved", resp)
}

// Activate handles POST /api/periods/{id}/activate
func (h *PeriodHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ActivatePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "activate period")
		return
	}

	utils.ResponseSuccess(w, "Period activated", nil)
}

// RunMatching handles POST /api/periods/{id}/matching
func (h *PeriodHandler) RunMatching(w http.ResponseWriter, r *http.Request) {
	resp, err := h.matching.RunMatching(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "run matching")
		return
	}

	utils.ResponseSuccess(w, "Matching run finished", resp)
}

// StartBooking handles POST /api/periods/{id}/start-booking
func (h *PeriodHandler) StartBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.service.StartBookingPhase(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "start booking phase")
		return
	}

	utils.ResponseSuccess(w, "Booking phase started", nil)
}

// Confirm handles POST /api/periods/{id}/confirm
func (h *PeriodHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ConfirmPeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "confirm period")
		return
	}

	utils.ResponseSuccess(w, "Period confirmed", nil)
}

// Finalize handles POST /api/periods/{id}/finalize
func (h *PeriodHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	if err := h.service.FinalizePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "finalize period")
		return
	}

	utils.ResponseSuccess(w, "Period finalized", nil)
}

// Archive handles POST /api/periods/{id}/archive
func (h *PeriodHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ArchivePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "archive period")
		return
	}

	utils.ResponseSuccess(w, "Period archived", nil)
}
