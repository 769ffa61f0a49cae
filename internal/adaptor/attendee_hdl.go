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

type AttendeeHandler struct {
	service usecase.AttendeeService
	log     *zap.Logger
}

func NewAttendeeHandler(service usecase.AttendeeService, log *zap.Logger) *AttendeeHandler {
	return &AttendeeHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/attendees
func (h *AttendeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req request.CreateAttendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreateAttendee(r.Context(), userID, &req)
	if err != nil {
		respondError(w, h.log, err, "create attendee")
		return
	}

	utils.ResponseCreated(w, "Attendee created", resp)
}

// Get handles GET /api/attendees/{id}
func (h *AttendeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetAttendee(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "get attendee")
		return
	}

	utils.ResponseSuccess(w, "Attendee retrieved", resp)
}

// List handles GET /api/attendees
func (h *AttendeeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ListAttendees(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err, "list attendees")
		return
	}

	utils.ResponseSuccess(w, "Attendees retrieved", resp)
}

// Update handles PATCH /api/attendees/{id}
func (h *AttendeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req request.UpdateAttendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.UpdateAttendee(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "update attendee")
		return
	}

	utils.ResponseSuccess(w, "Attendee updated", resp)
}

// Delete handles DELETE /api/attendees/{id}
func (h *AttendeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAttendee(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "delete attendee")
		return
	}

	utils.ResponseSuccess(w, "Attendee deleted", nil)
}
