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

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// CreateWishlist handles POST /api/bookings/wishlist
func (h *BookingHandler) CreateWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req request.CreateWishlistBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	resp, err := h.service.CreateWishlistBooking(r.Context(), userID, &req, role == "operator")
	if err != nil {
		respondError(w, h.log, err, "create wishlist booking")
		return
	}

	utils.ResponseCreated(w, "Wishlist booking created", resp)
}

// Reserve handles POST /api/bookings/reserve
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req request.ReserveBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	resp, err := h.service.ReserveBooking(r.Context(), userID, &req, role == "operator")
	if err != nil {
		respondError(w, h.log, err, "reserve booking")
		return
	}

	utils.ResponseCreated(w, "Booking reserved", resp)
}

// Update handles PATCH /api/bookings/{id}
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req request.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.UpdateBooking(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "update booking")
		return
	}

	utils.ResponseSuccess(w, "Booking updated", resp)
}

// Cancel handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	operator := role == "operator"

	if err := h.service.CancelBooking(r.Context(), userID, chi.URLParam(r, "id"), operator); err != nil {
		respondError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", nil)
}

// List handles GET /api/periods/{id}/bookings
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetUserBookings(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "Bookings retrieved", resp)
}

// Accept handles POST /api/bookings/{id}/accept (operator)
func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AcceptBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "accept booking")
		return
	}

	utils.ResponseSuccess(w, "Booking accepted", nil)
}

// Deny handles POST /api/bookings/{id}/deny (operator)
func (h *BookingHandler) Deny(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DenyBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "deny booking")
		return
	}

	utils.ResponseSuccess(w, "Booking denied", nil)
}

// Block handles POST /api/bookings/{id}/block (operator)
func (h *BookingHandler) Block(w http.ResponseWriter, r *http.Request) {
	if err := h.service.BlockBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "block booking")
		return
	}

	utils.ResponseSuccess(w, "Booking blocked", nil)
}
