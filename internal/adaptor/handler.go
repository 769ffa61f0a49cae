package adaptor

import (
	"errors"
	"net/http"

	"ferienpass/internal/dto/request"
	"ferienpass/internal/usecase"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Period   *PeriodHandler
	Occasion *OccasionHandler
	Attendee *AttendeeHandler
	Booking  *BookingHandler
	Invoice  *InvoiceHandler
	Ticket   *TicketHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		Period:   NewPeriodHandler(service.Period, service.Matching, log),
		Occasion: NewOccasionHandler(service.Occasion, log),
		Attendee: NewAttendeeHandler(service.Attendee, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Invoice:  NewInvoiceHandler(service.Invoice, log),
		Ticket:   NewTicketHandler(service.Tickets, log),
	}
}

// respondError maps service errors onto HTTP responses. Application
// errors carry their own status and code; anything else is a 500.
func respondError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("Failed to "+operation, zap.Error(err))
			utils.ResponseInternalError(w, "Internal server error")
			return
		}

		log.Warn(operation+" rejected",
			zap.String("code", appErr.Code),
			zap.Error(err))
		utils.ResponseJSON(w, appErr.HTTPStatus, false, appErr.Message, nil, appErr.Details)
		return
	}

	log.Error("Failed to "+operation, zap.Error(err))
	utils.ResponseInternalError(w, "Internal server error")
}

// requireUserID pulls the authenticated user from the request context.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", false
	}
	return userID.String(), true
}

// parsePagination reads page/per_page query parameters, defaulting to
// the first page of twenty.
func parsePagination(r *http.Request) request.PaginatedRequest {
	return request.PaginatedRequest{
		Page:    utils.ParseInt(r.URL.Query().Get("page"), 1),
		PerPage: utils.ParseInt(r.URL.Query().Get("per_page"), 20),
	}
}
