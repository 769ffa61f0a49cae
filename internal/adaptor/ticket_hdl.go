package adaptor

import (
	"net/http"

	"ferienpass/internal/ticket"
	"ferienpass/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketHandler struct {
	registry *ticket.Registry
	log      *zap.Logger
}

func NewTicketHandler(registry *ticket.Registry, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		registry: registry,
		log:      log,
	}
}

type ticketListEntry struct {
	*ticket.Ticket
	Links []ticket.Link `json:"links,omitempty"`
}

// List handles GET /api/tickets?state=open (operator)
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	state := ticket.State(r.URL.Query().Get("state"))
	if state == "" {
		state = ticket.StateOpen
	}

	tickets := h.registry.List(state)
	entries := make([]ticketListEntry, len(tickets))
	for i, t := range tickets {
		entries[i] = ticketListEntry{
			Ticket: t,
			Links:  h.registry.Links(r.Context(), t),
		}
	}

	utils.ResponseSuccess(w, "Tickets retrieved", entries)
}

// Accept handles POST /api/tickets/{id}/accept (operator)
func (h *TicketHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket ID format", nil)
		return
	}

	if err := h.registry.Accept(r.Context(), id); err != nil {
		respondError(w, h.log, err, "accept ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket accepted", nil)
}

// Close handles POST /api/tickets/{id}/close (operator)
func (h *TicketHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket ID format", nil)
		return
	}

	if err := h.registry.Close(r.Context(), id); err != nil {
		respondError(w, h.log, err, "close ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket closed", nil)
}
