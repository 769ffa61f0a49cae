// Package ticket implements the operator work queue. Events that need a
// human decision (a cancellation after the window, an undersubscribed
// occasion) become tickets; handlers give each ticket kind its
// behavior.
package ticket

import (
	"context"
	"sort"
	"sync"
	"time"

	"ferienpass/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	StateOpen    State = "open"
	StatePending State = "pending"
	StateClosed  State = "closed"
)

type Ticket struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	SubjectID uuid.UUID  `json:"subject_id"`
	State     State      `json:"state"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Link points a ticket at a record the operator will want to inspect.
type Link struct {
	Rel string    `json:"rel"`
	ID  uuid.UUID `json:"id"`
}

// Handler defines the behavior of one ticket kind.
type Handler interface {
	// Kind is the stable identifier tickets of this handler carry.
	Kind() string

	// Links names the records related to the ticket's subject.
	Links(ctx context.Context, t *Ticket) []Link

	// CanClose reports whether the ticket may be closed right now.
	CanClose(ctx context.Context, t *Ticket) bool

	// OnAccept runs when an operator takes the ticket.
	OnAccept(ctx context.Context, t *Ticket) error

	// OnClose runs when the ticket is resolved.
	OnClose(ctx context.Context, t *Ticket) error
}

// Registry stores tickets in memory and routes lifecycle calls to the
// handler registered for each kind.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	tickets  map[uuid.UUID]*Ticket
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		tickets:  make(map[uuid.UUID]*Ticket),
		log:      log.With(zap.String("component", "tickets")),
	}
}

func (r *Registry) Register(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.Kind()] = handler
}

// Open files a new ticket of the given kind. A second request for the
// same subject while the first ticket is still unresolved returns the
// existing ticket instead of filing a duplicate.
func (r *Registry) Open(kind string, subjectID uuid.UUID, note string) (*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[kind]; !ok {
		return nil, apperrors.NotFound("ticket handler for kind " + kind)
	}

	for _, t := range r.tickets {
		if t.Kind == kind && t.SubjectID == subjectID && t.State != StateClosed {
			return t, nil
		}
	}

	t := &Ticket{
		ID:        uuid.New(),
		Kind:      kind,
		SubjectID: subjectID,
		State:     StateOpen,
		Note:      note,
		CreatedAt: time.Now(),
	}
	r.tickets[t.ID] = t

	r.log.Info("Ticket opened",
		zap.String("ticket_id", t.ID.String()),
		zap.String("kind", kind))
	return t, nil
}

// Accept moves an open ticket into pending and runs the handler hook.
func (r *Registry) Accept(ctx context.Context, ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return apperrors.NotFoundWithID("ticket", ticketID.String())
	}
	if t.State != StateOpen {
		return apperrors.Conflict("ticket is not open")
	}

	if err := r.handlers[t.Kind].OnAccept(ctx, t); err != nil {
		return err
	}
	t.State = StatePending
	return nil
}

// Close resolves a pending ticket if its handler permits.
func (r *Registry) Close(ctx context.Context, ticketID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return apperrors.NotFoundWithID("ticket", ticketID.String())
	}
	if t.State != StatePending {
		return apperrors.Conflict("only pending tickets can be closed")
	}

	handler := r.handlers[t.Kind]
	if !handler.CanClose(ctx, t) {
		return apperrors.Conflict("ticket cannot be closed yet")
	}
	if err := handler.OnClose(ctx, t); err != nil {
		return err
	}

	now := time.Now()
	t.State = StateClosed
	t.ClosedAt = &now

	r.log.Info("Ticket closed", zap.String("ticket_id", t.ID.String()))
	return nil
}

// List returns tickets in the given state, newest first.
func (r *Registry) List(state State) []*Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Ticket
	for _, t := range r.tickets {
		if t.State == state {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Links resolves the related records of one ticket via its handler.
func (r *Registry) Links(ctx context.Context, t *Ticket) []Link {
	r.mu.RLock()
	handler, ok := r.handlers[t.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return handler.Links(ctx, t)
}
