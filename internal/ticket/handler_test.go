package ticket

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubHandler struct {
	kind     string
	canClose bool
	accepted int
	closed   int
	closeErr error
}

func (h *stubHandler) Kind() string { return h.kind }

func (h *stubHandler) Links(_ context.Context, t *Ticket) []Link {
	return []Link{{Rel: "subject", ID: t.SubjectID}}
}

func (h *stubHandler) CanClose(context.Context, *Ticket) bool { return h.canClose }

func (h *stubHandler) OnAccept(context.Context, *Ticket) error {
	h.accepted++
	return nil
}

func (h *stubHandler) OnClose(context.Context, *Ticket) error {
	h.closed++
	return h.closeErr
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	h := &stubHandler{kind: "test.kind", canClose: true}
	reg.Register(h)

	ticket, err := reg.Open("test.kind", uuid.New(), "note")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if ticket.State != StateOpen {
		t.Fatalf("new ticket should be open, got %s", ticket.State)
	}

	if err := reg.Accept(context.Background(), ticket.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if h.accepted != 1 {
		t.Error("OnAccept hook should run once")
	}
	if ticket.State != StatePending {
		t.Errorf("accepted ticket should be pending, got %s", ticket.State)
	}

	if err := reg.Close(context.Background(), ticket.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if h.closed != 1 {
		t.Error("OnClose hook should run once")
	}
	if ticket.State != StateClosed || ticket.ClosedAt == nil {
		t.Error("closed ticket should carry state and timestamp")
	}
}

func TestRegistryOpenRequiresHandler(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if _, err := reg.Open("unknown.kind", uuid.New(), ""); err == nil {
		t.Error("opening a ticket without a registered handler must fail")
	}
}

func TestRegistryOpenDeduplicates(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(&stubHandler{kind: "test.kind", canClose: true})

	subject := uuid.New()
	first, _ := reg.Open("test.kind", subject, "")
	second, _ := reg.Open("test.kind", subject, "")

	if first.ID != second.ID {
		t.Error("a second request for the same subject should return the existing ticket")
	}

	if err := reg.Accept(context.Background(), first.ID); err != nil {
		t.Fatal(err)
	}
	if err := reg.Close(context.Background(), first.ID); err != nil {
		t.Fatal(err)
	}

	third, _ := reg.Open("test.kind", subject, "")
	if third.ID == first.ID {
		t.Error("a closed ticket must not block a fresh request")
	}
}

func TestRegistryCloseGuards(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	h := &stubHandler{kind: "test.kind", canClose: false}
	reg.Register(h)

	ticket, _ := reg.Open("test.kind", uuid.New(), "")

	if err := reg.Close(context.Background(), ticket.ID); err == nil {
		t.Error("closing an open ticket should fail, it must be accepted first")
	}

	if err := reg.Accept(context.Background(), ticket.ID); err != nil {
		t.Fatal(err)
	}
	if err := reg.Close(context.Background(), ticket.ID); err == nil {
		t.Error("close must be refused while the handler vetoes it")
	}

	h.canClose = true
	h.closeErr = errors.New("storage down")
	if err := reg.Close(context.Background(), ticket.ID); err == nil {
		t.Error("handler errors must keep the ticket pending")
	}
	if ticket.State != StatePending {
		t.Errorf("failed close should not change state, got %s", ticket.State)
	}
}

func TestRegistryListFiltersAndSorts(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(&stubHandler{kind: "test.kind", canClose: true})

	a, _ := reg.Open("test.kind", uuid.New(), "")
	b, _ := reg.Open("test.kind", uuid.New(), "")
	if err := reg.Accept(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}

	open := reg.List(StateOpen)
	if len(open) != 1 || open[0].ID != a.ID {
		t.Errorf("expected only ticket %s in open list", a.ID)
	}
	pending := reg.List(StatePending)
	if len(pending) != 1 || pending[0].ID != b.ID {
		t.Errorf("expected only ticket %s in pending list", b.ID)
	}
}
