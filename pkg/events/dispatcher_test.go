package events

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestDispatchReachesAllListeners(t *testing.T) {
	d := NewDispatcher(zap.NewNop())

	var got []EventType
	d.Listen(BookingAccepted, func(e Event) {
		got = append(got, e.Type)
	})
	d.Listen(BookingAccepted, func(e Event) {
		got = append(got, e.Type)
	})
	d.Listen(BookingDenied, func(e Event) {
		t.Error("listener for other event type should not fire")
	})

	d.Dispatch(Event{Type: BookingAccepted, BookingID: uuid.New()})

	if len(got) != 2 {
		t.Fatalf("expected 2 listener calls, got %d", len(got))
	}
}

func TestDispatchSetsOccurredAt(t *testing.T) {
	d := NewDispatcher(zap.NewNop())

	d.Listen(PeriodConfirmed, func(e Event) {
		if e.OccurredAt.IsZero() {
			t.Error("OccurredAt should be filled on dispatch")
		}
	})

	d.Dispatch(Event{Type: PeriodConfirmed})
}

func TestConcurrentListenAndDispatch(t *testing.T) {
	d := NewDispatcher(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Listen(InvoiceUpdated, func(Event) {})
		}()
		go func() {
			defer wg.Done()
			d.Dispatch(Event{Type: InvoiceUpdated})
		}()
	}
	wg.Wait()
}
