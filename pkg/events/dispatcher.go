package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher fans events out to registered listeners. Dispatch is
// synchronous and in registration order; listeners that need to do
// slow work should hand off to their own goroutines.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]Listener
	log       *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		listeners: make(map[EventType][]Listener),
		log:       log.With(zap.String("component", "events")),
	}
}

func (d *Dispatcher) Listen(eventType EventType, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], listener)
}

func (d *Dispatcher) Dispatch(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	d.mu.RLock()
	listeners := d.listeners[event.Type]
	d.mu.RUnlock()

	d.log.Debug("Dispatching event",
		zap.String("type", string(event.Type)),
		zap.Int("listeners", len(listeners)),
	)

	for _, listener := range listeners {
		listener(event)
	}
}
