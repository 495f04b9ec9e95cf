package observability

import (
	"context"
	"slices"
	"sync"
)

// CaptureObserver records every event it receives. Safe for concurrent use.
type CaptureObserver struct {
	events []Event
	mu     sync.Mutex
}

// NewCaptureObserver creates an empty CaptureObserver.
func NewCaptureObserver() *CaptureObserver {
	return &CaptureObserver{}
}

func (c *CaptureObserver) OnEvent(ctx context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of the recorded events in arrival order.
func (c *CaptureObserver) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}

// Count returns how many recorded events have the given type.
func (c *CaptureObserver) Count(typ EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// Reset discards the recorded events.
func (c *CaptureObserver) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
