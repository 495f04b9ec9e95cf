package observability

import "context"

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// LevelFilter forwards events at or above Min to Next and drops the rest.
type LevelFilter struct {
	Min  Level
	Next Observer
}

func (f LevelFilter) OnEvent(ctx context.Context, event Event) {
	if event.Level < f.Min {
		return
	}
	f.Next.OnEvent(ctx, event)
}

// Filter returns an observer passing only events at or above min to o. A
// zero min or a discarding o returns o unchanged; a nil o returns
// NoOpObserver.
func Filter(o Observer, min Level) Observer {
	switch o.(type) {
	case nil:
		return NoOpObserver{}
	case NoOpObserver:
		return o
	}
	if min <= 0 {
		return o
	}
	return LevelFilter{Min: min, Next: o}
}
