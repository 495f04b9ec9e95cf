package observability

import "context"

// MultiObserver forwards each event to several observers in order.
type MultiObserver struct {
	observers []Observer
}

// Join combines observers into one. Nil and NoOpObserver entries are
// dropped and nested MultiObservers are flattened. Joining nothing yields
// NoOpObserver and joining a single observer yields that observer.
//
//	logs := observability.Filter(slogObserver, observability.LevelInfo)
//	o := observability.Join(logs, metrics)
func Join(observers ...Observer) Observer {
	var flat []Observer
	for _, obs := range observers {
		switch o := obs.(type) {
		case nil, NoOpObserver:
		case *MultiObserver:
			flat = append(flat, o.observers...)
		default:
			flat = append(flat, o)
		}
	}

	switch len(flat) {
	case 0:
		return NoOpObserver{}
	case 1:
		return flat[0]
	}
	return &MultiObserver{observers: flat}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

// Len returns the number of observers events are forwarded to.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}
