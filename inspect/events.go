package inspect

import "github.com/tailored-agentic-units/fuse/observability"

const (
	EventList observability.EventType = "inspect.list"
	EventGet  observability.EventType = "inspect.get"
)
