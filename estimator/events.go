package estimator

import "github.com/tailored-agentic-units/fuse/observability"

// Estimator event types emitted around optimization runs.
const (
	EventOptimizeStart    observability.EventType = "estimator.optimize.start"
	EventOptimizeComplete observability.EventType = "estimator.optimize.complete"
	EventOptimizeError    observability.EventType = "estimator.optimize.error"
	EventServe            observability.EventType = "estimator.serve"
)
