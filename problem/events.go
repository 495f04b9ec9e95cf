package problem

import "github.com/tailored-agentic-units/fuse/observability"

const (
	EventBlockAdd observability.EventType = "problem.block.add"
	EventApply    observability.EventType = "problem.apply"
	EventRelease  observability.EventType = "problem.release"

	EventParallelStart    observability.EventType = "problem.parallel.start"
	EventParallelComplete observability.EventType = "problem.parallel.complete"
)
