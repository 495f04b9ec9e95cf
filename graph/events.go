package graph

import "github.com/tailored-agentic-units/fuse/observability"

const (
	// Variable operations
	EventVariableAdd    observability.EventType = "graph.variable.add"
	EventVariableMerge  observability.EventType = "graph.variable.merge"
	EventVariableRemove observability.EventType = "graph.variable.remove"
	EventUpdate         observability.EventType = "graph.update"

	// Branching
	EventSnapshot         observability.EventType = "graph.snapshot"
	EventCheckpointSave   observability.EventType = "graph.checkpoint.save"
	EventCheckpointLoad   observability.EventType = "graph.checkpoint.load"
	EventCheckpointDelete observability.EventType = "graph.checkpoint.delete"
)
