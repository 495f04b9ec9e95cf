package problem

import "errors"

// Sentinel errors for engine-boundary operations.
var (
	ErrReleased       = errors.New("problem already released")
	ErrDuplicateBlock = errors.New("variable already borrowed")
	ErrUnknownBlock   = errors.New("no block for variable")
	ErrDeltaSize      = errors.New("increment size does not match tangent size")
)
