package manifold

import "errors"

// Sentinel errors for strategy construction and validation.
var (
	ErrAmbientMismatch = errors.New("manifold ambient size does not match variable size")
	ErrTangentRange    = errors.New("manifold tangent size out of range")
	ErrInvalidSubset   = errors.New("invalid subset parameterization")
)
