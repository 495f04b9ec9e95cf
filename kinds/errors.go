package kinds

import "errors"

// Construction errors. A variable that fails to construct never exists, so
// every constructed variable answers ID for its whole lifetime.
var (
	ErrMissingStamp     = errors.New("missing stamp")
	ErrNonFinite        = errors.New("non-finite value")
	ErrZeroQuaternion   = errors.New("quaternion has zero norm")
	ErrValueCount       = errors.New("wrong number of values")
	ErrInvalidAttribute = errors.New("invalid attribute")
)
