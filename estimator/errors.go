package estimator

import "errors"

// ErrServeDisabled is returned by Serve when no inspect address is configured.
var ErrServeDisabled = errors.New("inspect address not configured")
