package wire

import "errors"

var (
	ErrNotDescribable   = errors.New("variable does not report its attributes")
	ErrMalformed        = errors.New("malformed variable message")
	ErrIdentityMismatch = errors.New("decoded identity does not match encoded id")
)
