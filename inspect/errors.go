package inspect

import "errors"

var (
	ErrNotFound   = errors.New("variable not found")
	ErrInvalidKey = errors.New("invalid variable id")
)
