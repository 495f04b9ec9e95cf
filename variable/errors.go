package variable

import "errors"

// Sentinel errors for contract checks and the kind registry.
var (
	ErrContract          = errors.New("variable contract violation")
	ErrEmptyType         = errors.New("variable type name is empty")
	ErrAlreadyRegistered = errors.New("variable kind already registered")
	ErrUnknownType       = errors.New("unknown variable kind")
)
