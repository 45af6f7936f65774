package exception

import "errors"

// General errors
var (
	ErrNilInstance     = errors.New("nil instance")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidEnum     = errors.New("invalid enum value")
	ErrInternal        = errors.New("internal error")
)
