package exception

import "errors"

var (
	ErrInvalidOrder  = errors.New("order: invalid order")
	ErrOrderNotFound = errors.New("order: not found")
	ErrOrderNotOpen  = errors.New("order: not open")
)
