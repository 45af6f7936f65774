package exception

import "errors"

var (
	ErrNoPriceAvailable = errors.New("pricing: no price available")
	ErrInvalidTrade     = errors.New("trade: invalid trade")
	ErrInvalidCursor    = errors.New("trade: invalid cursor")
)
