package exception

import "errors"

var (
	ErrUnknownPair  = errors.New("reference: unknown trading pair")
	ErrPairInactive = errors.New("reference: trading pair inactive")
	ErrUnknownAsset = errors.New("reference: unknown asset")
)
