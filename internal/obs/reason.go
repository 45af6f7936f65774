package obs

import (
	"errors"

	"ledger/pkg/exception"
)

// Reason classifies why an operation was refused.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonInvalidOrder
	ReasonUnknownPair
	ReasonPairInactive
	ReasonInsufficientFunds
	ReasonNoPrice
	ReasonInvalidTrade
	ReasonNotFound
	ReasonInvalidArgument
	ReasonOther
	reasonCount
)

var reasonNames = [reasonCount]string{
	"none",
	"invalid_order",
	"unknown_pair",
	"pair_inactive",
	"insufficient_funds",
	"no_price",
	"invalid_trade",
	"not_found",
	"invalid_argument",
	"other",
}

func (r Reason) String() string {
	if r >= reasonCount {
		return "unknown"
	}
	return reasonNames[r]
}

// ReasonOf maps an operation error to its reason. A nil error is ReasonNone.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, exception.ErrInsufficientFunds), errors.Is(err, exception.ErrWalletNotFound):
		return ReasonInsufficientFunds
	case errors.Is(err, exception.ErrInvalidOrder):
		return ReasonInvalidOrder
	case errors.Is(err, exception.ErrUnknownPair):
		return ReasonUnknownPair
	case errors.Is(err, exception.ErrPairInactive):
		return ReasonPairInactive
	case errors.Is(err, exception.ErrNoPriceAvailable):
		return ReasonNoPrice
	case errors.Is(err, exception.ErrInvalidTrade), errors.Is(err, exception.ErrOrderNotOpen):
		return ReasonInvalidTrade
	case errors.Is(err, exception.ErrOrderNotFound), errors.Is(err, exception.ErrUnknownAsset):
		return ReasonNotFound
	case errors.Is(err, exception.ErrInvalidArgument), errors.Is(err, exception.ErrInvalidEnum),
		errors.Is(err, exception.ErrInvalidCursor), errors.Is(err, exception.ErrInvalidAmount):
		return ReasonInvalidArgument
	default:
		return ReasonOther
	}
}
