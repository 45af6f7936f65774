package exception

import "errors"

var (
	// ErrInsufficientFunds is returned when a debit or reservation would drive a balance negative.
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")

	// ErrWalletNotFound is returned when a debit targets a wallet that has never been credited.
	ErrWalletNotFound = errors.New("wallet: not found")

	ErrInvalidAmount   = errors.New("wallet: invalid amount")
	ErrWalletNotLocked = errors.New("wallet: not locked by transaction")
)
