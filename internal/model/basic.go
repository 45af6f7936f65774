package model

import "github.com/shopspring/decimal"

// Scale is the number of fractional digits every persisted amount carries.
const Scale int32 = 18

// Notional returns amount * price rounded up to Scale, so a reservation never undercounts the cost.
func Notional(amount, price decimal.Decimal) decimal.Decimal {
	return amount.Mul(price).RoundCeil(Scale)
}

// FitsScale reports whether d can be stored without losing fractional digits.
func FitsScale(d decimal.Decimal) bool {
	return d.Exponent() >= -Scale || d.Equal(d.Truncate(Scale))
}

// Models lists every table owned or read by the ledger, in migration order.
func Models() []any {
	return []any{
		&Asset{},
		&TradingPair{},
		&Wallet{},
		&Order{},
		&Trade{},
		&KycRecord{},
	}
}
