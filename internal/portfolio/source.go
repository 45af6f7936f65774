package portfolio

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceSource returns the price of one unit of an asset in the valuation currency.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, bool, error)
}

// StaticPrices is a fixed price table keyed by asset symbol.
type StaticPrices map[string]decimal.Decimal

func (s StaticPrices) Price(_ context.Context, symbol string) (decimal.Decimal, bool, error) {
	p, ok := s[strings.ToUpper(symbol)]
	return p, ok, nil
}

// Chain asks each source in order and returns the first hit. A failing source is an error, not a miss.
type Chain []PriceSource

func (c Chain) Price(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		p, ok, err := src.Price(ctx, symbol)
		if err != nil {
			return decimal.Zero, false, err
		}
		if ok {
			return p, true, nil
		}
	}
	return decimal.Zero, false, nil
}
