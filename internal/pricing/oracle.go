package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"ledger/internal/model"
	"ledger/pkg/exception"
)

// TradeSource returns the most recent trade of a pair.
type TradeSource interface {
	Latest(ctx context.Context, pairID uint) (model.Trade, bool, error)
}

// PairSource resolves tradable pairs by name.
type PairSource interface {
	ActivePair(ctx context.Context, name string) (model.TradingPair, error)
}

// Quote is a market buy resolved into a priced order.
type Quote struct {
	Pair   model.TradingPair
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// Oracle prices market orders from the last trade of their pair.
type Oracle struct {
	pairs  PairSource
	trades TradeSource
}

// NewOracle creates an oracle.
func NewOracle(pairs PairSource, trades TradeSource) *Oracle {
	return &Oracle{pairs: pairs, trades: trades}
}

// LastPrice returns the price of the most recent trade of the pair.
func (o *Oracle) LastPrice(ctx context.Context, pair model.TradingPair) (decimal.Decimal, error) {
	t, ok, err := o.trades.Latest(ctx, pair.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, errors.Wrapf(exception.ErrNoPriceAvailable, "pair: %s", pair.Name)
	}
	return t.Price, nil
}

// QuoteBuy converts a quote-asset spend into a base-asset amount at the last traded price.
// The amount is truncated so that amount * price never exceeds spend.
func (o *Oracle) QuoteBuy(ctx context.Context, pairName string, spend decimal.Decimal) (Quote, error) {
	if !spend.IsPositive() || !model.FitsScale(spend) {
		return Quote{}, errors.Wrapf(exception.ErrInvalidOrder, "spend amount: %s", spend)
	}

	pair, err := o.pairs.ActivePair(ctx, pairName)
	if err != nil {
		return Quote{}, err
	}

	price, err := o.LastPrice(ctx, pair)
	if err != nil {
		return Quote{}, err
	}

	amount, _ := spend.QuoRem(price, model.Scale)
	if !amount.IsPositive() {
		return Quote{}, errors.Wrapf(exception.ErrInvalidOrder, "spend %s buys nothing at %s", spend, price)
	}

	return Quote{Pair: pair, Price: price, Amount: amount}, nil
}
