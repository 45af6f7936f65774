package portfolio

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"ledger/internal/model"
	"ledger/pkg/exception"
)

// WalletSource lists the wallets of a user.
type WalletSource interface {
	Wallets(ctx context.Context, userID string) ([]model.Wallet, error)
}

// AssetSource lists known assets keyed by ID.
type AssetSource interface {
	Assets(ctx context.Context) (map[uint]model.Asset, error)
}

// Holding is one valued wallet.
type Holding struct {
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// Valuation is the value of every wallet of a user.
type Valuation struct {
	UserID   string          `json:"userId"`
	Total    decimal.Decimal `json:"total"`
	Holdings []Holding       `json:"holdings"`
}

// Valuer prices portfolios.
type Valuer struct {
	wallets WalletSource
	assets  AssetSource
	prices  PriceSource
}

func NewValuer(wallets WalletSource, assets AssetSource, prices PriceSource) *Valuer {
	return &Valuer{wallets: wallets, assets: assets, prices: prices}
}

// Value sums available plus locked balance times price over every wallet of userID. Empty wallets are
// skipped; a non-empty wallet without a price fails with ErrNoPriceAvailable.
func (v *Valuer) Value(ctx context.Context, userID string) (Valuation, error) {
	ws, err := v.wallets.Wallets(ctx, userID)
	if err != nil {
		return Valuation{}, err
	}
	assets, err := v.assets.Assets(ctx)
	if err != nil {
		return Valuation{}, err
	}

	out := Valuation{UserID: userID, Total: decimal.Zero, Holdings: []Holding{}}
	for _, w := range ws {
		amount := w.Total()
		if amount.IsZero() {
			continue
		}
		asset, ok := assets[w.AssetID]
		if !ok {
			return Valuation{}, errors.Wrapf(exception.ErrUnknownAsset, "asset id: %d", w.AssetID)
		}
		price, ok, err := v.prices.Price(ctx, asset.Symbol)
		if err != nil {
			return Valuation{}, errors.Wrapf(err, "price of %s", asset.Symbol)
		}
		if !ok {
			return Valuation{}, errors.Wrapf(exception.ErrNoPriceAvailable, "asset: %s", asset.Symbol)
		}
		value := amount.Mul(price)
		out.Holdings = append(out.Holdings, Holding{Asset: asset.Symbol, Amount: amount, Price: price, Value: value})
		out.Total = out.Total.Add(value)
	}

	sort.Slice(out.Holdings, func(i, j int) bool {
		return out.Holdings[i].Asset < out.Holdings[j].Asset
	})
	return out, nil
}
