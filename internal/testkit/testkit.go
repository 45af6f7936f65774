// Package testkit builds seeded in-memory ledgers for package tests.
package testkit

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ledger/internal/model"
	"ledger/internal/model/enum"
	"ledger/internal/reference"
	"ledger/pkg/conn"
)

const (
	PairBTCUSDT = "BTC/USDT"
	PairETHUSDT = "ETH/USDT"
	PairETHBTC  = "ETH/BTC"
)

// Fixture is a migrated SQLite database seeded with BTC, ETH, USDT and the pairs BTC/USDT, ETH/USDT
// and an inactive ETH/BTC.
type Fixture struct {
	DB       *gorm.DB
	Registry *reference.Registry

	BTC, ETH, USDT           model.Asset
	BTCUSDT, ETHUSDT, ETHBTC model.TradingPair
}

// New returns a fresh fixture closed when t ends.
func New(t testing.TB) *Fixture {
	t.Helper()

	c, err := conn.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Migrate(model.Models()...))

	catalog := reference.NewCatalog()
	require.NoError(t, catalog.AddAsset(reference.AssetSpec{Symbol: "BTC", Kind: enum.AssetKindCrypto}))
	require.NoError(t, catalog.AddAsset(reference.AssetSpec{Symbol: "ETH", Kind: enum.AssetKindCrypto}))
	require.NoError(t, catalog.AddAsset(reference.AssetSpec{Symbol: "USDT", Kind: enum.AssetKindFiat}))
	require.NoError(t, catalog.AddPair(reference.PairSpec{Base: "BTC", Quote: "USDT"}))
	require.NoError(t, catalog.AddPair(reference.PairSpec{Base: "ETH", Quote: "USDT"}))
	require.NoError(t, catalog.AddPair(reference.PairSpec{Base: "ETH", Quote: "BTC", Inactive: true}))

	reg := reference.New(c.DB())
	ctx := context.Background()
	require.NoError(t, reg.Seed(ctx, catalog))

	f := &Fixture{DB: c.DB(), Registry: reg}
	f.BTC = mustAsset(t, reg, "BTC")
	f.ETH = mustAsset(t, reg, "ETH")
	f.USDT = mustAsset(t, reg, "USDT")
	f.BTCUSDT = mustPair(t, reg, PairBTCUSDT)
	f.ETHUSDT = mustPair(t, reg, PairETHUSDT)
	f.ETHBTC = mustPair(t, reg, PairETHBTC)
	return f
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// RequireDecimal fails t unless actual equals expected numerically.
func RequireDecimal(t testing.TB, expected string, actual decimal.Decimal) {
	t.Helper()
	want := Dec(expected)
	if !want.Equal(actual) {
		require.Failf(t, "decimal mismatch", "expected %s, got %s", want, actual)
	}
}

func mustAsset(t testing.TB, reg *reference.Registry, symbol string) model.Asset {
	t.Helper()
	a, err := reg.AssetBySymbol(context.Background(), symbol)
	require.NoError(t, err)
	return a
}

func mustPair(t testing.TB, reg *reference.Registry, name string) model.TradingPair {
	t.Helper()
	p, err := reg.PairByName(context.Background(), name)
	require.NoError(t, err)
	return p
}
