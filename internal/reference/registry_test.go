package reference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/model/enum"
	"ledger/internal/reference"
	"ledger/internal/testkit"
	"ledger/pkg/exception"
)

func TestActivePair(t *testing.T) {
	f := testkit.New(t)
	ctx := context.Background()

	p, err := f.Registry.ActivePair(ctx, "btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, f.BTC.ID, p.BaseAssetID)
	assert.Equal(t, f.USDT.ID, p.QuoteAssetID)

	_, err = f.Registry.ActivePair(ctx, "DOGE/USDT")
	require.ErrorIs(t, err, exception.ErrUnknownPair)

	_, err = f.Registry.ActivePair(ctx, testkit.PairETHBTC)
	require.ErrorIs(t, err, exception.ErrPairInactive)

	p, err = f.Registry.PairByName(ctx, testkit.PairETHBTC)
	require.NoError(t, err)
	assert.False(t, p.Active)
}

func TestSeedIsRepeatable(t *testing.T) {
	f := testkit.New(t)
	ctx := context.Background()

	catalog := reference.NewCatalog()
	require.NoError(t, catalog.AddAsset(reference.AssetSpec{Symbol: "BTC", Kind: enum.AssetKindCrypto}))
	require.NoError(t, catalog.AddAsset(reference.AssetSpec{Symbol: "ETH", Kind: enum.AssetKindCrypto}))
	require.NoError(t, catalog.AddPair(reference.PairSpec{Base: "ETH", Quote: "BTC"}))
	require.NoError(t, f.Registry.Seed(ctx, catalog))

	btc, err := f.Registry.AssetBySymbol(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, f.BTC.ID, btc.ID)

	p, err := f.Registry.ActivePair(ctx, testkit.PairETHBTC)
	require.NoError(t, err)
	assert.Equal(t, f.ETHBTC.ID, p.ID)

	assets, err := f.Registry.Assets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 3)
}

func TestCatalogValidation(t *testing.T) {
	c := reference.NewCatalog()
	require.NoError(t, c.AddAsset(reference.AssetSpec{Symbol: " btc ", Kind: enum.AssetKindCrypto}))

	require.ErrorIs(t, c.AddAsset(reference.AssetSpec{Symbol: "BTC", Kind: enum.AssetKindCrypto}), exception.ErrInvalidArgument)
	require.ErrorIs(t, c.AddAsset(reference.AssetSpec{Symbol: "", Kind: enum.AssetKindCrypto}), exception.ErrInvalidArgument)
	require.ErrorIs(t, c.AddAsset(reference.AssetSpec{Symbol: "EUR"}), exception.ErrInvalidEnum)
	require.ErrorIs(t, c.AddPair(reference.PairSpec{Base: "BTC", Quote: "USDT"}), exception.ErrUnknownAsset)
	require.ErrorIs(t, c.AddPair(reference.PairSpec{Base: "BTC", Quote: "btc"}), exception.ErrInvalidArgument)

	require.NoError(t, c.AddAsset(reference.AssetSpec{Symbol: "USDT", Kind: enum.AssetKindFiat}))
	require.NoError(t, c.AddPair(reference.PairSpec{Base: "btc", Quote: "usdt"}))
	require.ErrorIs(t, c.AddPair(reference.PairSpec{Base: "BTC", Quote: "USDT"}), exception.ErrInvalidArgument)

	require.Len(t, c.Pairs(), 1)
	assert.Equal(t, "BTC/USDT", c.Pairs()[0].Name())
}
