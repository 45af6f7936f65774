package portfolio_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/portfolio"
	"ledger/internal/testkit"
	"ledger/internal/wallet"
	"ledger/pkg/exception"
)

type failingSource struct{}

func (failingSource) Price(context.Context, string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, exception.ErrInternal
}

func TestValue(t *testing.T) {
	f := testkit.New(t)
	ledger := wallet.New(f.DB)
	ctx := context.Background()
	require.NoError(t, ledger.Credit(ctx, "A", f.BTC.ID, testkit.Dec("1.5")))
	require.NoError(t, ledger.Credit(ctx, "A", f.USDT.ID, testkit.Dec("10000")))
	require.NoError(t, ledger.Credit(ctx, "A", f.ETH.ID, testkit.Dec("2")))
	require.NoError(t, ledger.Debit(ctx, "A", f.ETH.ID, testkit.Dec("2")))

	prices := portfolio.Chain{
		portfolio.StaticPrices{"BTC": testkit.Dec("60000")},
		portfolio.StaticPrices{"BTC": testkit.Dec("1"), "USDT": testkit.Dec("1")},
	}
	v := portfolio.NewValuer(ledger, f.Registry, prices)

	got, err := v.Value(ctx, "A")
	require.NoError(t, err)
	testkit.RequireDecimal(t, "100000", got.Total)
	require.Len(t, got.Holdings, 2)
	assert.Equal(t, "BTC", got.Holdings[0].Asset)
	testkit.RequireDecimal(t, "90000", got.Holdings[0].Value)
	assert.Equal(t, "USDT", got.Holdings[1].Asset)

	empty, err := v.Value(ctx, "nobody")
	require.NoError(t, err)
	testkit.RequireDecimal(t, "0", empty.Total)
	assert.Empty(t, empty.Holdings)
}

func TestValueRequiresPrice(t *testing.T) {
	f := testkit.New(t)
	ledger := wallet.New(f.DB)
	ctx := context.Background()
	require.NoError(t, ledger.Credit(ctx, "A", f.ETH.ID, testkit.Dec("1")))

	_, err := portfolio.NewValuer(ledger, f.Registry, portfolio.StaticPrices{}).Value(ctx, "A")
	require.ErrorIs(t, err, exception.ErrNoPriceAvailable)

	_, err = portfolio.NewValuer(ledger, f.Registry, portfolio.Chain{failingSource{}}).Value(ctx, "A")
	require.ErrorIs(t, err, exception.ErrInternal)
}
