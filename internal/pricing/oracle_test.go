package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/model"
	"ledger/internal/pricing"
	"ledger/internal/testkit"
	"ledger/internal/trade"
	"ledger/pkg/exception"
)

func TestQuoteBuy(t *testing.T) {
	f := testkit.New(t)
	oracle := pricing.NewOracle(f.Registry, trade.NewRepository(f.DB))
	ctx := context.Background()

	_, err := oracle.QuoteBuy(ctx, testkit.PairBTCUSDT, testkit.Dec("30000"))
	require.ErrorIs(t, err, exception.ErrNoPriceAvailable)

	now := time.Now().UTC()
	for i, p := range []string{"58000", "60000"} {
		require.NoError(t, f.DB.Create(&model.Trade{
			ID:          uuid.Must(uuid.NewV7()),
			PairID:      f.BTCUSDT.ID,
			BuyOrderID:  uuid.New(),
			SellOrderID: uuid.New(),
			Amount:      testkit.Dec("1"),
			Price:       testkit.Dec(p),
			ExecutedAt:  now.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	q, err := oracle.QuoteBuy(ctx, testkit.PairBTCUSDT, testkit.Dec("30000"))
	require.NoError(t, err)
	assert.Equal(t, f.BTCUSDT.ID, q.Pair.ID)
	testkit.RequireDecimal(t, "60000", q.Price)
	testkit.RequireDecimal(t, "0.5", q.Amount)

	q, err = oracle.QuoteBuy(ctx, testkit.PairBTCUSDT, testkit.Dec("100"))
	require.NoError(t, err)
	testkit.RequireDecimal(t, "0.001666666666666666", q.Amount)
	assert.True(t, model.Notional(q.Amount, q.Price).LessThanOrEqual(testkit.Dec("100")))
}

func TestQuoteBuyRejects(t *testing.T) {
	f := testkit.New(t)
	oracle := pricing.NewOracle(f.Registry, trade.NewRepository(f.DB))
	ctx := context.Background()

	_, err := oracle.QuoteBuy(ctx, testkit.PairBTCUSDT, testkit.Dec("0"))
	require.ErrorIs(t, err, exception.ErrInvalidOrder)

	_, err = oracle.QuoteBuy(ctx, "XRP/USDT", testkit.Dec("1"))
	require.ErrorIs(t, err, exception.ErrUnknownPair)

	_, err = oracle.QuoteBuy(ctx, testkit.PairETHBTC, testkit.Dec("1"))
	require.ErrorIs(t, err, exception.ErrPairInactive)
}
