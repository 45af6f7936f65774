package trade_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ledger/internal/model"
	"ledger/internal/testkit"
	"ledger/internal/trade"
	"ledger/pkg/exception"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func insertTrades(t *testing.T, db *gorm.DB, pairID uint, prices ...string) []model.Trade {
	t.Helper()
	out := make([]model.Trade, 0, len(prices))
	for i, p := range prices {
		tr := model.Trade{
			ID:          uuid.Must(uuid.NewV7()),
			PairID:      pairID,
			BuyOrderID:  uuid.New(),
			SellOrderID: uuid.New(),
			Amount:      testkit.Dec("1"),
			Price:       testkit.Dec(p),
			ExecutedAt:  epoch.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(&tr).Error)
		out = append(out, tr)
	}
	return out
}

func TestLatest(t *testing.T) {
	f := testkit.New(t)
	repo := trade.NewRepository(f.DB)
	ctx := context.Background()

	_, ok, err := repo.Latest(ctx, f.BTCUSDT.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	insertTrades(t, f.DB, f.BTCUSDT.ID, "100", "300", "200")
	insertTrades(t, f.DB, f.ETHUSDT.ID, "5")

	latest, ok, err := repo.Latest(ctx, f.BTCUSDT.ID)
	require.NoError(t, err)
	require.True(t, ok)
	testkit.RequireDecimal(t, "200", latest.Price)
}

func TestHistoryPages(t *testing.T) {
	f := testkit.New(t)
	repo := trade.NewRepository(f.DB)
	ctx := context.Background()

	trades := insertTrades(t, f.DB, f.BTCUSDT.ID, "1", "2", "3", "4", "5")

	first, err := repo.History(ctx, f.BTCUSDT.ID, trade.Cursor{}, 2)
	require.NoError(t, err)
	require.Len(t, first.Trades, 2)
	assert.Equal(t, trades[4].ID, first.Trades[0].ID)
	assert.Equal(t, trades[3].ID, first.Trades[1].ID)

	cursor, err := trade.ParseCursor(first.Next.String())
	require.NoError(t, err)
	assert.Equal(t, first.Next.ID, cursor.ID)
	assert.True(t, first.Next.ExecutedAt.Equal(cursor.ExecutedAt))

	second, err := repo.History(ctx, f.BTCUSDT.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Trades, 2)
	assert.Equal(t, trades[2].ID, second.Trades[0].ID)

	last, err := repo.History(ctx, f.BTCUSDT.ID, second.Next, 2)
	require.NoError(t, err)
	require.Len(t, last.Trades, 1)
	assert.True(t, last.Next.IsZero())
}

func TestAllIsRestartable(t *testing.T) {
	f := testkit.New(t)
	repo := trade.NewRepository(f.DB)
	ctx := context.Background()

	insertTrades(t, f.DB, f.BTCUSDT.ID, "1", "2", "3", "4", "5", "6", "7")
	seq := repo.All(ctx, f.BTCUSDT.ID, 3)

	collect := func() []string {
		var prices []string
		for tr, err := range seq {
			require.NoError(t, err)
			prices = append(prices, tr.Price.String())
		}
		return prices
	}

	expected := []string{"7", "6", "5", "4", "3", "2", "1"}
	assert.Equal(t, expected, collect())
	assert.Equal(t, expected, collect())

	var firstTwo []string
	for tr, err := range seq {
		require.NoError(t, err)
		firstTwo = append(firstTwo, tr.Price.String())
		if len(firstTwo) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"7", "6"}, firstTwo)
}

func TestSince(t *testing.T) {
	f := testkit.New(t)
	repo := trade.NewRepository(f.DB)
	ctx := context.Background()

	btc := insertTrades(t, f.DB, f.BTCUSDT.ID, "1", "2", "3")

	all, err := repo.Since(ctx, trade.Cursor{}, trade.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, btc[0].ID, all[0].ID)

	rest, err := repo.Since(ctx, trade.CursorOf(btc[0]), trade.Cursor{ExecutedAt: btc[1].ExecutedAt}, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, btc[1].ID, rest[0].ID)
}

func TestParseCursor(t *testing.T) {
	c, err := trade.ParseCursor("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	for _, bad := range []string{"abc", "x:" + uuid.NewString(), "1:not-a-uuid"} {
		_, err := trade.ParseCursor(bad)
		require.ErrorIs(t, err, exception.ErrInvalidCursor, bad)
	}
}
