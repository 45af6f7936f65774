package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/model"
	"ledger/internal/testkit"
	"ledger/internal/trade"
	"ledger/pkg/checkpoint"
)

var day = time.Date(2026, 5, 31, 23, 59, 0, 0, time.UTC)

type fixture struct {
	f     *testkit.Fixture
	store *checkpoint.Store
	job   *Job
	clock time.Time
}

func newFixture(t *testing.T, batch int) *fixture {
	return newFixtureWith(t, Config{Lag: 5 * time.Second, BatchSize: batch})
}

func newFixtureWith(t *testing.T, cfg Config) *fixture {
	f := testkit.New(t)
	require.NoError(t, f.DB.AutoMigrate(Models()...))
	store, err := checkpoint.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fx := &fixture{f: f, store: store, clock: day.Add(time.Hour)}
	fx.job = NewJob(f.DB, trade.NewRepository(f.DB), f.Registry, store, cfg)
	fx.job.now = func() time.Time { return fx.clock }
	return fx
}

func (fx *fixture) insert(t *testing.T, pair model.TradingPair, at time.Time, amount, price string) model.Trade {
	t.Helper()
	tr := model.Trade{
		ID:          uuid.Must(uuid.NewV7()),
		PairID:      pair.ID,
		BuyOrderID:  uuid.New(),
		SellOrderID: uuid.New(),
		Amount:      testkit.Dec(amount),
		Price:       testkit.Dec(price),
		ExecutedAt:  at,
	}
	require.NoError(t, fx.f.DB.Create(&tr).Error)
	return tr
}

func (fx *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fx.f.DB.Model(m).Count(&n).Error)
	return n
}

func TestRunOnceCopiesTrades(t *testing.T) {
	fx := newFixture(t, 2)
	ctx := context.Background()

	first := fx.insert(t, fx.f.BTCUSDT, day, "0.5", "60000")
	fx.insert(t, fx.f.BTCUSDT, day.Add(30*time.Second), "0.1", "60100")
	fx.insert(t, fx.f.ETHUSDT, day.Add(2*time.Minute), "2", "3000")
	last := fx.insert(t, fx.f.ETHUSDT, day.Add(3*time.Minute), "1", "3001")

	n, err := fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, int64(4), fx.count(t, &FactTrade{}))
	assert.Equal(t, int64(2), fx.count(t, &DimPair{}))
	assert.Equal(t, int64(2), fx.count(t, &DimDate{}))

	var fact FactTrade
	require.NoError(t, fx.f.DB.First(&fact, "trade_id = ?", first.ID).Error)
	assert.Equal(t, 20260531, fact.DateKey)
	testkit.RequireDecimal(t, "30000", fact.Notional)

	var dp DimPair
	require.NoError(t, fx.f.DB.First(&dp, "pair_key = ?", fx.f.ETHUSDT.ID).Error)
	assert.Equal(t, "ETH", dp.Base)
	assert.Equal(t, "USDT", dp.Quote)

	var june DimDate
	require.NoError(t, fx.f.DB.First(&june, "date_key = ?", 20260601).Error)
	assert.Equal(t, 2, june.Quarter)
	assert.Equal(t, "Monday", june.Weekday)

	cp, err := fx.job.Checkpoint()
	require.NoError(t, err)
	assert.Equal(t, last.ID, cp.ID)

	n, err = fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunOnceWaitsForLag(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	fx.insert(t, fx.f.BTCUSDT, fx.clock.Add(-time.Minute), "1", "60000")
	fx.insert(t, fx.f.BTCUSDT, fx.clock.Add(-2*time.Second), "1", "60001")

	n, err := fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fx.clock = fx.clock.Add(10 * time.Second)
	n, err = fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(2), fx.count(t, &FactTrade{}))
}

func TestRunOnceIsIdempotent(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	fx.insert(t, fx.f.BTCUSDT, day, "1", "60000")
	fx.insert(t, fx.f.ETHUSDT, day, "1", "3000")

	_, err := fx.job.RunOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, fx.store.Delete(checkpointKey))

	n, err := fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), fx.count(t, &FactTrade{}))
}

func TestRunOnceKeepsLateCommit(t *testing.T) {
	fx := newFixtureWith(t, Config{})
	ctx := context.Background()
	require.Equal(t, DefaultLag, fx.job.cfg.Lag)

	// later stamp, committed first
	fx.insert(t, fx.f.BTCUSDT, fx.clock.Add(-5*time.Second), "1", "60001")

	n, err := fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// earlier stamp, committed after the run
	early := fx.insert(t, fx.f.BTCUSDT, fx.clock.Add(-10*time.Second), "1", "60000")

	fx.clock = fx.clock.Add(DefaultLag)
	n, err = fx.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var fact FactTrade
	require.NoError(t, fx.f.DB.First(&fact, "trade_id = ?", early.ID).Error)
}
