package report

import (
	"context"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger/internal/model"
	"ledger/internal/trade"
	"ledger/pkg/checkpoint"
)

const checkpointKey = "report/fact_trades"

// Config controls the batch job.
type Config struct {
	Interval      time.Duration `json:"interval"`
	Lag           time.Duration `json:"lag"`
	BatchSize     int           `json:"batchSize"`
	CheckpointDir string        `json:"checkpointDir"`
}

// Reference resolves pairs and assets for the dimensions.
type Reference interface {
	Pair(ctx context.Context, id uint) (model.TradingPair, error)
	Assets(ctx context.Context) (map[uint]model.Asset, error)
}

// DefaultLag covers the gap between a trade's executedAt stamp and its commit.
const DefaultLag = 30 * time.Second

// Job copies settled trades into the star schema. Trades are read in (executedAt, id) order from the
// checkpoint onwards and only once they are older than Lag, so a settlement still committing when the
// batch runs is picked up by a later run. Facts are keyed by trade id, which makes reruns harmless.
type Job struct {
	db     *gorm.DB
	trades *trade.Repository
	ref    Reference
	store  *checkpoint.Store
	cfg    Config
	now    func() time.Time
}

func NewJob(db *gorm.DB, trades *trade.Repository, ref Reference, store *checkpoint.Store, cfg Config) *Job {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Lag <= 0 {
		cfg.Lag = DefaultLag
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = trade.DefaultPageSize
	}
	return &Job{db: db, trades: trades, ref: ref, store: store, cfg: cfg, now: time.Now}
}

// Run executes the job every Interval until ctx is done.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		if n, err := j.RunOnce(ctx); err != nil {
			logs.Errorf("report run failed, err: %+v", err)
		} else if n > 0 {
			logs.Infof("report run copied %d trades", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce copies every trade past the checkpoint and returns how many were copied.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	cursor, err := j.loadCursor()
	if err != nil {
		return 0, err
	}
	until := trade.Cursor{ExecutedAt: j.now().UTC().Add(-j.cfg.Lag)}

	assets, err := j.ref.Assets(ctx)
	if err != nil {
		return 0, err
	}
	pairs := map[uint]DimPair{}

	copied := 0
	for {
		ts, err := j.trades.Since(ctx, cursor, until, j.cfg.BatchSize)
		if err != nil {
			return copied, err
		}
		if len(ts) == 0 {
			return copied, nil
		}

		if err := j.load(ctx, ts, pairs, assets); err != nil {
			return copied, err
		}
		cursor = trade.CursorOf(ts[len(ts)-1])
		if err := j.store.Put(checkpointKey, []byte(cursor.String())); err != nil {
			return copied, err
		}
		copied += len(ts)

		if len(ts) < j.cfg.BatchSize {
			return copied, nil
		}
	}
}

// Checkpoint returns the position of the last copied trade.
func (j *Job) Checkpoint() (trade.Cursor, error) {
	return j.loadCursor()
}

func (j *Job) load(ctx context.Context, ts []model.Trade, pairs map[uint]DimPair, assets map[uint]model.Asset) error {
	dates := map[int]DimDate{}
	facts := make([]FactTrade, 0, len(ts))
	touched := map[uint]DimPair{}

	for _, t := range ts {
		dp, ok := pairs[t.PairID]
		if !ok {
			p, err := j.ref.Pair(ctx, t.PairID)
			if err != nil {
				return err
			}
			dp = DimPair{
				PairKey: p.ID,
				Name:    p.Name,
				Base:    assets[p.BaseAssetID].Symbol,
				Quote:   assets[p.QuoteAssetID].Symbol,
				Active:  p.Active,
			}
			pairs[t.PairID] = dp
		}
		touched[dp.PairKey] = dp

		d := newDimDate(t.ExecutedAt)
		dates[d.DateKey] = d

		facts = append(facts, FactTrade{
			TradeID:     t.ID,
			PairKey:     t.PairID,
			DateKey:     d.DateKey,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			Amount:      t.Amount,
			Price:       t.Price,
			Notional:    t.Notional(),
			ExecutedAt:  t.ExecutedAt,
		})
	}

	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dp := range touched {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "pair_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "base", "quote", "active", "updated_at"}),
			}).Create(&dp).Error
			if err != nil {
				return errors.Wrapf(err, "upsert dim pair %s", dp.Name)
			}
		}
		for _, d := range dates {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&d).Error
			if err != nil {
				return errors.Wrapf(err, "insert dim date %d", d.DateKey)
			}
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&facts).Error
		if err != nil {
			return errors.Wrap(err, "insert fact trades")
		}
		return nil
	})
}

func (j *Job) loadCursor() (trade.Cursor, error) {
	raw, ok, err := j.store.Get(checkpointKey)
	if err != nil {
		return trade.Cursor{}, err
	}
	if !ok {
		return trade.Cursor{}, nil
	}
	return trade.ParseCursor(string(raw))
}
