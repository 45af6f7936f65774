package trade

import (
	"context"
	"iter"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"ledger/internal/model"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Page is one slice of trade history and the cursor to continue from.
type Page struct {
	Trades []model.Trade
	Next   Cursor
}

// Repository reads committed trades.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a trade reader.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Latest returns the most recent trade of the pair by execution time.
func (r *Repository) Latest(ctx context.Context, pairID uint) (model.Trade, bool, error) {
	var t model.Trade
	res := r.db.WithContext(ctx).
		Where("pair_id = ?", pairID).
		Order("executed_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&t)
	if res.Error != nil {
		return model.Trade{}, false, errors.Wrap(res.Error, "find latest trade")
	}
	return t, res.RowsAffected == 1, nil
}

// History returns up to limit trades of the pair strictly older than before, newest first.
// Page.Next is zero once the history is exhausted.
func (r *Repository) History(ctx context.Context, pairID uint, before Cursor, limit int) (Page, error) {
	limit = clampLimit(limit)

	q := r.db.WithContext(ctx).Where("pair_id = ?", pairID)
	if !before.IsZero() {
		q = q.Where("(executed_at < ? OR (executed_at = ? AND id < ?))", before.ExecutedAt, before.ExecutedAt, before.ID)
	}

	var ts []model.Trade
	if err := q.Order("executed_at DESC").Order("id DESC").Limit(limit).Find(&ts).Error; err != nil {
		return Page{}, errors.Wrap(err, "find trade history")
	}

	page := Page{Trades: ts}
	if len(ts) == limit {
		page.Next = CursorOf(ts[len(ts)-1])
	}
	return page, nil
}

// All iterates the whole history of the pair newest first, pageSize rows per query.
// Every range over the returned sequence starts again from the newest trade.
func (r *Repository) All(ctx context.Context, pairID uint, pageSize int) iter.Seq2[model.Trade, error] {
	return func(yield func(model.Trade, error) bool) {
		var cursor Cursor
		for {
			page, err := r.History(ctx, pairID, cursor, pageSize)
			if err != nil {
				yield(model.Trade{}, err)
				return
			}
			for _, t := range page.Trades {
				if !yield(t, nil) {
					return
				}
			}
			if page.Next.IsZero() {
				return
			}
			cursor = page.Next
		}
	}
}

// Since returns up to limit trades of every pair strictly newer than after and executed no later than
// until, oldest first.
func (r *Repository) Since(ctx context.Context, after Cursor, until Cursor, limit int) ([]model.Trade, error) {
	limit = clampLimit(limit)

	q := r.db.WithContext(ctx)
	if !after.IsZero() {
		q = q.Where("(executed_at > ? OR (executed_at = ? AND id > ?))", after.ExecutedAt, after.ExecutedAt, after.ID)
	}
	if !until.ExecutedAt.IsZero() {
		q = q.Where("executed_at <= ?", until.ExecutedAt)
	}

	var ts []model.Trade
	if err := q.Order("executed_at ASC").Order("id ASC").Limit(limit).Find(&ts).Error; err != nil {
		return nil, errors.Wrap(err, "find trades since cursor")
	}
	return ts, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
