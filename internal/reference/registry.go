package reference

import (
	"context"
	"strings"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger/internal/model"
	"ledger/pkg/exception"
)

// Registry reads assets and trading pairs. The ledger never mutates them outside Seed.
type Registry struct {
	db *gorm.DB
}

// New creates a registry reader.
func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Pair returns the pair by ID, active or not.
func (r *Registry) Pair(ctx context.Context, id uint) (model.TradingPair, error) {
	var p model.TradingPair
	res := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&p)
	if res.Error != nil {
		return model.TradingPair{}, errors.Wrap(res.Error, "find pair")
	}
	if res.RowsAffected == 0 {
		return model.TradingPair{}, errors.Wrapf(exception.ErrUnknownPair, "pair id: %d", id)
	}
	return p, nil
}

// PairByName returns the pair by name, active or not.
func (r *Registry) PairByName(ctx context.Context, name string) (model.TradingPair, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	var p model.TradingPair
	res := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&p)
	if res.Error != nil {
		return model.TradingPair{}, errors.Wrap(res.Error, "find pair")
	}
	if res.RowsAffected == 0 {
		return model.TradingPair{}, errors.Wrapf(exception.ErrUnknownPair, "pair: %s", name)
	}
	return p, nil
}

// ActivePair returns the pair by name and rejects disabled pairs.
func (r *Registry) ActivePair(ctx context.Context, name string) (model.TradingPair, error) {
	p, err := r.PairByName(ctx, name)
	if err != nil {
		return model.TradingPair{}, err
	}
	if !p.Active {
		return model.TradingPair{}, errors.Wrapf(exception.ErrPairInactive, "pair: %s", p.Name)
	}
	return p, nil
}

// AssetBySymbol returns the asset by ticker.
func (r *Registry) AssetBySymbol(ctx context.Context, symbol string) (model.Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var a model.Asset
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Limit(1).Find(&a)
	if res.Error != nil {
		return model.Asset{}, errors.Wrap(res.Error, "find asset")
	}
	if res.RowsAffected == 0 {
		return model.Asset{}, errors.Wrapf(exception.ErrUnknownAsset, "asset: %s", symbol)
	}
	return a, nil
}

// Assets returns every asset keyed by ID.
func (r *Registry) Assets(ctx context.Context) (map[uint]model.Asset, error) {
	var as []model.Asset
	if err := r.db.WithContext(ctx).Find(&as).Error; err != nil {
		return nil, errors.Wrap(err, "find assets")
	}
	out := make(map[uint]model.Asset, len(as))
	for _, a := range as {
		out[a.ID] = a
	}
	return out, nil
}

// Seed inserts the catalog's assets and pairs. Existing rows keep their IDs; a pair's active flag is
// refreshed from the catalog.
func (r *Registry) Seed(ctx context.Context, c *Catalog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(c.Assets()))
		for _, spec := range c.Assets() {
			a := model.Asset{Symbol: spec.Symbol, Kind: spec.Kind}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&a).Error; err != nil {
				return errors.Wrapf(err, "seed asset %s", spec.Symbol)
			}
			if err := tx.Where("symbol = ?", spec.Symbol).First(&a).Error; err != nil {
				return errors.Wrapf(err, "reload asset %s", spec.Symbol)
			}
			ids[spec.Symbol] = a.ID
		}

		for _, spec := range c.Pairs() {
			p := model.TradingPair{
				Name:         spec.Name(),
				BaseAssetID:  ids[spec.Base],
				QuoteAssetID: ids[spec.Quote],
				Active:       !spec.Inactive,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"active"}),
			}).Create(&p).Error
			if err != nil {
				return errors.Wrapf(err, "seed pair %s", spec.Name())
			}
		}
		return nil
	})
}
