package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger/internal/model"
	"ledger/internal/model/enum"
	"ledger/pkg/exception"
)

// Find loads an order by ID.
func Find(ctx context.Context, db *gorm.DB, id uuid.UUID) (model.Order, error) {
	return find(db.WithContext(ctx), id)
}

// FindForUpdate loads an order by ID and locks its row until the transaction of tx ends.
func FindForUpdate(tx *gorm.DB, id uuid.UUID) (model.Order, error) {
	return find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func find(db *gorm.DB, id uuid.UUID) (model.Order, error) {
	var o model.Order
	res := db.Where("id = ?", id).Limit(1).Find(&o)
	if res.Error != nil {
		return model.Order{}, errors.Wrap(res.Error, "find order")
	}
	if res.RowsAffected == 0 {
		return model.Order{}, errors.Wrapf(exception.ErrOrderNotFound, "order: %s", id)
	}
	return o, nil
}

// Save writes the mutable fields of o: Status, Filled and Reserved.
func Save(tx *gorm.DB, o *model.Order) error {
	err := tx.Model(o).
		Select("status", "filled", "reserved", "updated_at").
		Updates(o).Error
	if err != nil {
		return errors.Wrapf(err, "update order %s", o.ID)
	}
	return nil
}

// List returns the orders of user newest first, optionally filtered by status.
func List(ctx context.Context, db *gorm.DB, userID string, status enum.OrderStatus) ([]model.Order, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if status.IsAvailable() {
		q = q.Where("status = ?", status)
	}
	var os []model.Order
	if err := q.Order("created_at DESC").Order("id DESC").Find(&os).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return os, nil
}
