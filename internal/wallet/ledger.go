package wallet

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger/internal/model"
	"ledger/pkg/exception"
)

// Ledger is the only writer of wallet balances.
//
// Every mutation runs inside Transact, which holds the per-wallet locks of the declared keys for the
// whole database transaction and selects the touched rows FOR UPDATE. Either all mutations of a
// transaction commit or none do.
type Ledger struct {
	db    *gorm.DB
	locks *locker
}

// New creates a ledger on top of db.
func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:    db,
		locks: &locker{},
	}
}

// Balance returns the wallet of user for asset. A missing wallet reads as zero.
func (l *Ledger) Balance(ctx context.Context, userID string, assetID uint) (model.Wallet, error) {
	var w model.Wallet
	res := l.db.WithContext(ctx).
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		Limit(1).
		Find(&w)
	if res.Error != nil {
		return model.Wallet{}, errors.Wrap(res.Error, "find wallet")
	}
	if res.RowsAffected == 0 {
		return emptyWallet(Key{UserID: userID, AssetID: assetID}), nil
	}
	return w, nil
}

// Wallets returns every wallet of user ordered by asset.
func (l *Ledger) Wallets(ctx context.Context, userID string) ([]model.Wallet, error) {
	var ws []model.Wallet
	if err := l.db.WithContext(ctx).Where("user_id = ?", userID).Order("asset_id").Find(&ws).Error; err != nil {
		return nil, errors.Wrap(err, "find wallets")
	}
	return ws, nil
}

// Credit increases the available balance, creating the wallet if needed.
func (l *Ledger) Credit(ctx context.Context, userID string, assetID uint, amount decimal.Decimal) error {
	key := Key{UserID: userID, AssetID: assetID}
	return l.Transact(ctx, []Key{key}, func(tx *Tx) error {
		return tx.Credit(key, amount)
	})
}

// Debit decreases the available balance.
func (l *Ledger) Debit(ctx context.Context, userID string, assetID uint, amount decimal.Decimal) error {
	key := Key{UserID: userID, AssetID: assetID}
	return l.Transact(ctx, []Key{key}, func(tx *Tx) error {
		return tx.Debit(key, amount)
	})
}

// Transact runs fn in one database transaction while holding the locks of keys.
// fn must only touch the database through tx.
func (l *Ledger) Transact(ctx context.Context, keys []Key, fn func(tx *Tx) error) error {
	unlock := l.locks.lock(keys)
	defer unlock()

	declared := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		declared[k] = struct{}{}
	}

	return l.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db, keys: declared})
	})
}

// Tx is a ledger transaction. It is only valid inside the Transact callback.
type Tx struct {
	db   *gorm.DB
	keys map[Key]struct{}
}

// DB returns the transaction handle for writes that must commit with the balance changes.
func (tx *Tx) DB() *gorm.DB {
	return tx.db
}

// Balance returns the locked row of key. A missing wallet reads as zero.
func (tx *Tx) Balance(key Key) (model.Wallet, error) {
	w, _, err := tx.load(key)
	return w, err
}

// Credit increases available.
func (tx *Tx) Credit(key Key, amount decimal.Decimal) error {
	if done, err := skip(amount); done {
		return err
	}
	w, found, err := tx.load(key)
	if err != nil {
		return err
	}
	w.Available = w.Available.Add(amount)
	if !found {
		if err := tx.db.Create(&w).Error; err != nil {
			return errors.Wrapf(err, "create wallet %s", key)
		}
		return nil
	}
	return tx.save(&w)
}

// Debit decreases available.
func (tx *Tx) Debit(key Key, amount decimal.Decimal) error {
	return tx.move(key, amount, func(w *model.Wallet) error {
		if w.Available.LessThan(amount) {
			return insufficient(key, "available", w.Available, amount)
		}
		w.Available = w.Available.Sub(amount)
		return nil
	})
}

// Reserve moves amount from available to locked.
func (tx *Tx) Reserve(key Key, amount decimal.Decimal) error {
	return tx.move(key, amount, func(w *model.Wallet) error {
		if w.Available.LessThan(amount) {
			return insufficient(key, "available", w.Available, amount)
		}
		w.Available = w.Available.Sub(amount)
		w.Locked = w.Locked.Add(amount)
		return nil
	})
}

// Release moves amount from locked back to available.
func (tx *Tx) Release(key Key, amount decimal.Decimal) error {
	return tx.move(key, amount, func(w *model.Wallet) error {
		if w.Locked.LessThan(amount) {
			return insufficient(key, "locked", w.Locked, amount)
		}
		w.Locked = w.Locked.Sub(amount)
		w.Available = w.Available.Add(amount)
		return nil
	})
}

// DebitLocked consumes amount from locked.
func (tx *Tx) DebitLocked(key Key, amount decimal.Decimal) error {
	return tx.move(key, amount, func(w *model.Wallet) error {
		if w.Locked.LessThan(amount) {
			return insufficient(key, "locked", w.Locked, amount)
		}
		w.Locked = w.Locked.Sub(amount)
		return nil
	})
}

func (tx *Tx) move(key Key, amount decimal.Decimal, apply func(w *model.Wallet) error) error {
	if done, err := skip(amount); done {
		return err
	}
	w, found, err := tx.load(key)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(exception.ErrWalletNotFound, "wallet %s", key)
	}
	if err := apply(&w); err != nil {
		return err
	}
	return tx.save(&w)
}

func (tx *Tx) load(key Key) (model.Wallet, bool, error) {
	if _, ok := tx.keys[key]; !ok {
		return model.Wallet{}, false, errors.Wrapf(exception.ErrWalletNotLocked, "wallet %s", key)
	}

	var w model.Wallet
	res := tx.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND asset_id = ?", key.UserID, key.AssetID).
		Limit(1).
		Find(&w)
	if res.Error != nil {
		return model.Wallet{}, false, errors.Wrapf(res.Error, "select wallet %s for update", key)
	}
	if res.RowsAffected == 0 {
		return emptyWallet(key), false, nil
	}
	return w, true, nil
}

func (tx *Tx) save(w *model.Wallet) error {
	if err := tx.db.Save(w).Error; err != nil {
		return errors.Wrapf(err, "save wallet %s/%d", w.UserID, w.AssetID)
	}
	return nil
}

// skip reports whether a mutation of amount has nothing to do, and the error if amount is invalid.
func skip(amount decimal.Decimal) (bool, error) {
	if amount.IsNegative() {
		return true, errors.Wrapf(exception.ErrInvalidAmount, "amount: %s", amount)
	}
	return amount.IsZero(), nil
}

func insufficient(key Key, field string, have, want decimal.Decimal) error {
	return errors.Wrapf(exception.ErrInsufficientFunds, "wallet %s %s: %s, required: %s", key, field, have, want)
}

func emptyWallet(key Key) model.Wallet {
	return model.Wallet{
		UserID:    key.UserID,
		AssetID:   key.AssetID,
		Available: decimal.Zero,
		Locked:    decimal.Zero,
	}
}
