package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds one user's balance of one asset.
//
// Available is spendable, Locked is held by open orders. Both are never negative.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	UserID    string          `gorm:"size:64;not null;uniqueIndex:idx_wallet_user_asset" json:"userId"`
	AssetID   uint            `gorm:"not null;uniqueIndex:idx_wallet_user_asset" json:"assetId"`
	Available decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0" json:"available"`
	Locked    decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0" json:"locked"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Total returns the full balance, held or not.
func (w Wallet) Total() decimal.Decimal {
	return w.Available.Add(w.Locked)
}
