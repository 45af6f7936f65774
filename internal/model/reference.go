package model

import (
	"time"

	"ledger/internal/model/enum"
)

// Asset is reference data owned by the asset registry.
type Asset struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Symbol    string         `gorm:"size:16;not null;uniqueIndex" json:"symbol"`
	Kind      enum.AssetKind `gorm:"not null" json:"kind"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TradingPair is reference data owned by the pair registry.
// Base is the asset being sold, Quote is the asset it is paid with.
type TradingPair struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:32;not null;uniqueIndex" json:"name"`
	BaseAssetID  uint      `gorm:"not null" json:"baseAssetId"`
	QuoteAssetID uint      `gorm:"not null" json:"quoteAssetId"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}
