package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger/internal/model/enum"
)

// Order is an admitted order. Only Status, Filled and Reserved change after creation.
type Order struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string           `gorm:"size:64;not null;index" json:"userId"`
	PairID    uint             `gorm:"not null;index" json:"pairId"`
	Type      enum.OrderType   `gorm:"not null" json:"type"`
	Side      enum.OrderSide   `gorm:"not null" json:"side"`
	Amount    decimal.Decimal  `gorm:"type:numeric(38,18);not null" json:"amount"`
	Price     decimal.Decimal  `gorm:"type:numeric(38,18);not null" json:"price"`
	Filled    decimal.Decimal  `gorm:"type:numeric(38,18);not null;default:0" json:"filled"`
	Reserved  decimal.Decimal  `gorm:"type:numeric(38,18);not null;default:0" json:"reserved"`
	Status    enum.OrderStatus `gorm:"not null;index" json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Remaining returns the amount not yet filled.
func (o Order) Remaining() decimal.Decimal {
	return o.Amount.Sub(o.Filled)
}

// IsOpen reports whether the order can still be filled or canceled.
func (o Order) IsOpen() bool {
	return o.Status == enum.OrderStatusOpen
}
