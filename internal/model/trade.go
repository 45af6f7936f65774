package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is a settled fill between one buy order and one sell order. Immutable.
type Trade struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PairID      uint            `gorm:"not null;index:idx_trade_pair_time,priority:1" json:"pairId"`
	BuyOrderID  uuid.UUID       `gorm:"type:uuid;not null" json:"buyOrderId"`
	SellOrderID uuid.UUID       `gorm:"type:uuid;not null" json:"sellOrderId"`
	Amount      decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"amount"`
	Price       decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"price"`
	ExecutedAt  time.Time       `gorm:"not null;index:idx_trade_pair_time,priority:2" json:"executedAt"`
}

// Notional returns amount * price.
func (t Trade) Notional() decimal.Decimal {
	return Notional(t.Amount, t.Price)
}
