package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DimPair is the pair dimension of the trade star schema.
type DimPair struct {
	PairKey   uint      `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:32;not null"`
	Base      string    `gorm:"size:16;not null"`
	Quote     string    `gorm:"size:16;not null"`
	Active    bool      `gorm:"not null"`
	UpdatedAt time.Time
}

func (DimPair) TableName() string { return "dim_pairs" }

// DimDate is the calendar dimension, keyed yyyymmdd in UTC.
type DimDate struct {
	DateKey int       `gorm:"primaryKey;autoIncrement:false"`
	Date    time.Time `gorm:"not null"`
	Year    int       `gorm:"not null"`
	Quarter int       `gorm:"not null"`
	Month   int       `gorm:"not null"`
	Day     int       `gorm:"not null"`
	Weekday string    `gorm:"size:9;not null"`
}

func (DimDate) TableName() string { return "dim_dates" }

// FactTrade is one settled trade.
type FactTrade struct {
	TradeID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PairKey     uint            `gorm:"not null;index"`
	DateKey     int             `gorm:"not null;index"`
	BuyOrderID  uuid.UUID       `gorm:"type:uuid;not null"`
	SellOrderID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Notional    decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	ExecutedAt  time.Time       `gorm:"not null"`
}

func (FactTrade) TableName() string { return "fact_trades" }

// Models lists the reporting tables for migration.
func Models() []any {
	return []any{&DimPair{}, &DimDate{}, &FactTrade{}}
}

func dateKey(t time.Time) int {
	t = t.UTC()
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func newDimDate(t time.Time) DimDate {
	t = t.UTC()
	return DimDate{
		DateKey: dateKey(t),
		Date:    time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Year:    t.Year(),
		Quarter: (int(t.Month())-1)/3 + 1,
		Month:   int(t.Month()),
		Day:     t.Day(),
		Weekday: t.Weekday().String(),
	}
}
