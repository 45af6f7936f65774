package settlement

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger/internal/bus"
	"ledger/internal/model"
)

// TopicTradeSettled is the bus topic of committed settlements.
const TopicTradeSettled = "trade.settled"

// TradeEvent describes a committed settlement for downstream consumers.
type TradeEvent struct {
	TradeID     uuid.UUID       `json:"tradeId"`
	Pair        string          `json:"pair"`
	BuyOrderID  uuid.UUID       `json:"buyOrderId"`
	SellOrderID uuid.UUID       `json:"sellOrderId"`
	Buyer       string          `json:"buyer"`
	Seller      string          `json:"seller"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	ExecutedAt  time.Time       `json:"executedAt"`
}

func newTradeEvent(t model.Trade, pair model.TradingPair, buy, sell model.Order) TradeEvent {
	return TradeEvent{
		TradeID:     t.ID,
		Pair:        pair.Name,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Buyer:       buy.UserID,
		Seller:      sell.UserID,
		Amount:      t.Amount,
		Price:       t.Price,
		ExecutedAt:  t.ExecutedAt,
	}
}

func (e TradeEvent) toBus() (bus.Event, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return bus.Event{}, err
	}
	return bus.Event{
		Topic:   TopicTradeSettled,
		Key:     []byte(e.Pair),
		Payload: payload,
	}, nil
}
