package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"ledger/internal/bus"
	"ledger/internal/model"
	"ledger/internal/model/enum"
	"ledger/internal/obs"
	"ledger/internal/order"
	"ledger/internal/wallet"
	"ledger/pkg/exception"
)

// PairSource resolves trading pairs by name.
type PairSource interface {
	PairByName(ctx context.Context, name string) (model.TradingPair, error)
}

// Publisher accepts committed settlement events without blocking.
type Publisher interface {
	TryPublish(e bus.Event) error
}

// Request is a matched fill submitted by the matcher.
type Request struct {
	Pair        string          `json:"pair"`
	BuyOrderID  uuid.UUID       `json:"buyOrderId"`
	SellOrderID uuid.UUID       `json:"sellOrderId"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
}

// Processor applies trades to the ledger.
type Processor struct {
	db        *gorm.DB
	ledger    *wallet.Ledger
	pairs     PairSource
	publisher Publisher
	metrics   *obs.Metrics
	now       func() time.Time
}

// NewProcessor creates a processor. publisher and metrics may be nil.
func NewProcessor(db *gorm.DB, ledger *wallet.Ledger, pairs PairSource, publisher Publisher, metrics *obs.Metrics) *Processor {
	return &Processor{
		db:        db,
		ledger:    ledger,
		pairs:     pairs,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SettleTrade records the trade and moves balances between the two counterparties in one transaction:
// the seller gives amount of base for amount*price of quote, the buyer the reverse. The buyer's and
// seller's reservations are consumed, and any surplus reservation is released. On any failure nothing
// is written.
func (p *Processor) SettleTrade(ctx context.Context, req Request) (t model.Trade, err error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveSettlement(err, time.Since(start))
	}()

	if !req.Amount.IsPositive() || !req.Price.IsPositive() {
		return model.Trade{}, errors.Wrapf(exception.ErrInvalidTrade, "amount: %s, price: %s", req.Amount, req.Price)
	}
	if !model.FitsScale(req.Amount) || !model.FitsScale(req.Price) {
		return model.Trade{}, errors.Wrapf(exception.ErrInvalidTrade, "more than %d fractional digits", model.Scale)
	}
	if req.BuyOrderID == req.SellOrderID {
		return model.Trade{}, errors.Wrapf(exception.ErrInvalidTrade, "order %s on both sides", req.BuyOrderID)
	}

	pair, err := p.pairs.PairByName(ctx, req.Pair)
	if err != nil {
		return model.Trade{}, err
	}

	buy, err := order.Find(ctx, p.db, req.BuyOrderID)
	if err != nil {
		return model.Trade{}, err
	}
	sell, err := order.Find(ctx, p.db, req.SellOrderID)
	if err != nil {
		return model.Trade{}, err
	}
	if err := checkSides(pair, buy, sell); err != nil {
		return model.Trade{}, err
	}

	var (
		sellerBase  = wallet.Key{UserID: sell.UserID, AssetID: pair.BaseAssetID}
		sellerQuote = wallet.Key{UserID: sell.UserID, AssetID: pair.QuoteAssetID}
		buyerQuote  = wallet.Key{UserID: buy.UserID, AssetID: pair.QuoteAssetID}
		buyerBase   = wallet.Key{UserID: buy.UserID, AssetID: pair.BaseAssetID}
	)

	id, err := uuid.NewV7()
	if err != nil {
		return model.Trade{}, errors.Wrap(err, "new trade id")
	}
	t = model.Trade{
		ID:          id,
		PairID:      pair.ID,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Amount:      req.Amount,
		Price:       req.Price,
	}
	cost := t.Notional()

	err = p.ledger.Transact(ctx, []wallet.Key{sellerBase, sellerQuote, buyerQuote, buyerBase}, func(tx *wallet.Tx) error {
		var err error
		buy, sell, err = lockOrders(tx.DB(), buy.ID, sell.ID)
		if err != nil {
			return err
		}
		// stamped under the wallet locks, so trades touching the same wallets commit in executedAt order
		t.ExecutedAt = p.now().UTC()
		for _, o := range []model.Order{buy, sell} {
			if !o.IsOpen() {
				return errors.Wrapf(exception.ErrOrderNotOpen, "order: %s, status: %s", o.ID, o.Status)
			}
			if o.Remaining().LessThan(t.Amount) {
				return errors.Wrapf(exception.ErrInvalidTrade, "order %s remaining %s < trade amount %s", o.ID, o.Remaining(), t.Amount)
			}
		}

		// seller gives base, receives quote
		sellShare := reservationShare(sell, t.Amount)
		if err := tx.DebitLocked(sellerBase, t.Amount); err != nil {
			return err
		}
		if err := tx.Release(sellerBase, sellShare.Sub(t.Amount)); err != nil {
			return err
		}
		if err := tx.Credit(sellerQuote, cost); err != nil {
			return err
		}

		// buyer gives quote, receives base
		buyShare := reservationShare(buy, t.Amount)
		if err := tx.DebitLocked(buyerQuote, decimal.Min(cost, buyShare)); err != nil {
			return err
		}
		if cost.GreaterThan(buyShare) {
			if err := tx.Debit(buyerQuote, cost.Sub(buyShare)); err != nil {
				return err
			}
		} else if err := tx.Release(buyerQuote, buyShare.Sub(cost)); err != nil {
			return err
		}
		if err := tx.Credit(buyerBase, t.Amount); err != nil {
			return err
		}

		fill(&sell, t.Amount, sellShare)
		fill(&buy, t.Amount, buyShare)
		if err := order.Save(tx.DB(), &sell); err != nil {
			return err
		}
		if err := order.Save(tx.DB(), &buy); err != nil {
			return err
		}
		if err := tx.DB().Create(&t).Error; err != nil {
			return errors.Wrap(err, "create trade")
		}
		return nil
	})
	if err != nil {
		logs.Errorf("settlement aborted, pair: %s, buy: %s, sell: %s, amount: %s, price: %s, err: %+v",
			pair.Name, req.BuyOrderID, req.SellOrderID, req.Amount, req.Price, err)
		return model.Trade{}, err
	}

	logs.Infof("trade settled, id: %s, pair: %s, buyer: %s, seller: %s, %s @ %s",
		t.ID, pair.Name, buy.UserID, sell.UserID, t.Amount, t.Price)
	p.publish(newTradeEvent(t, pair, buy, sell))
	return t, nil
}

func (p *Processor) publish(e TradeEvent) {
	if p.publisher == nil {
		return
	}
	be, err := e.toBus()
	if err == nil {
		err = p.publisher.TryPublish(be)
	}
	if err != nil {
		p.metrics.IncEventDrop()
		logs.Errorf("publish trade event %s, err: %+v", e.TradeID, err)
	}
}

func checkSides(pair model.TradingPair, buy, sell model.Order) error {
	if buy.Side != enum.OrderSideBuy {
		return errors.Wrapf(exception.ErrInvalidTrade, "order %s is not a buy", buy.ID)
	}
	if sell.Side != enum.OrderSideSell {
		return errors.Wrapf(exception.ErrInvalidTrade, "order %s is not a sell", sell.ID)
	}
	if buy.PairID != pair.ID || sell.PairID != pair.ID {
		return errors.Wrapf(exception.ErrInvalidTrade, "orders are not both on %s", pair.Name)
	}
	return nil
}

// lockOrders locks both order rows in ID order.
func lockOrders(tx *gorm.DB, buyID, sellID uuid.UUID) (buy, sell model.Order, err error) {
	first, second := buyID, sellID
	if second.String() < first.String() {
		first, second = second, first
	}
	a, err := order.FindForUpdate(tx, first)
	if err != nil {
		return model.Order{}, model.Order{}, err
	}
	b, err := order.FindForUpdate(tx, second)
	if err != nil {
		return model.Order{}, model.Order{}, err
	}
	if a.ID == buyID {
		return a, b, nil
	}
	return b, a, nil
}

// reservationShare returns the part of o's reservation that backs a fill of amount. The final fill
// takes whatever is left.
func reservationShare(o model.Order, amount decimal.Decimal) decimal.Decimal {
	if o.Filled.Add(amount).Equal(o.Amount) {
		return o.Reserved
	}
	share := amount
	if o.Side == enum.OrderSideBuy {
		share = model.Notional(amount, o.Price)
	}
	return decimal.Min(share, o.Reserved)
}

func fill(o *model.Order, amount, share decimal.Decimal) {
	o.Filled = o.Filled.Add(amount)
	o.Reserved = o.Reserved.Sub(share)
	if o.Remaining().IsZero() {
		o.Status = enum.OrderStatusFilled
	}
}
