package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"ledger/internal/admission"
	"ledger/internal/model"
	"ledger/internal/model/enum"
	"ledger/internal/obs"
	"ledger/internal/pricing"
	"ledger/internal/wallet"
	"ledger/pkg/exception"
)

// PairSource resolves trading pairs.
type PairSource interface {
	Pair(ctx context.Context, id uint) (model.TradingPair, error)
	ActivePair(ctx context.Context, name string) (model.TradingPair, error)
}

// PlaceRequest is a proposed order. Price is required for every order; market orders carry the price
// resolved by the oracle.
type PlaceRequest struct {
	UserID string           `json:"userId"`
	Pair   string           `json:"pair"`
	Side   enum.OrderSide   `json:"side"`
	Type   enum.OrderType   `json:"type"`
	Amount decimal.Decimal  `json:"amount"`
	Price  *decimal.Decimal `json:"price"`
}

// Usecase admits, cancels and reads orders.
//
// Admission reserves the required balance in the same transaction that persists the order, so two
// open orders can never promise the same funds.
type Usecase struct {
	db      *gorm.DB
	ledger  *wallet.Ledger
	pairs   PairSource
	oracle  *pricing.Oracle
	gate    *admission.Gate
	metrics *obs.Metrics
}

func NewUsecase(db *gorm.DB, ledger *wallet.Ledger, pairs PairSource, oracle *pricing.Oracle, gate *admission.Gate, metrics *obs.Metrics) *Usecase {
	return &Usecase{
		db:      db,
		ledger:  ledger,
		pairs:   pairs,
		oracle:  oracle,
		gate:    gate,
		metrics: metrics,
	}
}

// PlaceOrder admits the order and persists it as open, or persists nothing.
func (use *Usecase) PlaceOrder(ctx context.Context, req PlaceRequest) (model.Order, error) {
	if req.Price == nil {
		err := errors.Wrapf(exception.ErrInvalidOrder, "%s order without price", req.Type)
		use.metrics.ObserveAdmission(err, 0)
		return model.Order{}, err
	}

	pair, err := use.pairs.ActivePair(ctx, req.Pair)
	if err != nil {
		use.metrics.ObserveAdmission(err, 0)
		return model.Order{}, err
	}

	return use.admit(ctx, admission.Intent{
		UserID: req.UserID,
		Pair:   pair,
		Type:   req.Type,
		Side:   req.Side,
		Amount: req.Amount,
		Price:  *req.Price,
	})
}

// PlaceMarketBuyOrder spends up to spend of the quote asset at the pair's last traded price.
func (use *Usecase) PlaceMarketBuyOrder(ctx context.Context, userID, pairName string, spend decimal.Decimal) (model.Order, error) {
	quote, err := use.oracle.QuoteBuy(ctx, pairName, spend)
	if err != nil {
		use.metrics.ObserveAdmission(err, 0)
		return model.Order{}, err
	}

	return use.admit(ctx, admission.Intent{
		UserID: userID,
		Pair:   quote.Pair,
		Type:   enum.OrderTypeMarket,
		Side:   enum.OrderSideBuy,
		Amount: quote.Amount,
		Price:  quote.Price,
	})
}

func (use *Usecase) admit(ctx context.Context, intent admission.Intent) (o model.Order, err error) {
	start := time.Now()
	defer func() {
		use.metrics.ObserveAdmission(err, time.Since(start))
	}()

	required, err := use.gate.Evaluate(intent)
	if err != nil {
		return model.Order{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Order{}, errors.Wrap(err, "new order id")
	}

	o = model.Order{
		ID:       id,
		UserID:   intent.UserID,
		PairID:   intent.Pair.ID,
		Type:     intent.Type,
		Side:     intent.Side,
		Amount:   intent.Amount,
		Price:    intent.Price,
		Filled:   decimal.Zero,
		Reserved: required.Amount,
		Status:   enum.OrderStatusOpen,
	}

	key := wallet.Key{UserID: intent.UserID, AssetID: required.AssetID}
	err = use.ledger.Transact(ctx, []wallet.Key{key}, func(tx *wallet.Tx) error {
		w, err := tx.Balance(key)
		if err != nil {
			return err
		}
		if err := admission.Admit(required, w.Available); err != nil {
			return err
		}
		if err := tx.Reserve(key, required.Amount); err != nil {
			return err
		}
		if err := tx.DB().Create(&o).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	logs.Infof("order admitted, id: %s, user: %s, pair: %s, %s %s %s @ %s, reserved: %s",
		o.ID, o.UserID, intent.Pair.Name, o.Type, o.Side, o.Amount, o.Price, o.Reserved)
	return o, nil
}

// CancelOrder cancels an open order of userID and releases what it still holds.
func (use *Usecase) CancelOrder(ctx context.Context, userID string, id uuid.UUID) (model.Order, error) {
	o, err := Find(ctx, use.db, id)
	if err != nil {
		return model.Order{}, err
	}
	if o.UserID != userID {
		return model.Order{}, errors.Wrapf(exception.ErrOrderNotFound, "order: %s", id)
	}

	pair, err := use.pairs.Pair(ctx, o.PairID)
	if err != nil {
		return model.Order{}, err
	}

	key := wallet.Key{UserID: o.UserID, AssetID: admission.ReservedAsset(pair, o.Side)}
	err = use.ledger.Transact(ctx, []wallet.Key{key}, func(tx *wallet.Tx) error {
		locked, err := FindForUpdate(tx.DB(), id)
		if err != nil {
			return err
		}
		if !locked.IsOpen() {
			return errors.Wrapf(exception.ErrOrderNotOpen, "order: %s, status: %s", id, locked.Status)
		}
		if err := tx.Release(key, locked.Reserved); err != nil {
			return err
		}
		locked.Reserved = decimal.Zero
		locked.Status = enum.OrderStatusCanceled
		o = locked
		return Save(tx.DB(), &o)
	})
	if err != nil {
		return model.Order{}, err
	}

	use.metrics.IncCanceled()
	logs.Infof("order canceled, id: %s, user: %s", o.ID, o.UserID)
	return o, nil
}

// Get returns an order by ID.
func (use *Usecase) Get(ctx context.Context, id uuid.UUID) (model.Order, error) {
	return Find(ctx, use.db, id)
}

// ListOrders returns the orders of userID. A zero status lists every status.
func (use *Usecase) ListOrders(ctx context.Context, userID string, status enum.OrderStatus) ([]model.Order, error) {
	return List(ctx, use.db, userID, status)
}
