package admission

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"ledger/internal/model"
	"ledger/internal/model/enum"
	"ledger/pkg/exception"
)

// Config defines optional per-order limits. Zero values disable a limit.
type Config struct {
	KillSwitch       bool            `json:"killSwitch"`
	MaxOrderAmount   decimal.Decimal `json:"maxOrderAmount"`
	MaxOrderNotional decimal.Decimal `json:"maxOrderNotional"`
}

// Intent is a proposed order whose price is already resolved.
type Intent struct {
	UserID string
	Pair   model.TradingPair
	Type   enum.OrderType
	Side   enum.OrderSide
	Amount decimal.Decimal
	Price  decimal.Decimal
}

// Requirement is what an order must be able to hold: Amount of AssetID.
type Requirement struct {
	AssetID uint
	Amount  decimal.Decimal
}

// Gate validates order intents before they reach the ledger.
type Gate struct {
	cfg Config
}

// NewGate creates a gate with static limits.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Evaluate validates the intent and returns the balance it requires.
//
// A sell requires Amount of the base asset; a buy requires Amount * Price of the quote asset.
func (g *Gate) Evaluate(intent Intent) (Requirement, error) {
	if g.cfg.KillSwitch {
		return Requirement{}, errors.Wrap(exception.ErrInvalidOrder, "admission halted by kill switch")
	}
	if intent.UserID == "" {
		return Requirement{}, errors.Wrap(exception.ErrInvalidOrder, "user is empty")
	}
	if !intent.Pair.Active {
		return Requirement{}, errors.Wrapf(exception.ErrPairInactive, "pair: %s", intent.Pair.Name)
	}
	if !intent.Side.IsAvailable() {
		return Requirement{}, errors.Wrap(exception.ErrInvalidOrder, "side is unknown")
	}
	if !intent.Type.IsAvailable() {
		return Requirement{}, errors.Wrap(exception.ErrInvalidOrder, "type is unknown")
	}
	if !intent.Amount.IsPositive() {
		return Requirement{}, errors.Wrapf(exception.ErrInvalidOrder, "amount must be > 0, got %s", intent.Amount)
	}
	if !intent.Price.IsPositive() {
		return Requirement{}, errors.Wrapf(exception.ErrInvalidOrder, "price must be > 0, got %s", intent.Price)
	}
	if !model.FitsScale(intent.Amount) || !model.FitsScale(intent.Price) {
		return Requirement{}, errors.Wrapf(exception.ErrInvalidOrder, "more than %d fractional digits", model.Scale)
	}
	if g.cfg.MaxOrderAmount.IsPositive() && intent.Amount.GreaterThan(g.cfg.MaxOrderAmount) {
		return Requirement{}, errors.Wrapf(exception.ErrInvalidOrder, "amount %s exceeds limit %s", intent.Amount, g.cfg.MaxOrderAmount)
	}

	notional := model.Notional(intent.Amount, intent.Price)
	if g.cfg.MaxOrderNotional.IsPositive() && notional.GreaterThan(g.cfg.MaxOrderNotional) {
		return Requirement{}, errors.Wrapf(exception.ErrInvalidOrder, "notional %s exceeds limit %s", notional, g.cfg.MaxOrderNotional)
	}

	if intent.Side == enum.OrderSideSell {
		return Requirement{AssetID: ReservedAsset(intent.Pair, intent.Side), Amount: intent.Amount}, nil
	}
	return Requirement{AssetID: ReservedAsset(intent.Pair, intent.Side), Amount: notional}, nil
}

// ReservedAsset returns the asset an order of side holds on pair: base for sells, quote for buys.
func ReservedAsset(pair model.TradingPair, side enum.OrderSide) uint {
	if side == enum.OrderSideSell {
		return pair.BaseAssetID
	}
	return pair.QuoteAssetID
}

// Admit accepts the requirement iff available >= required; equality is accepted.
func Admit(req Requirement, available decimal.Decimal) error {
	if available.LessThan(req.Amount) {
		return errors.Wrapf(exception.ErrInsufficientFunds, "asset %d available: %s, required: %s", req.AssetID, available, req.Amount)
	}
	return nil
}
