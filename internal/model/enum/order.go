package enum

import "ledger/pkg/exception"

// OrderSide buy, sell
type OrderSide uint8

const (
	_order_side_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

var orderSideNames = [...]string{"", "buy", "sell"}

func (s OrderSide) IsAvailable() bool {
	return s > _order_side_beg && s < _order_side_end
}

func (s OrderSide) String() string {
	if !s.IsAvailable() {
		return "unknown"
	}
	return orderSideNames[s]
}

func (s OrderSide) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *OrderSide) UnmarshalText(text []byte) error {
	v, ok := lookup(orderSideNames[:], string(text))
	if !ok {
		return exception.ErrInvalidEnum
	}
	*s = OrderSide(v)
	return nil
}

// OrderType limit, market
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
	_order_type_end
)

var orderTypeNames = [...]string{"", "limit", "market"}

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

func (t OrderType) String() string {
	if !t.IsAvailable() {
		return "unknown"
	}
	return orderTypeNames[t]
}

func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *OrderType) UnmarshalText(text []byte) error {
	v, ok := lookup(orderTypeNames[:], string(text))
	if !ok {
		return exception.ErrInvalidEnum
	}
	*t = OrderType(v)
	return nil
}

// OrderStatus open, filled, canceled
type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusOpen
	OrderStatusFilled
	OrderStatusCanceled
	_order_status_end
)

var orderStatusNames = [...]string{"", "open", "filled", "canceled"}

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

func (s OrderStatus) String() string {
	if !s.IsAvailable() {
		return "unknown"
	}
	return orderStatusNames[s]
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	v, ok := lookup(orderStatusNames[:], string(text))
	if !ok {
		return exception.ErrInvalidEnum
	}
	*s = OrderStatus(v)
	return nil
}

// lookup returns the index of name in names, skipping the zero slot.
func lookup(names []string, name string) (uint8, bool) {
	for i := 1; i < len(names); i++ {
		if names[i] == name {
			return uint8(i), true
		}
	}
	return 0, false
}
