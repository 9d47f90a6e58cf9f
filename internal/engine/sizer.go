package engine

import (
	"github.com/shopspring/decimal"

	"marketreplay/types"
)

// Sizer maps an approved signal to a concrete unsigned order quantity and
// side. Returning false means no order should be created.
type Sizer interface {
	Size(signal types.Signal, current types.Position) (decimal.Decimal, types.Side, bool)
}

// FixedSizer orders the same quantity on every buy or sell; the signal's
// requested quantity is ignored. Close signals flatten the current position
// instead.
type FixedSizer struct {
	Quantity decimal.Decimal
}

func NewFixedSizer(quantity decimal.Decimal) FixedSizer {
	return FixedSizer{Quantity: quantity}
}

func (s FixedSizer) Size(signal types.Signal, current types.Position) (decimal.Decimal, types.Side, bool) {
	switch signal.Type {
	case types.SignalBuy:
		return s.Quantity, types.SideTypeBuy, true
	case types.SignalSell:
		return s.Quantity, types.SideTypeSell, true
	case types.SignalCloseLong:
		if current.Quantity.IsPositive() {
			return current.Quantity, types.SideTypeSell, true
		}
	case types.SignalCloseShort:
		if current.Quantity.IsNegative() {
			return current.Quantity.Abs(), types.SideTypeBuy, true
		}
	}
	return decimal.Zero, "", false
}
