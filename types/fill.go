package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is the simulated execution of exactly one prior order. Cost is
// price multiplied by quantity, direction-adjusted: positive for buys,
// negative for sells, so the ledger can subtract it from cash directly.
// Quantity and side carry over from the order unchanged. Latency is the
// simulated delay between order arrival and the fill becoming observable;
// the Timestamp already includes it.
type Fill struct {
	Base
	OrderID    string
	Quantity   decimal.Decimal
	Side       Side
	Price      decimal.Decimal
	Cost       decimal.Decimal
	Commission decimal.Decimal
	Latency    time.Duration
}

func NewFill(
	orderID string,
	symbol string,
	quantity decimal.Decimal,
	side Side,
	price decimal.Decimal,
	commission decimal.Decimal,
	latency time.Duration,
	filledAt time.Time,
) Fill {
	cost := price.Mul(quantity)
	if side == SideTypeSell {
		cost = cost.Neg()
	}
	return Fill{
		Base:       Base{Timestamp: filledAt, Ticker: symbol},
		OrderID:    orderID,
		Quantity:   quantity,
		Side:       side,
		Price:      price,
		Cost:       cost,
		Commission: commission,
		Latency:    latency,
	}
}
