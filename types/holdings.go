package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the signed quantity held for one symbol, positive for long.
// LastPrice is the most recent observed market price and is what snapshot
// valuation uses; there is no look-ahead.
type Position struct {
	Symbol    string
	Quantity  decimal.Decimal
	LastPrice decimal.Decimal
}

func (p Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.LastPrice)
}

// HoldingsSnapshot is one append-only entry of the equity history, recorded
// once per market event. Total must equal Cash plus the sum of position
// market values at the time it was appended.
type HoldingsSnapshot struct {
	Timestamp  time.Time
	Cash       decimal.Decimal
	Commission decimal.Decimal
	Positions  map[string]Position
	Total      decimal.Decimal
}

// EquityPoint is a (timestamp, total) pair of the equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Total     decimal.Decimal
}
