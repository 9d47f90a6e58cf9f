package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type SignalType string

const (
	SignalBuy        SignalType = "BUY"
	SignalSell       SignalType = "SELL"
	SignalHold       SignalType = "HOLD"
	SignalCloseLong  SignalType = "CLOSE_LONG"
	SignalCloseShort SignalType = "CLOSE_SHORT"
)

// Signal is a trade intent emitted by a strategy. Quantity is the strategy's
// requested size; the portfolio's sizer decides the final order quantity.
// Price is an optional hint (zero when absent). Confidence lies in [0,1].
type Signal struct {
	Base
	Type       SignalType
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Confidence float64
	Reason     string
}

func NewSignal(
	symbol string,
	sigType SignalType,
	quantity decimal.Decimal,
	price decimal.Decimal,
	confidence float64,
	reason string,
	createdAt time.Time,
) Signal {
	return Signal{
		Base:       Base{Timestamp: createdAt, Ticker: symbol},
		Type:       sigType,
		Quantity:   quantity,
		Price:      price,
		Confidence: confidence,
		Reason:     reason,
	}
}
