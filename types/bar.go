package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bar struct {
	Symbol    string          `json:"symbol" csv:"symbol"`
	Open      decimal.Decimal `json:"open" csv:"open"`
	High      decimal.Decimal `json:"high" csv:"high"`
	Low       decimal.Decimal `json:"low" csv:"low"`
	Close     decimal.Decimal `json:"close" csv:"close"`
	Volume    decimal.Decimal `json:"volume" csv:"volume"`
	Timestamp time.Time       `json:"timestamp" csv:"-"`
}

// Price is the reference price of the bar used for signal evaluation and
// execution, taken at the close.
func (b Bar) Price() decimal.Decimal {
	return b.Close
}
