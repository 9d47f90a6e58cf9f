package types

import (
	"time"
)

// Event is the envelope shared by every entry on the backtest queue.
// Concrete payloads are Market, Signal, Order and Fill; the engine
// dispatches on the concrete type.
type Event interface {
	Time() time.Time
	Symbol() string
}

// Base carries the fields common to all event kinds. Events are immutable
// once constructed and consumed exactly once by the engine.
type Base struct {
	Timestamp time.Time
	Ticker    string
}

func (b Base) Time() time.Time {
	return b.Timestamp
}

func (b Base) Symbol() string {
	return b.Ticker
}

// Market is a single bar observation pushed by the data boundary.
type Market struct {
	Base
	Bar Bar
}

func NewMarket(bar Bar) Market {
	return Market{
		Base: Base{Timestamp: bar.Timestamp, Ticker: bar.Symbol},
		Bar:  bar,
	}
}
