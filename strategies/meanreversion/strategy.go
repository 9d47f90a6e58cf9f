package meanreversion

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"marketreplay/types"
)

// Strategy trades deviations from a rolling mean using Bollinger bands:
// buy below the lower band, sell short above the upper band, close when
// price reverts to the mean. One position per symbol at a time.
type Strategy struct {
	window       int
	numStd       float64
	positionSize decimal.Decimal

	prices    map[string][]float64
	positions map[string]decimal.Decimal
}

func New(window int, numStd float64, positionSize decimal.Decimal) *Strategy {
	return &Strategy{
		window:       window,
		numStd:       numStd,
		positionSize: positionSize,
		prices:       make(map[string][]float64),
		positions:    make(map[string]decimal.Decimal),
	}
}

func (s *Strategy) Name() string {
	return "mean_reversion"
}

func (s *Strategy) OnMarketData(m types.Market) (types.Signal, bool) {
	symbol := m.Symbol()
	price := m.Bar.Price()

	history := append(s.prices[symbol], price.InexactFloat64())
	if len(history) > s.window {
		history = history[len(history)-s.window:]
	}
	s.prices[symbol] = history

	if len(history) < s.window {
		return types.Signal{}, false
	}

	sma, err := stats.Mean(history)
	if err != nil {
		return types.Signal{}, false
	}
	std, err := stats.StandardDeviation(history)
	if err != nil || std == 0 {
		return types.Signal{}, false
	}

	upper := sma + s.numStd*std
	lower := sma - s.numStd*std
	mid := price.InexactFloat64()
	position := s.positions[symbol]

	switch {
	case position.IsZero() && mid < lower:
		return types.NewSignal(symbol, types.SignalBuy, s.positionSize, price,
			bandConfidence(mid, lower, sma), "price below lower band", m.Time()), true
	case position.IsZero() && mid > upper:
		return types.NewSignal(symbol, types.SignalSell, s.positionSize, price,
			bandConfidence(mid, upper, sma), "price above upper band", m.Time()), true
	case position.IsPositive() && mid >= sma:
		return types.NewSignal(symbol, types.SignalCloseLong, position, price,
			1, "price reverted to mean", m.Time()), true
	case position.IsNegative() && mid <= sma:
		return types.NewSignal(symbol, types.SignalCloseShort, position.Abs(), price,
			1, "price reverted to mean", m.Time()), true
	}
	return types.Signal{}, false
}

func (s *Strategy) OnFill(f types.Fill) {
	position := s.positions[f.Symbol()]
	if f.Side == types.SideTypeBuy {
		s.positions[f.Symbol()] = position.Add(f.Quantity)
	} else {
		s.positions[f.Symbol()] = position.Sub(f.Quantity)
	}
}

// Reset restores initial state so the strategy can serve an independent run
// without reconstruction.
func (s *Strategy) Reset() {
	s.prices = make(map[string][]float64)
	s.positions = make(map[string]decimal.Decimal)
}

// bandConfidence scales with how far beyond the band the price has moved,
// capped at 1.
func bandConfidence(price, band, sma float64) float64 {
	span := band - sma
	if span < 0 {
		span = -span
	}
	if span == 0 {
		return 1
	}
	excess := price - band
	if excess < 0 {
		excess = -excess
	}
	c := 0.5 + excess/(2*span)
	if c > 1 {
		return 1
	}
	return c
}
