package execution

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrUnknownSlippageModel = errors.New("unknown slippage model")

// Slippage model names accepted in configuration.
const (
	SlippageFixed    = "FIXED"
	SlippageVolume   = "VOLUME"
	SlippageSqrt     = "SQRT"
	SlippageAdaptive = "ADAPTIVE"
)

// SlippageModel computes the adverse price slip for an order as a
// non-negative fraction of the reference price. Buys fill at
// price*(1+slip), sells at price*(1-slip).
type SlippageModel interface {
	Slip(price, quantity, volume decimal.Decimal) decimal.Decimal
}

// NewSlippageModel constructs a model by name. An unrecognized name is a
// configuration error at construction time, never a per-call failure.
func NewSlippageModel(model string, params map[string]float64) (SlippageModel, error) {
	get := func(key string, fallback float64) decimal.Decimal {
		if v, ok := params[key]; ok {
			return decimal.NewFromFloat(v)
		}
		return decimal.NewFromFloat(fallback)
	}

	switch model {
	case SlippageFixed:
		return &FixedSlippage{Bps: get("bps", 5)}, nil
	case SlippageVolume:
		return &VolumeSlippage{
			Base:              get("base", 0.0001),
			ImpactCoefficient: get("impact_coefficient", 0.1),
		}, nil
	case SlippageSqrt:
		return &SquareRootSlippage{
			Volatility:           get("volatility", 0.02),
			DefaultParticipation: get("participation_rate", 0.1),
			PermanentImpact:      get("permanent_impact", 0.1),
			TemporaryImpact:      get("temporary_impact", 0.01),
		}, nil
	case SlippageAdaptive:
		return &AdaptiveSlippage{
			Base:                  get("base", 0.0002),
			VolumeSensitivity:     get("volume_sensitivity", 0.5),
			VolatilitySensitivity: get("volatility_sensitivity", 0.3),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlippageModel, model)
	}
}

// FixedSlippage slips a constant number of basis points regardless of order
// size. Suitable for liquid markets with consistent execution costs.
type FixedSlippage struct {
	Bps decimal.Decimal
}

var tenThousand = decimal.NewFromInt(10000)

func (m *FixedSlippage) Slip(_, _, _ decimal.Decimal) decimal.Decimal {
	return m.Bps.Div(tenThousand)
}

// VolumeSlippage grows with the order's share of market volume:
// base + impact_coefficient * quantity/volume. Falls back to the base rate
// when no volume is known.
type VolumeSlippage struct {
	Base              decimal.Decimal
	ImpactCoefficient decimal.Decimal
}

func (m *VolumeSlippage) Slip(_, quantity, volume decimal.Decimal) decimal.Decimal {
	if !volume.IsPositive() {
		return m.Base
	}
	ratio := quantity.Abs().Div(volume)
	return m.Base.Add(m.ImpactCoefficient.Mul(ratio))
}

// SquareRootSlippage is the Almgren-style market impact model:
// volatility * sqrt(participation) * (permanent + temporary).
type SquareRootSlippage struct {
	Volatility           decimal.Decimal
	DefaultParticipation decimal.Decimal
	PermanentImpact      decimal.Decimal
	TemporaryImpact      decimal.Decimal
}

func (m *SquareRootSlippage) Slip(_, quantity, volume decimal.Decimal) decimal.Decimal {
	participation := m.DefaultParticipation
	if volume.IsPositive() {
		participation = quantity.Abs().Div(volume)
	}
	impactFactor := decimal.NewFromFloat(math.Sqrt(participation.InexactFloat64()))
	totalImpact := m.PermanentImpact.Add(m.TemporaryImpact)
	return m.Volatility.Mul(impactFactor).Mul(totalImpact).Abs()
}

// AdaptiveSlippage combines a base rate with volume and volatility terms.
// The volatility estimate is updated by the caller as conditions change.
type AdaptiveSlippage struct {
	Base                  decimal.Decimal
	VolumeSensitivity     decimal.Decimal
	VolatilitySensitivity decimal.Decimal

	recentVolatility decimal.Decimal
}

// UpdateVolatility replaces the recent volatility estimate.
func (m *AdaptiveSlippage) UpdateVolatility(volatility decimal.Decimal) {
	m.recentVolatility = volatility
}

func (m *AdaptiveSlippage) Slip(_, quantity, volume decimal.Decimal) decimal.Decimal {
	slip := m.Base
	if volume.IsPositive() {
		ratio := quantity.Abs().Div(volume)
		slip = slip.Add(m.VolumeSensitivity.Mul(ratio))
	}
	if m.recentVolatility.IsPositive() {
		slip = slip.Add(m.VolatilitySensitivity.Mul(m.recentVolatility))
	}
	return slip.Abs()
}
