package execution

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrUnknownCommissionModel = errors.New("unknown commission model")

// Commission model names accepted in configuration.
const (
	CommissionPercent  = "PERCENT"
	CommissionPerShare = "PER_SHARE"
)

// CommissionModel computes the fee for a trade. The result is never
// negative.
type CommissionModel interface {
	Commission(quantity, price decimal.Decimal) decimal.Decimal
}

// NewCommissionModel constructs a model by name.
func NewCommissionModel(model string, params map[string]float64) (CommissionModel, error) {
	get := func(key string, fallback float64) decimal.Decimal {
		if v, ok := params[key]; ok {
			return decimal.NewFromFloat(v)
		}
		return decimal.NewFromFloat(fallback)
	}

	switch model {
	case CommissionPercent:
		return &PercentCommission{
			Rate: get("rate", 0.001),
			Min:  get("min", 0),
			Max:  get("max", 0),
		}, nil
	case CommissionPerShare:
		return &PerShareCommission{
			Rate: get("rate", 0.005),
			Min:  get("min", 0),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommissionModel, model)
	}
}

// PercentCommission charges a fraction of notional, optionally clamped to a
// per-order minimum and maximum (broker fee schedules work this way).
type PercentCommission struct {
	Rate decimal.Decimal
	Min  decimal.Decimal
	Max  decimal.Decimal
}

func (m *PercentCommission) Commission(quantity, price decimal.Decimal) decimal.Decimal {
	notional := price.Mul(quantity)
	if notional.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	fee := notional.Mul(m.Rate)
	if m.Min.IsPositive() && fee.LessThan(m.Min) {
		fee = m.Min
	}
	if m.Max.IsPositive() && fee.GreaterThan(m.Max) {
		fee = m.Max
	}
	return fee
}

// PerShareCommission charges a flat rate per unit traded with an optional
// per-order minimum.
type PerShareCommission struct {
	Rate decimal.Decimal
	Min  decimal.Decimal
}

func (m *PerShareCommission) Commission(quantity, _ decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	fee := quantity.Mul(m.Rate)
	if m.Min.IsPositive() && fee.LessThan(m.Min) {
		fee = m.Min
	}
	return fee
}
