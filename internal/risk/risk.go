package risk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"marketreplay/types"
)

var ErrNegativeLimit = errors.New("risk limit must not be negative")

// Gate sits between signals and order creation. Checks run in a fixed
// order: position size, portfolio exposure, concentration. The first two
// reject; concentration only warns.
type Gate struct {
	limits types.RiskLimits
}

func NewGate(limits types.RiskLimits) (*Gate, error) {
	for _, l := range []decimal.Decimal{limits.MaxPositionSize, limits.MaxPortfolioExposure, limits.MaxConcentration} {
		if l.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrNegativeLimit, l)
		}
	}
	return &Gate{limits: limits}, nil
}

// Check evaluates a signal against the current positions and returns a
// decision. Rejections and warnings are expected outcomes, never errors.
func (g *Gate) Check(signal types.Signal, positions map[string]types.Position) types.RiskDecision {
	current := positions[signal.Symbol()].Quantity
	projected := projectedPosition(signal, current)

	if projected.Abs().GreaterThan(g.limits.MaxPositionSize) {
		return types.RiskDecision{
			Status: types.RiskRejected,
			Reason: fmt.Sprintf("position size %s exceeds limit %s",
				projected.Abs(), g.limits.MaxPositionSize),
			MaxAllowedQuantity: g.limits.MaxPositionSize.Sub(current.Abs()),
		}
	}

	exposure := totalExposure(signal, positions)
	if exposure.GreaterThan(g.limits.MaxPortfolioExposure) {
		return types.RiskDecision{
			Status: types.RiskRejected,
			Reason: fmt.Sprintf("portfolio exposure %s exceeds limit %s",
				exposure, g.limits.MaxPortfolioExposure),
		}
	}

	if exposure.IsPositive() {
		concentration := projected.Mul(signal.Price).Abs().Div(exposure)
		if concentration.GreaterThan(g.limits.MaxConcentration) {
			return types.RiskDecision{
				Status: types.RiskWarning,
				Reason: fmt.Sprintf("concentration %s exceeds %s",
					concentration.Round(4), g.limits.MaxConcentration),
			}
		}
	}

	return types.RiskDecision{Status: types.RiskApproved, Reason: "all checks passed"}
}

// UpdateLimits replaces any subset of the limits at runtime. Nil fields keep
// their current value; negative replacements are refused.
func (g *Gate) UpdateLimits(update types.LimitUpdate) error {
	next := g.limits
	if update.MaxPositionSize != nil {
		next.MaxPositionSize = *update.MaxPositionSize
	}
	if update.MaxPortfolioExposure != nil {
		next.MaxPortfolioExposure = *update.MaxPortfolioExposure
	}
	if update.MaxConcentration != nil {
		next.MaxConcentration = *update.MaxConcentration
	}
	for _, l := range []decimal.Decimal{next.MaxPositionSize, next.MaxPortfolioExposure, next.MaxConcentration} {
		if l.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeLimit, l)
		}
	}
	g.limits = next
	log.WithFields(log.Fields{
		"max_position_size":      next.MaxPositionSize,
		"max_portfolio_exposure": next.MaxPortfolioExposure,
		"max_concentration":      next.MaxConcentration,
	}).Info("risk limits updated")
	return nil
}

// Limits returns the currently active limits.
func (g *Gate) Limits() types.RiskLimits {
	return g.limits
}

func projectedPosition(signal types.Signal, current decimal.Decimal) decimal.Decimal {
	switch signal.Type {
	case types.SignalBuy:
		return current.Add(signal.Quantity)
	case types.SignalSell:
		return current.Sub(signal.Quantity)
	case types.SignalCloseLong, types.SignalCloseShort:
		return decimal.Zero
	default:
		return current
	}
}

// totalExposure sums the absolute notional of every open position, marked at
// its last observed price where one exists and at the signal's price hint
// otherwise.
func totalExposure(signal types.Signal, positions map[string]types.Position) decimal.Decimal {
	exposure := decimal.Zero
	for _, pos := range positions {
		price := pos.LastPrice
		if price.IsZero() {
			price = signal.Price
		}
		exposure = exposure.Add(pos.Quantity.Mul(price).Abs())
	}
	return exposure
}
