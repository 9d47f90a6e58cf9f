package types

import (
	"github.com/shopspring/decimal"
)

type RiskStatus string

const (
	RiskApproved RiskStatus = "APPROVED"
	RiskWarning  RiskStatus = "WARNING"
	RiskRejected RiskStatus = "REJECTED"
)

// RiskDecision is the outcome of a pre-trade check. A rejection terminates
// the signal; a warning still proceeds to order creation. MaxAllowedQuantity
// is only set on position-size rejections.
type RiskDecision struct {
	Status             RiskStatus
	Reason             string
	MaxAllowedQuantity decimal.Decimal
}

func (d RiskDecision) Rejected() bool {
	return d.Status == RiskRejected
}

// RiskLimits holds the three gate thresholds. MaxConcentration is a fraction
// in (0,1]; the other two are absolute quantities/notionals.
type RiskLimits struct {
	MaxPositionSize      decimal.Decimal
	MaxPortfolioExposure decimal.Decimal
	MaxConcentration     decimal.Decimal
}

// LimitUpdate replaces any subset of the limits at runtime; nil fields are
// left unchanged.
type LimitUpdate struct {
	MaxPositionSize      *decimal.Decimal
	MaxPortfolioExposure *decimal.Decimal
	MaxConcentration     *decimal.Decimal
}
