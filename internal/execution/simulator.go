package execution

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"marketreplay/types"
)

// Config selects the friction models for a simulator. Unknown model names
// fail at construction, not per call.
type Config struct {
	SlippageModel    string             `yaml:"slippage_model"`
	SlippageParams   map[string]float64 `yaml:"slippage_params"`
	LatencyModel     string             `yaml:"latency_model"`
	LatencyParams    map[string]float64 `yaml:"latency_params"`
	CommissionModel  string             `yaml:"commission_model"`
	CommissionParams map[string]float64 `yaml:"commission_params"`
	Seed             int64              `yaml:"seed"`
}

// Simulator converts an approved order plus a reference bar into a fill,
// applying slippage, latency and commission. It never fails for valid
// input.
type Simulator struct {
	slippage   SlippageModel
	latency    LatencyModel
	commission CommissionModel
}

// NewSimulator builds a simulator from configuration.
func NewSimulator(cfg Config) (*Simulator, error) {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	slippage, err := NewSlippageModel(cfg.SlippageModel, cfg.SlippageParams)
	if err != nil {
		return nil, err
	}
	latency, err := NewLatencyModel(cfg.LatencyModel, cfg.LatencyParams, rng)
	if err != nil {
		return nil, err
	}
	commission, err := NewCommissionModel(cfg.CommissionModel, cfg.CommissionParams)
	if err != nil {
		return nil, err
	}

	return New(slippage, latency, commission), nil
}

// New assembles a simulator from already-constructed models.
func New(slippage SlippageModel, latency LatencyModel, commission CommissionModel) *Simulator {
	return &Simulator{
		slippage:   slippage,
		latency:    latency,
		commission: commission,
	}
}

// Execute fills the order against the reference bar. Slippage always moves
// the price against the trader; latency delays the fill timestamp but the
// price stays fixed at decision time.
func (s *Simulator) Execute(order types.Order, ref types.Bar, arrival time.Time) types.Fill {
	refPrice := ref.Price()
	if order.OrderType == types.TypeLimit && order.LimitPrice.IsPositive() {
		refPrice = order.LimitPrice
	}

	slip := s.slippage.Slip(refPrice, order.Quantity, ref.Volume)
	if slip.IsNegative() {
		slip = decimal.Zero
	}

	var fillPrice decimal.Decimal
	switch order.Side {
	case types.SideTypeSell:
		fillPrice = refPrice.Mul(decimal.NewFromInt(1).Sub(slip))
	default:
		fillPrice = refPrice.Mul(decimal.NewFromInt(1).Add(slip))
	}

	delay := s.latency.Latency()
	fee := s.commission.Commission(order.Quantity, fillPrice)

	fill := types.NewFill(
		order.ID,
		order.Symbol(),
		order.Quantity,
		order.Side,
		fillPrice,
		fee,
		delay,
		arrival.Add(delay),
	)

	log.WithFields(log.Fields{
		"order_id":   order.ID,
		"symbol":     order.Symbol(),
		"side":       order.Side,
		"quantity":   order.Quantity,
		"price":      fillPrice,
		"commission": fee,
		"latency":    delay,
	}).Debug("order executed")

	return fill
}
