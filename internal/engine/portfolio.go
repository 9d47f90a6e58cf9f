package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"marketreplay/types"
)

var (
	ErrUnknownOrder     = errors.New("fill references an unknown order")
	ErrHoldingsMismatch = errors.New("holdings identity violated")
)

// identityTolerance is the floating tolerance for the cash + positions ==
// total check.
var identityTolerance = decimal.New(1, -9)

// Portfolio is the sole owner of position and cash state. It is mutated
// only in response to market and fill events on the engine's single control
// thread, so no locking is needed.
type Portfolio struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	commission     decimal.Decimal
	positions      map[string]*types.Position
	history        []types.HoldingsSnapshot
	sizer          Sizer
	pendingOrders  map[string]types.Order
}

func NewPortfolio(initialCapital decimal.Decimal, sizer Sizer) *Portfolio {
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]*types.Position),
		sizer:          sizer,
		pendingOrders:  make(map[string]types.Order),
	}
}

// ObserveMarket records the latest price for a symbol. Snapshots and risk
// exposure are valued off these marks; there is no look-ahead.
func (p *Portfolio) ObserveMarket(m types.Market) {
	pos := p.position(m.Symbol())
	pos.LastPrice = m.Bar.Price()
}

// Snapshot appends the current holdings to the history, tagged with the
// market event's timestamp. It is called exactly once per market event and
// never deduplicates or overwrites.
func (p *Portfolio) Snapshot(timestamp time.Time) {
	snap := types.HoldingsSnapshot{
		Timestamp:  timestamp,
		Cash:       p.cash,
		Commission: p.commission,
		Positions:  make(map[string]types.Position, len(p.positions)),
		Total:      p.total(),
	}
	for sym, pos := range p.positions {
		snap.Positions[sym] = *pos
	}
	p.history = append(p.history, snap)
}

// CreateOrder turns a non-rejected signal into a concrete order using the
// sizing policy. The boolean reports whether an order was produced; hold
// signals and empty closes produce none.
func (p *Portfolio) CreateOrder(signal types.Signal) (types.Order, bool) {
	quantity, side, ok := p.sizer.Size(signal, *p.position(signal.Symbol()))
	if !ok || !quantity.IsPositive() {
		return types.Order{}, false
	}

	order := types.NewOrder(
		uuid.NewString(),
		signal.Symbol(),
		types.TypeMarket,
		quantity,
		side,
		decimal.Zero,
		signal.Time(),
	)
	p.pendingOrders[order.ID] = order
	return order, true
}

// ApplyFill settles a fill against the ledger: the signed quantity moves
// the position, the direction-adjusted cost plus commission comes out of
// cash. A fill that does not match a pending order is an invariant
// violation and fatal.
func (p *Portfolio) ApplyFill(fill types.Fill) error {
	if _, ok := p.pendingOrders[fill.OrderID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOrder, fill.OrderID)
	}
	delete(p.pendingOrders, fill.OrderID)

	pos := p.position(fill.Symbol())
	if fill.Side == types.SideTypeBuy {
		pos.Quantity = pos.Quantity.Add(fill.Quantity)
	} else {
		pos.Quantity = pos.Quantity.Sub(fill.Quantity)
	}

	p.cash = p.cash.Sub(fill.Cost).Sub(fill.Commission)
	p.commission = p.commission.Add(fill.Commission)

	log.WithFields(log.Fields{
		"symbol":   fill.Symbol(),
		"side":     fill.Side,
		"quantity": fill.Quantity,
		"price":    fill.Price,
		"cash":     p.cash,
	}).Debug("fill applied")

	return nil
}

// Positions returns a copy of the live positions for risk evaluation.
func (p *Portfolio) Positions() map[string]types.Position {
	out := make(map[string]types.Position, len(p.positions))
	for sym, pos := range p.positions {
		out[sym] = *pos
	}
	return out
}

// EquityCurve returns the ordered (timestamp, total) history. It is the
// sole input to performance metric computation.
func (p *Portfolio) EquityCurve() []types.EquityPoint {
	curve := make([]types.EquityPoint, 0, len(p.history))
	for _, snap := range p.history {
		curve = append(curve, types.EquityPoint{Timestamp: snap.Timestamp, Total: snap.Total})
	}
	return curve
}

// History returns the append-only holdings snapshots.
func (p *Portfolio) History() []types.HoldingsSnapshot {
	return p.history
}

func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

func (p *Portfolio) CommissionPaid() decimal.Decimal {
	return p.commission
}

// VerifyIdentity checks every recorded snapshot for the ledger identity
// total == cash + sum of position values. A mismatch beyond tolerance means
// internal state was corrupted and is fatal.
func (p *Portfolio) VerifyIdentity() error {
	for i, snap := range p.history {
		value := snap.Cash
		for _, pos := range snap.Positions {
			value = value.Add(pos.MarketValue())
		}
		if value.Sub(snap.Total).Abs().GreaterThan(identityTolerance) {
			return fmt.Errorf("%w: snapshot %d has total %s, expected %s",
				ErrHoldingsMismatch, i, snap.Total, value)
		}
	}
	return nil
}

// Reset restores the initial cash state for an independent run. History is
// discarded.
func (p *Portfolio) Reset() {
	p.cash = p.initialCapital
	p.commission = decimal.Zero
	p.positions = make(map[string]*types.Position)
	p.history = nil
	p.pendingOrders = make(map[string]types.Order)
}

func (p *Portfolio) position(symbol string) *types.Position {
	pos, ok := p.positions[symbol]
	if !ok {
		pos = &types.Position{Symbol: symbol}
		p.positions[symbol] = pos
	}
	return pos
}

func (p *Portfolio) total() decimal.Decimal {
	total := p.cash
	for _, pos := range p.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}
