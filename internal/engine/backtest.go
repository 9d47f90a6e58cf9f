package engine

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"marketreplay/types"
)

// DataHandler is the boundary to historical market data. Advance pushes the
// next timestamp's market events onto the queue and reports whether new
// data was produced.
type DataHandler interface {
	Advance() bool
	Exhausted() bool
	LatestBar(symbol string) (types.Bar, bool)
	LatestBars(symbol string, n int) []types.Bar
}

// Strategy consumes market data, optionally emits signals, and observes
// fills. It must be resettable between independent runs.
type Strategy interface {
	OnMarketData(m types.Market) (types.Signal, bool)
	OnFill(f types.Fill)
	Reset()
	Name() string
}

// RiskGate filters signals before they become orders.
type RiskGate interface {
	Check(signal types.Signal, positions map[string]types.Position) types.RiskDecision
}

// Executor converts an order plus reference data into a fill.
type Executor interface {
	Execute(order types.Order, ref types.Bar, arrival time.Time) types.Fill
}

// Result is what a completed run returns. Metrics are derived from the
// equity curve; the counters track event flow through the run.
type Result struct {
	Metrics     map[string]float64
	EquityCurve []types.EquityPoint
	Signals     int
	Orders      int
	Fills       int
	Rejections  int
	Warnings    int
}

// Backtest drives simulated time forward and dispatches events in causal
// order. Everything runs on one thread: the queue is drained exhaustively
// before the next bar is pulled, so every consequence of a market tick is
// resolved before the following tick is observed.
type Backtest struct {
	queue     *Queue
	data      DataHandler
	strategy  Strategy
	risk      RiskGate
	executor  Executor
	portfolio *Portfolio

	signals    int
	orders     int
	fills      int
	rejections int
	warnings   int

	stopRequested bool
	showProgress  bool
}

func NewBacktest(queue *Queue, data DataHandler, strategy Strategy, riskGate RiskGate, executor Executor, portfolio *Portfolio) *Backtest {
	return &Backtest{
		queue:     queue,
		data:      data,
		strategy:  strategy,
		risk:      riskGate,
		executor:  executor,
		portfolio: portfolio,
	}
}

// ShowProgress enables the progress bar on the outer loop.
func (b *Backtest) ShowProgress(enabled bool) {
	b.showProgress = enabled
}

// Stop requests cooperative shutdown. The engine checks once per outer
// iteration, after a full drain, never mid-dispatch.
func (b *Backtest) Stop() {
	b.stopRequested = true
}

// Run replays the data through the strategy until the boundary is exhausted
// and the queue is empty. Business outcomes (rejections, warnings, empty
// polls) are recorded, never returned; only config faults and invariant
// violations surface as errors.
func (b *Backtest) Run() (*Result, error) {
	log.WithField("strategy", b.strategy.Name()).Info("starting backtest run")

	var bar *progressbar.ProgressBar
	if b.showProgress {
		bar = initProgressBar()
	}

	for !b.stopRequested {
		if !b.data.Advance() {
			break
		}
		if err := b.drain(); err != nil {
			return nil, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	// Anything still queued after the last advance is processed before the
	// run is considered complete; no event is silently dropped.
	if err := b.drain(); err != nil {
		return nil, err
	}

	curve := b.portfolio.EquityCurve()
	result := &Result{
		Metrics:     ComputeMetrics(curve),
		EquityCurve: curve,
		Signals:     b.signals,
		Orders:      b.orders,
		Fills:       b.fills,
		Rejections:  b.rejections,
		Warnings:    b.warnings,
	}

	log.WithFields(log.Fields{
		"signals": b.signals,
		"orders":  b.orders,
		"fills":   b.fills,
	}).Info("backtest run complete")

	return result, nil
}

// drain processes every event on the queue, including events produced as
// side effects, until the queue is empty.
func (b *Backtest) drain() error {
	for {
		e, ok := b.queue.Pop()
		if !ok {
			return nil
		}
		if err := b.dispatch(e); err != nil {
			return err
		}
	}
}

func (b *Backtest) dispatch(e types.Event) error {
	switch ev := e.(type) {
	case types.Market:
		b.onMarket(ev)
	case types.Signal:
		b.onSignal(ev)
	case types.Order:
		b.onOrder(ev)
	case types.Fill:
		return b.onFill(ev)
	default:
		return fmt.Errorf("unhandled event type %T", e)
	}
	return nil
}

func (b *Backtest) onMarket(m types.Market) {
	b.portfolio.ObserveMarket(m)
	if signal, ok := b.strategy.OnMarketData(m); ok {
		b.queue.Push(signal)
	}
	b.portfolio.Snapshot(m.Time())
}

func (b *Backtest) onSignal(s types.Signal) {
	b.signals++

	decision := b.risk.Check(s, b.portfolio.Positions())
	switch decision.Status {
	case types.RiskRejected:
		b.rejections++
		log.WithFields(log.Fields{
			"symbol": s.Symbol(),
			"type":   s.Type,
			"reason": decision.Reason,
		}).Debug("signal rejected")
		return
	case types.RiskWarning:
		b.warnings++
		log.WithFields(log.Fields{
			"symbol": s.Symbol(),
			"reason": decision.Reason,
		}).Warn("signal passed with warning")
	}

	if order, ok := b.portfolio.CreateOrder(s); ok {
		b.queue.Push(order)
	}
}

func (b *Backtest) onOrder(o types.Order) {
	b.orders++

	ref, ok := b.data.LatestBar(o.Symbol())
	if !ok {
		log.WithField("symbol", o.Symbol()).Warn("no reference bar for order, dropping")
		return
	}
	b.queue.Push(b.executor.Execute(o, ref, o.Time()))
}

func (b *Backtest) onFill(f types.Fill) error {
	b.fills++

	if err := b.portfolio.ApplyFill(f); err != nil {
		return err
	}
	b.strategy.OnFill(f)
	return nil
}

func initProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying market data..."),
		progressbar.OptionSpinnerType(14),
	)
}
