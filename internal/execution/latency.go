package execution

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var ErrUnknownLatencyModel = errors.New("unknown latency model")

// Latency model names accepted in configuration.
const (
	LatencyZero      = "ZERO"
	LatencyFixed     = "FIXED"
	LatencyNormal    = "NORMAL"
	LatencyLogNormal = "LOGNORMAL"
)

// LatencyModel produces the simulated delay between order arrival and fill.
// Latency shifts the fill timestamp only; the fill price stays fixed at
// decision time.
type LatencyModel interface {
	Latency() time.Duration
}

// NewLatencyModel constructs a model by name. Durations in params are in
// milliseconds. An unrecognized name is a configuration error.
func NewLatencyModel(model string, params map[string]float64, rng *rand.Rand) (LatencyModel, error) {
	get := func(key string, fallback float64) float64 {
		if v, ok := params[key]; ok {
			return v
		}
		return fallback
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	switch model {
	case LatencyZero:
		return ZeroLatency{}, nil
	case LatencyFixed:
		return FixedLatency{Delay: millis(get("latency_ms", 5))}, nil
	case LatencyNormal:
		return &NormalLatency{
			Mean:   millis(get("mean_ms", 5)),
			StdDev: millis(get("std_ms", 1)),
			Min:    millis(get("min_ms", 1)),
			Max:    millis(get("max_ms", 50)),
			rng:    rng,
		}, nil
	case LatencyLogNormal:
		return &LogNormalLatency{
			Mu:    get("mu", 1.0),
			Sigma: get("sigma", 0.5),
			Min:   millis(get("min_ms", 0.1)),
			rng:   rng,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLatencyModel, model)
	}
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// ZeroLatency models instantaneous execution.
type ZeroLatency struct{}

func (ZeroLatency) Latency() time.Duration {
	return 0
}

// FixedLatency returns the same delay on every call, a baseline for
// predictable system delays.
type FixedLatency struct {
	Delay time.Duration
}

func (m FixedLatency) Latency() time.Duration {
	return m.Delay
}

// NormalLatency samples a normal distribution and clamps the result to
// [Min, Max].
type NormalLatency struct {
	Mean   time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration

	rng *rand.Rand
}

func (m *NormalLatency) Latency() time.Duration {
	sample := float64(m.Mean) + m.rng.NormFloat64()*float64(m.StdDev)
	d := time.Duration(sample)
	if d < m.Min {
		return m.Min
	}
	if d > m.Max {
		return m.Max
	}
	return d
}

// LogNormalLatency models the heavy tail of real network delays: the sampled
// value e^N(mu,sigma) is in milliseconds, floored at Min.
type LogNormalLatency struct {
	Mu    float64
	Sigma float64
	Min   time.Duration

	rng *rand.Rand
}

func (m *LogNormalLatency) Latency() time.Duration {
	sample := math.Exp(m.Mu + m.rng.NormFloat64()*m.Sigma)
	d := millis(sample)
	if d < m.Min {
		return m.Min
	}
	return d
}
