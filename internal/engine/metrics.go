package engine

import (
	"math"

	"github.com/montanaflynn/stats"

	"marketreplay/types"
)

// tradingPeriodsPerYear annualizes the Sharpe ratio for daily bars.
const tradingPeriodsPerYear = 252

// ComputeMetrics derives the standard performance figures from an equity
// curve. An empty or single-point curve yields zeroed metrics rather than
// an error.
func ComputeMetrics(curve []types.EquityPoint) map[string]float64 {
	metrics := map[string]float64{
		"total_return": 0,
		"sharpe_ratio": 0,
		"max_drawdown": 0,
		"win_rate":     0,
		"total_trades": 0,
		"final_equity": 0,
	}
	if len(curve) == 0 {
		return metrics
	}

	equity := make([]float64, len(curve))
	for i, pt := range curve {
		equity[i] = pt.Total.InexactFloat64()
	}
	metrics["final_equity"] = equity[len(equity)-1]
	if equity[0] != 0 {
		metrics["total_return"] = equity[len(equity)-1]/equity[0] - 1
	}

	returns := pctChanges(equity)
	metrics["total_trades"] = float64(len(returns))
	metrics["sharpe_ratio"] = sharpeRatio(returns)
	metrics["max_drawdown"] = maxDrawdown(equity)
	metrics["win_rate"] = winRate(returns)

	return metrics
}

func pctChanges(equity []float64) []float64 {
	var returns []float64
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	return returns
}

// sharpeRatio annualizes mean/stddev of the period returns by the square
// root of the number of periods per year.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	std, err := stats.StandardDeviationSample(returns)
	if err != nil || std == 0 {
		return 0
	}
	return math.Sqrt(tradingPeriodsPerYear) * mean / std
}

// maxDrawdown is the deepest decline from a running peak, as a negative
// fraction.
func maxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}
