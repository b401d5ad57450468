package backtest

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	TotalReturn float64 `json:"total_return"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

/*
performance summary of an equity curve

args:
1. equity : account value per date
2. returns : simple return per date
3. tradingDays : periods per year used to annualise

returns:
1. total return, annualised Sharpe (0 without dispersion) and max drawdown (<= 0)
*/
func Summarize(equity, returns []float64, tradingDays int) Summary {
	var s Summary
	if len(equity) > 0 && equity[0] != 0 {
		s.TotalReturn = equity[len(equity)-1]/equity[0] - 1
	}
	s.Sharpe = sharpe(returns, tradingDays)
	s.MaxDrawdown = maxDrawDown(equity)
	return s
}

func sharpe(returns []float64, tradingDays int) float64 {
	if len(returns) < 2 || tradingDays < 1 || floats.Max(returns) == floats.Min(returns) {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	td := float64(tradingDays)
	return (mean * td) / (std * math.Sqrt(td))
}

// maxDrawDown is the worst fall from the running peak, as a fraction of the peak.
func maxDrawDown(equity []float64) float64 {
	dd := 0.0
	peak := math.Inf(-1)
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if d := v/peak - 1; d < dd {
				dd = d
			}
		}
	}
	return dd
}
