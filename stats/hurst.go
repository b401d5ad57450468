package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// NeutralHurst is returned whenever the exponent cannot be estimated.
	NeutralHurst = 0.5

	hurstMinObs  = 200
	hurstMinLag  = 10
	hurstNumLags = 20
)

/*
Hurst exponent from the scaling of lagged differences

args:
1. x : series (levels, not returns)

returns:
1. slope of log(sqrt(std of lag-L differences)) against log(L).
Short or degenerate input gives NeutralHurst
*/
func Hurst(x []float64) float64 {
	n := len(x)
	if n < hurstMinObs {
		return NeutralHurst
	}

	var logLag, logTau []float64
	for _, lag := range hurstLags(n / 2) {
		if lag < 1 || lag >= n {
			continue
		}
		d := make([]float64, n-lag)
		for i := range d {
			d[i] = x[i+lag] - x[i]
		}
		if len(d) < 2 {
			continue
		}
		tau := math.Sqrt(popStdDev(d))
		if !(tau > 0) || math.IsInf(tau, 0) {
			continue
		}
		logLag = append(logLag, math.Log(float64(lag)))
		logTau = append(logTau, math.Log(tau))
	}
	if len(logLag) < 2 {
		return NeutralHurst
	}

	_, h := stat.LinearRegression(logLag, logTau, nil, false)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return NeutralHurst
	}
	return h
}

// hurstLags returns log-spaced integer lags between hurstMinLag and max,
// rounded half to even and deduplicated.
func hurstLags(max int) []int {
	lo, hi := math.Log10(hurstMinLag), math.Log10(float64(max))
	lags := make([]int, 0, hurstNumLags)
	for i := 0; i < hurstNumLags; i++ {
		v := math.Pow(10, lo+float64(i)*(hi-lo)/float64(hurstNumLags-1))
		lag := int(math.RoundToEven(v))
		if len(lags) > 0 && lags[len(lags)-1] == lag {
			continue
		}
		lags = append(lags, lag)
	}
	return lags
}

func popStdDev(x []float64) float64 {
	mean := stat.Mean(x, nil)
	ss := 0.0
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(x)))
}
