package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Trend selects the deterministic terms of a unit-root regression.
type Trend int

const (
	// TrendNone fits no deterministic term.
	TrendNone Trend = iota
	// TrendConstant fits an intercept.
	TrendConstant
)

// ErrShortSeries is returned when a series is too short for the requested test.
var ErrShortSeries = errors.New("stats: series too short")

// ADFResult is the outcome of an augmented Dickey-Fuller test.
type ADFResult struct {
	Stat    float64
	PValue  float64
	UsedLag int
	NObs    int
}

/*
augmented Dickey-Fuller unit-root test, lag order picked by AIC

args:
1. x : series under test
2. trend : deterministic terms of the test regression

returns:
1. test statistic, MacKinnon approximate p-value, lag order and observations used
2. error when the series is too short or the regression is singular
*/
func ADF(x []float64, trend Trend) (ADFResult, error) {
	return adf(x, trend, 1)
}

// adf runs the test and reads the p-value from the MacKinnon surface for n
// integrated variables (n=2 for Engle-Granger residuals).
func adf(x []float64, trend Trend, n int) (ADFResult, error) {
	nobs := len(x)
	ntrend := 0
	if trend == TrendConstant {
		ntrend = 1
	}

	maxlag := int(math.Ceil(12 * math.Pow(float64(nobs)/100, 0.25)))
	if limit := nobs/2 - ntrend - 1; limit < maxlag {
		maxlag = limit
	}
	if maxlag < 0 {
		return ADFResult{}, ErrShortSeries
	}

	xdiff := make([]float64, nobs-1)
	for i := range xdiff {
		xdiff[i] = x[i+1] - x[i]
	}

	// pick the lag with the smallest AIC, all candidates fit on the same sample
	full, y := lagDesign(x, xdiff, maxlag, ntrend, true)
	bestLag, bestAIC := 0, math.Inf(1)
	for lag := 0; lag <= maxlag; lag++ {
		cols := ntrend + 1 + lag
		r, _ := full.Dims()
		fit, err := fitOLS(mat.DenseCopyOf(full.Slice(0, r, 0, cols)), y)
		if err != nil {
			continue
		}
		if aic := fit.aic(); aic < bestAIC {
			bestAIC, bestLag = aic, lag
		}
	}
	if math.IsInf(bestAIC, 1) {
		return ADFResult{}, errSingular
	}

	design, y := lagDesign(x, xdiff, bestLag, ntrend, false)
	fit, err := fitOLS(design, y)
	if err != nil {
		return ADFResult{}, err
	}
	t := fit.tvalue(0)

	return ADFResult{
		Stat:    t,
		PValue:  mackinnonP(t, n),
		UsedLag: bestLag,
		NObs:    fit.nobs,
	}, nil
}

// lagDesign builds the ADF regression for a given lag count: the lagged level
// followed by lagged differences, with the constant either first (the autolag
// search layout) or last.
func lagDesign(x, xdiff []float64, lags, ntrend int, trendFirst bool) (*mat.Dense, []float64) {
	rows := len(xdiff) - lags
	cols := 1 + lags + ntrend
	d := mat.NewDense(rows, cols, nil)
	y := make([]float64, rows)

	off := 0
	if trendFirst {
		off = ntrend
	}
	for r := 0; r < rows; r++ {
		t := lags + r
		y[r] = xdiff[t]
		d.Set(r, off, x[t])
		for j := 1; j <= lags; j++ {
			d.Set(r, off+j, xdiff[t-j])
		}
		if ntrend == 1 {
			if trendFirst {
				d.Set(r, 0, 1)
			} else {
				d.Set(r, cols-1, 1)
			}
		}
	}
	return d, y
}

// MacKinnon (1994) response surface, constant-only regression, for one and
// two integrated variables.
var (
	tauMaxC  = []float64{2.74, 0.92}
	tauMinC  = []float64{-18.83, -18.86}
	tauStarC = []float64{-1.61, -2.62}

	tauCSmallP = [][]float64{
		{2.1659, 1.4412, 3.8269e-2},
		{2.92, 1.5012, 3.9796e-2},
	}
	tauCLargeP = [][]float64{
		{1.7339, 9.3202e-1, -1.2745e-1, -1.0368e-2},
		{2.1945, 6.4695e-1, -2.9198e-1, -4.2377e-2},
	}
)

func mackinnonP(t float64, n int) float64 {
	if math.IsNaN(t) || n < 1 || n > len(tauMaxC) {
		return math.NaN()
	}
	i := n - 1
	switch {
	case t > tauMaxC[i]:
		return 1
	case t < tauMinC[i]:
		return 0
	}
	coef := tauCLargeP[i]
	if t <= tauStarC[i] {
		coef = tauCSmallP[i]
	}
	v, p := 0.0, 1.0
	for _, c := range coef {
		v += c * p
		p *= t
	}
	return distuv.UnitNormal.CDF(v)
}
