package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CointResult is the outcome of an Engle-Granger cointegration test.
type CointResult struct {
	Stat   float64
	PValue float64
}

/*
Engle-Granger two-step cointegration test of y on x with a constant

args:
1. y : dependent series
2. x : regressor series of the same length

returns:
1. ADF statistic on the regression residuals and its MacKinnon p-value.
NaN values are returned when the test cannot be computed
*/
func Coint(y, x []float64) CointResult {
	nan := CointResult{Stat: math.NaN(), PValue: math.NaN()}
	n := len(y)
	if n < 4 || len(x) != n {
		return nan
	}

	design := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, x[i])
	}
	fit, err := fitOLS(design, y)
	if err != nil {
		return nan
	}

	resid := make([]float64, n)
	var tss, mean float64
	for i, v := range y {
		resid[i] = v - fit.coef[0] - fit.coef[1]*x[i]
		mean += v
	}
	mean /= float64(n)
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}

	// an exact linear relation leaves nothing to test
	if tss == 0 || 1-fit.ssr/tss >= 1-100*math.Sqrt(eps) {
		return CointResult{Stat: math.Inf(-1), PValue: 0}
	}

	res, err := adf(resid, TrendNone, 2)
	if err != nil {
		return nan
	}
	return CointResult{Stat: res.Stat, PValue: res.PValue}
}

const eps = 2.220446049250313e-16
