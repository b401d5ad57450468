package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var errSingular = errors.New("stats: singular design matrix")

// HedgeRatio fits y = alpha + beta*x by ordinary least squares.
// When x carries no variance the slope is not identified; beta is then 0 and
// alpha is the mean of y, which is still a least-squares solution.
func HedgeRatio(x, y []float64) (alpha, beta float64) {
	if len(x) == 0 || len(x) != len(y) {
		return math.NaN(), math.NaN()
	}
	if flat(x) {
		return stat.Mean(y, nil), 0
	}
	return stat.LinearRegression(x, y, nil, false)
}

// flat reports whether x has (numerically) no spread around its mean.
func flat(x []float64) bool {
	if len(x) < 2 {
		return true
	}
	mean := stat.Mean(x, nil)
	var sxx, scale float64
	for _, v := range x {
		d := v - mean
		sxx += d * d
		scale += v * v
	}
	return sxx <= 1e-14*scale
}

// olsFit holds the pieces of a multiple regression the unit-root tests need.
type olsFit struct {
	coef   []float64
	stderr []float64
	ssr    float64
	nobs   int
	k      int
}

// aic matches the Gaussian log-likelihood based criterion: -2*llf + 2*k.
func (f olsFit) aic() float64 {
	n := float64(f.nobs)
	llf := -n / 2 * (math.Log(2*math.Pi) + math.Log(f.ssr/n) + 1)
	return -2*llf + 2*float64(f.k)
}

func (f olsFit) tvalue(i int) float64 {
	return f.coef[i] / f.stderr[i]
}

// fitOLS regresses y on the columns of x.
func fitOLS(x *mat.Dense, y []float64) (olsFit, error) {
	n, k := x.Dims()
	if n <= k || len(y) != n {
		return olsFit{}, errSingular
	}

	var qr mat.QR
	qr.Factorize(x)
	var b mat.Dense
	if err := qr.SolveTo(&b, false, mat.NewDense(n, 1, y)); err != nil {
		return olsFit{}, errSingular
	}

	coef := make([]float64, k)
	for j := range coef {
		coef[j] = b.At(j, 0)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, mat.NewVecDense(k, coef))
	ssr := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		return olsFit{}, errSingular
	}
	sigma2 := ssr / float64(n-k)
	stderr := make([]float64, k)
	for j := range stderr {
		stderr[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}

	return olsFit{coef: coef, stderr: stderr, ssr: ssr, nobs: n, k: k}, nil
}
