package spread

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banachtech/statarb/data"
	"github.com/banachtech/statarb/stats"
	"gonum.org/v1/gonum/stat"
)

var ErrInvalidInput = errors.New("spread: invalid input")

// Point is one date of the rolling model. ZScore is NaN while undefined.
type Point struct {
	Alpha  float64
	Beta   float64
	Spread float64
	ZScore float64
}

// Defined reports whether the z-score carries a signal.
func (p Point) Defined() bool { return !math.IsNaN(p.ZScore) }

// Series is the spread model of one aligned pair.
type Series struct {
	XTicker  string
	YTicker  string
	Lookback int
	Dates    []time.Time
	Points   []Point
}

func (s *Series) Len() int { return len(s.Points) }

// FirstDefined returns the index of the first defined z-score, or -1.
func (s *Series) FirstDefined() int {
	for i, p := range s.Points {
		if p.Defined() {
			return i
		}
	}
	return -1
}

// ZScores returns the z-score column.
func (s *Series) ZScores() []float64 {
	z := make([]float64, len(s.Points))
	for i, p := range s.Points {
		z[i] = p.ZScore
	}
	return z
}

// Betas returns the hedge ratio column.
func (s *Series) Betas() []float64 {
	b := make([]float64, len(s.Points))
	for i, p := range s.Points {
		b[i] = p.Beta
	}
	return b
}

/*
rolling hedge ratio spread without look-ahead

args:
1. pair : aligned prices, Y is regressed on X
2. lookback : window length of the regression and of the z-score moments

returns:
1. series where spread_t = Y_t - (alpha_t + beta_t*X_t) with alpha_t, beta_t
fit on the trailing window ending at t; the first lookback-1 z-scores are
undefined, as is any z-score over a window with zero deviation
2. ErrInvalidInput on a short lookback or mismatched legs
*/
func Build(pair data.Pair, lookback int) (*Series, error) {
	n := len(pair.X)
	switch {
	case lookback < 2:
		return nil, fmt.Errorf("lookback %d: %w", lookback, ErrInvalidInput)
	case n == 0 || len(pair.Y) != n:
		return nil, fmt.Errorf("legs of length %d and %d: %w", n, len(pair.Y), ErrInvalidInput)
	case len(pair.Dates) != 0 && len(pair.Dates) != n:
		return nil, fmt.Errorf("%d dates for %d prices: %w", len(pair.Dates), n, ErrInvalidInput)
	}

	s := &Series{
		XTicker:  pair.XTicker,
		YTicker:  pair.YTicker,
		Lookback: lookback,
		Dates:    pair.Dates,
		Points:   make([]Point, n),
	}
	spreads := make([]float64, n)
	for t := 0; t < n; t++ {
		lo := t - lookback + 1
		if lo < 0 {
			lo = 0
		}
		alpha, beta := stats.HedgeRatio(pair.X[lo:t+1], pair.Y[lo:t+1])
		spreads[t] = pair.Y[t] - (alpha + beta*pair.X[t])
		s.Points[t] = Point{Alpha: alpha, Beta: beta, Spread: spreads[t], ZScore: math.NaN()}
	}

	for t := lookback - 1; t < n; t++ {
		mean, sd := stat.MeanStdDev(spreads[t-lookback+1:t+1], nil)
		if sd == 0 || math.IsNaN(sd) {
			continue
		}
		s.Points[t].ZScore = (spreads[t] - mean) / sd
	}
	return s, nil
}
