package mc

import (
	"fmt"
	"math"
	"time"

	"github.com/banachtech/statarb/data"
)

// CointPair ties log Y to log X: log Y = Alpha + Beta*log X + OU noise.
type CointPair struct {
	X     GBM
	Alpha float64
	Beta  float64
	Noise OU
}

// Paths simulates both legs. zx drives X and zn drives the spread noise.
func (p CointPair) Paths(x0 float64, dt, zx, zn []float64) (x, y []float64) {
	x = p.X.Path(x0, dt, zx)
	noise := p.Noise.Path(0, dt, zn)
	y = make([]float64, len(x))
	for i := range x {
		y[i] = math.Exp(p.Alpha + p.Beta*math.Log(x[i]) + noise[i])
	}
	return x, y
}

// Leg is an independent random-walk ticker.
type Leg struct {
	Ticker string
	Spot   float64
	Model  GBM
}

// Linked is a cointegrated pair of tickers.
type Linked struct {
	X, Y  string
	XSpot float64
	Pair  CointPair
}

// Universe describes a synthetic market.
type Universe struct {
	Seed  uint64
	Pairs []Linked
	Walks []Leg
}

// Table simulates the universe on the given dates. Columns are the pair legs
// (X then Y) followed by the independent walks.
func (u Universe) Table(dates []time.Time) (*data.PriceTable, error) {
	var tickers []string
	for _, p := range u.Pairs {
		tickers = append(tickers, p.X, p.Y)
	}
	for _, w := range u.Walks {
		tickers = append(tickers, w.Ticker)
	}
	t, err := data.NewPriceTable(dates, tickers)
	if err != nil {
		return nil, fmt.Errorf("universe: %w", err)
	}
	if len(dates) == 0 {
		return t, nil
	}

	d := NewNormal(u.Seed)
	dt := Dt(dates)
	set := func(ticker string, px []float64) error {
		for i, v := range px {
			if err := t.Set(i, ticker, v); err != nil {
				return err
			}
		}
		return nil
	}
	for _, p := range u.Pairs {
		x, y := p.Pair.Paths(p.XSpot, dt, Normals(d, len(dt)), Normals(d, len(dt)))
		if err := set(p.X, x); err != nil {
			return nil, err
		}
		if err := set(p.Y, y); err != nil {
			return nil, err
		}
	}
	for _, w := range u.Walks {
		if err := set(w.Ticker, w.Model.Path(w.Spot, dt, Normals(d, len(dt)))); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// DemoUniverse has two cointegrated pairs and three unrelated stocks.
func DemoUniverse(seed uint64) Universe {
	return Universe{
		Seed: seed,
		Pairs: []Linked{
			{X: "SPY", Y: "IVV", XSpot: 450, Pair: CointPair{
				X: GBM{Mu: 0.08, Sigma: 0.18}, Alpha: math.Log(1.004), Beta: 1, Noise: OU{Kappa: 25, Sigma: 0.004}}},
			{X: "XOM", Y: "CVX", XSpot: 100, Pair: CointPair{
				X: GBM{Mu: 0.05, Sigma: 0.25}, Alpha: 0.4, Beta: 1, Noise: OU{Kappa: 15, Sigma: 0.02}}},
		},
		Walks: []Leg{
			{Ticker: "AAPL", Spot: 180, Model: GBM{Mu: 0.12, Sigma: 0.28}},
			{Ticker: "JPM", Spot: 150, Model: GBM{Mu: 0.06, Sigma: 0.24}},
			{Ticker: "EEM", Spot: 40, Model: GBM{Mu: 0.02, Sigma: 0.20}},
		},
	}
}
