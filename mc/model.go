package mc

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model simulates a path of log-price increments for the given timesteps.
// z holds the standard normal variates; when nil the model draws its own.
type Model interface {
	Path(x0 float64, dt, z []float64) []float64
}

// NewNormal is a standard normal generator. A zero seed draws from the clock.
func NewNormal(seed uint64) distuv.Normal {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: rand.NewSource(seed)}
}

// Normals draws n variates from d.
func Normals(d distuv.Normal, n int) []float64 {
	z := make([]float64, n)
	for i := range z {
		z[i] = d.Rand()
	}
	return z
}

// Dt converts observation dates into year fractions between consecutive dates.
func Dt(dates []time.Time) []float64 {
	if len(dates) < 2 {
		return nil
	}
	dt := make([]float64, len(dates)-1)
	for i := range dt {
		dt[i] = dates[i+1].Sub(dates[i]).Hours() / (365.0 * 24.0)
	}
	return dt
}

// Trading-day steps of 1/252 year.
func TradingDt(n int) []float64 {
	dt := make([]float64, n)
	for i := range dt {
		dt[i] = 1.0 / 252.0
	}
	return dt
}

// GBM is geometric Brownian motion with annualised drift and volatility.
type GBM struct {
	Mu, Sigma float64
}

// Path returns len(dt)+1 prices starting at x0.
func (m GBM) Path(x0 float64, dt, z []float64) []float64 {
	N := len(dt)
	if z == nil {
		z = Normals(NewNormal(0), N)
	}
	r := make([]float64, N+1)
	r[0] = math.Log(x0)
	a := m.Mu - 0.5*m.Sigma*m.Sigma
	for i := 0; i < N; i++ {
		r[i+1] = r[i] + a*dt[i] + m.Sigma*math.Sqrt(dt[i])*z[i]
	}
	for i, v := range r {
		r[i] = math.Exp(v)
	}
	return r
}

// OU is a zero-mean Ornstein-Uhlenbeck process; Sigma is its stationary
// standard deviation and Kappa the annual mean reversion speed.
type OU struct {
	Kappa, Sigma float64
}

// Path returns len(dt)+1 values starting at x0, sampled exactly.
func (m OU) Path(x0 float64, dt, z []float64) []float64 {
	N := len(dt)
	if z == nil {
		z = Normals(NewNormal(0), N)
	}
	y := make([]float64, N+1)
	y[0] = x0
	for i := 0; i < N; i++ {
		e := math.Exp(-m.Kappa * dt[i])
		y[i+1] = y[i]*e + m.Sigma*math.Sqrt(1.0-e*e)*z[i]
	}
	return y
}
