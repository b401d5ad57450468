package screen

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"

	"github.com/banachtech/statarb/data"
	"github.com/banachtech/statarb/stats"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Params are the screening thresholds. MinAC1 is a floor: a candidate spread
// must be at least this persistent day to day.
type Params struct {
	MaxPValue    float64 `json:"max_pvalue" yaml:"max_pvalue"`
	MinCorr      float64 `json:"min_corr" yaml:"min_corr"`
	MinSamples   int     `json:"min_samples" yaml:"min_samples"`
	MaxADFPValue float64 `json:"max_adf_pvalue" yaml:"max_adf_pvalue"`
	MaxHurst     float64 `json:"max_hurst" yaml:"max_hurst"`
	MinAC1       float64 `json:"min_ac1" yaml:"min_ac1"`
}

func DefaultParams() Params {
	return Params{
		MaxPValue:    0.03,
		MinCorr:      0.6,
		MinSamples:   500,
		MaxADFPValue: 0.05,
		MaxHurst:     0.5,
		MinAC1:       0.0,
	}
}

func (p Params) Validate() error {
	switch {
	case p.MaxPValue < 0 || p.MaxPValue > 1:
		return fmt.Errorf("max_pvalue %v outside [0,1]", p.MaxPValue)
	case p.MaxADFPValue < 0 || p.MaxADFPValue > 1:
		return fmt.Errorf("max_adf_pvalue %v outside [0,1]", p.MaxADFPValue)
	case p.MinCorr < -1 || p.MinCorr > 1:
		return fmt.Errorf("min_corr %v outside [-1,1]", p.MinCorr)
	case p.MinSamples < 2:
		return fmt.Errorf("min_samples %d below 2", p.MinSamples)
	}
	return nil
}

// Candidate is a pair that passed every filter. Y is regressed on X.
type Candidate struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	Samples     int     `json:"samples"`
	Correlation float64 `json:"corr"`
	PValue      float64 `json:"pvalue"`
	HedgeRatio  float64 `json:"hedge_ratio"`
	ADFPValue   float64 `json:"adf_pvalue"`
	Hurst       float64 `json:"hurst"`
	AC1         float64 `json:"ac1"`
}

type options struct {
	workers  int
	progress io.Writer
}

type Option func(*options)

// WithWorkers bounds the number of pairs evaluated at once.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option { return func(o *options) { o.progress = w } }

/*
screen every unordered pair of the table for a tradeable cointegrated spread

args:
1. ctx : cancels the screening
2. table : closes, one column per ticker; the column order defines the pairs
3. params : filter thresholds

returns:
1. candidates ordered by ascending cointegration p-value, ties in pair order
2. error, only on cancellation
*/
func Screen(ctx context.Context, table *data.PriceTable, params Params, opts ...Option) ([]Candidate, error) {
	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	tickers := table.Tickers()
	type job struct{ x, y string }
	var jobs []job
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			jobs = append(jobs, job{tickers[i], tickers[j]})
		}
	}

	var bar interface{ Add(int) error }
	if o.progress != nil && len(jobs) > 0 {
		bar = data.ProgressBar(len(jobs), "screening", o.progress)
	}

	results := make([]*Candidate, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for k := range jobs {
		k := k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pair, err := table.Pair(jobs[k].x, jobs[k].y)
			if err == nil {
				results[k] = Evaluate(pair, params)
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, c := range results {
		if c != nil {
			log.Debug().Str("pair", c.Y+"/"+c.X).Float64("pvalue", c.PValue).Float64("corr", c.Correlation).Msg("candidate")
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PValue < out[j].PValue })
	log.Info().Int("tickers", len(tickers)).Int("pairs", len(jobs)).Int("candidates", len(out)).Msg("screening done")
	return out, nil
}

// Evaluate runs the filters on one aligned pair and returns nil when any fails.
func Evaluate(pair data.Pair, params Params) *Candidate {
	n := pair.Len()
	if n < params.MinSamples || n < 2 {
		return nil
	}
	x, y := pair.Logs()

	corr := stats.Correlation(x, y)
	if math.IsNaN(corr) || corr < params.MinCorr {
		return nil
	}

	coint := stats.Coint(y, x)
	if math.IsNaN(coint.PValue) || coint.PValue > params.MaxPValue {
		return nil
	}

	_, beta := stats.HedgeRatio(x, y)
	spread := make([]float64, n)
	for i := range spread {
		spread[i] = y[i] - beta*x[i]
	}

	adf, err := stats.ADF(spread, stats.TrendConstant)
	if err != nil || math.IsNaN(adf.PValue) || adf.PValue > params.MaxADFPValue {
		return nil
	}

	h := stats.Hurst(spread)
	if h >= params.MaxHurst {
		return nil
	}

	ac1 := stats.Autocorr(spread, 1)
	if math.IsNaN(ac1) || ac1 < params.MinAC1 {
		return nil
	}

	return &Candidate{
		X:           pair.XTicker,
		Y:           pair.YTicker,
		Samples:     n,
		Correlation: corr,
		PValue:      coint.PValue,
		HedgeRatio:  beta,
		ADFPValue:   adf.PValue,
		Hurst:       h,
		AC1:         ac1,
	}
}
