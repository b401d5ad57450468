package mainfuncs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/config"
	"github.com/banachtech/statarb/data"
	"github.com/banachtech/statarb/screen"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/spread"
	"github.com/banachtech/statarb/util"
	"github.com/rs/zerolog/log"
)

// PairRun is every stage of a single pair backtest.
type PairRun struct {
	Pair    data.Pair
	Spread  *spread.Series
	States  []signals.State
	Result  *backtest.Result
	Changes int
}

/*
screen the configured universe for cointegrated pairs

args:
1. ctx : cancels the download and the screen
2. cfg : universe, dates and screen parameters
3. src : price source
4. progress : screen progress output, nil for none

returns:
1. candidates ordered by p-value
2. error
*/
func FindPairs(ctx context.Context, cfg *config.Config, src data.Source, progress io.Writer) ([]screen.Candidate, error) {
	start, end := cfg.Dates()
	tbl, err := src.Closes(ctx, cfg.Universe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	before := len(tbl.Tickers())
	tbl = tbl.DropSparse(cfg.Screen.MinSamples)
	log.Info().Int("tickers", len(tbl.Tickers())).Int("dropped", before-len(tbl.Tickers())).Int("dates", tbl.Len()).Msg("prices loaded")

	var opts []screen.Option
	if progress != nil {
		opts = append(opts, screen.WithProgress(progress))
	}
	return screen.Screen(ctx, tbl, cfg.Screen, opts...)
}

/*
backtest one pair from prices to ledger

args:
1. ctx : cancels the download
2. cfg : dates, lookback, thresholds and backtest settings
3. src : price source
4. x, y : hedge and dependent legs

returns:
1. aligned pair, spread, states and the simulation
2. error
*/
func BacktestPair(ctx context.Context, cfg *config.Config, src data.Source, x, y string) (*PairRun, error) {
	x, y = strings.ToUpper(x), strings.ToUpper(y)
	start, end := cfg.Dates()
	tbl, err := src.Closes(ctx, []string{x, y}, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	pair, err := tbl.Pair(x, y)
	if err != nil {
		return nil, err
	}
	return RunPair(pair, cfg.Lookback, cfg.Signals, cfg.Backtest)
}

// RunPair runs the spread, signal and simulation stages on an aligned pair.
func RunPair(pair data.Pair, lookback int, th signals.Thresholds, bt backtest.Config) (*PairRun, error) {
	series, err := spread.Build(pair, lookback)
	if err != nil {
		return nil, err
	}
	states := signals.Generate(series.ZScores(), th)
	in, err := backtest.NewInput(pair, series, states)
	if err != nil {
		return nil, err
	}
	res, err := backtest.Run(in, bt)
	if err != nil {
		return nil, err
	}

	run := &PairRun{Pair: pair, Spread: series, States: states, Result: res, Changes: signals.Changes(states)}
	log.Info().
		Str("pair", pair.Name()).
		Int("rows", len(res.Ledger)).
		Int("changes", run.Changes).
		Float64("total_return", res.Summary.TotalReturn).
		Float64("sharpe", res.Summary.Sharpe).
		Float64("max_drawdown", res.Summary.MaxDrawdown).
		Msg("backtest finished")
	return run, nil
}

// Latest returns the hedge ratio and state of the last date, the inputs of a live rebalance.
func (r *PairRun) Latest() (beta float64, state signals.State, ok bool) {
	n := r.Spread.Len()
	if n == 0 {
		return math.NaN(), signals.Flat, false
	}
	p := r.Spread.Points[n-1]
	return p.Beta, r.States[n-1], !math.IsNaN(p.Beta)
}

/*
hedge ratio and state for a live rebalance

args:
1. ctx : cancels the download
2. cfg : start date, lookback, thresholds and backtest settings
3. src : price source
4. x, y : hedge and dependent legs
5. asOf : last date of the window, normally today

returns:
1. the pair run over cfg.Start through asOf
2. hedge ratio of the last date
3. state of the last date
4. error
*/
func LatestSignal(ctx context.Context, cfg *config.Config, src data.Source, x, y string, asOf time.Time) (*PairRun, float64, signals.State, error) {
	live := *cfg
	live.End = asOf.Format(util.Layout)
	run, err := BacktestPair(ctx, &live, src, x, y)
	if err != nil {
		return nil, 0, signals.Flat, err
	}
	beta, state, ok := run.Latest()
	if !ok {
		return nil, 0, signals.Flat, errors.New("no hedge ratio on the last date")
	}
	log.Info().Str("pair", run.Pair.Name()).Str("as_of", live.End).Float64("beta", beta).Str("state", state.String()).Msg("live signal")
	return run, beta, state, nil
}
