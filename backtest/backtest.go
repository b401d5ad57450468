package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banachtech/statarb/data"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/spread"
)

var ErrInvalidInput = errors.New("backtest: invalid input")

type Config struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	TCBps          float64 `json:"tc_bps" yaml:"tc_bps"`
	// LeverageCap bounds deployable notional as a multiple of initial capital.
	LeverageCap float64 `json:"leverage_cap" yaml:"leverage_cap"`
	TradingDays int     `json:"trading_days" yaml:"trading_days"`
}

func DefaultConfig() Config {
	return Config{InitialCapital: 10000, TCBps: 2, LeverageCap: 1.2, TradingDays: 252}
}

func (c Config) Validate() error {
	switch {
	case !(c.InitialCapital > 0):
		return fmt.Errorf("initial capital %v: %w", c.InitialCapital, ErrInvalidInput)
	case c.TCBps < 0 || math.IsNaN(c.TCBps):
		return fmt.Errorf("transaction cost %v bps: %w", c.TCBps, ErrInvalidInput)
	case !(c.LeverageCap > 0):
		return fmt.Errorf("leverage cap %v: %w", c.LeverageCap, ErrInvalidInput)
	case c.TradingDays < 1:
		return fmt.Errorf("trading days %d: %w", c.TradingDays, ErrInvalidInput)
	}
	return nil
}

// Input holds aligned series; simulation starts at index Start.
type Input struct {
	Dates    []time.Time
	X        []float64
	Y        []float64
	Beta     []float64
	Position []signals.State
	Start    int
}

// NewInput lines up a pair with its spread model and states. Dates before the
// first defined z-score carry no state and are left out of the run.
func NewInput(pair data.Pair, s *spread.Series, states []signals.State) (Input, error) {
	n := pair.Len()
	if len(pair.X) != n || len(pair.Y) != n || s.Len() != n || len(states) != n {
		return Input{}, fmt.Errorf("series lengths differ: %w", ErrInvalidInput)
	}
	start := s.FirstDefined()
	if start < 0 {
		return Input{}, fmt.Errorf("spread has no defined z-score: %w", ErrInvalidInput)
	}
	return Input{
		Dates:    pair.Dates,
		X:        pair.X,
		Y:        pair.Y,
		Beta:     s.Betas(),
		Position: states,
		Start:    start,
	}, nil
}

type Row struct {
	Date     time.Time     `json:"date"`
	State    signals.State `json:"state"`
	Equity   float64       `json:"equity"`
	PosY     float64       `json:"pos_y"`
	PosX     float64       `json:"pos_x"`
	PnLGross float64       `json:"pnl_gross"`
	TC       float64       `json:"tc"`
	PnLNet   float64       `json:"pnl_net"`
	Return   float64       `json:"return"`
}

type Ledger []Row

func (l Ledger) Equity() []float64 {
	out := make([]float64, len(l))
	for i, r := range l {
		out[i] = r.Equity
	}
	return out
}

func (l Ledger) Returns() []float64 {
	out := make([]float64, len(l))
	for i, r := range l {
		out[i] = r.Return
	}
	return out
}

// Trades counts the rows on which the state changed.
func (l Ledger) Trades() int {
	n := 0
	for i := 1; i < len(l); i++ {
		if l[i].State != l[i-1].State {
			n++
		}
	}
	return n
}

type Result struct {
	Ledger  Ledger  `json:"ledger"`
	Summary Summary `json:"summary"`
}

/*
simulate a capital compounding pair position

args:
1. in : aligned prices, hedge ratios and states
2. cfg : capital, cost and leverage settings

returns:
1. ledger starting at in.Start with flat positions, and its summary
2. ErrInvalidInput for mismatched series, a non-positive price or a
non-positive prior equity; no partial ledger is returned
*/
func Run(in Input, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := len(in.Y)
	if len(in.X) != n || len(in.Beta) != n || len(in.Position) != n || (len(in.Dates) != 0 && len(in.Dates) != n) {
		return nil, fmt.Errorf("series lengths differ: %w", ErrInvalidInput)
	}
	if in.Start < 0 || in.Start >= n {
		return nil, fmt.Errorf("start %d outside [0,%d): %w", in.Start, n, ErrInvalidInput)
	}

	rate := cfg.TCBps / 1e4
	maxNotional := cfg.InitialCapital * cfg.LeverageCap
	ledger := make(Ledger, 0, n-in.Start)

	first := Row{State: in.Position[in.Start], Equity: cfg.InitialCapital}
	if len(in.Dates) != 0 {
		first.Date = in.Dates[in.Start]
	}
	ledger = append(ledger, first)

	for t := in.Start + 1; t < n; t++ {
		prev := ledger[len(ledger)-1]
		if !(in.X[t-1] > 0) || !(in.Y[t-1] > 0) || !(in.X[t] > 0) || !(in.Y[t] > 0) {
			return nil, fmt.Errorf("non-positive price at index %d: %w", t, ErrInvalidInput)
		}
		if !(prev.Equity > 0) {
			return nil, fmt.Errorf("equity %v before index %d: %w", prev.Equity, t, ErrInvalidInput)
		}
		if math.IsNaN(in.Beta[t]) {
			return nil, fmt.Errorf("undefined hedge ratio at index %d: %w", t, ErrInvalidInput)
		}

		state := in.Position[t]
		notional := math.Min(prev.Equity, maxNotional)
		s := float64(state)
		row := Row{
			State: state,
			PosY:  s * notional,
			PosX:  -s * in.Beta[t] * notional,
		}
		if len(in.Dates) != 0 {
			row.Date = in.Dates[t]
		}

		retY := in.Y[t]/in.Y[t-1] - 1
		retX := in.X[t]/in.X[t-1] - 1
		row.PnLGross = prev.PosY*retY + prev.PosX*retX
		row.TC = -rate * (math.Abs(row.PosY-prev.PosY) + math.Abs(row.PosX-prev.PosX))
		row.PnLNet = row.PnLGross + row.TC
		row.Equity = prev.Equity + row.PnLNet
		row.Return = row.Equity/prev.Equity - 1
		ledger = append(ledger, row)
	}

	return &Result{
		Ledger:  ledger,
		Summary: Summarize(ledger.Equity(), ledger.Returns(), cfg.TradingDays),
	}, nil
}
