package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/screen"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/util"
	"github.com/google/uuid"
)

// ScreenRun is a screen and the candidates it kept.
type ScreenRun struct {
	Screen
	Candidates []Candidate `json:"candidates"`
}

// BacktestRun is a backtest and its ledger.
type BacktestRun struct {
	Backtest
	Rows []LedgerRow `json:"rows"`
}

func (store *SQLStore) SaveScreen(ctx context.Context, run ScreenRun) (int64, error) {
	var id int64
	err := store.execTx(ctx, func(q *Queries) error {
		s, err := q.CreateScreen(ctx, CreateScreenParams{
			StartDate: run.StartDate,
			EndDate:   run.EndDate,
			Tickers:   run.Tickers,
			Params:    run.Params,
		})
		if err != nil {
			return err
		}
		id = s.ID

		for _, c := range run.Candidates {
			err = q.CreateCandidate(ctx, CreateCandidateParams{
				ScreenID:    id,
				X:           c.X,
				Y:           c.Y,
				Samples:     c.Samples,
				Correlation: c.Correlation,
				PValue:      c.PValue,
				HedgeRatio:  c.HedgeRatio,
				AdfPValue:   c.AdfPValue,
				Hurst:       c.Hurst,
				Ac1:         c.Ac1,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// LatestCandidates returns sql.ErrNoRows when nothing has been screened yet.
func (store *SQLStore) LatestCandidates(ctx context.Context) (ScreenRun, error) {
	var result ScreenRun
	err := store.execTx(ctx, func(q *Queries) error {
		var err error

		result.Screen, err = q.GetLatestScreen(ctx)
		if err != nil {
			return err
		}
		result.Candidates, err = q.ListCandidates(ctx, result.ID)
		return err
	})
	return result, err
}

func (store *SQLStore) SaveBacktest(ctx context.Context, run BacktestRun) (uuid.UUID, error) {
	id := run.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	err := store.execTx(ctx, func(q *Queries) error {
		err := q.CreateBacktest(ctx, CreateBacktestParams{
			ID:             id,
			X:              run.X,
			Y:              run.Y,
			StartDate:      run.StartDate,
			EndDate:        run.EndDate,
			Lookback:       run.Lookback,
			EntryZ:         run.EntryZ,
			ExitZ:          run.ExitZ,
			StopZ:          run.StopZ,
			InitialCapital: run.InitialCapital,
			TcBps:          run.TcBps,
			TotalReturn:    run.TotalReturn,
			Sharpe:         run.Sharpe,
			MaxDrawdown:    run.MaxDrawdown,
		})
		if err != nil {
			return err
		}

		for _, r := range run.Rows {
			err = q.CreateLedgerRow(ctx, CreateLedgerRowParams{
				BacktestID: id,
				Date:       r.Date,
				State:      r.State,
				Equity:     r.Equity,
				PosY:       r.PosY,
				PosX:       r.PosX,
				PnlGross:   r.PnlGross,
				Tc:         r.Tc,
				PnlNet:     r.PnlNet,
				Ret:        r.Ret,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (store *SQLStore) GetBacktest(ctx context.Context, id uuid.UUID) (BacktestRun, error) {
	var result BacktestRun
	err := store.execTx(ctx, func(q *Queries) error {
		var err error

		result.Backtest, err = q.GetBacktest(ctx, id)
		if err != nil {
			return err
		}
		result.Rows, err = q.ListLedgerRows(ctx, id)
		return err
	})
	return result, err
}

// NewScreenRun converts screener output into its stored form.
func NewScreenRun(start, end string, tickers []string, params screen.Params, cands []screen.Candidate) (ScreenRun, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return ScreenRun{}, err
	}
	run := ScreenRun{
		Screen: Screen{
			StartDate: start,
			EndDate:   end,
			Tickers:   strings.Join(tickers, ","),
			Params:    raw,
		},
		Candidates: make([]Candidate, len(cands)),
	}
	for i, c := range cands {
		run.Candidates[i] = Candidate{
			X:           c.X,
			Y:           c.Y,
			Samples:     int32(c.Samples),
			Correlation: c.Correlation,
			PValue:      c.PValue,
			HedgeRatio:  c.HedgeRatio,
			AdfPValue:   c.ADFPValue,
			Hurst:       c.Hurst,
			Ac1:         c.AC1,
		}
	}
	return run, nil
}

// ScreenCandidates converts stored candidates back to screener output.
func (r ScreenRun) ScreenCandidates() []screen.Candidate {
	out := make([]screen.Candidate, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = screen.Candidate{
			X:           c.X,
			Y:           c.Y,
			Samples:     int(c.Samples),
			Correlation: c.Correlation,
			PValue:      c.PValue,
			HedgeRatio:  c.HedgeRatio,
			ADFPValue:   c.AdfPValue,
			Hurst:       c.Hurst,
			AC1:         c.Ac1,
		}
	}
	return out
}

// NewBacktestRun converts a simulation into its stored form.
func NewBacktestRun(x, y, start, end string, lookback int, th signals.Thresholds, cfg backtest.Config, res *backtest.Result) BacktestRun {
	run := BacktestRun{
		Backtest: Backtest{
			X:              x,
			Y:              y,
			StartDate:      start,
			EndDate:        end,
			Lookback:       int32(lookback),
			EntryZ:         th.Entry,
			ExitZ:          th.Exit,
			StopZ:          th.Stop,
			InitialCapital: cfg.InitialCapital,
			TcBps:          cfg.TCBps,
			TotalReturn:    res.Summary.TotalReturn,
			Sharpe:         res.Summary.Sharpe,
			MaxDrawdown:    res.Summary.MaxDrawdown,
		},
		Rows: make([]LedgerRow, len(res.Ledger)),
	}
	for i, r := range res.Ledger {
		run.Rows[i] = LedgerRow{
			Date:     r.Date.Format(util.Layout),
			State:    int16(r.State),
			Equity:   r.Equity,
			PosY:     r.PosY,
			PosX:     r.PosX,
			PnlGross: r.PnLGross,
			Tc:       r.TC,
			PnlNet:   r.PnLNet,
			Ret:      r.Return,
		}
	}
	return run
}

// Result rebuilds the simulation result of a stored backtest.
func (r BacktestRun) Result() (*backtest.Result, error) {
	res := &backtest.Result{
		Ledger: make(backtest.Ledger, len(r.Rows)),
		Summary: backtest.Summary{
			TotalReturn: r.TotalReturn,
			Sharpe:      r.Sharpe,
			MaxDrawdown: r.MaxDrawdown,
		},
	}
	for i, row := range r.Rows {
		d, err := util.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i, err)
		}
		res.Ledger[i] = backtest.Row{
			Date:     d,
			State:    signals.State(row.State),
			Equity:   row.Equity,
			PosY:     row.PosY,
			PosX:     row.PosX,
			PnLGross: row.PnlGross,
			TC:       row.Tc,
			PnLNet:   row.PnlNet,
			Return:   row.Ret,
		}
	}
	return res, nil
}
