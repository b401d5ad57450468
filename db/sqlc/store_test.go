package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/screen"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	screenColumns    = []string{"id", "created_at", "start_date", "end_date", "tickers", "params"}
	candidateColumns = []string{"screen_id", "x", "y", "samples", "correlation", "p_value", "hedge_ratio", "adf_p_value", "hurst", "ac1"}
	backtestColumns  = []string{"id", "created_at", "x", "y", "start_date", "end_date", "lookback", "entry_z", "exit_z", "stop_z", "initial_capital", "tc_bps", "total_return", "sharpe", "max_drawdown"}
	ledgerColumns    = []string{"backtest_id", "date", "state", "equity", "pos_y", "pos_x", "pnl_gross", "tc", "pnl_net", "ret"}
)

func newTestStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(conn), mock
}

func randomScreenRun(t *testing.T) ScreenRun {
	run, err := NewScreenRun("2022-01-01", "2024-06-28", []string{"SPY", "IVV", "XOM", "CVX"}, screen.DefaultParams(), []screen.Candidate{
		{X: "SPY", Y: "IVV", Samples: 600, Correlation: 0.99, PValue: 0.001, HedgeRatio: 1.0, ADFPValue: 0.002, Hurst: 0.1, AC1: 0.9},
		{X: "XOM", Y: "CVX", Samples: 600, Correlation: 0.92, PValue: 0.02, HedgeRatio: 0.97, ADFPValue: 0.01, Hurst: 0.2, AC1: 0.8},
	})
	require.NoError(t, err)
	return run
}

func TestSaveScreen(t *testing.T) {
	store, mock := newTestStore(t)
	run := randomScreenRun(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO screens").
		WithArgs("2022-01-01", "2024-06-28", "SPY,IVV,XOM,CVX", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(screenColumns).AddRow(7, time.Now(), "2022-01-01", "2024-06-28", "SPY,IVV,XOM,CVX", []byte(`{}`)))
	for _, c := range run.Candidates {
		mock.ExpectExec("INSERT INTO candidates").
			WithArgs(int64(7), c.X, c.Y, c.Samples, c.Correlation, c.PValue, c.HedgeRatio, c.AdfPValue, c.Hurst, c.Ac1).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	id, err := store.SaveScreen(context.Background(), run)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveScreenRollback(t *testing.T) {
	store, mock := newTestStore(t)
	run := randomScreenRun(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO screens").
		WillReturnRows(sqlmock.NewRows(screenColumns).AddRow(8, time.Now(), "2022-01-01", "2024-06-28", "SPY", []byte(`{}`)))
	mock.ExpectExec("INSERT INTO candidates").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	_, err := store.SaveScreen(context.Background(), run)
	require.EqualError(t, err, "duplicate key")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestCandidates(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM screens").
		WillReturnRows(sqlmock.NewRows(screenColumns).AddRow(3, time.Now(), "2022-01-01", "2024-06-28", "SPY,IVV", []byte(`{"max_pvalue":0.03}`)))
	mock.ExpectQuery("FROM candidates").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(candidateColumns).
			AddRow(3, "SPY", "IVV", 600, 0.99, 0.001, 1.0, 0.002, 0.1, 0.9))
	mock.ExpectCommit()

	run, err := store.LatestCandidates(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), run.ID)
	require.JSONEq(t, `{"max_pvalue":0.03}`, string(run.Params))
	require.Len(t, run.Candidates, 1)

	cands := run.ScreenCandidates()
	require.Equal(t, screen.Candidate{X: "SPY", Y: "IVV", Samples: 600, Correlation: 0.99, PValue: 0.001, HedgeRatio: 1.0, ADFPValue: 0.002, Hurst: 0.1, AC1: 0.9}, cands[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestCandidatesEmpty(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM screens").WillReturnRows(sqlmock.NewRows(screenColumns))
	mock.ExpectRollback()

	_, err := store.LatestCandidates(context.Background())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func sampleResult() *backtest.Result {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		Ledger: backtest.Ledger{
			{Date: d, State: signals.Flat, Equity: 10000},
			{Date: d.AddDate(0, 0, 1), State: signals.Long, Equity: 9995, PosY: 6000, PosX: -6000, TC: 5, PnLNet: -5, Return: -0.0005},
		},
		Summary: backtest.Summary{TotalReturn: -0.0005, Sharpe: 0, MaxDrawdown: -0.0005},
	}
}

func TestSaveBacktest(t *testing.T) {
	store, mock := newTestStore(t)
	run := NewBacktestRun("XLF", "KRE", "2024-01-01", "2024-06-30", 90, signals.Thresholds{Entry: 2.5, Exit: 0.8, Stop: 4}, backtest.DefaultConfig(), sampleResult())
	require.Len(t, run.Rows, 2)
	require.Equal(t, "2024-01-03", run.Rows[1].Date)
	require.Equal(t, int16(1), run.Rows[1].State)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO backtests").
		WithArgs(sqlmock.AnyArg(), "XLF", "KRE", "2024-01-01", "2024-06-30", int32(90), 2.5, 0.8, 4.0, 10000.0, 2.0, -0.0005, 0.0, -0.0005).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ledger_rows").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ledger_rows").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := store.SaveBacktest(context.Background(), run)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBacktestKeepsID(t *testing.T) {
	store, mock := newTestStore(t)
	x, y := util.RandomTicker(), util.RandomTicker()
	lookback := int(util.RandomInt(20, 120))
	th := signals.Thresholds{Entry: util.RandomFloat(2, 3), Exit: util.RandomFloat(0, 1), Stop: util.RandomFloat(3.5, 5)}
	run := NewBacktestRun(x, y, "2024-01-01", "2024-06-30", lookback, th, backtest.DefaultConfig(), sampleResult())
	run.ID = uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO backtests").
		WithArgs(run.ID, x, y, "2024-01-01", "2024-06-30", int32(lookback), th.Entry, th.Exit, th.Stop, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	id, err := store.SaveBacktest(context.Background(), run)
	require.Error(t, err)
	require.Equal(t, uuid.Nil, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBacktest(t *testing.T) {
	store, mock := newTestStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM backtests").WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(backtestColumns).
			AddRow(id.String(), time.Now(), "XLF", "KRE", "2024-01-01", "2024-06-30", 90, 2.5, 0.8, 4.0, 10000.0, 2.0, 0.05, 1.1, -0.02))
	mock.ExpectQuery("FROM ledger_rows").WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(ledgerColumns).
			AddRow(id.String(), "2024-01-02", 0, 10000.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0).
			AddRow(id.String(), "2024-01-03", -1, 10010.0, -6000.0, 6000.0, 12.0, 2.0, 10.0, 0.001))
	mock.ExpectCommit()

	run, err := store.GetBacktest(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, run.ID)
	require.Equal(t, int32(90), run.Lookback)
	require.Len(t, run.Rows, 2)
	require.Equal(t, int16(-1), run.Rows[1].State)
	require.Equal(t, id, run.Rows[1].BacktestID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBacktestNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM backtests").WillReturnRows(sqlmock.NewRows(backtestColumns))
	mock.ExpectRollback()

	_, err := store.GetBacktest(context.Background(), uuid.New())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestRunResult(t *testing.T) {
	want := sampleResult()
	run := NewBacktestRun("XLF", "KRE", "2024-01-01", "2024-06-30", 90, signals.Thresholds{Entry: 2.5, Exit: 0.8, Stop: 4}, backtest.DefaultConfig(), want)

	got, err := run.Result()
	require.NoError(t, err)
	require.Equal(t, want.Summary, got.Summary)
	require.Len(t, got.Ledger, len(want.Ledger))
	for i := range want.Ledger {
		require.True(t, want.Ledger[i].Date.Equal(got.Ledger[i].Date))
		require.Equal(t, want.Ledger[i].State, got.Ledger[i].State)
		require.Equal(t, want.Ledger[i].Equity, got.Ledger[i].Equity)
	}

	run.Rows[0].Date = "not a date"
	_, err = run.Result()
	require.Error(t, err)
}
