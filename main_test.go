package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banachtech/statarb/data"
	"github.com/banachtech/statarb/mc"
	"github.com/banachtech/statarb/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) string {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, cmd.Execute())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return out.String()
}

func TestDemoCommand(t *testing.T) {
	xlsx := filepath.Join(t.TempDir(), "demo.xlsx")
	out := run(t, "demo", "--seed", "3", "--xlsx", xlsx)
	require.Contains(t, out, "Cointegrated pairs:")
	require.Contains(t, out, "total return")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
}

func TestBacktestFromCSV(t *testing.T) {
	dates, err := util.ListBusinessDates(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), util.NYSEHolidays())
	require.NoError(t, err)
	tbl, err := mc.DemoUniverse(5).Table(dates)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "prices.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, data.WriteCSV(f, tbl))
	require.NoError(t, f.Close())

	out := run(t, "backtest", "--prices", path, "--x", "XOM", "--y", "CVX")
	require.Contains(t, out, "CVX/XOM")
	require.Contains(t, out, "sharpe")
}

func TestExecuteRejectsBadState(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "id")
	t.Setenv("APCA_API_SECRET_KEY", "secret")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"execute", "--y", "KRE", "--x", "XLF", "--beta", "1", "--state", "2", "--log-level", "error"})
	require.Error(t, cmd.Execute())
}

func TestFindPairsSubset(t *testing.T) {
	dates, err := util.ListBusinessDates(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), util.NYSEHolidays())
	require.NoError(t, err)
	tbl, err := mc.DemoUniverse(7).Table(dates)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "prices.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, data.WriteCSV(f, tbl))
	require.NoError(t, f.Close())

	out := run(t, "find-pairs", "--prices", path, "--tickers", "spy,ivv")
	require.Contains(t, out, "SPY - IVV")
}
