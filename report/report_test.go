package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/signals"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *backtest.Result {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	ledger := backtest.Ledger{
		{Date: d, State: signals.Flat, Equity: 10000},
		{Date: d.AddDate(0, 0, 1), State: signals.Long, Equity: 9995, PosY: 10000, PosX: -10000, TC: -5, PnLNet: -5, Return: -0.0005},
		{Date: d.AddDate(0, 0, 2), State: signals.Flat, Equity: 10090, PnLGross: 100, TC: -5, PnLNet: 95, Return: 0.0095},
	}
	return &backtest.Result{Ledger: ledger, Summary: backtest.Summarize(ledger.Equity(), ledger.Returns(), 252)}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "KRE_XLF.xlsx")
	require.NoError(t, WriteWorkbook(path, "KRE/XLF", sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SummarySheet, LedgerSheet}, f.GetSheetList())

	title, err := f.GetCellValue(SummarySheet, "B1")
	require.NoError(t, err)
	require.Equal(t, "KRE/XLF", title)

	trades, err := f.GetCellValue(SummarySheet, "B9")
	require.NoError(t, err)
	require.Equal(t, "2", trades)

	rows, err := f.GetRows(LedgerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "Date", rows[0][0])
	require.Equal(t, "2024-01-03", rows[2][0])
	require.Equal(t, "LONG_SPREAD", rows[2][1])
	require.Equal(t, "10090", rows[3][2])
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "pair", sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SummarySheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "Title", v)
}

func TestWorkbookEmpty(t *testing.T) {
	_, err := Workbook("empty", nil)
	require.ErrorIs(t, err, ErrEmptyResult)
	_, err = Workbook("empty", &backtest.Result{})
	require.ErrorIs(t, err, ErrEmptyResult)
}
