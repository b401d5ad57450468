package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/util"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	LedgerSheet  = "Ledger"
)

var ledgerHeader = []interface{}{"Date", "State", "Equity", "PosY", "PosX", "PnLGross", "TC", "PnLNet", "Return"}

var ErrEmptyResult = errors.New("report: empty backtest result")

/*
build the workbook of a backtest

args:
1. title : shown on the summary sheet
2. res : simulation result

returns:
1. workbook with a Summary and a Ledger sheet
2. error
*/
func Workbook(title string, res *backtest.Result) (*excelize.File, error) {
	if res == nil || len(res.Ledger) == 0 {
		return nil, ErrEmptyResult
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(LedgerSheet); err != nil {
		return nil, err
	}

	first, last := res.Ledger[0], res.Ledger[len(res.Ledger)-1]
	summary := [][]interface{}{
		{"Title", title},
		{"Start", first.Date.Format(util.Layout)},
		{"End", last.Date.Format(util.Layout)},
		{"Initial equity", first.Equity},
		{"Final equity", last.Equity},
		{"Total return", res.Summary.TotalReturn},
		{"Sharpe", res.Summary.Sharpe},
		{"Max drawdown", res.Summary.MaxDrawdown},
		{"Trades", res.Ledger.Trades()},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "B", 18); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(LedgerSheet, "A1", &ledgerHeader); err != nil {
		return nil, err
	}
	for i, r := range res.Ledger {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{r.Date.Format(util.Layout), r.State.String(), r.Equity, r.PosY, r.PosX, r.PnLGross, r.TC, r.PnLNet, r.Return}
		if err := f.SetSheetRow(LedgerSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(LedgerSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteWorkbook saves the workbook of res at path.
func WriteWorkbook(path, title string, res *backtest.Result) error {
	f, err := Workbook(title, res)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// Write streams the workbook of res to w.
func Write(w io.Writer, title string, res *backtest.Result) error {
	f, err := Workbook(title, res)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}
