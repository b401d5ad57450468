package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads a wide table: a header "date,T1,T2,..." followed by one row
// per date. Empty cells are missing prices.
func LoadCSV(r io.Reader) (*PriceTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("csv header needs a date column and at least one ticker")
	}
	tickers := make([]string, len(header)-1)
	for i, h := range header[1:] {
		tickers[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	var dates []time.Time
	var rows [][]float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		d, err := time.Parse(DateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, len(tickers))
		for i, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[i] = math.NaN()
				continue
			}
			row[i], err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %v: %w", line, tickers[i], err)
			}
		}
		dates = append(dates, d)
		rows = append(rows, row)
	}

	t, err := NewPriceTable(dates, tickers)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for c, v := range row {
			t.cols[c][i] = v
		}
	}
	return t, nil
}

// WriteCSV writes the table in the layout LoadCSV reads.
func WriteCSV(w io.Writer, t *PriceTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"date"}, t.tickers...)); err != nil {
		return err
	}
	rec := make([]string, len(t.tickers)+1)
	for i, d := range t.dates {
		rec[0] = d.Format(DateLayout)
		for c := range t.cols {
			v := t.cols[c][i]
			if math.IsNaN(v) {
				rec[c+1] = ""
				continue
			}
			rec[c+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
