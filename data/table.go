package data

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the calendar date format used by every price source.
const DateLayout = "2006-01-02"

var (
	// ErrUnknownTicker is returned when a ticker is not a column of the table.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrNoData is returned when a source has nothing for the requested range.
	ErrNoData = errors.New("no price data")
)

// PriceTable is a date-ordered table of closing prices, one column per ticker.
// Missing observations are NaN.
type PriceTable struct {
	dates   []time.Time
	tickers []string
	index   map[string]int
	cols    [][]float64
}

/*
create an empty price table

args:
1. dates : strictly ascending observation dates
2. tickers : column names, unique

returns:
1. table with every cell missing
2. error
*/
func NewPriceTable(dates []time.Time, tickers []string) (*PriceTable, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("dates not strictly ascending at %v", dates[i].Format(DateLayout))
		}
	}
	t := &PriceTable{
		dates:   append([]time.Time(nil), dates...),
		tickers: append([]string(nil), tickers...),
		index:   make(map[string]int, len(tickers)),
		cols:    make([][]float64, len(tickers)),
	}
	for i, s := range tickers {
		if _, ok := t.index[s]; ok {
			return nil, fmt.Errorf("duplicate ticker %v", s)
		}
		t.index[s] = i
		col := make([]float64, len(dates))
		for j := range col {
			col[j] = math.NaN()
		}
		t.cols[i] = col
	}
	return t, nil
}

// FromCloses builds a table on the union of the dates found in closes.
// Tickers keep the given order; a ticker without observations becomes an
// all-missing column.
func FromCloses(tickers []string, closes map[string]map[time.Time]float64) (*PriceTable, error) {
	seen := map[time.Time]bool{}
	var dates []time.Time
	for _, s := range tickers {
		for d := range closes[s] {
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	t, err := NewPriceTable(dates, tickers)
	if err != nil {
		return nil, err
	}
	row := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		row[d] = i
	}
	for c, s := range tickers {
		for d, px := range closes[s] {
			t.cols[c][row[d]] = px
		}
	}
	return t, nil
}

func (t *PriceTable) Len() int { return len(t.dates) }

func (t *PriceTable) Tickers() []string { return append([]string(nil), t.tickers...) }

func (t *PriceTable) Dates() []time.Time { return append([]time.Time(nil), t.dates...) }

// Set stores the close of ticker at the given row.
func (t *PriceTable) Set(row int, ticker string, px float64) error {
	c, ok := t.index[ticker]
	if !ok {
		return fmt.Errorf("%v: %w", ticker, ErrUnknownTicker)
	}
	if row < 0 || row >= len(t.dates) {
		return fmt.Errorf("row %d out of range [0,%d)", row, len(t.dates))
	}
	t.cols[c][row] = px
	return nil
}

// Column returns a copy of the ticker's closes.
func (t *PriceTable) Column(ticker string) ([]float64, error) {
	c, ok := t.index[ticker]
	if !ok {
		return nil, fmt.Errorf("%v: %w", ticker, ErrUnknownTicker)
	}
	return append([]float64(nil), t.cols[c]...), nil
}

// Count is the number of usable observations of ticker.
func (t *PriceTable) Count(ticker string) int {
	c, ok := t.index[ticker]
	if !ok {
		return 0
	}
	n := 0
	for _, v := range t.cols[c] {
		if usable(v) {
			n++
		}
	}
	return n
}

// Pair aligns two columns on the dates where both have a usable price.
func (t *PriceTable) Pair(x, y string) (Pair, error) {
	cx, ok := t.index[x]
	if !ok {
		return Pair{}, fmt.Errorf("%v: %w", x, ErrUnknownTicker)
	}
	cy, ok := t.index[y]
	if !ok {
		return Pair{}, fmt.Errorf("%v: %w", y, ErrUnknownTicker)
	}
	p := Pair{XTicker: x, YTicker: y}
	for i, d := range t.dates {
		px, py := t.cols[cx][i], t.cols[cy][i]
		if !usable(px) || !usable(py) {
			continue
		}
		p.Dates = append(p.Dates, d)
		p.X = append(p.X, px)
		p.Y = append(p.Y, py)
	}
	return p, nil
}

// Select returns a table restricted to the given tickers, in that order.
func (t *PriceTable) Select(tickers []string) (*PriceTable, error) {
	out, err := NewPriceTable(t.dates, tickers)
	if err != nil {
		return nil, err
	}
	for i, s := range tickers {
		c, ok := t.index[s]
		if !ok {
			return nil, fmt.Errorf("%v: %w", s, ErrUnknownTicker)
		}
		copy(out.cols[i], t.cols[c])
	}
	return out, nil
}

// DropSparse keeps the tickers with at least min usable observations.
func (t *PriceTable) DropSparse(min int) *PriceTable {
	var keep []string
	for _, s := range t.tickers {
		if t.Count(s) >= min {
			keep = append(keep, s)
		}
	}
	out, _ := t.Select(keep)
	return out
}

// DropEmptyRows removes the dates on which no ticker has a usable price.
func (t *PriceTable) DropEmptyRows() *PriceTable {
	var rows []int
	for i := range t.dates {
		for c := range t.cols {
			if usable(t.cols[c][i]) {
				rows = append(rows, i)
				break
			}
		}
	}
	dates := make([]time.Time, len(rows))
	for k, i := range rows {
		dates[k] = t.dates[i]
	}
	out, _ := NewPriceTable(dates, t.tickers)
	for c := range t.cols {
		for k, i := range rows {
			out.cols[c][k] = t.cols[c][i]
		}
	}
	return out
}

// Between returns the rows dated within [start, end].
func (t *PriceTable) Between(start, end time.Time) *PriceTable {
	lo := sort.Search(len(t.dates), func(i int) bool { return !t.dates[i].Before(start) })
	hi := sort.Search(len(t.dates), func(i int) bool { return t.dates[i].After(end) })
	if hi < lo {
		hi = lo
	}
	out, _ := NewPriceTable(t.dates[lo:hi], t.tickers)
	for c := range t.cols {
		copy(out.cols[c], t.cols[c][lo:hi])
	}
	return out
}

func usable(px float64) bool {
	return px > 0 && !math.IsInf(px, 0)
}

// Pair is two price series aligned on common dates with no missing values.
type Pair struct {
	XTicker string
	YTicker string
	Dates   []time.Time
	X       []float64
	Y       []float64
}

func (p Pair) Len() int { return len(p.X) }

// Name is the display label "Y/X".
func (p Pair) Name() string { return p.YTicker + "/" + p.XTicker }

// Logs returns the natural logarithms of both legs.
func (p Pair) Logs() (x, y []float64) {
	x = make([]float64, len(p.X))
	y = make([]float64, len(p.Y))
	for i := range p.X {
		x[i] = math.Log(p.X[i])
		y[i] = math.Log(p.Y[i])
	}
	return x, y
}
