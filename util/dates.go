package util

import (
	"errors"
	"sort"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// NYSE full-day closures.
var NYSE = []string{
	"2022-01-17", "2022-02-21", "2022-04-15", "2022-05-30", "2022-06-20", "2022-07-04", "2022-09-05", "2022-11-24", "2022-12-26",
	"2023-01-02", "2023-01-16", "2023-02-20", "2023-04-07", "2023-05-29", "2023-06-19", "2023-07-04", "2023-09-04", "2023-11-23", "2023-12-25",
	"2024-01-01", "2024-01-15", "2024-02-19", "2024-03-29", "2024-05-27", "2024-06-19", "2024-07-04", "2024-09-02", "2024-11-28", "2024-12-25",
	"2025-01-01", "2025-01-09", "2025-01-20", "2025-02-17", "2025-04-18", "2025-05-26", "2025-06-19", "2025-07-04", "2025-09-01", "2025-11-27", "2025-12-25",
	"2026-01-01", "2026-01-19", "2026-02-16", "2026-04-03", "2026-05-25", "2026-06-19", "2026-07-03", "2026-09-07", "2026-11-26", "2026-12-25",
}

// Convert holidays from string to time.Time format
func Hols(s []string) ([]time.Time, error) {
	h := make([]time.Time, len(s))
	for i, v := range s {
		d, err := time.Parse(Layout, v)
		if err != nil {
			return nil, err
		}
		h[i] = d
	}
	return h, nil
}

// NYSEHolidays is the parsed NYSE calendar.
func NYSEHolidays() []time.Time {
	h, _ := Hols(NYSE)
	return h
}

func IsHol(d time.Time, hols []time.Time) bool {
	for _, v := range hols {
		if d.Equal(v) {
			return true
		}
	}
	return false
}

func IsWeekday(d time.Time) bool {
	return d.Weekday() > 0 && d.Weekday() < 6
}

func AdjustFollowing(d time.Time, hols []time.Time) time.Time {
	for IsHol(d, hols) || !IsWeekday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Return a list of business days from the first business day on or after start
// to (and including) end according to a holiday calendar
func ListBusinessDates(start time.Time, end time.Time, hols []time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, errors.New("end date must be later than start date")
	}
	var out []time.Time
	for d := AdjustFollowing(start, hols); !d.After(end); d = AdjustFollowing(d.AddDate(0, 0, 1), hols) {
		out = append(out, d)
	}
	return out, nil
}

// ParseDate reads a calendar date in Layout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(Layout, strings.TrimSpace(s))
}

// FormatTickers upper-cases, sorts and deduplicates ticker symbols.
func FormatTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, s := range tickers {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	unique := make([]string, 0, len(out))
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			unique = append(unique, v)
		}
	}
	return unique
}

// Filter keeps the selected tickers that belong to universe, in universe order.
func Filter(selected, universe []string) ([]string, error) {
	want := map[string]bool{}
	for _, s := range FormatTickers(selected) {
		want[s] = true
	}
	var out []string
	for _, v := range universe {
		if want[strings.ToUpper(v)] {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("there is no available stocks")
	}
	return out, nil
}
