package data

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Source loads daily closing prices.
type Source interface {
	Closes(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error)

func (f SourceFunc) Closes(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error) {
	return f(ctx, tickers, start, end)
}

// ProgressBar is the bar shown by long-running loaders and the screener.
func ProgressBar(length int, description string, w io.Writer) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(
		length,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return bar
}
