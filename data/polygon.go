package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const DefaultPolygonURL = "https://api.polygon.io"

// TickerAggs is the aggregates payload of the polygon.io bars endpoint.
type TickerAggs struct {
	Ticker       string    `json:"ticker"`
	Status       string    `json:"status"`
	ResultsCount int       `json:"resultsCount"`
	Results      []AggsBar `json:"results"`
	Next         string    `json:"next_url"`
}

type AggsBar struct {
	Close     float64 `json:"c"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Volume    float64 `json:"v"`
	Timestamp int64   `json:"t"`
}

// PolygonSource loads split and dividend adjusted daily closes from polygon.io.
type PolygonSource struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	parallel int
	progress io.Writer
}

type PolygonOption func(*PolygonSource)

func WithBaseURL(u string) PolygonOption { return func(p *PolygonSource) { p.baseURL = u } }

func WithHTTPClient(c *http.Client) PolygonOption { return func(p *PolygonSource) { p.client = c } }

// WithRateLimit caps requests per second; the free polygon tier allows 5 per minute.
func WithRateLimit(perSecond float64, burst int) PolygonOption {
	return func(p *PolygonSource) { p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithProgress draws a progress bar on w while tickers download.
func WithProgress(w io.Writer) PolygonOption { return func(p *PolygonSource) { p.progress = w } }

func NewPolygonSource(apiKey string, opts ...PolygonOption) *PolygonSource {
	p := &PolygonSource{
		baseURL:  DefaultPolygonURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
		parallel: 4,
	}
	for _, o := range opts {
		o(p)
	}
	st := gobreaker.Settings{Name: "polygon"}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 5 }
	st.Timeout = 30 * time.Second
	p.breaker = gobreaker.NewCircuitBreaker(st)
	return p
}

/*
download daily closes for every ticker and merge them into one table

args:
1. ctx : cancels outstanding requests
2. tickers : symbols, in column order
3. start, end : inclusive date range

returns:
1. table on the union of trading dates; a ticker without bars is an all-missing column
2. error
*/
func (p *PolygonSource) Closes(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error) {
	closes := make([]map[time.Time]float64, len(tickers))

	var bar interface{ Add(int) error }
	if p.progress != nil {
		bar = ProgressBar(len(tickers), "downloading", p.progress)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallel)
	for i, symbol := range tickers {
		i, symbol := i, symbol
		g.Go(func() error {
			px, err := p.ticker(ctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("%v: %w", symbol, err)
			}
			if len(px) == 0 {
				log.Warn().Str("ticker", symbol).Msg("no bars returned")
			}
			closes[i] = px
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]map[time.Time]float64, len(tickers))
	for i, s := range tickers {
		merged[s] = closes[i]
	}
	t, err := FromCloses(tickers, merged)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, ErrNoData
	}
	return t, nil
}

// ticker follows next_url pages until the range is exhausted.
func (p *PolygonSource) ticker(ctx context.Context, symbol string, start, end time.Time) (map[time.Time]float64, error) {
	u := fmt.Sprintf("%v/v2/aggs/ticker/%v/range/1/day/%v/%v?adjusted=true&sort=asc&limit=50000",
		p.baseURL, url.PathEscape(symbol), start.Format(DateLayout), end.Format(DateLayout))
	out := map[time.Time]float64{}
	for u != "" {
		var aggs TickerAggs
		if err := p.get(ctx, u, &aggs); err != nil {
			return nil, err
		}
		for _, b := range aggs.Results {
			ts := time.UnixMilli(b.Timestamp).UTC()
			d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			out[d] = b.Close
		}
		u = aggs.Next
	}
	return out, nil
}

var errPolygonStatus = errors.New("polygon request failed")

func (p *PolygonSource) get(ctx context.Context, u string, target *TickerAggs) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Add("Authorization", fmt.Sprintf(`Bearer %s`, p.apiKey))

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", errPolygonStatus, resp.StatusCode)
		}
		return nil, json.NewDecoder(resp.Body).Decode(target)
	})
	return err
}
