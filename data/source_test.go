package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/require"
)

func aggsServer(t *testing.T, hits *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/aggs/ticker/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		parts := strings.Split(r.URL.Path, "/")
		symbol := parts[4]
		d1 := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC).UnixMilli()
		d2 := time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC).UnixMilli()

		var resp TickerAggs
		switch symbol {
		case "AAA":
			if r.URL.Query().Get("page") == "" {
				resp = TickerAggs{Ticker: symbol, Results: []AggsBar{{Close: 10, Timestamp: d1}},
					Next: fmt.Sprintf("http://%v/v2/aggs/ticker/AAA/next?page=2", r.Host)}
			} else {
				resp = TickerAggs{Ticker: symbol, Results: []AggsBar{{Close: 11, Timestamp: d2}}}
			}
		case "BBB":
			resp = TickerAggs{Ticker: symbol, Results: []AggsBar{{Close: 20, Timestamp: d2}}}
		case "NONE":
			resp = TickerAggs{Ticker: symbol}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

func TestPolygonSource(t *testing.T) {
	var hits int32
	srv := aggsServer(t, &hits)
	defer srv.Close()

	src := NewPolygonSource("secret", WithBaseURL(srv.URL), WithRateLimit(1000, 10), WithProgress(io.Discard))
	tbl, err := src.Closes(context.Background(), []string{"AAA", "BBB", "NONE"}, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "BBB", "NONE"}, tbl.Tickers())
	require.Equal(t, []time.Time{day("2024-01-02"), day("2024-01-03")}, tbl.Dates())
	require.EqualValues(t, 4, atomic.LoadInt32(&hits))

	p, err := tbl.Pair("AAA", "BBB")
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	require.Equal(t, 11.0, p.X[0])
	require.Equal(t, 0, tbl.Count("NONE"))

	_, err = src.Closes(context.Background(), []string{"BAD"}, day("2024-01-01"), day("2024-01-31"))
	require.ErrorIs(t, err, errPolygonStatus)

	_, err = src.Closes(context.Background(), []string{"NONE"}, day("2024-01-01"), day("2024-01-31"))
	require.ErrorIs(t, err, ErrNoData)
}

type countingSource struct {
	calls int
	tbl   *PriceTable
	err   error
}

func (c *countingSource) Closes(context.Context, []string, time.Time, time.Time) (*PriceTable, error) {
	c.calls++
	return c.tbl, c.err
}

func TestCachedSourceFile(t *testing.T) {
	inner := &countingSource{tbl: sampleTable(t)}
	cached := CachedSource{Source: inner, Cache: FileCache{Dir: t.TempDir()}}
	ctx := context.Background()
	tickers := []string{"AAA", "BBB", "CCC"}

	first, err := cached.Closes(ctx, tickers, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	second, err := cached.Closes(ctx, []string{"CCC", "AAA", "BBB"}, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)
	require.Equal(t, []string{"CCC", "AAA", "BBB"}, second.Tickers())

	a1, _ := first.Column("BBB")
	a2, _ := second.Column("BBB")
	require.Equal(t, len(a1), len(a2))
	require.Equal(t, a1[0], a2[0])
	require.True(t, math.IsNaN(a2[1]))

	inner.err = errors.New("boom")
	_, err = cached.Closes(ctx, tickers, day("2024-02-01"), day("2024-02-28"))
	require.Error(t, err)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	fc := FileCache{Dir: dir}
	key := CacheKey([]string{"AAA", "BBB", "CCC"}, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, os.WriteFile(fc.path(key), []byte("{not json"), 0644))

	inner := &countingSource{tbl: sampleTable(t)}
	tbl, err := CachedSource{Source: inner, Cache: fc}.Closes(context.Background(), []string{"AAA", "BBB", "CCC"}, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)
	require.Equal(t, 4, tbl.Len())
}

func TestRedisCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, time.Hour)
	ctx := context.Background()

	mock.ExpectGet("k1").RedisNil()
	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	mock.ExpectGet("k2").SetVal("payload")
	b, ok, err := cache.Get(ctx, "k2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(b))

	mock.ExpectSet("k3", []byte("v"), time.Hour).SetVal("OK")
	require.NoError(t, cache.Put(ctx, "k3", []byte("v")))

	mock.ExpectGet("k4").SetErr(errors.New("connection refused"))
	_, _, err = cache.Get(ctx, "k4")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKeyIgnoresOrder(t *testing.T) {
	a := CacheKey([]string{"B", "A"}, day("2024-01-01"), day("2024-02-01"))
	b := CacheKey([]string{"A", "B"}, day("2024-01-01"), day("2024-02-01"))
	require.Equal(t, a, b)
	require.Equal(t, "statarb:closes:A,B:2024-01-01:2024-02-01", a)
}
