package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Cache stores serialized price tables by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// FileCache keeps one JSON file per key under Dir.
type FileCache struct {
	Dir string
}

func (f FileCache) path(key string) string {
	r := strings.NewReplacer("/", "_", ":", "_", ",", "_")
	return filepath.Join(f.Dir, r.Replace(key)+".json")
}

func (f FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (f FileCache) Put(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path(key), value, 0644)
}

// RedisCache keeps tables in redis with an expiry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// CachedSource serves tables from Cache and falls back to Source on a miss.
// Cache failures are logged and never fail a load.
type CachedSource struct {
	Source Source
	Cache  Cache
}

// CacheKey identifies a request independent of ticker order.
func CacheKey(tickers []string, start, end time.Time) string {
	s := append([]string(nil), tickers...)
	sort.Strings(s)
	return fmt.Sprintf("statarb:closes:%v:%v:%v", strings.Join(s, ","), start.Format(DateLayout), end.Format(DateLayout))
}

func (c CachedSource) Closes(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, error) {
	key := CacheKey(tickers, start, end)
	b, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("price cache read failed")
	}
	if ok {
		var t PriceTable
		if err := json.Unmarshal(b, &t); err == nil {
			return t.Select(tickers)
		}
		log.Warn().Str("key", key).Msg("discarding corrupt cache entry")
	}

	t, err := c.Source.Closes(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}
	if b, err := json.MarshalIndent(t, "", " "); err == nil {
		if err := c.Cache.Put(ctx, key, b); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("price cache write failed")
		}
	}
	return t, nil
}

type tableJSON struct {
	Dates   []string              `json:"dates"`
	Tickers []string              `json:"tickers"`
	Closes  map[string][]*float64 `json:"closes"`
}

// MarshalJSON encodes missing prices as null.
func (t *PriceTable) MarshalJSON() ([]byte, error) {
	raw := tableJSON{
		Dates:   make([]string, len(t.dates)),
		Tickers: t.tickers,
		Closes:  make(map[string][]*float64, len(t.tickers)),
	}
	for i, d := range t.dates {
		raw.Dates[i] = d.Format(DateLayout)
	}
	for c, s := range t.tickers {
		col := make([]*float64, len(t.dates))
		for i, v := range t.cols[c] {
			if !math.IsNaN(v) {
				v := v
				col[i] = &v
			}
		}
		raw.Closes[s] = col
	}
	return json.Marshal(raw)
}

func (t *PriceTable) UnmarshalJSON(b []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	dates := make([]time.Time, len(raw.Dates))
	for i, s := range raw.Dates {
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return err
		}
		dates[i] = d
	}
	out, err := NewPriceTable(dates, raw.Tickers)
	if err != nil {
		return err
	}
	for c, s := range raw.Tickers {
		col := raw.Closes[s]
		if len(col) != len(dates) {
			return fmt.Errorf("column %v has %d values for %d dates", s, len(col), len(dates))
		}
		for i, v := range col {
			if v != nil {
				out.cols[c][i] = *v
			}
		}
	}
	*t = *out
	return nil
}
