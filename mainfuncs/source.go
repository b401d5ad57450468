package mainfuncs

import (
	"errors"
	"io"

	"github.com/banachtech/statarb/config"
	"github.com/banachtech/statarb/data"
	"github.com/go-redis/redis/v8"
)

var ErrNoAPIKey = errors.New("POLYGON_API_KEY is not set")

/*
build the configured price source

args:
1. cfg : data settings and the polygon key
2. progress : download progress output, nil for none

returns:
1. polygon source, behind the redis cache when an address is set or the file cache otherwise
2. closer for the cache connection
3. error
*/
func NewSource(cfg *config.Config, progress io.Writer) (data.Source, func() error, error) {
	if cfg.Data.PolygonKey == "" {
		return nil, nil, ErrNoAPIKey
	}
	opts := []data.PolygonOption{
		data.WithBaseURL(cfg.Data.PolygonURL),
		data.WithRateLimit(cfg.Data.RatePerSec, 1),
	}
	if progress != nil {
		opts = append(opts, data.WithProgress(progress))
	}
	var src data.Source = data.NewPolygonSource(cfg.Data.PolygonKey, opts...)

	closer := func() error { return nil }
	switch {
	case cfg.Data.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.Data.RedisAddr})
		src = data.CachedSource{Source: src, Cache: data.NewRedisCache(client, cfg.Data.CacheTTL)}
		closer = client.Close
	case cfg.Data.CacheDir != "":
		src = data.CachedSource{Source: src, Cache: data.FileCache{Dir: cfg.Data.CacheDir}}
	}
	return src, closer, nil
}
