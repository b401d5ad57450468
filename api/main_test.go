package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/banachtech/statarb/config"
	"github.com/banachtech/statarb/data"
	db "github.com/banachtech/statarb/db/sqlc"
	"github.com/banachtech/statarb/mc"
	"github.com/banachtech/statarb/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const testAPIKey = "dmag_d8K.RGbV3hb3LEwYohYW"

var testAPIKeyHash string

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAPIKey), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	testAPIKeyHash = string(hash)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Universe = []string{"SPY", "IVV", "XOM", "CVX", "AAPL", "JPM", "EEM"}
	cfg.Start = "2022-01-03"
	cfg.End = "2024-06-28"
	cfg.Server.APIKeyHash = testAPIKeyHash
	cfg.Server.RatePerSec = 100
	cfg.Server.Burst = 100
	return cfg
}

func demoSource() data.Source {
	return data.SourceFunc(func(ctx context.Context, tickers []string, start, end time.Time) (*data.PriceTable, error) {
		dates, err := util.ListBusinessDates(start, end, util.NYSEHolidays())
		if err != nil {
			return nil, err
		}
		tbl, err := mc.DemoUniverse(3).Table(dates)
		if err != nil {
			return nil, err
		}
		return tbl.Select(tickers)
	})
}

func newTestServer(t *testing.T, cfg *config.Config, store db.Store) *Server {
	return NewServer(cfg, store, demoSource())
}

func addAuthorization(request *http.Request, authorizationType, token string) {
	authorizationHeader := fmt.Sprintf("%s %s", authorizationType, token)
	request.Header.Set(authorizationHeaderKey, authorizationHeader)
}
