package mainfuncs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/banachtech/statarb/broker"
	mockbroker "github.com/banachtech/statarb/broker/mock"
	"github.com/banachtech/statarb/config"
	"github.com/banachtech/statarb/data"
	"github.com/banachtech/statarb/mc"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/util"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func demoConfig() *config.Config {
	cfg := config.Default()
	cfg.Universe = []string{"SPY", "IVV", "XOM", "CVX", "AAPL", "JPM", "EEM"}
	cfg.Start = "2022-01-03"
	cfg.End = "2024-06-28"
	return cfg
}

func demoSource(t *testing.T) data.Source {
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

func TestFindPairs(t *testing.T) {
	cands, err := FindPairs(context.Background(), demoConfig(), demoSource(t), nil)
	require.NoError(t, err)
	require.NotEmpty(t, cands)

	found := false
	for _, c := range cands {
		if c.X == "SPY" && c.Y == "IVV" {
			found = true
		}
	}
	require.True(t, found)
}

func TestFindPairsSourceError(t *testing.T) {
	src := data.SourceFunc(func(context.Context, []string, time.Time, time.Time) (*data.PriceTable, error) {
		return nil, data.ErrNoData
	})
	_, err := FindPairs(context.Background(), demoConfig(), src, nil)
	require.ErrorIs(t, err, data.ErrNoData)
}

func TestBacktestPair(t *testing.T) {
	cfg := demoConfig()
	run, err := BacktestPair(context.Background(), cfg, demoSource(t), "xom", "cvx")
	require.NoError(t, err)
	require.Equal(t, "CVX/XOM", run.Pair.Name())
	require.Equal(t, run.Pair.Len(), len(run.States))
	require.Equal(t, run.Pair.Len()-run.Spread.FirstDefined(), len(run.Result.Ledger))
	require.Equal(t, cfg.Backtest.InitialCapital, run.Result.Ledger[0].Equity)

	beta, state, ok := run.Latest()
	require.True(t, ok)
	require.InDelta(t, 1.0, beta, 0.5)
	require.Equal(t, run.States[len(run.States)-1], state)
}

func TestLatestSignal(t *testing.T) {
	cfg := demoConfig()
	now := time.Now()
	var gotEnd time.Time
	inner := demoSource(t)
	src := data.SourceFunc(func(ctx context.Context, tickers []string, start, end time.Time) (*data.PriceTable, error) {
		gotEnd = end
		return inner.Closes(ctx, tickers, start, end)
	})

	run, beta, state, err := LatestSignal(context.Background(), cfg, src, "XOM", "CVX", now)
	require.NoError(t, err)
	require.Equal(t, now.Format(util.Layout), gotEnd.Format(util.Layout))
	require.Equal(t, "2024-06-28", cfg.End)

	last := run.Pair.Dates[run.Pair.Len()-1]
	require.False(t, last.After(gotEnd))
	require.Less(t, gotEnd.Sub(last), 7*24*time.Hour)

	b, s, ok := run.Latest()
	require.True(t, ok)
	require.Equal(t, b, beta)
	require.Equal(t, s, state)
}

func TestBacktestPairUnknownTicker(t *testing.T) {
	_, err := BacktestPair(context.Background(), demoConfig(), demoSource(t), "XOM", "NOPE")
	require.Error(t, err)
}

func TestExecute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := demoConfig()
	cfg.Broker.Notional = 1000
	client := mockbroker.NewMockClient(ctrl)
	client.EXPECT().Positions(gomock.Any()).Times(1).Return(map[string]float64{}, nil)
	client.EXPECT().SubmitOrder(gomock.Any(), gomock.Eq(broker.Order{Symbol: "CVX", Qty: 5, Side: broker.Sell})).Times(1).Return(nil)
	client.EXPECT().SubmitOrder(gomock.Any(), gomock.Eq(broker.Order{Symbol: "XOM", Qty: 5, Side: broker.Buy})).Times(1).Return(nil)

	legs, err := Execute(context.Background(), cfg, client, broker.TargetRequest{
		Y: "CVX", X: "XOM", Beta: 1, State: signals.Short,
		Prices: map[string]float64{"CVX": 100, "XOM": 100},
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)
}

func TestExecuteTooSmall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := demoConfig()
	cfg.Broker.Notional = 100
	client := mockbroker.NewMockClient(ctrl)

	_, err := Execute(context.Background(), cfg, client, broker.TargetRequest{
		Y: "CVX", X: "XOM", Beta: 1, State: signals.Long,
		Prices: map[string]float64{"CVX": 150, "XOM": 110},
	})
	require.True(t, errors.Is(err, broker.ErrNotionalTooSmall))
}

func TestNewSource(t *testing.T) {
	cfg := demoConfig()
	cfg.Data.PolygonKey = ""
	_, _, err := NewSource(cfg, nil)
	require.ErrorIs(t, err, ErrNoAPIKey)

	cfg.Data.PolygonKey = "key"
	cfg.Data.CacheDir = t.TempDir()
	src, closer, err := NewSource(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, closer())
	_, ok := src.(data.CachedSource)
	require.True(t, ok)

	cfg.Data.CacheDir = ""
	src, _, err = NewSource(cfg, nil)
	require.NoError(t, err)
	_, ok = src.(*data.PolygonSource)
	require.True(t, ok)
}
