package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/banachtech/statarb/api"
	"github.com/banachtech/statarb/broker"
	"github.com/banachtech/statarb/config"
	"github.com/banachtech/statarb/data"
	db "github.com/banachtech/statarb/db/sqlc"
	"github.com/banachtech/statarb/mainfuncs"
	"github.com/banachtech/statarb/mc"
	"github.com/banachtech/statarb/report"
	"github.com/banachtech/statarb/screen"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagPrices   string
	flagLogLevel string
)

// loadSource returns the CSV source when --prices is set and the configured download source otherwise.
func loadSource(cfg *config.Config) (data.Source, func() error, error) {
	if flagPrices == "" {
		return mainfuncs.NewSource(cfg, os.Stderr)
	}
	f, err := os.Open(flagPrices)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	tbl, err := data.LoadCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", flagPrices, err)
	}
	return tableSource(tbl), func() error { return nil }, nil
}

func tableSource(tbl *data.PriceTable) data.Source {
	return data.SourceFunc(func(_ context.Context, tickers []string, start, end time.Time) (*data.PriceTable, error) {
		sub := tbl.Between(start, end)
		if sub.Len() == 0 {
			return nil, data.ErrNoData
		}
		return sub.Select(tickers)
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func downloadCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download closes for the universe into a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			src, closer, err := mainfuncs.NewSource(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer closer()

			ctx, cancel := signalContext()
			defer cancel()
			start, end := cfg.Dates()
			tbl, err := src.Closes(ctx, cfg.Universe, start, end)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := data.WriteCSV(w, tbl.DropEmptyRows()); err != nil {
				return err
			}
			log.Info().Int("tickers", len(tbl.Tickers())).Int("dates", tbl.Len()).Str("out", out).Msg("prices written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}

func findPairsCmd() *cobra.Command {
	var (
		save    bool
		tickers []string
	)
	cmd := &cobra.Command{
		Use:   "find-pairs",
		Short: "Screen the universe for cointegrated pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if len(tickers) > 0 {
				if cfg.Universe, err = util.Filter(tickers, cfg.Universe); err != nil {
					return err
				}
			}
			src, closer, err := loadSource(cfg)
			if err != nil {
				return err
			}
			defer closer()

			ctx, cancel := signalContext()
			defer cancel()
			cands, err := mainfuncs.FindPairs(ctx, cfg, src, os.Stderr)
			if err != nil {
				return err
			}
			printCandidates(cmd.OutOrStdout(), cands)

			if !save {
				return nil
			}
			store, closeDB, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			run, err := db.NewScreenRun(cfg.Start, cfg.End, cfg.Universe, cfg.Screen, cands)
			if err != nil {
				return err
			}
			id, err := store.SaveScreen(ctx, run)
			if err != nil {
				return err
			}
			log.Info().Int64("id", id).Msg("screen saved")
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "persist the candidates to DATABASE_URL")
	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "screen only these members of the universe")
	return cmd
}

func printCandidates(w io.Writer, cands []screen.Candidate) {
	fmt.Fprintln(w, "Cointegrated pairs:")
	if len(cands) == 0 {
		fmt.Fprintln(w, "  (none found)")
	}
	for _, c := range cands {
		fmt.Fprintf(w, "%v - %v | pval=%.4f | corr=%.2f | beta=%.3f | hurst=%.2f\n", c.X, c.Y, c.PValue, c.Correlation, c.HedgeRatio, c.Hurst)
	}
}

func backtestCmd() *cobra.Command {
	var x, y, xlsx string
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest the z-score strategy on one pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			x, y = orDefault(x, cfg.Pair.X), orDefault(y, cfg.Pair.Y)
			src, closer, err := loadSource(cfg)
			if err != nil {
				return err
			}
			defer closer()

			ctx, cancel := signalContext()
			defer cancel()
			run, err := mainfuncs.BacktestPair(ctx, cfg, src, x, y)
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), run)
			if xlsx != "" {
				return report.WriteWorkbook(xlsx, run.Pair.Name(), run.Result)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&x, "x", "", "hedge leg, defaults to the configured pair")
	cmd.Flags().StringVar(&y, "y", "", "dependent leg, defaults to the configured pair")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write the ledger workbook to this path")
	return cmd
}

func printRun(w io.Writer, run *mainfuncs.PairRun) {
	s := run.Result.Summary
	ledger := run.Result.Ledger
	fmt.Fprintf(w, "%v: %v to %v, %d rows, %d state changes\n",
		run.Pair.Name(), ledger[0].Date.Format(util.Layout), ledger[len(ledger)-1].Date.Format(util.Layout), len(ledger), run.Changes)
	fmt.Fprintf(w, "total return %.2f%% | sharpe %.2f | max drawdown %.2f%% | final equity %.2f\n",
		100*s.TotalReturn, s.Sharpe, 100*s.MaxDrawdown, ledger[len(ledger)-1].Equity)
}

func executeCmd() *cobra.Command {
	var (
		x, y     string
		beta     float64
		state    int
		notional float64
		auto     bool
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Move the Alpaca account to a pair position",
		Example: `  statarb execute --y XLE --x XOM --beta 1.2 --state 1 --notional 10000
  statarb execute --y KRE --x XLF --auto`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cfg.Broker.KeyID == "" || cfg.Broker.Secret == "" {
				return errors.New("APCA_API_KEY_ID and APCA_API_SECRET_KEY must be set")
			}
			ctx, cancel := signalContext()
			defer cancel()

			req := broker.TargetRequest{Y: y, X: x, Beta: beta, State: signals.State(state), Notional: notional}
			if auto {
				src, closer, err := loadSource(cfg)
				if err != nil {
					return err
				}
				defer closer()
				_, b, s, err := mainfuncs.LatestSignal(ctx, cfg, src, x, y, time.Now())
				if err != nil {
					return err
				}
				req.Beta, req.State = b, s
			} else if state < -1 || state > 1 {
				return fmt.Errorf("state %d must be -1, 0 or 1", state)
			}

			legs, err := mainfuncs.Execute(ctx, cfg, mainfuncs.NewBroker(cfg), req)
			if err != nil {
				return err
			}
			printLegs(cmd.OutOrStdout(), legs)
			return nil
		},
	}
	cmd.Flags().StringVar(&y, "y", "", "Y leg symbol (goes long when state=1)")
	cmd.Flags().StringVar(&x, "x", "", "X leg symbol (hedge leg)")
	cmd.Flags().Float64Var(&beta, "beta", 0, "hedge ratio beta (Y ~ beta*X)")
	cmd.Flags().IntVar(&state, "state", 0, "-1 short spread, 0 flat, 1 long spread")
	cmd.Flags().Float64Var(&notional, "notional", 0, "gross dollars to deploy across both legs, defaults to the configured notional")
	cmd.Flags().BoolVar(&auto, "auto", false, "take beta and state from a backtest ending today")
	cmd.MarkFlagRequired("y")
	cmd.MarkFlagRequired("x")
	cmd.MarkFlagsMutuallyExclusive("auto", "beta")
	cmd.MarkFlagsMutuallyExclusive("auto", "state")
	return cmd
}

func printLegs(w io.Writer, legs []broker.Leg) {
	var submitted []string
	for _, l := range legs {
		if l.Order != nil {
			submitted = append(submitted, fmt.Sprintf("- %v %v %v", l.Order.Symbol, l.Order.Side, l.Order.Qty))
		}
	}
	if len(submitted) == 0 {
		fmt.Fprintln(w, "No orders needed; already at target.")
		return
	}
	fmt.Fprintln(w, "Submitted orders:")
	fmt.Fprintln(w, strings.Join(submitted, "\n"))
}

func openStore(ctx context.Context, cfg *config.Config) (db.Store, func() error, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is not set")
	}
	conn, err := db.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return db.NewStore(conn), conn.Close, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Output(os.Stderr).With().Timestamp().Logger()

			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cfg.Server.APIKeyHash == "" {
				log.Warn().Msg("STATARB_API_KEY_HASH is not set; every /v1 request will be rejected")
			}
			src, closer, err := loadSource(cfg)
			if err != nil {
				return err
			}
			defer closer()

			store, closeDB, err := openStore(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			server := api.NewServer(cfg, store, src)
			log.Info().Str("addr", cfg.Server.Addr).Msg("serving")
			return server.Start(cfg.Server.Addr)
		},
	}
	return cmd
}

func demoCmd() *cobra.Command {
	var (
		seed uint64
		xlsx string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Screen and backtest a synthetic universe, no network needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			start, end := cfg.Dates()
			dates, err := util.ListBusinessDates(start, end, util.NYSEHolidays())
			if err != nil {
				return err
			}
			tbl, err := mc.DemoUniverse(seed).Table(dates)
			if err != nil {
				return err
			}
			cfg.Universe = tbl.Tickers()
			src := tableSource(tbl)

			ctx, cancel := signalContext()
			defer cancel()
			cands, err := mainfuncs.FindPairs(ctx, cfg, src, os.Stderr)
			if err != nil {
				return err
			}
			printCandidates(cmd.OutOrStdout(), cands)
			if len(cands) == 0 {
				return nil
			}

			best := cands[0]
			run, err := mainfuncs.BacktestPair(ctx, cfg, src, best.X, best.Y)
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), run)
			if xlsx != "" {
				return report.WriteWorkbook(xlsx, run.Pair.Name(), run.Result)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed, 0 seeds from the clock")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write the ledger workbook of the best pair to this path")
	return cmd
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
