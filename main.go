package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "statarb",
		Short:         "Cointegration pair screener, backtester and executor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(flagLogLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config layered over the defaults")
	root.PersistentFlags().StringVar(&flagPrices, "prices", "", "CSV of closes to use instead of downloading")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "trace|debug|info|warn|error")

	root.AddCommand(
		downloadCmd(),
		findPairsCmd(),
		backtestCmd(),
		executeCmd(),
		serveCmd(),
		demoCmd(),
	)
	return root
}
