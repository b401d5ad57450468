package mainfuncs

import (
	"context"

	"github.com/banachtech/statarb/broker"
	"github.com/banachtech/statarb/config"
	"github.com/rs/zerolog/log"
)

// NewBroker builds the Alpaca client from the broker settings.
func NewBroker(cfg *config.Config) *broker.AlpacaClient {
	return broker.NewAlpacaClient(cfg.Broker.BaseURL, cfg.Broker.DataURL, cfg.Broker.KeyID, cfg.Broker.Secret)
}

// Execute moves the account to req, using the configured notional when req has none.
func Execute(ctx context.Context, cfg *config.Config, client broker.Client, req broker.TargetRequest) ([]broker.Leg, error) {
	if req.Notional == 0 {
		req.Notional = cfg.Broker.Notional
	}
	log.Info().
		Str("y", req.Y).
		Str("x", req.X).
		Float64("beta", req.Beta).
		Str("state", req.State.String()).
		Float64("notional", req.Notional).
		Msg("targeting pair position")
	return broker.TargetPairPosition(ctx, client, req)
}
