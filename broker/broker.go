package broker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/banachtech/statarb/signals"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidPrice      = errors.New("broker: missing or invalid price")
	ErrNotionalTooSmall  = errors.New("broker: notional too small for a single share")
	ErrInvalidOrderInput = errors.New("broker: invalid order")
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type Order struct {
	Symbol string  `json:"symbol"`
	Qty    float64 `json:"qty"`
	Side   Side    `json:"side"`
}

// Client is the account surface the executor needs.
type Client interface {
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	// Positions maps upper-case symbols to signed share quantities.
	Positions(ctx context.Context) (map[string]float64, error)
	SubmitOrder(ctx context.Context, o Order) error
}

// TargetRequest asks for the account to hold state in the Y/X spread.
type TargetRequest struct {
	Y        string
	X        string
	Beta     float64
	State    signals.State
	Notional float64
	// Prices may pre-seed quotes; missing symbols are fetched from the client.
	Prices map[string]float64
}

// Leg is the planned change for one symbol.
type Leg struct {
	Symbol  string  `json:"symbol"`
	Current float64 `json:"current"`
	Desired float64 `json:"desired"`
	Order   *Order  `json:"order,omitempty"`
}

/*
move the live account to the requested spread state

args:
1. ctx : request scope
2. client : broker account
3. req : legs, hedge ratio, state and gross notional

returns:
1. the Y and X legs with the orders submitted (nil Order when already on target)
2. error: ErrInvalidPrice, ErrNotionalTooSmall or a client failure
*/
func TargetPairPosition(ctx context.Context, client Client, req TargetRequest) ([]Leg, error) {
	y, x := strings.ToUpper(req.Y), strings.ToUpper(req.X)
	if y == "" || x == "" || y == x {
		return nil, fmt.Errorf("%w: legs %q and %q", ErrInvalidOrderInput, req.Y, req.X)
	}
	if math.IsNaN(req.Beta) || !(req.Notional > 0) {
		return nil, fmt.Errorf("%w: beta %v notional %v", ErrInvalidOrderInput, req.Beta, req.Notional)
	}

	prices := map[string]float64{}
	for k, v := range req.Prices {
		prices[strings.ToUpper(k)] = v
	}
	for _, s := range []string{y, x} {
		if _, ok := prices[s]; ok {
			continue
		}
		px, err := client.LatestPrice(ctx, s)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("latest price unavailable")
			continue
		}
		prices[s] = px
	}
	py, okY := prices[y]
	px, okX := prices[x]
	if !okY || !okX || !(py > 0) || !(px > 0) {
		return nil, fmt.Errorf("%w: %v or %v", ErrInvalidPrice, y, x)
	}

	qtyY := math.Floor(req.Notional / 2 / py)
	qtyX := math.Floor(req.Notional / 2 * math.Abs(req.Beta) / px)
	if qtyY == 0 || qtyX == 0 {
		return nil, ErrNotionalTooSmall
	}

	s := float64(req.State)
	sign := 1.0
	if req.Beta < 0 {
		sign = -1
	}
	desiredY := s * qtyY
	desiredX := -s * qtyX * sign

	current, err := client.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	legs := []Leg{
		{Symbol: y, Current: current[y], Desired: desiredY},
		{Symbol: x, Current: current[x], Desired: desiredX},
	}
	for i := range legs {
		o := deltaOrder(legs[i].Symbol, legs[i].Desired-legs[i].Current)
		if o == nil {
			continue
		}
		if err := client.SubmitOrder(ctx, *o); err != nil {
			return legs, fmt.Errorf("order %v %v %v: %w", o.Side, o.Qty, o.Symbol, err)
		}
		log.Info().Str("symbol", o.Symbol).Str("side", string(o.Side)).Float64("qty", o.Qty).Msg("order submitted")
		legs[i].Order = o
	}
	return legs, nil
}

// deltaOrder is the market order for the whole-share part of delta, nil if none.
func deltaOrder(symbol string, delta float64) *Order {
	qty := math.Trunc(math.Abs(delta))
	if qty == 0 {
		return nil
	}
	side := Buy
	if delta < 0 {
		side = Sell
	}
	return &Order{Symbol: symbol, Qty: qty, Side: side}
}
