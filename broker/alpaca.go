package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AlpacaClient talks to the Alpaca trading and market data REST APIs.
type AlpacaClient struct {
	BaseURL string
	DataURL string
	KeyID   string
	Secret  string
	HTTP    *http.Client
}

func NewAlpacaClient(baseURL, dataURL, keyID, secret string) *AlpacaClient {
	return &AlpacaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		DataURL: strings.TrimRight(dataURL, "/"),
		KeyID:   keyID,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type alpacaPosition struct {
	Symbol string `json:"symbol"`
	Qty    string `json:"qty"`
}

type alpacaTrade struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		Price float64 `json:"p"`
	} `json:"trade"`
}

type alpacaOrder struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
}

func (a *AlpacaClient) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	var t alpacaTrade
	u := fmt.Sprintf("%v/v2/stocks/%v/trades/latest", a.DataURL, url.PathEscape(symbol))
	if err := a.do(ctx, http.MethodGet, u, nil, &t); err != nil {
		return 0, err
	}
	return t.Trade.Price, nil
}

// Positions ignores quantities that do not parse, as the account reports them as strings.
func (a *AlpacaClient) Positions(ctx context.Context) (map[string]float64, error) {
	var raw []alpacaPosition
	if err := a.do(ctx, http.MethodGet, a.BaseURL+"/v2/positions", nil, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(raw))
	for _, p := range raw {
		qty, err := strconv.ParseFloat(p.Qty, 64)
		if err != nil {
			qty = 0
		}
		out[strings.ToUpper(p.Symbol)] = qty
	}
	return out, nil
}

func (a *AlpacaClient) SubmitOrder(ctx context.Context, o Order) error {
	if o.Qty <= 0 || (o.Side != Buy && o.Side != Sell) {
		return fmt.Errorf("%w: %+v", ErrInvalidOrderInput, o)
	}
	body := alpacaOrder{
		Symbol:      o.Symbol,
		Qty:         strconv.FormatFloat(o.Qty, 'f', -1, 64),
		Side:        string(o.Side),
		Type:        "market",
		TimeInForce: "day",
	}
	return a.do(ctx, http.MethodPost, a.BaseURL+"/v2/orders", body, nil)
}

func (a *AlpacaClient) do(ctx context.Context, method, u string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("APCA-API-KEY-ID", a.KeyID)
	req.Header.Set("APCA-API-SECRET-KEY", a.Secret)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("alpaca %v %v: status %d: %s", method, u, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
