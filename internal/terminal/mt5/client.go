// Package mt5 talks to an MT5 gateway process over HTTP/JSON. The
// gateway wraps the terminal's native API; this client owns session
// login, history paging, and the server-time to UTC shift, so the rest
// of the bridge only ever sees UTC timestamps.
package mt5

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mt5-bridge/internal/interfaces"
	"mt5-bridge/internal/terminal"
	"mt5-bridge/internal/types"
)

type Params struct {
	BaseURL string
	Timeout time.Duration
	// UTCOffset is the terminal server's offset from UTC in seconds
	// (brokers commonly run UTC+3). Subtracted from every timestamp the
	// gateway returns.
	UTCOffset int
}

type Client struct {
	p        Params
	http     *http.Client
	resolver *terminal.Resolver
}

var _ interfaces.Terminal = (*Client)(nil)

func New(p Params) *Client {
	if p.Timeout == 0 {
		p.Timeout = 15 * time.Second
	}
	c := &Client{
		p:    p,
		http: &http.Client{Timeout: p.Timeout},
	}
	c.resolver = terminal.NewResolver(c)
	return c
}

// Resolver exposes the per-session symbol resolver.
func (c *Client) Resolver() *terminal.Resolver {
	return c.resolver
}

func (c *Client) Login(ctx context.Context, account int64, password, server string) error {
	req := map[string]any{
		"account":  account,
		"password": password,
		"server":   server,
	}
	var resp struct {
		Authorized bool   `json:"authorized"`
		Error      string `json:"error"`
	}
	if err := c.post(ctx, "/login", req, &resp); err != nil {
		return err
	}
	if !resp.Authorized {
		return fmt.Errorf("login rejected for account %d: %s", account, resp.Error)
	}
	return nil
}

func (c *Client) AccountInfo(ctx context.Context) (types.AccountSnapshot, error) {
	var snap types.AccountSnapshot
	if err := c.get(ctx, "/account_info", nil, &snap); err != nil {
		return types.AccountSnapshot{}, err
	}
	return snap, nil
}

func (c *Client) HistoryDeals(ctx context.Context, from, to time.Time) ([]types.Deal, error) {
	q := url.Values{
		"from": {strconv.FormatInt(from.Unix(), 10)},
		"to":   {strconv.FormatInt(to.Unix(), 10)},
	}
	var deals []types.Deal
	if err := c.get(ctx, "/history_deals", q, &deals); err != nil {
		return nil, err
	}
	for i := range deals {
		deals[i].Time -= int64(c.p.UTCOffset)
	}
	return deals, nil
}

func (c *Client) OpenPositions(ctx context.Context) ([]types.Position, error) {
	var positions []types.Position
	if err := c.get(ctx, "/positions", nil, &positions); err != nil {
		return nil, err
	}
	for i := range positions {
		positions[i].OpenTime -= int64(c.p.UTCOffset)
	}
	return positions, nil
}

// symbolInfo is the gateway's subset of MT5 symbol properties.
type symbolInfo struct {
	Found   bool    `json:"found"`
	Visible bool    `json:"visible"`
	Point   float64 `json:"point"`
	Digits  int     `json:"digits"`
}

func (c *Client) SymbolExists(ctx context.Context, symbol string) (bool, error) {
	info, err := c.symbolInfo(ctx, symbol)
	if err != nil {
		return false, err
	}
	return info.Found, nil
}

func (c *Client) PointSize(ctx context.Context, symbol string) (float64, error) {
	info, err := c.symbolInfo(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if !info.Found {
		return 0, fmt.Errorf("symbol %s not found on terminal", symbol)
	}
	return info.Point, nil
}

func (c *Client) symbolInfo(ctx context.Context, symbol string) (*symbolInfo, error) {
	var info symbolInfo
	if err := c.get(ctx, "/symbol_info", url.Values{"symbol": {symbol}}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Rates(ctx context.Context, symbol, timeframe string, count int) ([]types.Candle, error) {
	q := url.Values{
		"symbol":    {symbol},
		"timeframe": {timeframe},
		"count":     {strconv.Itoa(count)},
	}
	var candles []types.Candle
	if err := c.get(ctx, "/rates", q, &candles); err != nil {
		return nil, err
	}
	for i := range candles {
		candles[i].Ts -= int64(c.p.UTCOffset)
	}
	return candles, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	body := map[string]any{
		"symbol": req.Symbol,
		"type":   int(req.Side),
		"volume": req.Volume,
		"sl":     req.SL,
		"tp":     req.TP,
		"comment": func() string {
			if req.Tag != "" {
				return req.Tag
			}
			return "mt5-bridge"
		}(),
	}
	var resp types.OrderResp
	if err := c.post(ctx, "/order", body, &resp); err != nil {
		return types.OrderResp{}, err
	}
	if resp.Status != "done" {
		return resp, fmt.Errorf("order rejected: %s", resp.Message)
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.p.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.p.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway %s: status %d: %s", req.URL.Path, resp.StatusCode, bytes.TrimSpace(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
