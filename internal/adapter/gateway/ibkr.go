package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

// ErrNotConnected is returned when a fetch is attempted without an open session.
var ErrNotConnected = errors.New("not connected")

// IBKRConfig configures a Client Portal gateway session.
type IBKRConfig struct {
	// BaseURL is the REST root, e.g. https://127.0.0.1:5000/v1/api.
	BaseURL string
	// ClientID identifies the session; the gateway allows one session per id.
	ClientID int
	// Exchange and Currency qualify symbols to contracts (SMART / USD).
	Exchange string
	Currency string
	// CallTimeout bounds every request made to the gateway.
	CallTimeout time.Duration
	// InsecureSkipVerify accepts the gateway's self-signed certificate.
	InsecureSkipVerify bool
	// Sessions enforces one open session per client id inside this process.
	Sessions *SessionRegistry
}

// IBKRClient talks to the Interactive Brokers Client Portal gateway.
type IBKRClient struct {
	cfg       IBKRConfig
	http      *resty.Client
	log       *slog.Logger
	mu        sync.Mutex
	connected bool
	contracts map[string]model.Contract
}

var _ port.GatewayPort = (*IBKRClient)(nil)

func NewIBKRClient(cfg IBKRConfig, log *slog.Logger) *IBKRClient {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "barflow").
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}) //nolint:gosec

	return &IBKRClient{
		cfg:       cfg,
		http:      rc,
		log:       log.With("gateway", "ibkr", "client_id", cfg.ClientID),
		contracts: make(map[string]model.Contract),
	}
}

func (c *IBKRClient) Name() string { return "ibkr" }

func (c *IBKRClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect opens the session. It is a no-op when already connected.
func (c *IBKRClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if err := c.cfg.Sessions.Claim(c.cfg.ClientID); err != nil {
		return &model.GatewayError{Op: "connect", Err: err}
	}

	c.log.Info("connecting to gateway", "url", c.cfg.BaseURL)

	status, err := c.call(ctx, "connect", http.MethodPost, "/iserver/auth/status", nil)
	if err != nil {
		c.cfg.Sessions.Release(c.cfg.ClientID)
		c.log.Error("gateway unreachable", "error", err)
		return err
	}
	if !status.Get("authenticated").Bool() {
		c.cfg.Sessions.Release(c.cfg.ClientID)
		err := &model.GatewayError{Op: "connect", Err: fmt.Errorf("brokerage session not authenticated (connected=%t)", status.Get("connected").Bool())}
		c.log.Error("gateway not authenticated", "error", err)
		return err
	}

	if _, err := c.call(ctx, "connect", http.MethodPost, "/tickle", nil); err != nil {
		c.cfg.Sessions.Release(c.cfg.ClientID)
		return err
	}

	c.connected = true
	c.log.Info("connected to gateway")
	return nil
}

// Disconnect closes the session. It is a no-op when not connected. The
// brokerage login stays up so the next symbol can connect again.
func (c *IBKRClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.connected = false
	c.contracts = make(map[string]model.Contract)
	c.cfg.Sessions.Release(c.cfg.ClientID)
	c.http.GetClient().CloseIdleConnections()

	c.log.Info("disconnected from gateway")
	return nil
}

// Logout ends the brokerage session on the gateway. Every client of that
// gateway is unauthenticated afterwards until the user logs in again, so it is
// only called once no more fetches are pending.
func (c *IBKRClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.contracts = make(map[string]model.Contract)
		c.cfg.Sessions.Release(c.cfg.ClientID)
	}

	if _, err := c.call(ctx, "logout", http.MethodPost, "/logout", nil); err != nil {
		c.log.Error("gateway logout failed", "error", err)
		return err
	}
	c.http.GetClient().CloseIdleConnections()

	c.log.Info("logged out of gateway")
	return nil
}

// FetchHistoricalBars resolves symbol and pulls trade bars up to now, regular
// trading hours only, oldest first.
func (c *IBKRClient) FetchHistoricalBars(ctx context.Context, symbol string, req model.HistoryRequest) ([]model.Bar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, &model.GatewayError{Op: "fetch", Err: ErrNotConnected}
	}

	period, err := Period(req.Duration)
	if err != nil {
		return nil, &model.GatewayError{Op: "fetch", Err: err}
	}
	bar, err := BarSize(req.BarSize)
	if err != nil {
		return nil, &model.GatewayError{Op: "fetch", Err: err}
	}

	contract, err := c.resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}

	res, err := c.call(ctx, "fetch", http.MethodGet, "/iserver/marketdata/history", map[string]string{
		"conid":      strconv.FormatInt(contract.ConID, 10),
		"period":     period,
		"bar":        bar,
		"outsideRth": "false",
	})
	if err != nil {
		return nil, err
	}
	if msg := res.Get("error").String(); msg != "" {
		return nil, &model.GatewayError{Op: "fetch", Err: fmt.Errorf("history %s: %s", symbol, msg)}
	}

	bars := parseBars(res)
	c.log.Debug("historical bars received", "symbol", symbol, "conid", contract.ConID, "bars", len(bars), "period", period, "bar", bar)
	return bars, nil
}

func parseBars(res gjson.Result) []model.Bar {
	volumeFactor := res.Get("volumeFactor").Float()
	if volumeFactor <= 0 {
		volumeFactor = 1
	}

	data := res.Get("data").Array()
	bars := make([]model.Bar, 0, len(data))
	for _, d := range data {
		bars = append(bars, model.Bar{
			Time:   time.UnixMilli(d.Get("t").Int()).UTC(),
			Open:   d.Get("o").Float(),
			High:   d.Get("h").Float(),
			Low:    d.Get("l").Float(),
			Close:  d.Get("c").Float(),
			Volume: d.Get("v").Float() * volumeFactor,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

// resolve qualifies symbol to a stock contract on the configured exchange and
// currency. Caller holds c.mu.
func (c *IBKRClient) resolve(ctx context.Context, symbol string) (model.Contract, error) {
	if ct, ok := c.contracts[symbol]; ok {
		return ct, nil
	}

	res, err := c.call(ctx, "resolve", http.MethodGet, "/iserver/secdef/search", map[string]string{
		"symbol":  symbol,
		"secType": "STK",
	})
	if err != nil {
		return model.Contract{}, err
	}
	if !res.IsArray() || len(res.Array()) == 0 {
		return model.Contract{}, &model.ResolutionError{Symbol: symbol, Reason: strings.TrimSpace(res.Get("error").String())}
	}

	for _, candidate := range res.Array() {
		if !strings.EqualFold(candidate.Get("symbol").String(), symbol) {
			continue
		}
		conid := candidate.Get("conid").Int()
		if conid <= 0 {
			continue
		}

		info, err := c.call(ctx, "resolve", http.MethodGet, "/iserver/secdef/info", map[string]string{
			"conid":   strconv.FormatInt(conid, 10),
			"sectype": "STK",
		})
		if err != nil {
			return model.Contract{}, err
		}

		for _, detail := range info.Array() {
			if ct, ok := c.match(symbol, conid, detail); ok {
				c.contracts[symbol] = ct
				return ct, nil
			}
		}
	}

	return model.Contract{}, &model.ResolutionError{
		Symbol: symbol,
		Reason: fmt.Sprintf("no %s contract tradable on %s", c.cfg.Currency, c.cfg.Exchange),
	}
}

func (c *IBKRClient) match(symbol string, conid int64, detail gjson.Result) (model.Contract, bool) {
	currency := detail.Get("currency").String()
	if c.cfg.Currency != "" && !strings.EqualFold(currency, c.cfg.Currency) {
		return model.Contract{}, false
	}

	if c.cfg.Exchange != "" {
		exchanges := strings.Split(detail.Get("validExchanges").String(), ",")
		exchanges = append(exchanges, detail.Get("exchange").String(), detail.Get("listingExchange").String())

		found := false
		for _, ex := range exchanges {
			if strings.EqualFold(strings.TrimSpace(ex), c.cfg.Exchange) {
				found = true
				break
			}
		}
		if !found {
			return model.Contract{}, false
		}
	}

	return model.Contract{ConID: conid, Symbol: symbol, Exchange: c.cfg.Exchange, Currency: currency}, true
}

// call performs one bounded request and parses the JSON body. Transport failures,
// timeouts and non-2xx responses become *model.GatewayError.
func (c *IBKRClient) call(ctx context.Context, op, method, path string, params map[string]string) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return gjson.Result{}, &model.GatewayError{Op: op, Err: err}
	}
	if resp.IsError() {
		return gjson.Result{}, &model.GatewayError{
			Op:  op,
			Err: fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode(), truncate(resp.String(), 200)),
		}
	}

	body := resp.Body()
	if len(body) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &model.GatewayError{Op: op, Err: fmt.Errorf("%s %s: invalid JSON response", method, path)}
	}
	return gjson.ParseBytes(body), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
