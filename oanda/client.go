package oanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/torb/market"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"

	maxCount = 5000
)

// Granularity represents the time frame for candles
type Granularity string

const (
	M1  Granularity = "M1"
	M5  Granularity = "M5"
	M15 Granularity = "M15"
	M30 Granularity = "M30"
	H1  Granularity = "H1"
	H4  Granularity = "H4"
	D   Granularity = "D"
)

// PriceComponent represents the price component for candles
type PriceComponent string

const (
	MidPrice PriceComponent = "M"
	BidPrice PriceComponent = "B"
	AskPrice PriceComponent = "A"
)

// ErrNoPrice is returned when the pricing endpoint has no quote for the
// instrument.
var ErrNoPrice = errors.New("oanda: no price in response")

// APIError is a non-200 response from the REST API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oanda API error (status %d): %s", e.Status, e.Body)
}

// Client is a read-only OANDA v20 REST client. It implements market.Feed.
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
}

var _ market.Feed = (*Client)(nil)

type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// NewClient creates a new OANDA API client
func NewClient(token, accountID string, practice bool, opts ...Option) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}

	c := &Client{
		baseURL:   baseURL,
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CandlesRequest represents parameters for fetching historical candles
type CandlesRequest struct {
	Instrument  string         // e.g. "USD_JPY"
	Price       PriceComponent // default MidPrice
	Granularity Granularity    // default M15
	Count       int            // max 5000; may be paired with one of From or To
	From        *time.Time
	To          *time.Time
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool        `json:"complete"`
	Volume   int         `json:"volume"`
	Time     string      `json:"time"`
	Mid      *candleData `json:"mid,omitempty"`
	Bid      *candleData `json:"bid,omitempty"`
	Ask      *candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

type priceBucket struct {
	Price string `json:"price"`
}

type apiPrice struct {
	Instrument string        `json:"instrument"`
	Time       string        `json:"time"`
	Bids       []priceBucket `json:"bids"`
	Asks       []priceBucket `json:"asks"`
}

type pricingResponse struct {
	Prices []apiPrice `json:"prices"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Datetime-Format", "RFC3339")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetCandles fetches completed candles, oldest first. The candle still
// forming is dropped.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]market.Candle, error) {
	if req.Instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if req.Price == "" {
		req.Price = MidPrice
	}
	if req.Granularity == "" {
		req.Granularity = M15
	}

	params := url.Values{}
	params.Set("price", string(req.Price))
	params.Set("granularity", string(req.Granularity))

	if req.Count > 0 {
		if req.Count > maxCount {
			return nil, fmt.Errorf("count cannot exceed %d", maxCount)
		}
		if req.From != nil && req.To != nil {
			return nil, fmt.Errorf("count cannot be combined with both from and to")
		}
		params.Set("count", strconv.Itoa(req.Count))
	}
	if req.From != nil {
		params.Set("from", req.From.UTC().Format(time.RFC3339))
	}
	if req.To != nil {
		params.Set("to", req.To.UTC().Format(time.RFC3339))
	}

	var apiResp candlesResponse
	path := "/v3/instruments/" + url.PathEscape(req.Instrument) + "/candles"
	if err := c.get(ctx, path, params, &apiResp); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(apiResp.Candles))
	for _, ac := range apiResp.Candles {
		if !ac.Complete {
			continue
		}

		t, err := time.Parse(time.RFC3339Nano, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("parse time %s: %w", ac.Time, err)
		}

		var data *candleData
		switch req.Price {
		case BidPrice:
			data = ac.Bid
		case AskPrice:
			data = ac.Ask
		default:
			data = ac.Mid
		}
		if data == nil {
			return nil, fmt.Errorf("candle %s missing %s prices", ac.Time, req.Price)
		}

		k, err := data.candle()
		if err != nil {
			return nil, fmt.Errorf("candle %s: %w", ac.Time, err)
		}
		k.Time = t
		k.Volume = float64(ac.Volume)
		candles = append(candles, k)
	}

	return candles, nil
}

func (d *candleData) candle() (market.Candle, error) {
	var k market.Candle
	var err error
	if k.Open, err = parseFloat("open", d.O); err != nil {
		return k, err
	}
	if k.High, err = parseFloat("high", d.H); err != nil {
		return k, err
	}
	if k.Low, err = parseFloat("low", d.L); err != nil {
		return k, err
	}
	if k.Close, err = parseFloat("close", d.C); err != nil {
		return k, err
	}
	return k, nil
}

// GetHistoricalData returns the last limit completed mid candles.
func (c *Client) GetHistoricalData(ctx context.Context, instrument, timeframe string, limit int) ([]market.Candle, error) {
	return c.GetCandles(ctx, CandlesRequest{
		Instrument:  instrument,
		Price:       MidPrice,
		Granularity: Granularity(timeframe),
		Count:       limit,
	})
}

// GetPrice returns the current top of book for instrument.
func (c *Client) GetPrice(ctx context.Context, instrument string) (market.Tick, error) {
	if c.accountID == "" {
		return market.Tick{}, fmt.Errorf("account id is required for pricing")
	}

	params := url.Values{}
	params.Set("instruments", instrument)

	var resp pricingResponse
	path := "/v3/accounts/" + url.PathEscape(c.accountID) + "/pricing"
	if err := c.get(ctx, path, params, &resp); err != nil {
		return market.Tick{}, err
	}

	for _, p := range resp.Prices {
		if p.Instrument != instrument {
			continue
		}
		if len(p.Bids) == 0 || len(p.Asks) == 0 {
			return market.Tick{}, fmt.Errorf("%w: %s has an empty book", ErrNoPrice, instrument)
		}
		bid, err := parseFloat("bid", p.Bids[0].Price)
		if err != nil {
			return market.Tick{}, err
		}
		ask, err := parseFloat("ask", p.Asks[0].Price)
		if err != nil {
			return market.Tick{}, err
		}
		ts, err := time.Parse(time.RFC3339Nano, p.Time)
		if err != nil {
			return market.Tick{}, fmt.Errorf("parse time %s: %w", p.Time, err)
		}
		return market.Tick{Instrument: instrument, Time: ts, Bid: bid, Ask: ask}, nil
	}
	return market.Tick{}, fmt.Errorf("%w: %s", ErrNoPrice, instrument)
}

func parseFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s price %q: %w", field, s, err)
	}
	return f, nil
}

type untilSource struct {
	c  *Client
	to time.Time
}

// Until returns a candle source that only returns candles starting before t,
// for evaluating past days.
func (c *Client) Until(t time.Time) market.CandleSource {
	return untilSource{c: c, to: t}
}

func (s untilSource) GetHistoricalData(ctx context.Context, instrument, timeframe string, limit int) ([]market.Candle, error) {
	to := s.to
	return s.c.GetCandles(ctx, CandlesRequest{
		Instrument:  instrument,
		Price:       MidPrice,
		Granularity: Granularity(timeframe),
		Count:       limit,
		To:          &to,
	})
}
