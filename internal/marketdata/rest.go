package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

const defaultBaseURL = "https://api.binance.com"

// RestClient fetches klines from a Binance-compatible REST endpoint.
type RestClient struct {
	baseURL string
	client  *http.Client
}

// RestOption configures a RestClient.
type RestOption func(*RestClient)

// WithBaseURL overrides the kline endpoint base URL.
func WithBaseURL(url string) RestOption {
	return func(c *RestClient) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) RestOption {
	return func(c *RestClient) { c.client = hc }
}

// NewRestClient creates a new REST market data client.
func NewRestClient(opts ...RestOption) *RestClient {
	c := &RestClient{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bars fetches up to limit bars for the symbol, ascending by timestamp.
func (c *RestClient) Bars(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 500
	}

	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		c.baseURL, symbol, Interval(timeframe), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewDataError("rest", symbol, "building request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewDataError("rest", symbol, "fetching klines", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewDataError("rest", symbol,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var rows [][]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, apperrors.NewDataError("rest", symbol, "decoding klines", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewDataError("rest", symbol, "empty kline response", nil)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: time.UnixMilli(toInt64(row[0])).UTC(),
			Open:      toFloat(row[1]),
			High:      toFloat(row[2]),
			Low:       toFloat(row[3]),
			Close:     toFloat(row[4]),
			Volume:    int64(toFloat(row[5])),
		})
	}
	if len(candles) == 0 {
		return nil, apperrors.NewDataError("rest", symbol, "no parseable bars", nil)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	return candles, nil
}

// Interval maps a configuration timeframe to the exchange interval format.
func Interval(timeframe string) string {
	switch timeframe {
	case "1m", "5m", "15m", "30m", "1h", "4h", "1d":
		return timeframe
	default:
		return "1h"
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case float64:
		return x
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}
