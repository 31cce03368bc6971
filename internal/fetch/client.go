package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hsouza/tickerpulse/config"
	"github.com/hsouza/tickerpulse/internal/domain/models"
)

// Error wraps a failed fetch with the ticker it was for. Any network error,
// non-200 status, API-reported error message, or malformed JSON body ends up
// here; the caller gets no data and may skip the ticker. No retries happen
// at this layer.
type Error struct {
	Ticker string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Ticker, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client fetches daily time series data from the Alpha Vantage query API.
//
// The client is rate limited from the configured max-calls-per-minute so a
// batch run over many tickers stays inside the API quota. Fetch runs are
// sequential; the limiter just paces them.
type Client struct {
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	cfg        config.AlphaVantageConfig
	limiter    *rate.Limiter
	rawDir     string
}

// NewClient constructs a Client from the Alpha Vantage configuration.
// rawDir, when non-empty, enables raw JSON snapshots of every successful
// fetch (one file per ticker per day).
func NewClient(cfg config.AlphaVantageConfig, rawDir string, logger *zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("alpha vantage API key is not configured")
	}

	limit := rate.Inf
	if cfg.MaxCallsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.MaxCallsPerMinute))
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, 1),
		rawDir:     rawDir,
	}, nil
}

// daily mirrors the per-date field object inside "Time Series (Daily)".
// All values arrive as strings.
type daily struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type timeSeriesResponse struct {
	ErrorMessage string           `json:"Error Message"`
	TimeSeries   map[string]daily `json:"Time Series (Daily)"`
}

// DailyTimeSeries fetches the daily OHLCV series for a symbol and returns it
// as records sorted by date ascending.
//
// outputsize is "compact" (last 100 data points) or "full" (entire history).
func (c *Client) DailyTimeSeries(ctx context.Context, symbol, outputsize string) ([]models.PriceRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Ticker: symbol, Err: err}
	}

	reqURL, err := c.buildURL(symbol, outputsize)
	if err != nil {
		return nil, &Error{Ticker: symbol, Err: err}
	}

	c.Logger.Info().Str("ticker", symbol).Str("outputsize", outputsize).Msg("fetching daily time series")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Ticker: symbol, Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Ticker: symbol, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Ticker: symbol, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Ticker: symbol, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var parsed timeSeriesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &Error{Ticker: symbol, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.ErrorMessage != "" {
		return nil, &Error{Ticker: symbol, Err: fmt.Errorf("api error: %s", parsed.ErrorMessage)}
	}
	if len(parsed.TimeSeries) == 0 {
		return nil, &Error{Ticker: symbol, Err: fmt.Errorf(`response has no "Time Series (Daily)" data`)}
	}

	records, err := toRecords(symbol, parsed.TimeSeries)
	if err != nil {
		return nil, &Error{Ticker: symbol, Err: err}
	}

	if c.rawDir != "" {
		if err := c.saveRaw(symbol, body); err != nil {
			// Snapshots are a debugging aid, not part of the fetch contract.
			c.Logger.Warn().Str("ticker", symbol).Err(err).Msg("raw snapshot not saved")
		}
	}

	c.Logger.Info().Str("ticker", symbol).Int("records", len(records)).Msg("fetched daily time series")
	return records, nil
}

func (c *Client) buildURL(symbol, outputsize string) (string, error) {
	parsed, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	query := parsed.Query()
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", symbol)
	query.Set("outputsize", outputsize)
	query.Set("apikey", c.cfg.APIKey)
	query.Set("datatype", c.cfg.OutputFormat)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func toRecords(symbol string, series map[string]daily) ([]models.PriceRecord, error) {
	records := make([]models.PriceRecord, 0, len(series))
	for date, d := range series {
		open, err := strconv.ParseFloat(d.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("%s open %q: %w", date, d.Open, err)
		}
		high, err := strconv.ParseFloat(d.High, 64)
		if err != nil {
			return nil, fmt.Errorf("%s high %q: %w", date, d.High, err)
		}
		low, err := strconv.ParseFloat(d.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("%s low %q: %w", date, d.Low, err)
		}
		closing, err := strconv.ParseFloat(d.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("%s close %q: %w", date, d.Close, err)
		}
		volume, err := strconv.ParseInt(d.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s volume %q: %w", date, d.Volume, err)
		}
		records = append(records, models.PriceRecord{
			Ticker: symbol,
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closing,
			Volume: volume,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

// saveRaw writes the fetched body to <rawDir>/<SYMBOL>_daily_<yyyymmdd>.json.
func (c *Client) saveRaw(symbol string, body []byte) error {
	if err := os.MkdirAll(c.rawDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_daily_%s.json", symbol, time.Now().Format("20060102"))
	return os.WriteFile(filepath.Join(c.rawDir, name), body, 0o644)
}
