package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hsouza/tickerpulse/config"
)

const sampleBody = `{
	"Meta Data": {
		"1. Information": "Daily Prices (open, high, low, close) and Volumes",
		"2. Symbol": "AAPL"
	},
	"Time Series (Daily)": {
		"2023-01-04": {
			"1. open": "126.8900",
			"2. high": "128.6557",
			"3. low": "125.0800",
			"4. close": "126.3600",
			"5. volume": "89113600"
		},
		"2023-01-03": {
			"1. open": "130.2800",
			"2. high": "130.9000",
			"3. low": "124.1700",
			"4. close": "125.0700",
			"5. volume": "112117500"
		}
	}
}`

func setupTestServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("function") != "TIME_SERIES_DAILY" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleBody))
		case "BOGUS":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Error Message": "Invalid API call."}`))
		case "GARBLED":
			_, _ = w.Write([]byte(`{"Time Series (Daily)": `))
		case "EMPTY":
			_, _ = w.Write([]byte(`{"Meta Data": {}}`))
		case "BROKEN":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(t *testing.T, baseURL, rawDir string) *Client {
	t.Helper()
	logger := zerolog.Nop()
	c, err := NewClient(config.AlphaVantageConfig{
		APIKey:            "test_key",
		BaseURL:           baseURL,
		OutputFormat:      "json",
		MaxCallsPerMinute: 0, // unlimited in tests
	}, rawDir, &logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := NewClient(config.AlphaVantageConfig{BaseURL: "http://example.com"}, "", &logger); err == nil {
		t.Fatalf("expected error for missing API key")
	}
}

func TestDailyTimeSeries_Success(t *testing.T) {
	srv := setupTestServer()
	defer srv.Close()

	c := testClient(t, srv.URL, "")
	records, err := c.DailyTimeSeries(context.Background(), "AAPL", "compact")
	if err != nil {
		t.Fatalf("DailyTimeSeries: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records got %d", len(records))
	}
	// Sorted ascending regardless of JSON map order.
	if records[0].Date != "2023-01-03" || records[1].Date != "2023-01-04" {
		t.Fatalf("records not sorted: %+v", records)
	}
	if records[0].Open != 130.28 || records[0].Volume != 112117500 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[0].Ticker != "AAPL" {
		t.Fatalf("ticker not stamped on record: %+v", records[0])
	}
}

func TestDailyTimeSeries_Failures(t *testing.T) {
	srv := setupTestServer()
	defer srv.Close()

	c := testClient(t, srv.URL, "")

	cases := []string{"BOGUS", "GARBLED", "EMPTY", "BROKEN"}
	for _, symbol := range cases {
		t.Run(symbol, func(t *testing.T) {
			records, err := c.DailyTimeSeries(context.Background(), symbol, "compact")
			if err == nil {
				t.Fatalf("expected fetch failure for %s", symbol)
			}
			if records != nil {
				t.Fatalf("failed fetch must yield no data, got %+v", records)
			}
			var fe *Error
			if !errors.As(err, &fe) || fe.Ticker != symbol {
				t.Fatalf("want *fetch.Error with ticker %s, got %v", symbol, err)
			}
		})
	}
}

func TestDailyTimeSeries_NetworkError(t *testing.T) {
	srv := setupTestServer()
	srv.Close() // closed server: every request fails at the transport

	c := testClient(t, srv.URL, "")
	_, err := c.DailyTimeSeries(context.Background(), "AAPL", "compact")
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("want *fetch.Error for network failure, got %v", err)
	}
}

func TestDailyTimeSeries_RawSnapshot(t *testing.T) {
	srv := setupTestServer()
	defer srv.Close()

	rawDir := t.TempDir()
	c := testClient(t, srv.URL, rawDir)
	if _, err := c.DailyTimeSeries(context.Background(), "AAPL", "compact"); err != nil {
		t.Fatalf("DailyTimeSeries: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(rawDir, "AAPL_daily_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("want one snapshot file, got %v (err=%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil || len(data) == 0 {
		t.Fatalf("snapshot unreadable: %v", err)
	}
}
