package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hsouza/tickerpulse/internal/domain/models"
)

// The engine is a pure read-and-compute layer: it owns no data, performs no
// I/O, and is deterministic given identical records and the same reference
// clock. Callers fetch rows from the store first and hand them in.

var (
	// ErrEmptyInput is returned when coverage is requested for a ticker
	// with zero records; first/last dates and ratios are meaningless then.
	ErrEmptyInput = errors.New("metrics: no records for ticker")

	// ErrEmptyStore is returned when a summary is requested over a store
	// that holds no tickers at all.
	ErrEmptyStore = errors.New("metrics: store has no records")
)

const (
	dateLayout = "2006-01-02"

	// Markets are open roughly 252 days per 365-day year; the completeness
	// estimate is built on that approximation.
	tradingDaysPerYear = 252.0

	// Recent window: 3x365 days, deliberately not leap-aware.
	recentWindowDays = 1095
)

// Coverage computes the full set of coverage and quality metrics for one
// ticker from its records. The records need not be sorted; dates are
// compared as ISO 8601 strings, which order identically to calendar dates.
//
// now is the reference clock for the recent and year-to-date windows; it is
// injected rather than read from the system so results are reproducible.
//
// Completeness policy: when ExpectedTradingDays is 0 (single-day history)
// the ratio is reported as 0 rather than an error or NaN.
func Coverage(ticker string, records []models.PriceRecord, now time.Time) (*models.TickerCoverage, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, ticker)
	}

	first, last := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date < first {
			first = r.Date
		}
		if r.Date > last {
			last = r.Date
		}
	}

	spanDays, err := daysBetween(first, last)
	if err != nil {
		return nil, fmt.Errorf("coverage for %s: %w", ticker, err)
	}

	expected := int(math.Floor(float64(spanDays) / 365.0 * tradingDaysPerYear))
	completeness := 0.0
	if expected > 0 {
		completeness = float64(len(records)) / float64(expected)
	}

	recentFloor := now.AddDate(0, 0, -recentWindowDays).Format(dateLayout)
	ytdFloor := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)

	cov := &models.TickerCoverage{
		Ticker:              ticker,
		FirstDate:           first,
		LastDate:            last,
		RecordCount:         len(records),
		SpanDays:            spanDays,
		ExpectedTradingDays: expected,
		Completeness:        completeness,
		MaxHigh:             records[0].High,
		MinLow:              records[0].Low,
	}

	var sumOpen, sumClose float64
	for _, r := range records {
		sumOpen += r.Open
		sumClose += r.Close
		if r.High > cov.MaxHigh {
			cov.MaxHigh = r.High
		}
		if r.Low < cov.MinLow {
			cov.MinLow = r.Low
		}
		cov.TotalVolume += r.Volume
		if r.Date >= recentFloor {
			cov.RecentCount++
		}
		if r.Date >= ytdFloor {
			cov.YTDCount++
		}
	}
	n := float64(len(records))
	cov.AvgOpen = sumOpen / n
	cov.AvgClose = sumClose / n
	cov.AvgVolume = float64(cov.TotalVolume) / n

	return cov, nil
}

// Summary aggregates across all tickers: total row count, distinct ticker
// count, and the global min/max date over the entire store.
func Summary(recordsByTicker map[string][]models.PriceRecord) (*models.StoreSummary, error) {
	if len(recordsByTicker) == 0 {
		return nil, ErrEmptyStore
	}

	sum := &models.StoreSummary{TickerCount: len(recordsByTicker)}
	for _, records := range recordsByTicker {
		for _, r := range records {
			sum.TotalRecords++
			if sum.MinDate == "" || r.Date < sum.MinDate {
				sum.MinDate = r.Date
			}
			if r.Date > sum.MaxDate {
				sum.MaxDate = r.Date
			}
		}
	}
	return sum, nil
}

// Incomplete scans raw rows for missing required fields and reports them
// grouped by (ticker, date). An empty result means every row has all seven
// fields populated; that is the clean state, not an error.
//
// The scan never mutates its input.
func Incomplete(rows []models.RawPriceRow) []models.IncompleteRecord {
	type key struct{ ticker, date string }

	counts := make(map[key]int)
	var order []key
	for _, row := range rows {
		if row.Ticker.Valid && row.Date.Valid && row.Open.Valid && row.High.Valid &&
			row.Low.Valid && row.Close.Valid && row.Volume.Valid {
			continue
		}
		k := key{row.Ticker.String, row.Date.String}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].ticker != order[j].ticker {
			return order[i].ticker < order[j].ticker
		}
		return order[i].date < order[j].date
	})

	out := make([]models.IncompleteRecord, 0, len(order))
	for _, k := range order {
		out = append(out, models.IncompleteRecord{Ticker: k.ticker, Date: k.date, Count: counts[k]})
	}
	return out
}

// daysBetween returns the integer day difference between two ISO dates.
// Endpoints are not counted inclusively: identical dates yield 0.
func daysBetween(first, last string) (int, error) {
	start, err := time.Parse(dateLayout, first)
	if err != nil {
		return 0, fmt.Errorf("parse first date %q: %w", first, err)
	}
	end, err := time.Parse(dateLayout, last)
	if err != nil {
		return 0, fmt.Errorf("parse last date %q: %w", last, err)
	}
	return int(end.Sub(start).Hours() / 24), nil
}
