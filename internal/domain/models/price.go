package models

import "database/sql"

// PriceRecord represents a single daily OHLCV row in the `ohlcv` table.
//
// Dates are kept as ISO 8601 strings (YYYY-MM-DD) end to end: the table
// stores them as TEXT, so lexicographic comparison in SQL matches calendar
// order and no timezone handling is needed for day-resolution data.
//
// Uniqueness: at most one record per (Ticker, Date); enforced by the table's
// primary key.
type PriceRecord struct {
	Ticker string
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// RawPriceRow is the nullable view of an ohlcv row, used by the integrity
// checker. Every field the table requires is optional here so that rows with
// missing values can be represented instead of failing the scan.
type RawPriceRow struct {
	Ticker sql.NullString
	Date   sql.NullString
	Open   sql.NullFloat64
	High   sql.NullFloat64
	Low    sql.NullFloat64
	Close  sql.NullFloat64
	Volume sql.NullInt64
}

// TickerCoverage holds the derived per-ticker coverage and quality metrics.
//
// It is computed on demand from the stored records and never persisted; the
// figures are point-in-time snapshots and go stale as soon as new records
// are ingested.
//
// Fields:
//   - FirstDate / LastDate: min and max date present for the ticker.
//   - SpanDays: integer day difference LastDate - FirstDate (a single-day
//     history yields 0).
//   - ExpectedTradingDays: floor(SpanDays/365.0 * 252).
//   - Completeness: RecordCount / ExpectedTradingDays, 0 when
//     ExpectedTradingDays is 0.
//   - RecentCount: records dated within the last 1095 days (3x365).
//   - YTDCount: records dated on or after January 1 of the current year.
type TickerCoverage struct {
	Ticker              string  `json:"ticker" example:"AAPL"`
	FirstDate           string  `json:"first_date" example:"2020-01-02"`
	LastDate            string  `json:"last_date" example:"2023-01-02"`
	RecordCount         int     `json:"record_count" example:"750"`
	SpanDays            int     `json:"span_days" example:"1096"`
	ExpectedTradingDays int     `json:"expected_trading_days" example:"756"`
	Completeness        float64 `json:"completeness" example:"0.992"`
	RecentCount         int     `json:"recent_count" example:"500"`
	YTDCount            int     `json:"ytd_count" example:"2"`
	AvgOpen             float64 `json:"avg_open" example:"132.11"`
	AvgClose            float64 `json:"avg_close" example:"132.45"`
	MaxHigh             float64 `json:"max_high" example:"182.94"`
	MinLow              float64 `json:"min_low" example:"53.15"`
	TotalVolume         int64   `json:"total_volume" example:"81500000000"`
	AvgVolume           float64 `json:"avg_volume" example:"108666666.6"`
}

// StoreSummary aggregates across the entire store: total row count, distinct
// ticker count, and the global date range.
type StoreSummary struct {
	TotalRecords int64  `json:"total_records" example:"105000"`
	TickerCount  int    `json:"ticker_count" example:"21"`
	MinDate      string `json:"min_date" example:"2010-01-04"`
	MaxDate      string `json:"max_date" example:"2023-01-02"`
}

// IncompleteRecord identifies a (ticker, date) group of rows with one or
// more required fields missing. Count is the number of such rows in the
// group; it is greater than one only if the store holds logically
// duplicated null rows.
type IncompleteRecord struct {
	Ticker string `json:"ticker" example:"ABC"`
	Date   string `json:"date" example:"2022-05-01"`
	Count  int    `json:"count" example:"1"`
}
