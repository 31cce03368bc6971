package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hsouza/tickerpulse/internal/domain/models"
	"github.com/hsouza/tickerpulse/internal/service"
)

func coverageFor(ticker string) models.TickerCoverage {
	return models.TickerCoverage{
		Ticker:              ticker,
		FirstDate:           "2020-01-02",
		LastDate:            "2023-01-02",
		RecordCount:         750,
		SpanDays:            1096,
		ExpectedTradingDays: 756,
		Completeness:        750.0 / 756.0,
		RecentCount:         500,
		YTDCount:            1,
		AvgOpen:             132.11,
		AvgClose:            132.45,
		MaxHigh:             182.94,
		MinLow:              53.15,
		TotalVolume:         81500000000,
		AvgVolume:           108666666.6,
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, &models.StoreSummary{
		TotalRecords: 105000,
		TickerCount:  21,
		MinDate:      "2010-01-04",
		MaxDate:      "2023-01-02",
	})

	out := buf.String()
	for _, want := range []string{
		"DATABASE SUMMARY",
		"Total Records: 105000",
		"Total Tickers: 21",
		"Date Range: 2010-01-04 to 2023-01-02",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCoverage_Batching(t *testing.T) {
	rep := &service.CoverageReport{
		Summary: models.StoreSummary{TotalRecords: 100, TickerCount: 9, MinDate: "2020-01-02", MaxDate: "2023-01-02"},
	}
	for _, ticker := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		rep.Coverages = append(rep.Coverages, coverageFor(ticker))
	}

	var buf bytes.Buffer
	RenderCoverage(&buf, rep)
	out := buf.String()

	// 9 tickers: batch 1 has 7, batch 2 has 2.
	for _, want := range []string{
		"TICKER DATA SUMMARY (BATCH 1/2)",
		"TICKER DATA SUMMARY (BATCH 2/2)",
		"TICKER RECENT DATA & PRICE STATISTICS (BATCH 1/2)",
		"TICKER RECENT DATA & PRICE STATISTICS (BATCH 2/2)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "99.2%") {
		t.Fatalf("completeness not rendered as percent:\n%s", out)
	}
	if !strings.Contains(out, "$182.94") {
		t.Fatalf("price stats not rendered:\n%s", out)
	}
}

func TestRenderCoverage_SingleBatch(t *testing.T) {
	rep := &service.CoverageReport{
		Summary:   models.StoreSummary{TotalRecords: 1, TickerCount: 1, MinDate: "2022-05-01", MaxDate: "2022-05-01"},
		Coverages: []models.TickerCoverage{coverageFor("ONLY")},
	}

	var buf bytes.Buffer
	RenderCoverage(&buf, rep)
	out := buf.String()
	if !strings.Contains(out, "(BATCH 1/1)") {
		t.Fatalf("single batch label wrong:\n%s", out)
	}
	if strings.Contains(out, "BATCH 2") {
		t.Fatalf("unexpected second batch:\n%s", out)
	}
}

func TestRenderIntegrity(t *testing.T) {
	var buf bytes.Buffer
	RenderIntegrity(&buf, nil)
	if !strings.Contains(buf.String(), "No NULL values found") {
		t.Fatalf("clean state message missing:\n%s", buf.String())
	}

	buf.Reset()
	RenderIntegrity(&buf, []models.IncompleteRecord{{Ticker: "ABC", Date: "2022-05-01", Count: 1}})
	out := buf.String()
	if !strings.Contains(out, "Found NULL values") || !strings.Contains(out, "ABC") {
		t.Fatalf("integrity listing wrong:\n%s", out)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(750.0 / 756.0); got != "99.2%" {
		t.Fatalf("want 99.2%% got %s", got)
	}
	if got := formatPercent(0); got != "0.0%" {
		t.Fatalf("want 0.0%% got %s", got)
	}
}
