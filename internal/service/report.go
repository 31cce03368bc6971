package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hsouza/tickerpulse/internal/domain/models"
	"github.com/hsouza/tickerpulse/internal/metrics"
	"github.com/hsouza/tickerpulse/internal/storage"
)

// CoverageReport bundles the store-wide summary with the per-ticker coverage
// metrics, computed from one read of the store.
type CoverageReport struct {
	Summary   models.StoreSummary
	Coverages []models.TickerCoverage
}

// ReportService exposes the reporting and cleanup operations. It fetches
// rows from the repository and hands them to the metrics engine; the engine
// itself never touches the store.
//
// All figures are point-in-time snapshots: concurrent external writers make
// them stale, never wrong at the time they were read.
type ReportService interface {
	FullReport(ctx context.Context, now time.Time) (*CoverageReport, error)
	TickerCoverage(ctx context.Context, ticker string, now time.Time) (*models.TickerCoverage, error)
	Summary(ctx context.Context) (*models.StoreSummary, error)
	Integrity(ctx context.Context) ([]models.IncompleteRecord, error)
	RemoveTicker(ctx context.Context, ticker string) (int64, error)
}

type reportService struct {
	repo storage.PriceRepository
}

func NewReportService(repo storage.PriceRepository) ReportService {
	return &reportService{repo: repo}
}

// FullReport loads every ticker's records once and derives both the global
// summary and the per-ticker coverage metrics from that single snapshot.
// Returns metrics.ErrEmptyStore when the store holds no tickers.
func (s *reportService) FullReport(ctx context.Context, now time.Time) (*CoverageReport, error) {
	tickers, err := s.repo.ListTickers()
	if err != nil {
		return nil, fmt.Errorf("coverage report: %w", err)
	}

	byTicker := make(map[string][]models.PriceRecord, len(tickers))
	coverages := make([]models.TickerCoverage, 0, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := s.repo.ListByTicker(ticker)
		if err != nil {
			return nil, fmt.Errorf("coverage report: %w", err)
		}
		cov, err := metrics.Coverage(ticker, records, now)
		if err != nil {
			return nil, fmt.Errorf("coverage report: %w", err)
		}
		byTicker[ticker] = records
		coverages = append(coverages, *cov)
	}

	summary, err := metrics.Summary(byTicker)
	if err != nil {
		return nil, err
	}
	return &CoverageReport{Summary: *summary, Coverages: coverages}, nil
}

// TickerCoverage computes coverage for one ticker. A ticker absent from the
// store surfaces as metrics.ErrEmptyInput.
func (s *reportService) TickerCoverage(ctx context.Context, ticker string, now time.Time) (*models.TickerCoverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByTicker(ticker)
	if err != nil {
		return nil, fmt.Errorf("coverage for %s: %w", ticker, err)
	}
	return metrics.Coverage(ticker, records, now)
}

// Summary answers the cheap store-wide questions straight from SQL
// aggregates, without loading any rows.
func (s *reportService) Summary(ctx context.Context) (*models.StoreSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tickers, err := s.repo.ListTickers()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	if len(tickers) == 0 {
		return nil, metrics.ErrEmptyStore
	}
	total, err := s.repo.CountAll()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	minDate, maxDate, err := s.repo.GlobalDateRange()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &models.StoreSummary{
		TotalRecords: total,
		TickerCount:  len(tickers),
		MinDate:      minDate,
		MaxDate:      maxDate,
	}, nil
}

// Integrity reports rows with missing required fields, grouped by
// (ticker, date). An empty result is the clean state.
func (s *reportService) Integrity(ctx context.Context) ([]models.IncompleteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	incomplete, err := s.repo.FindIncompleteRecords()
	if err != nil {
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	return incomplete, nil
}

// RemoveTicker deletes every record for a ticker and returns the number of
// rows removed. Removing an absent ticker returns 0 without error.
func (s *reportService) RemoveTicker(ctx context.Context, ticker string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteTicker(ticker)
	if err != nil {
		return 0, fmt.Errorf("remove ticker %s: %w", ticker, err)
	}
	return deleted, nil
}
