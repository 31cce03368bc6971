package dto

import "github.com/hsouza/tickerpulse/internal/domain/models"

// CoverageResponse is the JSON structure returned by the single-ticker
// coverage endpoint. The embedded coverage model already carries JSON tags;
// the wrapper adds the reference date the windowed counts were computed
// against.
type CoverageResponse struct {
	AsOf     string                `json:"as_of" example:"2023-01-15"`
	Coverage models.TickerCoverage `json:"coverage"`
}

// CoverageListResponse is returned by GET /api/v1/coverage: the store
// summary plus one coverage entry per ticker.
type CoverageListResponse struct {
	AsOf      string                  `json:"as_of" example:"2023-01-15"`
	Summary   models.StoreSummary     `json:"summary"`
	Coverages []models.TickerCoverage `json:"coverages"`
}

// IntegrityResponse is returned by GET /api/v1/integrity. Clean is true
// exactly when Incomplete is empty.
type IntegrityResponse struct {
	Clean      bool                      `json:"clean" example:"true"`
	Incomplete []models.IncompleteRecord `json:"incomplete"`
}

// DeleteTickerResponse is returned by DELETE /api/v1/tickers/:ticker.
type DeleteTickerResponse struct {
	Ticker       string `json:"ticker" example:"AAPL"`
	DeletedCount int64  `json:"deleted_count" example:"750"`
}
