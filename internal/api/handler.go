package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hsouza/tickerpulse/internal/domain/dto"
	"github.com/hsouza/tickerpulse/internal/metrics"
	"github.com/hsouza/tickerpulse/internal/service"
)

// Handler provides HTTP handlers for the coverage reporting endpoints.
//
// Responsibilities:
//   - Validate incoming path parameters
//   - Call the reporting service
//   - Translate service results and sentinel errors into response DTOs
//     with appropriate HTTP status codes
type Handler struct {
	svc service.ReportService

	// now is the reference clock for coverage windows; overridable in tests.
	now func() time.Time
}

// NewHandler constructs a Handler around the given reporting service.
func NewHandler(svc service.ReportService) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// GetCoverageList handles GET /api/v1/coverage.
//
// Responses:
//   - 200 OK: store summary plus coverage metrics for every ticker.
//   - 404 Not Found: the store holds no tickers.
//   - 500 Internal Server Error: store access failure.
func (h *Handler) GetCoverageList(c *gin.Context) {
	now := h.now()
	rep, err := h.svc.FullReport(c.Request.Context(), now)
	if err != nil {
		if errors.Is(err, metrics.ErrEmptyStore) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("store has no records", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to compute coverage report", err))
		return
	}

	c.JSON(http.StatusOK, dto.CoverageListResponse{
		AsOf:      now.Format("2006-01-02"),
		Summary:   rep.Summary,
		Coverages: rep.Coverages,
	})
}

// GetCoverage handles GET /api/v1/coverage/:ticker.
//
// Responses:
//   - 200 OK: coverage metrics for the ticker.
//   - 400 Bad Request: blank ticker.
//   - 404 Not Found: the ticker has no records.
//   - 500 Internal Server Error: store access failure.
func (h *Handler) GetCoverage(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}

	now := h.now()
	cov, err := h.svc.TickerCoverage(c.Request.Context(), ticker, now)
	if err != nil {
		if errors.Is(err, metrics.ErrEmptyInput) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("no records for ticker", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to compute coverage", err))
		return
	}

	c.JSON(http.StatusOK, dto.CoverageResponse{
		AsOf:     now.Format("2006-01-02"),
		Coverage: *cov,
	})
}

// GetSummary handles GET /api/v1/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		if errors.Is(err, metrics.ErrEmptyStore) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("store has no records", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to compute summary", err))
		return
	}
	c.JSON(http.StatusOK, sum)
}

// GetIntegrity handles GET /api/v1/integrity. An empty incomplete list is
// the clean state and still a 200.
func (h *Handler) GetIntegrity(c *gin.Context) {
	incomplete, err := h.svc.Integrity(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("integrity check failed", err))
		return
	}
	c.JSON(http.StatusOK, dto.IntegrityResponse{
		Clean:      len(incomplete) == 0,
		Incomplete: incomplete,
	})
}

// DeleteTicker handles DELETE /api/v1/tickers/:ticker. Deleting an absent
// ticker reports a zero count, not an error.
func (h *Handler) DeleteTicker(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}

	deleted, err := h.svc.RemoveTicker(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to delete ticker", err))
		return
	}
	c.JSON(http.StatusOK, dto.DeleteTickerResponse{Ticker: ticker, DeletedCount: deleted})
}
