package ingestion

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hsouza/tickerpulse/internal/domain/models"
	"github.com/hsouza/tickerpulse/internal/logger"
	"github.com/hsouza/tickerpulse/internal/storage"
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.PriceRepository {
	return storage.NewPriceRepository(db)
}

// PriceFetcher is the slice of the fetch client the ingestion loop needs.
type PriceFetcher interface {
	DailyTimeSeries(ctx context.Context, symbol, outputsize string) ([]models.PriceRecord, error)
}

// Result summarizes one ingestion run.
type Result struct {
	Fetched  int   // tickers fetched and stored
	Skipped  int   // tickers skipped because their fetch failed
	Upserted int64 // total records written
}

// Run fetches the daily series for each ticker in order and upserts the
// records into the store.
//
// Behavior:
//   - Tickers are processed strictly one at a time; the fetch client's rate
//     limiter paces the calls.
//   - A fetch failure is logged with the ticker and cause, counted as
//     skipped, and does not abort the remaining tickers.
//   - A store failure aborts the run: continuing would report coverage
//     against a half-written table.
//
// Returns the per-run counts and the first store error, if any.
func Run(ctx context.Context, db *sql.DB, tickers []string, outputsize string, client PriceFetcher) (*Result, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}

	repo := repoCtor(db)
	res := &Result{}

	logger.L().Info().Int("tickers", len(tickers)).Str("outputsize", outputsize).Msg("ingestion start")

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		records, err := client.DailyTimeSeries(ctx, ticker, outputsize)
		if err != nil {
			logger.L().Warn().Str("ticker", ticker).Err(err).Msg("fetch failed, skipping ticker")
			res.Skipped++
			continue
		}

		if err := repo.UpsertPricesBatch(records); err != nil {
			logger.L().Error().Str("ticker", ticker).Err(err).Msg("store write failed")
			return res, fmt.Errorf("store %s: %w", ticker, err)
		}

		res.Fetched++
		res.Upserted += int64(len(records))
		logger.L().Info().Str("ticker", ticker).Int("records", len(records)).Msg("ticker stored")
	}

	logger.L().Info().
		Int("fetched", res.Fetched).
		Int("skipped", res.Skipped).
		Int64("records", res.Upserted).
		Msg("ingestion completed")

	return res, nil
}
