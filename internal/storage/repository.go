package storage

import (
	"database/sql"
	"fmt"

	"github.com/hsouza/tickerpulse/internal/domain/models"
)

// PriceRepository defines the contract for DB operations over the ohlcv table.
//
// Read side: ticker enumeration, per-ticker rows ordered by date, store-wide
// counts and date range, and the null-field integrity scan. Write side:
// batched upsert of fetched records and delete-by-ticker.
type PriceRepository interface {
	UpsertPricesBatch(records []models.PriceRecord) error
	ListTickers() ([]string, error)
	ListByTicker(ticker string) ([]models.PriceRecord, error)
	CountAll() (int64, error)
	GlobalDateRange() (minDate string, maxDate string, err error)
	FindIncompleteRecords() ([]models.IncompleteRecord, error)
	DeleteTicker(ticker string) (int64, error)
}

type priceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

// UpsertPricesBatch inserts records in a single transaction, replacing the
// OHLCV values on (ticker, date) conflicts. Refetching a ticker therefore
// never produces duplicate rows.
func (r *priceRepository) UpsertPricesBatch(records []models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ohlcv (ticker, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, date)
		DO UPDATE SET open = EXCLUDED.open,
					  high = EXCLUDED.high,
					  low = EXCLUDED.low,
					  close = EXCLUDED.close,
					  volume = EXCLUDED.volume
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Ticker, rec.Date, rec.Open, rec.High, rec.Low, rec.Close, rec.Volume); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s %s: %w", rec.Ticker, rec.Date, err)
		}
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close upsert stmt: %w", err)
	}
	return tx.Commit()
}

// ListTickers returns the distinct tickers present in the store, ordered.
func (r *priceRepository) ListTickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT ticker FROM ohlcv ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	return tickers, nil
}

// ListByTicker returns all records for a ticker ordered by date ascending.
// Dates are TEXT in ISO 8601 form, so the ORDER BY is calendar order.
func (r *priceRepository) ListByTicker(ticker string) ([]models.PriceRecord, error) {
	rows, err := r.db.Query(`
		SELECT ticker, date, open, high, low, close, volume
		FROM ohlcv
		WHERE ticker = $1
		ORDER BY date ASC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", ticker, err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.PriceRecord
	for rows.Next() {
		var rec models.PriceRecord
		if err := rows.Scan(&rec.Ticker, &rec.Date, &rec.Open, &rec.High, &rec.Low, &rec.Close, &rec.Volume); err != nil {
			return nil, fmt.Errorf("scan record for %s: %w", ticker, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records for %s: %w", ticker, err)
	}
	return records, nil
}

func (r *priceRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM ohlcv`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// GlobalDateRange returns the min and max date across the whole store.
// Both come back empty (with no error) when the store has zero rows.
func (r *priceRepository) GlobalDateRange() (string, string, error) {
	var minDate, maxDate sql.NullString
	err := r.db.QueryRow(`SELECT MIN(date), MAX(date) FROM ohlcv`).Scan(&minDate, &maxDate)
	if err != nil {
		return "", "", fmt.Errorf("global date range: %w", err)
	}
	return minDate.String, maxDate.String, nil
}

// FindIncompleteRecords scans for rows where any required column is NULL and
// reports them grouped by (ticker, date). An empty result is the clean state.
func (r *priceRepository) FindIncompleteRecords() ([]models.IncompleteRecord, error) {
	rows, err := r.db.Query(`
		SELECT ticker, date, COUNT(*) AS count
		FROM ohlcv
		WHERE ticker IS NULL OR date IS NULL OR open IS NULL
		   OR high IS NULL OR low IS NULL OR close IS NULL OR volume IS NULL
		GROUP BY ticker, date
		ORDER BY ticker, date
	`)
	if err != nil {
		return nil, fmt.Errorf("scan for incomplete records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	incomplete := []models.IncompleteRecord{}
	for rows.Next() {
		var ticker, date sql.NullString
		var count int
		if err := rows.Scan(&ticker, &date, &count); err != nil {
			return nil, fmt.Errorf("scan incomplete record: %w", err)
		}
		incomplete = append(incomplete, models.IncompleteRecord{
			Ticker: ticker.String,
			Date:   date.String,
			Count:  count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan for incomplete records: %w", err)
	}
	return incomplete, nil
}

// DeleteTicker removes every record for the ticker and returns how many rows
// were actually removed, computed as count-before minus count-after inside
// one transaction so the verification query reflects exactly this delete.
//
// Deleting a ticker with no records returns 0 and is not an error.
func (r *priceRepository) DeleteTicker(ticker string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin delete tx for %s: %w", ticker, err)
	}

	var before, after int64
	if err := tx.QueryRow(`SELECT COUNT(*) FROM ohlcv WHERE ticker = $1`, ticker).Scan(&before); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("count before delete for %s: %w", ticker, err)
	}

	if _, err := tx.Exec(`DELETE FROM ohlcv WHERE ticker = $1`, ticker); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete records for %s: %w", ticker, err)
	}

	if err := tx.QueryRow(`SELECT COUNT(*) FROM ohlcv WHERE ticker = $1`, ticker).Scan(&after); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("count after delete for %s: %w", ticker, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete tx for %s: %w", ticker, err)
	}
	return before - after, nil
}
