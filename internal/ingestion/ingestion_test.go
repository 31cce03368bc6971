package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/hsouza/tickerpulse/internal/domain/models"
	"github.com/hsouza/tickerpulse/internal/storage"
)

type fakeFetcher struct {
	// failing tickers return an error instead of records
	failing map[string]bool
	calls   []string
}

func (f *fakeFetcher) DailyTimeSeries(_ context.Context, symbol, _ string) ([]models.PriceRecord, error) {
	f.calls = append(f.calls, symbol)
	if f.failing[symbol] {
		return nil, errors.New("simulated fetch failure")
	}
	return []models.PriceRecord{
		{Ticker: symbol, Date: "2023-01-03", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Ticker: symbol, Date: "2023-01-04", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 200},
	}, nil
}

type fakeRepo struct {
	storage.PriceRepository
	upserts   [][]models.PriceRecord
	upsertErr error
}

func (r *fakeRepo) UpsertPricesBatch(records []models.PriceRecord) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts = append(r.upserts, records)
	return nil
}

func withFakeRepo(t *testing.T, repo storage.PriceRepository) {
	t.Helper()
	orig := repoCtor
	repoCtor = func(*sql.DB) storage.PriceRepository { return repo }
	t.Cleanup(func() { repoCtor = orig })
}

func TestRun_AllTickersSucceed(t *testing.T) {
	repo := &fakeRepo{}
	withFakeRepo(t, repo)
	fetcher := &fakeFetcher{}

	res, err := Run(context.Background(), nil, []string{"AAPL", "MSFT"}, "compact", fetcher)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Fetched != 2 || res.Skipped != 0 || res.Upserted != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(repo.upserts) != 2 {
		t.Fatalf("want 2 upsert batches, got %d", len(repo.upserts))
	}
}

func TestRun_FetchFailureSkipsTicker(t *testing.T) {
	repo := &fakeRepo{}
	withFakeRepo(t, repo)
	fetcher := &fakeFetcher{failing: map[string]bool{"MSFT": true}}

	res, err := Run(context.Background(), nil, []string{"AAPL", "MSFT", "NVDA"}, "full", fetcher)
	if err != nil {
		t.Fatalf("one bad ticker must not abort the run: %v", err)
	}
	if res.Fetched != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// The failing ticker was attempted, and the ones after it still ran.
	if len(fetcher.calls) != 3 || fetcher.calls[2] != "NVDA" {
		t.Fatalf("unexpected fetch calls: %v", fetcher.calls)
	}
}

func TestRun_StoreFailureAborts(t *testing.T) {
	repo := &fakeRepo{upsertErr: errors.New("connection lost")}
	withFakeRepo(t, repo)
	fetcher := &fakeFetcher{}

	_, err := Run(context.Background(), nil, []string{"AAPL", "MSFT"}, "compact", fetcher)
	if err == nil {
		t.Fatalf("store failure must abort the run")
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("run should stop at the first store failure, calls=%v", fetcher.calls)
	}
}

func TestRun_NoTickers(t *testing.T) {
	withFakeRepo(t, &fakeRepo{})
	if _, err := Run(context.Background(), nil, nil, "compact", &fakeFetcher{}); err == nil {
		t.Fatalf("expected error for empty ticker list")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	repo := &fakeRepo{}
	withFakeRepo(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, nil, []string{"AAPL"}, "compact", &fakeFetcher{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if len(repo.upserts) != 0 {
		t.Fatalf("no writes expected after cancellation")
	}
}
