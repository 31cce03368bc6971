package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hsouza/tickerpulse/config"
	"github.com/hsouza/tickerpulse/internal/app"
	"github.com/hsouza/tickerpulse/internal/fetch"
	"github.com/hsouza/tickerpulse/internal/ingestion"
	"github.com/hsouza/tickerpulse/internal/logger"
	"github.com/hsouza/tickerpulse/internal/report"
	"github.com/hsouza/tickerpulse/internal/service"
	"github.com/hsouza/tickerpulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up
// resources when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the tickerpulse application.
//
// Modes (selected via --mode flag):
//   - fetch:     Fetch daily series for the configured tickers and upsert
//     them into the ohlcv table.
//   - report:    Print the full per-ticker coverage report.
//   - stats:     Print the store-wide summary block.
//   - integrity: Scan for rows with missing required fields.
//   - clean:     Delete one ticker (--ticker), then re-check integrity and
//     print the summary.
//   - api:       Start the REST API exposing the reporting operations.
//
// Flags:
//   - --mode:       Execution mode. Default: "report".
//   - --ticker:     Ticker for clean mode.
//   - --tickers:    Comma-separated ticker list overriding TICKERS for fetch mode.
//   - --outputsize: "compact" (last 100 points) or "full". Default: "compact".
//   - --port:       Port for API mode. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.L().Fatal().Err(err).Msg("config load error")
	}

	logger.Init()

	mode := flag.String("mode", "report", "Mode: fetch, report, stats, integrity, clean or api")
	ticker := flag.String("ticker", "", "Ticker to delete in clean mode")
	tickers := flag.String("tickers", "", "Comma-separated tickers for fetch mode (overrides TICKERS)")
	outputsize := flag.String("outputsize", "compact", "Alpha Vantage outputsize: compact or full")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()

	if *mode == "api" {
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)
		return
	}

	// Every other mode talks to the store directly.
	db, err := app.InitPostgres(cfg)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("db connect error")
	}
	defer func() { _ = db.Close() }()

	svc := service.NewReportService(storage.NewPriceRepository(db))

	switch *mode {
	case "fetch":
		list := cfg.Tickers
		if *tickers != "" {
			list = splitFlag(*tickers)
		}

		client, err := fetch.NewClient(cfg.AlphaVantage, cfg.RawDir, logger.L())
		if err != nil {
			logger.L().Fatal().Err(err).Msg("fetch client init error")
		}

		res, err := ingestion.Run(ctx, db, list, *outputsize, client)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		if res.Skipped > 0 {
			logger.L().Warn().Int("skipped", res.Skipped).Msg("some tickers were skipped")
		}

	case "report":
		rep, err := svc.FullReport(ctx, time.Now())
		if err != nil {
			logger.L().Fatal().Err(err).Msg("coverage report failed")
		}
		report.RenderCoverage(os.Stdout, rep)

	case "stats":
		sum, err := svc.Summary(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("summary failed")
		}
		report.RenderSummary(os.Stdout, sum)

	case "integrity":
		incomplete, err := svc.Integrity(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("integrity check failed")
		}
		report.RenderIntegrity(os.Stdout, incomplete)

	case "clean":
		if *ticker == "" {
			logger.L().Fatal().Msg("clean mode requires --ticker")
		}
		target := strings.ToUpper(strings.TrimSpace(*ticker))

		deleted, err := svc.RemoveTicker(ctx, target)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("ticker removal failed")
		}
		logger.L().Info().Str("ticker", target).Int64("deleted", deleted).Msg("ticker removed")

		incomplete, err := svc.Integrity(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("post-clean integrity check failed")
		}
		report.RenderIntegrity(os.Stdout, incomplete)

		sum, err := svc.Summary(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("post-clean summary failed")
		}
		report.RenderSummary(os.Stdout, sum)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

func splitFlag(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToUpper(strings.TrimSpace(p)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
