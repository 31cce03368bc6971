package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/hsouza/tickerpulse/config"
	"github.com/hsouza/tickerpulse/internal/api"
	"github.com/hsouza/tickerpulse/internal/service"
	"github.com/hsouza/tickerpulse/internal/storage"
)

// InitializeApp sets up all application dependencies and returns a fully
// configured Gin router, a cleanup function for graceful shutdown, and any
// error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Initializes the repository layer (PriceRepository).
//   - Initializes the reporting service on top of it.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (the DB connection).
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	repo := storage.NewPriceRepository(db)
	svc := service.NewReportService(repo)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
