package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// It is built once at startup by Load() and passed explicitly to the
// components that need it; nothing reads configuration ambiently after that.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=tickerpulse
//	POSTGRES_SSLMODE=disable
//	ALPHAVANTAGE_API_KEY=demo
//	TICKERS=AAPL,MSFT,NVDA
type Config struct {
	Server       ServerConfig       // HTTP server configuration (api mode)
	Postgres     PostgresConfig     // PostgreSQL connection settings
	AlphaVantage AlphaVantageConfig // Quotes API client settings
	Tickers      []string           // Tickers to fetch in fetch mode
	RawDir       string             // Directory for raw JSON snapshots ("" disables them)
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// PostgresConfig defines connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string // computed DSN used by database/sql to connect
}

// AlphaVantageConfig holds the quotes API client settings.
//
// Fields:
//   - APIKey: API key sent as the `apikey` query parameter.
//   - BaseURL: query endpoint, e.g. "https://www.alphavantage.co/query".
//   - OutputFormat: value for the `datatype` parameter (normally "json").
//   - MaxCallsPerMinute: client-side rate limit for fetch runs.
type AlphaVantageConfig struct {
	APIKey            string
	BaseURL           string
	OutputFormat      string
	MaxCallsPerMinute int
}

// Load reads configuration from the environment (and an optional .env file)
// and returns the populated Config.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// A missing required value makes Load return an error naming every missing
// key; the process should exit rather than run partially configured.
func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tickerpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co/query")
	viper.SetDefault("ALPHAVANTAGE_OUTPUT_FORMAT", "json")
	viper.SetDefault("ALPHAVANTAGE_MAX_CALLS_PER_MINUTE", 5)

	viper.SetDefault("RAW_DIR", "")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey:            viper.GetString("ALPHAVANTAGE_API_KEY"),
			BaseURL:           viper.GetString("ALPHAVANTAGE_BASE_URL"),
			OutputFormat:      viper.GetString("ALPHAVANTAGE_OUTPUT_FORMAT"),
			MaxCallsPerMinute: viper.GetInt("ALPHAVANTAGE_MAX_CALLS_PER_MINUTE"),
		},
		Tickers: splitTickers(viper.GetString("TICKERS")),
		RawDir:  viper.GetString("RAW_DIR"),
	}

	cfg.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate ensures the required fields are present. The API key is not
// checked here: reporting modes work without it, and the fetch path refuses
// to start on its own when the key is empty.
func validate(cfg *Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if cfg.AlphaVantage.BaseURL == "" {
		missing = append(missing, "ALPHAVANTAGE_BASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitTickers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToUpper(strings.TrimSpace(p)); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}
