package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	FaceitAPIKey string
	DBPath       string
	ServerPort   string
	LogLevel     string

	// Leaderboard scan window.
	Region             string
	LeaderboardMaxRank int
	LeaderboardPage    int

	ScrapeInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		FaceitAPIKey:       getEnv("FACEIT_API_KEY", ""),
		DBPath:             getEnv("DB_PATH", "cs2tracker.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Region:             getEnv("REGION", "EU"),
		LeaderboardMaxRank: getEnvInt("LEADERBOARD_MAX_RANK", 100),
		LeaderboardPage:    getEnvInt("LEADERBOARD_PAGE_SIZE", 50),
		ScrapeInterval:     getEnvDuration("SCRAPE_INTERVAL", 6*time.Hour),
	}

	if cfg.FaceitAPIKey == "" {
		return nil, fmt.Errorf("FACEIT_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("region", cfg.Region).
		Int("leaderboard_max_rank", cfg.LeaderboardMaxRank).
		Int("leaderboard_page_size", cfg.LeaderboardPage).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
