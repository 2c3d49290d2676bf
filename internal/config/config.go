package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is used when KEEPA_API_KEY is unset. Every Keepa call
// made with it fails authentication.
const PlaceholderAPIKey = "YOUR_API_KEY"

// MaxKeywordTokens is the number of title tokens the product finder accepts.
const MaxKeywordTokens = 50

type Config struct {
	Keepa     KeepaConfig
	Arbitrage ArbitrageConfig
	Output    OutputConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logging   LoggingConfig
}

type KeepaConfig struct {
	APIKey  string
	BaseURL string
}

type ArbitrageConfig struct {
	Keyword     string
	MaxProducts int
	PriceSpread float64
	Markup      float64
}

type OutputConfig struct {
	Dir string
}

// DatabaseConfig enables the Postgres history sink when URL is set.
type DatabaseConfig struct {
	URL string
}

// RedisConfig enables the stream publisher when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := &Config{
		Keepa: KeepaConfig{
			APIKey:  getEnv("KEEPA_API_KEY", PlaceholderAPIKey),
			BaseURL: getEnv("KEEPA_BASE_URL", "https://api.keepa.com"),
		},
		Arbitrage: ArbitrageConfig{
			Keyword:     getEnv("ARBITRAGE_KEYWORD", "Weber"),
			MaxProducts: getEnvInt("ARBITRAGE_MAX_PRODUCTS", 500),
			PriceSpread: getEnvFloat("ARBITRAGE_PRICE_SPREAD", 5),
			Markup:      getEnvFloat("ARBITRAGE_MARKUP", 1.2),
		},
		Output: OutputConfig{
			Dir: getEnv("ARBITRAGE_OUTPUT_DIR", "."),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Stream:   getEnv("REDIS_STREAM", "stream:price_arbitrage"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	tokens := strings.Fields(c.Arbitrage.Keyword)
	if len(tokens) == 0 {
		return fmt.Errorf("ARBITRAGE_KEYWORD is required")
	}

	if len(tokens) > MaxKeywordTokens {
		return fmt.Errorf("ARBITRAGE_KEYWORD supports at most %d keywords, got %d", MaxKeywordTokens, len(tokens))
	}

	if c.Arbitrage.MaxProducts < 1 {
		return fmt.Errorf("ARBITRAGE_MAX_PRODUCTS must be at least 1")
	}

	if math.IsNaN(c.Arbitrage.PriceSpread) || math.IsInf(c.Arbitrage.PriceSpread, 0) {
		return fmt.Errorf("ARBITRAGE_PRICE_SPREAD must be a finite number")
	}

	if c.Arbitrage.PriceSpread < 0 {
		return fmt.Errorf("ARBITRAGE_PRICE_SPREAD cannot be negative")
	}

	if math.IsNaN(c.Arbitrage.Markup) || math.IsInf(c.Arbitrage.Markup, 0) {
		return fmt.Errorf("ARBITRAGE_MARKUP must be a finite number")
	}

	if c.Arbitrage.Markup <= 0 {
		return fmt.Errorf("ARBITRAGE_MARKUP must be positive")
	}

	if c.Keepa.BaseURL == "" {
		return fmt.Errorf("KEEPA_BASE_URL is required")
	}

	return nil
}

// HasPlaceholderKey reports whether no real API key was configured.
func (c *Config) HasPlaceholderKey() bool {
	return c.Keepa.APIKey == PlaceholderAPIKey
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
