package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string
	LogFile      string

	// Security settings
	JWTSecret         string
	AccessTokenExpiry time.Duration

	// Upstream quote feed
	QuoteAPIURL       string
	QuoteFetchTimeout time.Duration

	// Cache settings
	QuoteCacheTTL        time.Duration
	UserCacheTTL         time.Duration
	CacheCleanupInterval time.Duration

	// HTTP surface
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	MetricsEnabled bool
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

const minJWTSecretLength = 32

// LoadConfig loads configuration from environment variables or a .env file
// and stores it in Cfg. It terminates the process on invalid configuration.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	Cfg = cfg

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, QuoteAPI=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.QuoteAPIURL)
}

// Load builds an AppConfig from the current process environment.
func Load() (*AppConfig, error) {
	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be set and at least %d characters long", minJWTSecretLength)
	}

	cfg := &AppConfig{
		// Core
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./nepsefolio.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),

		// Security
		JWTSecret:         jwtSecret,
		AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),

		// Quotes
		QuoteAPIURL:       getEnv("QUOTE_API_URL", "https://nepse-data-api.herokuapp.com/data/todaysprice"),
		QuoteFetchTimeout: getEnvAsDuration("QUOTE_FETCH_TIMEOUT", 10*time.Second),

		// Cache
		QuoteCacheTTL:        getEnvAsDuration("QUOTE_CACHE_TTL", 30*time.Second),
		UserCacheTTL:         getEnvAsDuration("USER_CACHE_TTL", 10*time.Second),
		CacheCleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", time.Minute),

		// HTTP
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 30),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value > 0 {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList retrieves and parses a comma-separated list.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
