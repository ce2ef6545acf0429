package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName           = "WalletService"
	defaultAppEnv            = "development"
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultShutdownPeriod    = 10 * time.Second
	defaultTokenTTL          = 7 * 24 * time.Hour
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultBlacklistTTL      = time.Hour
	defaultLedgerOpTimeout   = 5 * time.Second
	defaultMaxPageSize       = 100
	defaultLoginRatePerMin   = 5
	defaultBlacklistEndpoint = "https://adjutor.lendsqr.com/v2"
)

// Config captures application runtime configuration loaded from environment
// variables, with .env support for local development.
type Config struct {
	AppName            string
	AppEnv             string
	Port               string
	LogLevel           string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	TokenTTL           time.Duration
	ShutdownPeriod     time.Duration
	IdempotencyTTL     time.Duration
	BlacklistBaseURL   string
	BlacklistAPIKey    string
	BlacklistCacheTTL  time.Duration
	LedgerOpTimeout    time.Duration
	HistoryMaxPageSize int
	LoginRatePerMin    int
}

// Load reads configuration values from the environment and populates a
// Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		BlacklistBaseURL:   getEnv("BLACKLIST_API_URL", defaultBlacklistEndpoint),
		BlacklistAPIKey:    os.Getenv("BLACKLIST_API_KEY"),
		TokenTTL:           defaultTokenTTL,
		ShutdownPeriod:     defaultShutdownPeriod,
		IdempotencyTTL:     defaultIdempotencyTTL,
		BlacklistCacheTTL:  defaultBlacklistTTL,
		LedgerOpTimeout:    defaultLedgerOpTimeout,
		HistoryMaxPageSize: defaultMaxPageSize,
		LoginRatePerMin:    defaultLoginRatePerMin,
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.BlacklistCacheTTL, err = getDuration("BLACKLIST_CACHE_TTL", cfg.BlacklistCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.LedgerOpTimeout, err = getDuration("LEDGER_OP_TIMEOUT", cfg.LedgerOpTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HistoryMaxPageSize, err = getInt("HISTORY_MAX_PAGE_SIZE", cfg.HistoryMaxPageSize); err != nil {
		return Config{}, err
	}
	if cfg.LoginRatePerMin, err = getInt("LOGIN_RATE_PER_MIN", cfg.LoginRatePerMin); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
