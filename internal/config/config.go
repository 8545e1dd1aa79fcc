// Package config loads the server settings from the environment. An optional
// .env file is read first; variables already set in the environment win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Database drivers understood by DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Config holds every setting the server reads at startup.
type Config struct {
	ListenAddr string
	LogLevel   logrus.Level
	LogJSON    bool
	JWTSecret  string
	TokenTTL   time.Duration

	RedisAddr     string // empty disables the Redis store
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	NATSURL string // empty disables notifications

	// WSOrigins are the host patterns allowed to open the websocket from a
	// browser on another origin. Same-origin requests are always allowed.
	WSOrigins []string

	Rules engine.HouseRules
}

// Load reads an optional env file and then the environment. With no files
// given it tries ".env" in the working directory.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnv("SQLITE_PATH", "rummikube.db"),
		NATSURL:       os.Getenv("NATS_URL"),
		WSOrigins:     getList("WS_ORIGINS"),
		Rules:         engine.DefaultHouseRules(),
	}

	var err error
	if cfg.LogLevel, err = logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch format := strings.ToLower(getEnv("LOG_FORMAT", "text")); format {
	case "text":
	case "json":
		cfg.LogJSON = true
	default:
		return nil, fmt.Errorf("LOG_FORMAT: unknown format %q", format)
	}

	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverNone:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER: unknown driver %q", cfg.DBDriver)
	}

	if cfg.Rules.OpeningThreshold, err = getInt("OPENING_THRESHOLD", cfg.Rules.OpeningThreshold); err != nil {
		return nil, err
	}
	if cfg.Rules.OpeningThreshold < 0 {
		return nil, fmt.Errorf("OPENING_THRESHOLD must not be negative")
	}
	if cfg.Rules.RunColorRule, err = engine.ParseRunColorRule(strings.ToLower(os.Getenv("RUN_COLOR_RULE"))); err != nil {
		return nil, fmt.Errorf("RUN_COLOR_RULE: %w", err)
	}
	if cfg.Rules.BoardCheck, err = engine.ParseBoardCheck(strings.ToLower(os.Getenv("BOARD_CHECK"))); err != nil {
		return nil, fmt.Errorf("BOARD_CHECK: %w", err)
	}
	return cfg, nil
}

// ConfigureLogger applies the level and format to logger.
func (c *Config) ConfigureLogger(logger *logrus.Logger) {
	logger.SetLevel(c.LogLevel)
	if c.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// getList splits a comma separated variable, dropping empty items.
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
