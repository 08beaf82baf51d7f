package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

func (c ClickHouseConfig) Enabled() bool {
	return c.Host != ""
}

type Config struct {
	Port           string
	GinMode        string
	Env            string
	FrontendOrigin string

	StorageBackend string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string

	ClickHouse    ClickHouseConfig
	GeoIPCityMMDB string

	JWTSecret    []byte
	JWTTTL       time.Duration
	APIKey       string
	CookieSecure bool

	CardCount     int
	FrameInterval time.Duration
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getenvDefault("PORT", "8080"),
		GinMode:        strings.TrimSpace(os.Getenv("GIN_MODE")),
		Env:            getenvDefault("APP_ENV", "development"),
		FrontendOrigin: getenvDefault("FE_ORIGIN", "http://localhost:3000"),
		StorageBackend: strings.ToLower(getenvDefault("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        parseIntDefault(os.Getenv("REDIS_DB"), 0),
		RedisPrefix:    getenvDefault("REDIS_PREFIX", "codingcats:"),
		ClickHouse: ClickHouseConfig{
			Host:     strings.TrimSpace(os.Getenv("CLICKHOUSE_HOST")),
			Port:     parseIntDefault(os.Getenv("CLICKHOUSE_NATIVE_PORT"), 9000),
			Database: getenvDefault("CLICKHOUSE_DB_NAME", "default"),
			Username: getenvDefault("CLICKHOUSE_USERNAME", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		},
		GeoIPCityMMDB: strings.TrimSpace(os.Getenv("GEOIP_CITY_MMDB")),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET_KEY")),
		JWTTTL:        parseDurationDefault(os.Getenv("JWT_TTL"), time.Hour),
		APIKey:        strings.TrimSpace(os.Getenv("AUTH_DEFAULT")),
		CookieSecure:  parseBoolDefault(os.Getenv("COOKIE_SECURE"), false),
		CardCount:     parseIntDefault(os.Getenv("CARD_COUNT"), 6),
		FrameInterval: parseDurationDefault(os.Getenv("FRAME_INTERVAL"), 16*time.Millisecond),
	}

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return Config{}, errors.New("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	default:
		return Config{}, errors.New("STORAGE_BACKEND must be one of memory, postgres, redis")
	}
	if cfg.DatabaseURL != "" && len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("JWT_SECRET_KEY is required when dashboard accounts are enabled")
	}
	if cfg.CardCount <= 0 {
		cfg.CardCount = 6
	}
	return cfg, nil
}

func getenvDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolDefault(value string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseIntDefault(value string, defaultValue int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationDefault(value string, defaultValue time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
