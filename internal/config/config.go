package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"tokopos/backend/internal/domain"
)

type Config struct {
	Port                     string
	AppEnv                   string
	LogLevel                 string
	AllowedOrigin            string
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	AutoMigrate              bool
	SeedData                 bool
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	DashboardCacheTTLSeconds int
	LowStockThreshold        int
	SaleTotalPolicy          string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		AppEnv:                   getEnv("APP_ENV", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		AllowedOrigin:            getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:              strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxOpenConns:           getPositiveInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:           getPositiveInt("DB_MAX_IDLE_CONNS", 4),
		AutoMigrate:              getBool("AUTO_MIGRATE", true),
		SeedData:                 getBool("SEED_DATA", true),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  redisDB,
		DashboardCacheTTLSeconds: getPositiveInt("DASHBOARD_CACHE_TTL_SECONDS", 30),
		LowStockThreshold:        getNonNegativeInt("LOW_STOCK_THRESHOLD", 10),
		SaleTotalPolicy:          strings.ToLower(strings.TrimSpace(getEnv("SALE_TOTAL_POLICY", domain.TotalPolicyVerify))),
	}

	return cfg
}

// Validate rejects settings that would otherwise fail later at runtime.
func (c Config) Validate() error {
	switch c.SaleTotalPolicy {
	case domain.TotalPolicyVerify, domain.TotalPolicyRecompute, domain.TotalPolicyTrust:
	default:
		return fmt.Errorf("SALE_TOTAL_POLICY must be one of verify, recompute, trust; got %q", c.SaleTotalPolicy)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getPositiveInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func getNonNegativeInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}
