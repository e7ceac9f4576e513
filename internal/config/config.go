package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DatabaseURL   string
	RedisURL      string
	ClientBaseURL string
	Env           string

	JWT struct {
		Secret string
		TTL    time.Duration
	}

	CartTTL             time.Duration
	DispatchBuffer      int
	CheckoutConcurrency int
	NearbyRadiusKM      float64
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getenv("SERVER_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		ClientBaseURL: getenv("CLIENT_BASE_URL", "*"),
		Env:           getenv("APP_ENV", "development"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	var err error
	if cfg.JWT.TTL, err = durationEnv("JWT_TTL", 10*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = durationEnv("CART_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DispatchBuffer, err = intEnv("DISPATCH_BUFFER", 256); err != nil {
		return nil, err
	}
	if cfg.CheckoutConcurrency, err = intEnv("CHECKOUT_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.NearbyRadiusKM, err = floatEnv("NEARBY_RADIUS_KM", 10); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, v)
	}
	return f, nil
}
