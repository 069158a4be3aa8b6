package config

import (
	"os"
	"time"
)

type Config struct {
	Port      string
	JWTSecret string
	TokenTTL  time.Duration
}

func Load() Config {
	return Config{
		Port:      getEnv("PORT", "8081"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  24 * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
