package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port              string
	RedisURL          string
	KafkaBrokers      []string
	ProductTopic      string
	StockEventsTopic  string
	ReviewEventsTopic string
	ConsumerGroup     string
	JWTSecret         string
	CacheTTL          time.Duration
}

func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8082"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ProductTopic:      getEnv("PRODUCT_EVENTS_TOPIC", "product-events"),
		StockEventsTopic:  getEnv("STOCK_EVENTS_TOPIC", "stock-events"),
		ReviewEventsTopic: getEnv("REVIEW_EVENTS_TOPIC", "review-events"),
		ConsumerGroup:     getEnv("CONSUMER_GROUP", "catalog-service-group"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		CacheTTL:          time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
