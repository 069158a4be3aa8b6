package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port              string
	KafkaBrokers      []string
	CheckoutTopic     string
	ReviewEventsTopic string
	ConsumerGroup     string
	JWTSecret         string
	PublishInterval   time.Duration
}

func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8084"),
		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		CheckoutTopic:     getEnv("CHECKOUT_EVENTS_TOPIC", "checkout-completed"),
		ReviewEventsTopic: getEnv("REVIEW_EVENTS_TOPIC", "review-events"),
		ConsumerGroup:     getEnv("CONSUMER_GROUP", "order-service-group"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		PublishInterval:   getDurationEnv("OUTBOX_POLL_INTERVAL", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
