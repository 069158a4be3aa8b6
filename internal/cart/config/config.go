package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port                string
	RedisURL            string
	KafkaBrokers        []string
	ProductTopic        string
	CheckoutTopic       string
	StockEventsTopic    string
	ConsumerGroup       string
	JWTSecret           string
	CatalogURL          string
	AuthURL             string
	ServiceUser         string
	ServicePassword     string
	StripeSecretKey     string
	StripeWebhookSecret string
	PublishInterval     time.Duration
	SNSTopicArn         string
}

func Load() Config {
	return Config{
		Port:                getEnv("PORT", "8083"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		KafkaBrokers:        strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ProductTopic:        getEnv("PRODUCT_EVENTS_TOPIC", "product-events"),
		CheckoutTopic:       getEnv("CHECKOUT_EVENTS_TOPIC", "checkout-completed"),
		StockEventsTopic:    getEnv("STOCK_EVENTS_TOPIC", "stock-events"),
		ConsumerGroup:       getEnv("CONSUMER_GROUP", "cart-service-group"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		CatalogURL:          getEnv("CATALOG_SERVICE_URL", "http://localhost:8082"),
		AuthURL:             getEnv("AUTH_SERVICE_URL", "http://localhost:8081"),
		ServiceUser:         getEnv("SERVICE_ACCOUNT_USER", "cart-service"),
		ServicePassword:     os.Getenv("SERVICE_ACCOUNT_PASSWORD"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PublishInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 5*time.Second),
		SNSTopicArn:         os.Getenv("SNS_TOPIC_ARN"),
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
