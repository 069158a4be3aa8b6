package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "checkout-completed", cfg.CheckoutTopic)
	assert.Equal(t, 5*time.Second, cfg.PublishInterval)
}

func TestLoadPublishIntervalFromEnv(t *testing.T) {
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")

	cfg := config.Load()

	assert.Equal(t, 250*time.Millisecond, cfg.PublishInterval)
}

func TestLoadPublishIntervalIgnoresGarbage(t *testing.T) {
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	cfg := config.Load()

	assert.Equal(t, 5*time.Second, cfg.PublishInterval)
}
