package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.ImageStore)
	assert.Equal(t, 3, cfg.UploadAttempts)
	assert.Equal(t, 3, cfg.DeliveryDays)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)

	fee, freeOver := cfg.Shipping()
	assert.True(t, fee.IsZero())
	assert.True(t, freeOver.IsZero())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SHIPPING_FEE", "40")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/med")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, "postgres://u:p@db:5432/med", cfg.DSN())

	fee, _ := cfg.Shipping()
	assert.True(t, fee.Equal(decimal.NewFromInt(40)))
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("image store", func(t *testing.T) {
		t.Setenv("IMAGE_STORE", "s3")
		_, err := load(viper.New())
		assert.ErrorContains(t, err, "IMAGE_STORE")
	})
	t.Run("events driver", func(t *testing.T) {
		t.Setenv("EVENTS_DRIVER", "nats")
		_, err := load(viper.New())
		assert.ErrorContains(t, err, "EVENTS_DRIVER")
	})
	t.Run("shipping fee", func(t *testing.T) {
		t.Setenv("SHIPPING_FEE", "forty")
		_, err := load(viper.New())
		assert.ErrorContains(t, err, "SHIPPING_FEE")
	})
}

func TestDSNFromParts(t *testing.T) {
	cfg := &Config{DbHost: "h", DbPort: "5432", DbUser: "u", DbPassword: "p", DbName: "n"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", cfg.DSN())
}
