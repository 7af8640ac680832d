package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.True(t, cfg.Orders.DeliveryFee.Equal(decimal.NewFromInt(20)))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ORDER_DELIVERY_FEE", "35.50")
	t.Setenv("OTP_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Orders.DeliveryFee.Equal(decimal.RequireFromString("35.50")))
	assert.Equal(t, 5*time.Minute, cfg.Auth.OTPTTL)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ORDER_DELIVERY_FEE", "not-a-decimal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Orders.DeliveryFee.Equal(decimal.NewFromInt(20)))
}
