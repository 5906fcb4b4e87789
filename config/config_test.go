package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookURL(t *testing.T) {
	cfg := &Config{APIDomain: "https://api.example.com", WebhookEndpoint: "wh"}
	assert.Equal(t, "https://api.example.com/api/v1/wh", cfg.WebhookURL())

	// A trailing slash on the domain must not double up
	cfg.APIDomain = "https://api.example.com/"
	assert.Equal(t, "https://api.example.com/api/v1/wh", cfg.WebhookURL())
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []uint{1, 7}}
	assert.True(t, cfg.IsAdmin(7))
	assert.False(t, cfg.IsAdmin(2))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MonthPrice)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 1, cfg.TrialDays)
	assert.Equal(t, 0.3, cfg.AffilateFee)
	assert.Equal(t, "wh", cfg.WebhookEndpoint)
	assert.Equal(t, 0, cfg.RedisDB)
}
