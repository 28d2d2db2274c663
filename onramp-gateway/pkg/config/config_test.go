package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/onramp/pkg/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVICE_NAME", "ENV", "LOG_LEVEL", "ONRAMP_PORT", "PROVIDER_TIMEOUT", "PROVIDER_RETRY_MAX",
		"GEO_FAIL_OPEN", "SIGNING_SCHEME", "SECRETS_SOURCE", "ENABLED_PROVIDERS",
		"TRANSAK_COUNTRIES", "TRANSAK_TIMEOUT", "MTPELERIN_BASE_URL", "MTPELERIN_CARD_PAYMENT", "BINANCE_COUNTRIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "onramp-gateway", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 9040, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 1, cfg.ProviderRetryMax)
	assert.False(t, cfg.GeoFailOpen, "unknown countries fail closed by default")
	assert.Equal(t, "hmac", cfg.SigningScheme)
	assert.Equal(t, "env", cfg.SecretsSource)

	require.Len(t, cfg.Providers, 3)
	assert.Equal(t, model.ProviderTransak, cfg.Providers[0].ID)
	assert.Equal(t, model.ProviderBinance, cfg.Providers[1].ID)
	assert.Equal(t, model.ProviderMtPelerin, cfg.Providers[2].ID)
	assert.Contains(t, cfg.Providers[2].Countries, "GB")
	assert.Equal(t, 5*time.Second, cfg.Providers[0].Timeout)
	assert.False(t, cfg.Providers[2].CardPayment)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLED_PROVIDERS", "mtpelerin, transak, transak, moonpay")
	t.Setenv("TRANSAK_COUNTRIES", "gb,us")
	t.Setenv("TRANSAK_TIMEOUT", "1500ms")
	t.Setenv("MTPELERIN_BASE_URL", "http://localhost:9999/")
	t.Setenv("MTPELERIN_CARD_PAYMENT", "true")
	t.Setenv("PROVIDER_RETRY_MAX", "4")
	t.Setenv("GEO_FAIL_OPEN", "yes")
	t.Setenv("SIGNING_SCHEME", "ETH")

	cfg := Load()

	require.Len(t, cfg.Providers, 2, "duplicates and unknown providers dropped")
	assert.Equal(t, model.ProviderMtPelerin, cfg.Providers[0].ID)
	assert.Equal(t, "http://localhost:9999", cfg.Providers[0].BaseURL)
	assert.True(t, cfg.Providers[0].CardPayment)

	tr, ok := cfg.Provider(model.ProviderTransak)
	require.True(t, ok)
	assert.Equal(t, []string{"GB", "US"}, tr.Countries)
	assert.Equal(t, 1500*time.Millisecond, tr.Timeout)

	_, ok = cfg.Provider(model.ProviderBinance)
	assert.False(t, ok)

	assert.Equal(t, 1, cfg.ProviderRetryMax, "retry is capped at one")
	assert.True(t, cfg.GeoFailOpen)
	assert.Equal(t, "eth", cfg.SigningScheme)
}
