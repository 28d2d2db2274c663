package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Cache ────────────────────────────────────────────────────────────────────

func TestCache_PutGet(t *testing.T) {
	c := NewCache[string](time.Minute)
	c.Put("dev/onramp/transak", "key-1")

	v, ok := c.Get("dev/onramp/transak")
	require.True(t, ok)
	assert.Equal(t, "key-1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[int](time.Minute)
	c.now = func() time.Time { return now }

	c.Put("k", 7)
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
}

func TestCache_BustAndCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[int](time.Minute)
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	c.Put("b", 2)
	c.Bust("a")
	assert.Equal(t, 1, c.Len())

	now = now.Add(time.Hour)
	c.cleanupExpired()
	assert.Equal(t, 0, c.Len())
}

// ─── EnvProvider ──────────────────────────────────────────────────────────────

func newTestEnvProvider(env map[string]string) *EnvProvider {
	return &EnvProvider{
		lookup: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		environ: func() []string {
			out := make([]string, 0, len(env))
			for k, v := range env {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "DEV_ONRAMP_TRANSAK", EnvVarName("dev/onramp/transak"))
	assert.Equal(t, "PROD_ONRAMP_REDIRECT_SIGNER", EnvVarName("prod/onramp/redirect-signer"))
}

func TestEnvProvider_GetSecret(t *testing.T) {
	p := newTestEnvProvider(map[string]string{
		"DEV_ONRAMP_TRANSAK": `{"api_key":"pk_test"}`,
		"DEV_ONRAMP_BROKEN":  `not-json`,
	})

	m, err := p.GetSecret(context.Background(), "dev/onramp/transak")
	require.NoError(t, err)
	assert.Equal(t, "pk_test", m["api_key"])

	_, err = p.GetSecret(context.Background(), "dev/onramp/broken")
	assert.ErrorContains(t, err, "invalid secret format")

	_, err = p.GetSecret(context.Background(), "dev/onramp/absent")
	assert.ErrorContains(t, err, "DEV_ONRAMP_ABSENT")
}

func TestEnvProvider_ListSecrets(t *testing.T) {
	p := newTestEnvProvider(map[string]string{
		"DEV_ONRAMP_TRANSAK":   `{}`,
		"DEV_ONRAMP_MTPELERIN": `{}`,
		"PATH":                 "/usr/bin",
	})

	names, err := p.ListSecrets(context.Background(), "dev/onramp/")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev/onramp/mtpelerin", "dev/onramp/transak"}, names)
}
