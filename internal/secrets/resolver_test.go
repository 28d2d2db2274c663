package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgsecrets "github.com/Checker-Finance/onramp/pkg/secrets"
)

type mockProvider struct {
	getFn  func(ctx context.Context, name string) (map[string]string, error)
	listFn func(ctx context.Context, prefix string) ([]string, error)
	gets   int
}

func (m *mockProvider) GetSecret(ctx context.Context, name string) (map[string]string, error) {
	m.gets++
	return m.getFn(ctx, name)
}

func (m *mockProvider) ListSecrets(ctx context.Context, prefix string) ([]string, error) {
	return m.listFn(ctx, prefix)
}

type apiKey struct{ Key string }

func parseAPIKey(m map[string]string) (apiKey, error) {
	if m["api_key"] == "" {
		return apiKey{}, errors.New("missing api_key")
	}
	return apiKey{Key: m["api_key"]}, nil
}

func newResolver(p pkgsecrets.Provider) *Resolver[apiKey] {
	return NewResolver[apiKey](zap.NewNop(), "dev", "onramp", p, pkgsecrets.NewCache[apiKey](time.Minute))
}

func TestResolver_ResolveCaches(t *testing.T) {
	var asked string
	p := &mockProvider{getFn: func(_ context.Context, name string) (map[string]string, error) {
		asked = name
		return map[string]string{"api_key": "pk_live"}, nil
	}}
	r := newResolver(p)

	got, err := r.Resolve(context.Background(), "Transak", parseAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "pk_live", got.Key)
	assert.Equal(t, "dev/onramp/transak", asked)

	_, err = r.Resolve(context.Background(), "transak", parseAPIKey)
	require.NoError(t, err)
	assert.Equal(t, 1, p.gets, "second resolve served from cache")
}

func TestResolver_ParseErrorNotCached(t *testing.T) {
	p := &mockProvider{getFn: func(context.Context, string) (map[string]string, error) {
		return map[string]string{}, nil
	}}
	r := newResolver(p)

	_, err := r.Resolve(context.Background(), "binance", parseAPIKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev/onramp/binance")

	_, _ = r.Resolve(context.Background(), "binance", parseAPIKey)
	assert.Equal(t, 2, p.gets)
}

func TestResolver_ProviderError(t *testing.T) {
	p := &mockProvider{getFn: func(context.Context, string) (map[string]string, error) {
		return nil, errors.New("access denied")
	}}
	_, err := newResolver(p).Resolve(context.Background(), "signer", parseAPIKey)
	assert.ErrorContains(t, err, "access denied")
}

func TestResolver_Discover(t *testing.T) {
	p := &mockProvider{listFn: func(_ context.Context, prefix string) ([]string, error) {
		assert.Equal(t, "dev/onramp/", prefix)
		return []string{"dev/onramp/transak", "dev/onramp/signer", "dev/onramp/nested/x", "dev/other/y"}, nil
	}}
	names, err := newResolver(p).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"transak", "signer"}, names)
}
