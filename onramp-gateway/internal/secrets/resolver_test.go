package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/pkg/model"
)

type mapProvider map[string]map[string]string

func (p mapProvider) GetSecret(_ context.Context, name string) (map[string]string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return nil, assert.AnError
}

func (p mapProvider) ListSecrets(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for k := range p {
		out = append(out, k)
	}
	return out, nil
}

func TestParseCredentials_Transak(t *testing.T) {
	c, err := credentialsParser(model.ProviderTransak)(map[string]string{"api_key": "pk_live"})
	require.NoError(t, err)
	assert.Equal(t, "pk_live", c.APIKey)

	_, err = credentialsParser(model.ProviderTransak)(map[string]string{})
	assert.ErrorContains(t, err, "api_key")
}

func TestParseCredentials_Binance(t *testing.T) {
	m := map[string]string{
		"merchant_code": "m-1",
		"client_id":     "c-1",
		"private_key":   "pem",
	}
	c, err := credentialsParser(model.ProviderBinance)(m)
	require.NoError(t, err)
	assert.Equal(t, "m-1", c.MerchantCode)
	assert.Equal(t, "c-1", c.ClientID)

	delete(m, "private_key")
	_, err = credentialsParser(model.ProviderBinance)(m)
	assert.ErrorContains(t, err, "private_key")
}

func TestParseCredentials_MtPelerinOptional(t *testing.T) {
	c, err := credentialsParser(model.ProviderMtPelerin)(map[string]string{"referral_code": "ref"})
	require.NoError(t, err)
	assert.Equal(t, "ref", c.ReferralCode)

	_, err = credentialsParser("moonpay")(map[string]string{})
	assert.Error(t, err)
}

func TestParseSigningKey(t *testing.T) {
	k, err := parseSigningKey(map[string]string{"key": "secret", "scheme": "ETH"})
	require.NoError(t, err)
	assert.Equal(t, "eth", k.Scheme)

	_, err = parseSigningKey(map[string]string{"scheme": "hmac"})
	assert.ErrorContains(t, err, "key")
}

func TestResolver_Roundtrip(t *testing.T) {
	p := mapProvider{
		"prod/onramp/transak": {"api_key": "pk_live"},
		"prod/onramp/signer":  {"key": "0123456789abcdef0123456789abcdef"},
		"prod/onramp/moonpay": {"api_key": "x"},
	}
	r := NewResolver(zap.NewNop(), "prod", p, time.Minute)

	c, err := r.ProviderCredentials(context.Background(), model.ProviderTransak)
	require.NoError(t, err)
	assert.Equal(t, "pk_live", c.APIKey)

	k, err := r.SigningKey(context.Background())
	require.NoError(t, err)
	assert.Len(t, k.Key, 32)

	_, err = r.ProviderCredentials(context.Background(), model.ProviderBinance)
	assert.Error(t, err)

	ids, err := r.DiscoverProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.ProviderID{model.ProviderTransak}, ids)
}
