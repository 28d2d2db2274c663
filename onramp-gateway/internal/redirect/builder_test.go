package redirect

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers/mtpelerin"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers/transak"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/registry"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/signing"
	"github.com/Checker-Finance/onramp/pkg/model"
)

const testKey = "0123456789abcdef0123456789abcdef"

type failingSigner struct{}

func (failingSigner) Scheme() string              { return "broken" }
func (failingSigner) Sign([]byte) ([]byte, error) { return nil, errors.New("hsm offline") }
func (failingSigner) Verify(_, _ []byte) bool     { return false }

func newBuilder(t *testing.T, s signing.Signer) (*Builder, *signing.RedirectSigner) {
	t.Helper()
	reg, err := registry.NewBuilder(time.Second).
		Register(transak.New(zap.NewNop(), nil, nil, transak.Config{
			BaseURL:   "http://transak.invalid",
			WidgetURL: "https://global.transak.com",
			APIKey:    "pk_test",
		}), registry.Options{Countries: []string{"GB"}, RequiresPaymentMethod: true}).
		Register(mtpelerin.New(zap.NewNop(), nil, nil, mtpelerin.Config{
			BaseURL:   "http://mtpelerin.invalid",
			WidgetURL: "https://buy.mtpelerin.com",
		}), registry.Options{Countries: []string{"GB", "CH"}}).
		Build()
	require.NoError(t, err)

	rs := signing.NewRedirectSigner(zap.NewNop(), s)
	return NewBuilder(zap.NewNop(), reg, rs), rs
}

func hmacSigner(t *testing.T) signing.Signer {
	t.Helper()
	s, err := signing.NewHMACSigner([]byte(testKey))
	require.NoError(t, err)
	return s
}

func transakRequest() model.RedirectRequest {
	return model.RedirectRequest{
		Provider:       model.ProviderTransak,
		Network:        "ethereum",
		CryptoCurrency: "ETH",
		FiatCurrency:   "GBP",
		AmountType:     model.AmountFiat,
		Amount:         decimal.NewFromInt(500),
		Address:        "0x52908400098527886E0F7030069857D2E4169EE7",
	}
}

// ─── Provider policy ─────────────────────────────────────────────────────────

func TestBuild_TransakRequiresPaymentMethod(t *testing.T) {
	b, _ := newBuilder(t, hmacSigner(t))

	_, err := b.Build(transakRequest())
	require.Error(t, err)
	assert.True(t, model.IsBadRequest(err))
	var re *model.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "paymentMethod", re.Field)
	assert.Equal(t, "'paymentMethod' required for transak provider", re.Message)

	req := transakRequest()
	req.PaymentMethod = "credit_card"
	target, err := b.Build(req)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderTransak, target.Provider)
	assert.NotEmpty(t, target.Signature)
}

func TestBuild_MtPelerinPaymentMethodOptional(t *testing.T) {
	b, _ := newBuilder(t, hmacSigner(t))
	req := transakRequest()
	req.Provider = model.ProviderMtPelerin

	target, err := b.Build(req)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderMtPelerin, target.Provider)
}

func TestBuild_Validation(t *testing.T) {
	b, _ := newBuilder(t, hmacSigner(t))

	tests := []struct {
		name   string
		mutate func(*model.RedirectRequest)
		field  string
	}{
		{"unregistered provider", func(r *model.RedirectRequest) { r.Provider = model.ProviderBinance }, "provider"},
		{"bad amount type", func(r *model.RedirectRequest) { r.AmountType = "gold" }, "amountType"},
		{"zero amount", func(r *model.RedirectRequest) { r.Amount = decimal.Zero }, "amount"},
		{"invalid evm address", func(r *model.RedirectRequest) { r.Address = "0x1234" }, "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := transakRequest()
			req.PaymentMethod = "credit_card"
			tt.mutate(&req)

			_, err := b.Build(req)
			var re *model.RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, model.BadRequest, re.Kind)
			assert.Equal(t, tt.field, re.Field)
		})
	}
}

func TestBuild_NonEVMAddressNotChecked(t *testing.T) {
	b, _ := newBuilder(t, hmacSigner(t))
	req := transakRequest()
	req.PaymentMethod = "credit_card"
	req.Network = "solana"
	req.CryptoCurrency = "SOL"
	req.Address = "7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV"

	_, err := b.Build(req)
	assert.NoError(t, err)
}

// ─── Signing ─────────────────────────────────────────────────────────────────

func TestBuild_SignatureVerifiesAgainstRequest(t *testing.T) {
	b, rs := newBuilder(t, hmacSigner(t))
	req := transakRequest()
	req.PaymentMethod = "credit_card"

	target, err := b.Build(req)
	require.NoError(t, err)
	assert.Equal(t, signing.Canonicalize(req), target.Canonical)
	assert.True(t, rs.VerifyRequest(req, target.Signature))

	u, err := url.Parse(target.URL)
	require.NoError(t, err)
	assert.Equal(t, target.Signature, u.Query().Get("signature"))
}

func TestBuild_SigningFailure(t *testing.T) {
	b, _ := newBuilder(t, failingSigner{})
	req := transakRequest()
	req.PaymentMethod = "credit_card"

	_, err := b.Build(req)
	require.Error(t, err)
	assert.True(t, model.IsSigningFailure(err))
	assert.False(t, model.IsBadRequest(err))
}

func TestIsEVMNetwork(t *testing.T) {
	assert.True(t, IsEVMNetwork("Ethereum"))
	assert.True(t, IsEVMNetwork("polygon"))
	assert.False(t, IsEVMNetwork("solana"))
	assert.False(t, IsEVMNetwork(""))
}
