package binance

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/pkg/model"
)

func testKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func newTestAdapter(t *testing.T, signer *RequestSigner, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	a := New(zap.NewNop(), nil, srv.Client(), signer, Config{
		BaseURL:      srv.URL,
		WidgetURL:    "https://www.binance.com/en/crypto/buy",
		MerchantCode: "checker",
		RetryMax:     1,
	})
	a.newID = func() string { return "ext-1" }
	return a
}

func quoteRequest() model.QuoteRequest {
	return model.QuoteRequest{
		Providers:      []model.ProviderID{model.ProviderBinance},
		Network:        "bsc",
		CryptoCurrency: "usdt",
		FiatCurrency:   "eur",
		AmountType:     model.AmountFiat,
		Amount:         decimal.NewFromInt(200),
		CountryCode:    "DE",
	}
}

// ─── Request signing ─────────────────────────────────────────────────────────

func TestFetchQuote_SignedRequest(t *testing.T) {
	key, pemKey := testKey(t)
	signer, err := NewRequestSigner("client-1", pemKey)
	require.NoError(t, err)
	signer.now = func() time.Time { return time.UnixMilli(1700000000000) }

	a := newTestAdapter(t, signer, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/papi/v1/ramp/connect/buy/estimated-quote", r.URL.Path)
		body, _ := io.ReadAll(r.Body)

		assert.Equal(t, "client-1", r.Header.Get("X-Tesla-ClientId"))
		ts := r.Header.Get("X-Tesla-Timestamp")
		assert.Equal(t, "1700000000000", ts)

		sig, err := base64.StdEncoding.DecodeString(r.Header.Get("X-Tesla-Signature"))
		require.NoError(t, err)
		digest := sha256.Sum256(append(body, ts...))
		assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig))

		var req EstimatedQuoteRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, 1, req.AmountType)
		assert.Equal(t, "BSC", req.Network)
		assert.Equal(t, "USDT", req.CryptoCurrency)

		_, _ = w.Write([]byte(`{"success":true,"code":"000000","data":{
			"quoteId":"bq-9","quotePrice":"1.02","cryptoAmount":"194.1","fiatAmount":"200","totalFee":"2.0","payMethodCode":"BUY_CARD"}}`))
	})

	q, err := a.FetchQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "bq-9", q.ProviderResponseID)
	assert.True(t, q.CounterAmount.Equal(decimal.RequireFromString("194.1")))
	assert.True(t, q.Fee.Equal(decimal.NewFromInt(2)))
	assert.True(t, q.ExchangeRate.Equal(decimal.RequireFromString("1.02")))
}

func TestNewRequestSigner_InvalidPEM(t *testing.T) {
	_, err := NewRequestSigner("c", "not a key")
	assert.Error(t, err)
}

// ─── Envelope handling ───────────────────────────────────────────────────────

func TestFetchQuote_EnvelopeFailureIsRejection(t *testing.T) {
	a := newTestAdapter(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"code":"200001","message":"amount below minimum"}`))
	})

	_, err := a.FetchQuote(context.Background(), quoteRequest())
	require.Error(t, err)
	qe := providers.Classify(model.ProviderBinance, err)
	assert.Equal(t, model.ErrProviderRejected, qe.Kind)
	assert.Contains(t, qe.Message, "amount below minimum")
}

func TestFetchQuote_CryptoAmountType(t *testing.T) {
	a := newTestAdapter(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var req EstimatedQuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.AmountType)
		_, _ = w.Write([]byte(`{"success":true,"data":{"cryptoAmount":"100","fiatAmount":"103.5","totalFee":"1"}}`))
	})
	req := quoteRequest()
	req.AmountType = model.AmountCrypto
	req.Amount = decimal.NewFromInt(100)

	q, err := a.FetchQuote(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, q.CounterAmount.Equal(decimal.RequireFromString("103.5")))
	assert.Nil(t, q.ExchangeRate)
}

func TestFetchQuote_EmptyDataIsRejection(t *testing.T) {
	for name, body := range map[string]string{
		"null data":    `{"success":true,"code":"000000","message":"ok","data":null}`,
		"missing data": `{"success":true,"code":"000000","message":"ok"}`,
		"zero amounts": `{"success":true,"data":{"quoteId":"","cryptoAmount":"0","fiatAmount":"0"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			a := newTestAdapter(t, nil, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			q, err := a.FetchQuote(context.Background(), quoteRequest())
			require.Error(t, err)
			assert.Nil(t, q)
			assert.Equal(t, model.ErrProviderRejected, providers.Kind(err))
		})
	}
}

func TestFetchQuote_MissingFeeStaysUnset(t *testing.T) {
	a := newTestAdapter(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"quoteId":"bq-1","cryptoAmount":"194.1","fiatAmount":"200"}}`))
	})

	q, err := a.FetchQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	assert.Nil(t, q.Fee)
}

// ─── BuildRedirect ───────────────────────────────────────────────────────────

func TestBuildRedirect(t *testing.T) {
	a := newTestAdapter(t, nil, func(http.ResponseWriter, *http.Request) {})
	target, err := a.BuildRedirect(model.RedirectRequest{
		Provider:       model.ProviderBinance,
		Network:        "ethereum",
		CryptoCurrency: "eth",
		FiatCurrency:   "eur",
		AmountType:     model.AmountCrypto,
		Amount:         decimal.RequireFromString("0.5"),
		Address:        "0x52908400098527886E0F7030069857D2E4169EE7",
		PaymentMethod:  "sepa",
	}, model.SignedPayload{CanonicalString: "c", Signature: "s"})
	require.NoError(t, err)

	p := target.Params
	assert.Equal(t, "checker", p["merchantCode"])
	assert.Equal(t, "ETH", p["network"])
	assert.Equal(t, "0.5", p["cryptoAmount"])
	assert.Equal(t, "BUY_SEPA", p["payMethodCode"])
	assert.Equal(t, "ext-1", p["externalOrderId"])
	assert.Equal(t, "s", p["signature"])
}
