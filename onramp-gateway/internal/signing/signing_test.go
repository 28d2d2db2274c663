package signing

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/pkg/model"
)

const (
	testHMACKey = "0123456789abcdef0123456789abcdef"
	testEthKey  = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"
)

func baseRequest() model.RedirectRequest {
	return model.RedirectRequest{
		Provider:       model.ProviderTransak,
		Network:        "ethereum",
		CryptoCurrency: "ETH",
		FiatCurrency:   "GBP",
		AmountType:     model.AmountFiat,
		Amount:         decimal.NewFromInt(500),
		Address:        "0x52908400098527886E0F7030069857D2E4169EE7",
		PaymentMethod:  "credit_card",
	}
}

func mutations() map[string]func(*model.RedirectRequest) {
	return map[string]func(*model.RedirectRequest){
		"provider":       func(r *model.RedirectRequest) { r.Provider = model.ProviderMtPelerin },
		"network":        func(r *model.RedirectRequest) { r.Network = "polygon" },
		"cryptoCurrency": func(r *model.RedirectRequest) { r.CryptoCurrency = "USDC" },
		"fiatCurrency":   func(r *model.RedirectRequest) { r.FiatCurrency = "EUR" },
		"amountType":     func(r *model.RedirectRequest) { r.AmountType = model.AmountCrypto },
		"amount":         func(r *model.RedirectRequest) { r.Amount = decimal.NewFromInt(5000) },
		"address":        func(r *model.RedirectRequest) { r.Address = "0x0000000000000000000000000000000000000001" },
		"paymentMethod":  func(r *model.RedirectRequest) { r.PaymentMethod = "" },
	}
}

func signers(t *testing.T) map[string]*RedirectSigner {
	t.Helper()
	h, err := New(SchemeHMAC, testHMACKey)
	require.NoError(t, err)
	e, err := New(SchemeEth, testEthKey)
	require.NoError(t, err)
	return map[string]*RedirectSigner{
		SchemeHMAC: NewRedirectSigner(zap.NewNop(), h),
		SchemeEth:  NewRedirectSigner(zap.NewNop(), e),
	}
}

// ─── Canonical serialization ─────────────────────────────────────────────────

func TestCanonicalize_Format(t *testing.T) {
	got := Canonicalize(baseRequest())
	assert.Equal(t,
		"7:transak;8:ethereum;3:ETH;3:GBP;4:fiat;3:500;42:0x52908400098527886E0F7030069857D2E4169EE7;11:credit_card;",
		got)
}

func TestCanonicalize_Deterministic(t *testing.T) {
	a := baseRequest()
	b := baseRequest()
	b.Amount = decimal.RequireFromString("500.00")
	assert.Equal(t, Canonicalize(a), Canonicalize(b))
}

func TestCanonicalize_NoDelimiterCollision(t *testing.T) {
	a := baseRequest()
	a.Network, a.CryptoCurrency = "eth;3:x", "ETH"
	b := baseRequest()
	b.Network, b.CryptoCurrency = "eth", "x;3:ETH"
	assert.NotEqual(t, Canonicalize(a), Canonicalize(b))

	c := baseRequest()
	c.Address, c.PaymentMethod = "ab", "c"
	d := baseRequest()
	d.Address, d.PaymentMethod = "a", "bc"
	assert.NotEqual(t, Canonicalize(c), Canonicalize(d))
}

// ─── Round trip and tamper detection ─────────────────────────────────────────

func TestSignRequest_RoundTripAndMutation(t *testing.T) {
	for scheme, s := range signers(t) {
		t.Run(scheme, func(t *testing.T) {
			req := baseRequest()
			signed, err := s.SignRequest(req)
			require.NoError(t, err)
			assert.Equal(t, Canonicalize(req), signed.CanonicalString)
			assert.True(t, s.Verify(signed.CanonicalString, signed.Signature))
			assert.True(t, s.VerifyRequest(req, signed.Signature))

			for field, mutate := range mutations() {
				m := baseRequest()
				mutate(&m)
				assert.False(t, s.VerifyRequest(m, signed.Signature), "mutated %s must not verify", field)
			}
		})
	}
}

func TestVerify_GarbageSignature(t *testing.T) {
	for scheme, s := range signers(t) {
		assert.False(t, s.Verify("msg", "%%%not-base64"), scheme)
		assert.False(t, s.Verify("msg", "c2hvcnQ="), scheme)
	}
}

func TestSign_ConcurrentUse(t *testing.T) {
	s := signers(t)[SchemeEth]
	want, err := s.Sign("concurrent")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Sign("concurrent")
			assert.NoError(t, err)
			assert.Equal(t, want, got, "RFC 6979 signatures are deterministic")
		}()
	}
	wg.Wait()
}

// ─── Schemes ─────────────────────────────────────────────────────────────────

func TestEthSigner_Address(t *testing.T) {
	e, err := NewEthSigner("0x" + testEthKey)
	require.NoError(t, err)
	key, err := crypto.HexToECDSA(testEthKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), e.Address())

	sig, err := e.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])
}

func TestNew_Errors(t *testing.T) {
	_, err := New(SchemeHMAC, "short")
	assert.ErrorContains(t, err, "at least")

	_, err = New(SchemeEth, "zz")
	assert.Error(t, err)

	_, err = New("rsa", "k")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestRedirectSigner_NoKey(t *testing.T) {
	var s *RedirectSigner
	_, err := s.Sign("x")
	require.Error(t, err)
	assert.True(t, model.IsSigningFailure(err))

	_, err = NewRedirectSigner(nil, nil).SignRequest(baseRequest())
	assert.True(t, model.IsSigningFailure(err))
}
