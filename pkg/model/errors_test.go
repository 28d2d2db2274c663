package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteError_ErrorString(t *testing.T) {
	err := NewQuoteError(ProviderTransak, ErrTimeout, "no response after %s", "5s")
	assert.Equal(t, "transak: Timeout: no response after 5s", err.Error())

	var qe *QuoteError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &qe))
	assert.Equal(t, ErrTimeout, qe.Kind)
}

func TestRequestError_Predicates(t *testing.T) {
	bad := NewBadRequest("paymentMethod", "'paymentMethod' required for %s provider", "transak")
	assert.True(t, IsBadRequest(bad))
	assert.False(t, IsSigningFailure(bad))
	assert.Equal(t, "paymentMethod", bad.Field)

	cause := errors.New("key not loaded")
	sf := NewSigningFailure("sign redirect", cause)
	assert.True(t, IsSigningFailure(fmt.Errorf("outer: %w", sf)))
	assert.ErrorIs(t, sf, cause)
	assert.Contains(t, sf.Error(), "key not loaded")
}

func TestQuoteRequest_DedupProviders(t *testing.T) {
	req := QuoteRequest{Providers: []ProviderID{ProviderMtPelerin, ProviderTransak, ProviderMtPelerin}}
	assert.Equal(t, []ProviderID{ProviderMtPelerin, ProviderTransak}, req.DedupProviders())
}

func TestParseProviderID(t *testing.T) {
	assert.Equal(t, ProviderMtPelerin, ParseProviderID(" MtPelerin "))
	assert.True(t, ProviderBinance.Known())
	assert.False(t, ParseProviderID("moonpay").Known())
	assert.True(t, AmountFiat.Valid())
	assert.False(t, AmountType("gold").Valid())
	assert.True(t, DecimalPtr(decimal.NewFromInt(3)).Equal(decimal.NewFromInt(3)))
}
