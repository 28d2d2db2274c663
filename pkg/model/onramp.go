package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProviderID identifies a fiat-to-crypto on-ramp provider.
type ProviderID string

const (
	ProviderTransak   ProviderID = "transak"
	ProviderBinance   ProviderID = "binance"
	ProviderMtPelerin ProviderID = "mtpelerin"
)

// KnownProviders lists every provider this build ships an adapter for.
var KnownProviders = []ProviderID{ProviderTransak, ProviderBinance, ProviderMtPelerin}

// Known reports whether p has a built-in adapter.
func (p ProviderID) Known() bool {
	for _, k := range KnownProviders {
		if k == p {
			return true
		}
	}
	return false
}

// ParseProviderID normalizes a provider name ("Transak", " mtpelerin ") to its ProviderID.
func ParseProviderID(s string) ProviderID {
	return ProviderID(strings.ToLower(strings.TrimSpace(s)))
}

// AmountType tells which side of the conversion the requested amount is denominated in.
type AmountType string

const (
	AmountFiat   AmountType = "fiat"
	AmountCrypto AmountType = "crypto"
)

// Valid reports whether a is one of the known amount types.
func (a AmountType) Valid() bool {
	return a == AmountFiat || a == AmountCrypto
}

// QuoteRequest is the canonical buy-quote request fanned out to providers.
type QuoteRequest struct {
	Providers      []ProviderID    `json:"providers"`
	Network        string          `json:"network"`
	CryptoCurrency string          `json:"cryptoCurrency"`
	FiatCurrency   string          `json:"fiatCurrency"`
	AmountType     AmountType      `json:"amountType"`
	Amount         decimal.Decimal `json:"amount"`
	CountryCode    string          `json:"countryCode"`
}

// DedupProviders returns the requested providers with duplicates removed, keeping first occurrence.
func (r QuoteRequest) DedupProviders() []ProviderID {
	seen := make(map[ProviderID]struct{}, len(r.Providers))
	out := make([]ProviderID, 0, len(r.Providers))
	for _, p := range r.Providers {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Quote is one provider's normalized offer. It is built once by an adapter and never mutated.
type Quote struct {
	Provider           ProviderID       `json:"provider"`
	Network            string           `json:"network"`
	CryptoCurrency     string           `json:"cryptoCurrency"`
	FiatCurrency       string           `json:"fiatCurrency"`
	AmountType         AmountType       `json:"amountType"`
	RequestedAmount    decimal.Decimal  `json:"requestedAmount"`
	CounterAmount      decimal.Decimal  `json:"counterAmount"`
	Fee                *decimal.Decimal `json:"fee,omitempty"`
	ExchangeRate       *decimal.Decimal `json:"exchangeRate,omitempty"`
	PaymentMethods     []string         `json:"paymentMethods"`
	ProviderResponseID string           `json:"providerResponseId,omitempty"`
}

// AggregateResult is the per-request outcome of a quote fan-out.
// Quotes are sorted by ascending fee, then descending counter amount, then registry order.
type AggregateResult struct {
	Quotes []Quote      `json:"quotes"`
	Errors []QuoteError `json:"errors"`
}

// DecimalPtr is a small helper for optional decimal fields.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
