package model

import "github.com/shopspring/decimal"

// RedirectRequest is the caller's provider selection for the onboarding hand-off.
type RedirectRequest struct {
	Provider       ProviderID      `json:"provider"`
	Network        string          `json:"network"`
	CryptoCurrency string          `json:"cryptoCurrency"`
	FiatCurrency   string          `json:"fiatCurrency"`
	AmountType     AmountType      `json:"amountType"`
	Amount         decimal.Decimal `json:"amount"`
	Address        string          `json:"address,omitempty"`
	PaymentMethod  string          `json:"paymentMethod,omitempty"`
}

// SignedPayload binds the canonical serialization of a RedirectRequest to its signature.
type SignedPayload struct {
	CanonicalString string `json:"canonical"`
	Signature       string `json:"signature"` // base64
}

// RedirectTarget is where the client is sent to continue with the chosen provider.
type RedirectTarget struct {
	Provider  ProviderID        `json:"provider"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Params    map[string]string `json:"params,omitempty"`
	Signature string            `json:"signature"`
	Canonical string            `json:"canonical"`
}
