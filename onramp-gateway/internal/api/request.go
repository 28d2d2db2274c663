package api

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// QuoteBody is the payload of POST /api/v1/quote. The country comes from the caller's IP.
type QuoteBody struct {
	Providers      []string         `json:"providers"`
	Network        string           `json:"network"`
	CryptoCurrency string           `json:"cryptoCurrency"`
	FiatCurrency   string           `json:"fiatCurrency"`
	AmountType     string           `json:"amountType"`
	Amount         *decimal.Decimal `json:"amount"`
}

// RedirectBody is the payload of POST /api/v1/init.
type RedirectBody struct {
	Provider       string           `json:"provider"`
	Network        string           `json:"network"`
	CryptoCurrency string           `json:"cryptoCurrency"`
	FiatCurrency   string           `json:"fiatCurrency"`
	AmountType     string           `json:"amountType"`
	Amount         *decimal.Decimal `json:"amount"`
	Address        string           `json:"address"`
	PaymentMethod  string           `json:"paymentMethod"`
}

// SignBody is the payload of POST /api/v1/sign.
type SignBody struct {
	StringToSign *string `json:"stringToSign"`
}

func toQuoteRequest(b QuoteBody, countryCode string) model.QuoteRequest {
	ids := make([]model.ProviderID, len(b.Providers))
	for i, p := range b.Providers {
		ids[i] = model.ParseProviderID(p)
	}
	return model.QuoteRequest{
		Providers:      ids,
		Network:        strings.ToLower(strings.TrimSpace(b.Network)),
		CryptoCurrency: strings.ToUpper(strings.TrimSpace(b.CryptoCurrency)),
		FiatCurrency:   strings.ToUpper(strings.TrimSpace(b.FiatCurrency)),
		AmountType:     model.AmountType(b.AmountType),
		Amount:         *b.Amount,
		CountryCode:    countryCode,
	}
}

func toRedirectRequest(b RedirectBody) model.RedirectRequest {
	return model.RedirectRequest{
		Provider:       model.ParseProviderID(b.Provider),
		Network:        strings.ToLower(strings.TrimSpace(b.Network)),
		CryptoCurrency: strings.ToUpper(strings.TrimSpace(b.CryptoCurrency)),
		FiatCurrency:   strings.ToUpper(strings.TrimSpace(b.FiatCurrency)),
		AmountType:     model.AmountType(b.AmountType),
		Amount:         *b.Amount,
		Address:        strings.TrimSpace(b.Address),
		PaymentMethod:  strings.TrimSpace(b.PaymentMethod),
	}
}
