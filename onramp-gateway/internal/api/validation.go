package api

import (
	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// Validate enforces the request schema: required fields present, amountType in
// {fiat, crypto}, and every provider one the gateway has registered.
func (b *QuoteBody) Validate(registered func(model.ProviderID) bool) error {
	if err := requireStrings(map[string]string{
		"cryptoCurrency": b.CryptoCurrency,
		"fiatCurrency":   b.FiatCurrency,
		"network":        b.Network,
	}, "cryptoCurrency", "fiatCurrency", "network"); err != nil {
		return err
	}
	if err := validateAmount(b.AmountType, b.Amount); err != nil {
		return err
	}
	if len(b.Providers) == 0 {
		return model.NewBadRequest("providers", "body must have required property 'providers'")
	}
	for _, p := range b.Providers {
		if !registered(model.ParseProviderID(p)) {
			return model.NewBadRequest("providers", "providers must be equal to one of the allowed values (got %q)", p)
		}
	}
	return nil
}

// Validate enforces the redirect schema. Provider-specific rules such as a required
// paymentMethod are checked by the redirect builder.
func (b *RedirectBody) Validate(registered func(model.ProviderID) bool) error {
	if err := requireStrings(map[string]string{
		"cryptoCurrency": b.CryptoCurrency,
		"fiatCurrency":   b.FiatCurrency,
		"network":        b.Network,
		"provider":       b.Provider,
	}, "cryptoCurrency", "fiatCurrency", "network", "provider"); err != nil {
		return err
	}
	if err := validateAmount(b.AmountType, b.Amount); err != nil {
		return err
	}
	if !registered(model.ParseProviderID(b.Provider)) {
		return model.NewBadRequest("provider", "provider must be equal to one of the allowed values (got %q)", b.Provider)
	}
	return nil
}

func (b *SignBody) Validate() error {
	if b.StringToSign == nil {
		return model.NewBadRequest("stringToSign", "body must have required property 'stringToSign'")
	}
	return nil
}

func requireStrings(values map[string]string, order ...string) error {
	for _, f := range order {
		if values[f] == "" {
			return model.NewBadRequest(f, "body must have required property '%s'", f)
		}
	}
	return nil
}

func validateAmount(amountType string, amount *decimal.Decimal) error {
	if amountType == "" {
		return model.NewBadRequest("amountType", "body must have required property 'amountType'")
	}
	if !model.AmountType(amountType).Valid() {
		return model.NewBadRequest("amountType", "amountType must be equal to one of the allowed values")
	}
	if amount == nil {
		return model.NewBadRequest("amount", "body must have required property 'amount'")
	}
	if !amount.IsPositive() {
		return model.NewBadRequest("amount", "amount must be greater than zero")
	}
	return nil
}
