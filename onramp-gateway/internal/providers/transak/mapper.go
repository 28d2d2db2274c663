package transak

import (
	"net/url"
	"strings"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// DefaultPaymentMethod is quoted when the caller has not chosen one yet.
const DefaultPaymentMethod = "credit_debit_card"

var networks = map[string]string{
	"avalanche": "avaxcchain",
	"bsc":       "bsc",
	"ethereum":  "ethereum",
	"polygon":   "polygon",
	"arbitrum":  "arbitrum",
	"optimism":  "optimism",
	"base":      "base",
}

var paymentMethods = map[string]string{
	"card":          "credit_debit_card",
	"credit_card":   "credit_debit_card",
	"debit_card":    "credit_debit_card",
	"bank_transfer": "sepa_bank_transfer",
	"sepa":          "sepa_bank_transfer",
	"apple_pay":     "apple_pay",
	"google_pay":    "google_pay",
}

// Mapper translates between Transak payloads and canonical models.
type Mapper struct{}

func NewMapper() *Mapper { return &Mapper{} }

// Network maps a canonical chain name; unknown names pass through lower-cased.
func (m *Mapper) Network(network string) string {
	n := strings.ToLower(strings.TrimSpace(network))
	if mapped, ok := networks[n]; ok {
		return mapped
	}
	return n
}

// PaymentMethod maps canonical payment method names to Transak's vocabulary.
func (m *Mapper) PaymentMethod(pm string) string {
	p := strings.ToLower(strings.TrimSpace(pm))
	if p == "" {
		return DefaultPaymentMethod
	}
	if mapped, ok := paymentMethods[p]; ok {
		return mapped
	}
	return p
}

// QuoteQuery builds the pricing query string.
func (m *Mapper) QuoteQuery(r model.QuoteRequest, apiKey string) url.Values {
	v := url.Values{}
	v.Set("partnerApiKey", apiKey)
	v.Set("fiatCurrency", strings.ToUpper(r.FiatCurrency))
	v.Set("cryptoCurrency", strings.ToUpper(r.CryptoCurrency))
	v.Set("network", m.Network(r.Network))
	v.Set("isBuyOrSell", "BUY")
	v.Set("paymentMethod", DefaultPaymentMethod)
	if r.AmountType == model.AmountCrypto {
		v.Set("cryptoAmount", r.Amount.String())
	} else {
		v.Set("fiatAmount", r.Amount.String())
	}
	return v
}

// FromQuote normalizes a pricing response. The exchange rate is fiat per unit of crypto.
func (m *Mapper) FromQuote(r model.QuoteRequest, q Quote) *model.Quote {
	counter := q.CryptoAmount
	if r.AmountType == model.AmountCrypto {
		counter = q.FiatAmount
	}

	out := &model.Quote{
		Provider:           model.ProviderTransak,
		Network:            r.Network,
		CryptoCurrency:     r.CryptoCurrency,
		FiatCurrency:       r.FiatCurrency,
		AmountType:         r.AmountType,
		RequestedAmount:    r.Amount,
		CounterAmount:      counter,
		Fee:                q.TotalFee,
		PaymentMethods:     []string{q.PaymentMethod},
		ProviderResponseID: q.QuoteID,
	}
	if q.PaymentMethod == "" {
		out.PaymentMethods = []string{DefaultPaymentMethod}
	}
	if !q.CryptoAmount.IsZero() {
		out.ExchangeRate = model.DecimalPtr(q.FiatAmount.Div(q.CryptoAmount))
	}
	return out
}

// RedirectParams builds the widget query for a signed selection.
func (m *Mapper) RedirectParams(r model.RedirectRequest, signed model.SignedPayload, apiKey, partnerOrderID string) url.Values {
	v := url.Values{}
	v.Set("apiKey", apiKey)
	v.Set("productsAvailed", "BUY")
	v.Set("cryptoCurrencyCode", strings.ToUpper(r.CryptoCurrency))
	v.Set("fiatCurrency", strings.ToUpper(r.FiatCurrency))
	v.Set("network", m.Network(r.Network))
	if r.AmountType == model.AmountCrypto {
		v.Set("cryptoAmount", r.Amount.String())
	} else {
		v.Set("fiatAmount", r.Amount.String())
	}
	if r.Address != "" {
		v.Set("walletAddress", r.Address)
		v.Set("disableWalletAddressForm", "true")
	}
	v.Set("paymentMethod", m.PaymentMethod(r.PaymentMethod))
	v.Set("partnerOrderId", partnerOrderID)
	v.Set("signature", signed.Signature)
	v.Set("canonical", signed.CanonicalString)
	return v
}
