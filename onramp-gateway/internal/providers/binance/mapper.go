package binance

import (
	"net/url"
	"strings"

	"github.com/Checker-Finance/onramp/pkg/model"
)

const defaultPayMethod = "BUY_CARD"

var networks = map[string]string{
	"ethereum":  "ETH",
	"bsc":       "BSC",
	"polygon":   "MATIC",
	"arbitrum":  "ARBITRUM",
	"optimism":  "OPTIMISM",
	"avalanche": "AVAXC",
	"base":      "BASE",
	"solana":    "SOL",
	"tron":      "TRX",
	"bitcoin":   "BTC",
}

var payMethods = map[string]string{
	"card":          "BUY_CARD",
	"credit_card":   "BUY_CARD",
	"debit_card":    "BUY_CARD",
	"bank_transfer": "BUY_SEPA",
	"sepa":          "BUY_SEPA",
	"apple_pay":     "BUY_APPLE_PAY",
	"google_pay":    "BUY_GOOGLE_PAY",
}

// Mapper translates between Binance Connect payloads and canonical models.
type Mapper struct{}

func NewMapper() *Mapper { return &Mapper{} }

func (m *Mapper) Network(network string) (string, bool) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(network))]
	return n, ok
}

func (m *Mapper) PayMethod(pm string) string {
	p := strings.ToLower(strings.TrimSpace(pm))
	if p == "" {
		return defaultPayMethod
	}
	if mapped, ok := payMethods[p]; ok {
		return mapped
	}
	return strings.ToUpper(p)
}

func (m *Mapper) ToEstimatedQuoteRequest(r model.QuoteRequest) (*EstimatedQuoteRequest, error) {
	net, ok := m.Network(r.Network)
	if !ok {
		return nil, model.NewQuoteError(model.ProviderBinance, model.ErrProviderRejected, "unsupported network %q", r.Network)
	}
	amountType := amountTypeFiat
	if r.AmountType == model.AmountCrypto {
		amountType = amountTypeCrypto
	}
	return &EstimatedQuoteRequest{
		FiatCurrency:    strings.ToUpper(r.FiatCurrency),
		CryptoCurrency:  strings.ToUpper(r.CryptoCurrency),
		RequestedAmount: r.Amount,
		AmountType:      amountType,
		Network:         net,
		PayMethodCode:   defaultPayMethod,
	}, nil
}

// FromEstimatedQuote normalizes a quote. quotePrice is already fiat per unit of crypto.
func (m *Mapper) FromEstimatedQuote(r model.QuoteRequest, q EstimatedQuote) *model.Quote {
	counter := q.CryptoAmount
	if r.AmountType == model.AmountCrypto {
		counter = q.FiatAmount
	}
	method := q.PayMethodCode
	if method == "" {
		method = defaultPayMethod
	}
	out := &model.Quote{
		Provider:           model.ProviderBinance,
		Network:            r.Network,
		CryptoCurrency:     r.CryptoCurrency,
		FiatCurrency:       r.FiatCurrency,
		AmountType:         r.AmountType,
		RequestedAmount:    r.Amount,
		CounterAmount:      counter,
		Fee:                q.TotalFee,
		PaymentMethods:     []string{method},
		ProviderResponseID: q.QuoteID,
	}
	if !q.QuotePrice.IsZero() {
		out.ExchangeRate = model.DecimalPtr(q.QuotePrice)
	}
	return out
}

func (m *Mapper) RedirectParams(r model.RedirectRequest, signed model.SignedPayload, merchantCode, externalOrderID string) (url.Values, error) {
	net, ok := m.Network(r.Network)
	if !ok {
		return nil, model.NewBadRequest("network", "unsupported network %q for binance provider", r.Network)
	}
	v := url.Values{}
	v.Set("merchantCode", merchantCode)
	v.Set("cryptoCurrency", strings.ToUpper(r.CryptoCurrency))
	v.Set("fiatCurrency", strings.ToUpper(r.FiatCurrency))
	v.Set("network", net)
	if r.AmountType == model.AmountCrypto {
		v.Set("cryptoAmount", r.Amount.String())
	} else {
		v.Set("fiatAmount", r.Amount.String())
	}
	if r.Address != "" {
		v.Set("walletAddress", r.Address)
	}
	v.Set("payMethodCode", m.PayMethod(r.PaymentMethod))
	v.Set("externalOrderId", externalOrderID)
	v.Set("signature", signed.Signature)
	return v, nil
}
