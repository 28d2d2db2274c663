package mtpelerin

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/onramp/pkg/model"
)

const (
	fiatNetwork        = "fiat"
	methodBankTransfer = "bank_transfer"
	methodCard         = "card"
	redirectType       = "direct-link"
	redirectTab        = "buy"
)

// networks maps canonical chain names to Mt Pelerin network identifiers.
var networks = map[string]string{
	"ethereum":  "mainnet",
	"polygon":   "matic_mainnet",
	"arbitrum":  "arbitrum_mainnet",
	"optimism":  "optimism_mainnet",
	"bsc":       "bsc_mainnet",
	"avalanche": "avalanche_mainnet",
	"base":      "base_mainnet",
	"zksync":    "zksync_mainnet",
	"rootstock": "rsk_mainnet",
	"tezos":     "tezos_mainnet",
}

// Mapper translates between Mt Pelerin payloads and canonical models.
type Mapper struct{}

func NewMapper() *Mapper { return &Mapper{} }

// Network returns the Mt Pelerin identifier for a canonical network name.
func (m *Mapper) Network(network string) (string, bool) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(network))]
	return n, ok
}

// ToConvertRequest builds the rate request. A fiat amount is sent as the source amount,
// a crypto amount as the destination amount.
func (m *Mapper) ToConvertRequest(r model.QuoteRequest) (*ConvertRequest, error) {
	net, ok := m.Network(r.Network)
	if !ok {
		return nil, model.NewQuoteError(model.ProviderMtPelerin, model.ErrProviderRejected, "unsupported network %q", r.Network)
	}
	req := &ConvertRequest{
		SourceCurrency: strings.ToUpper(r.FiatCurrency),
		DestCurrency:   strings.ToUpper(r.CryptoCurrency),
		SourceNetwork:  fiatNetwork,
		DestNetwork:    net,
	}
	amount := r.Amount
	if r.AmountType == model.AmountCrypto {
		req.DestAmount = &amount
	} else {
		req.SourceAmount = &amount
	}
	return req, nil
}

// FromConvertResponse normalizes a rate response. Fees are summed; the exchange rate is
// fiat per unit of crypto.
func (m *Mapper) FromConvertResponse(r model.QuoteRequest, resp *ConvertResponse, card bool) *model.Quote {
	counter := resp.DestAmount
	if r.AmountType == model.AmountCrypto {
		counter = resp.SourceAmount
	}

	var rate *decimal.Decimal
	if !resp.DestAmount.IsZero() {
		rate = model.DecimalPtr(resp.SourceAmount.Div(resp.DestAmount))
	}

	method := methodBankTransfer
	if card {
		method = methodCard
	}

	return &model.Quote{
		Provider:        model.ProviderMtPelerin,
		Network:         r.Network,
		CryptoCurrency:  r.CryptoCurrency,
		FiatCurrency:    r.FiatCurrency,
		AmountType:      r.AmountType,
		RequestedAmount: r.Amount,
		CounterAmount:   counter,
		Fee:             resp.Fees.Total(),
		ExchangeRate:    rate,
		PaymentMethods:  []string{method},
	}
}

// RedirectParams builds the direct-link query. The signature travels as "hash".
func (m *Mapper) RedirectParams(r model.RedirectRequest, signed model.SignedPayload, referral string) (url.Values, error) {
	net, ok := m.Network(r.Network)
	if !ok {
		return nil, model.NewBadRequest("network", "unsupported network %q for mtpelerin provider", r.Network)
	}
	v := url.Values{}
	v.Set("type", redirectType)
	v.Set("tab", redirectTab)
	v.Set("bsc", strings.ToUpper(r.FiatCurrency))
	v.Set("bdc", strings.ToUpper(r.CryptoCurrency))
	if r.AmountType == model.AmountCrypto {
		v.Set("bda", r.Amount.String())
	} else {
		v.Set("bsa", r.Amount.String())
	}
	v.Set("net", net)
	v.Set("addr", r.Address)
	v.Set("hash", signed.Signature)
	if r.PaymentMethod != "" {
		v.Set("pm", r.PaymentMethod)
	}
	if referral != "" {
		v.Set("rfr", referral)
	}
	return v, nil
}
