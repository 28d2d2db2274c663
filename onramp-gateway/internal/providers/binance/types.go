package binance

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount type codes used by Binance Connect.
const (
	amountTypeFiat   = 1
	amountTypeCrypto = 2
)

// EstimatedQuoteRequest is the body of POST /papi/v1/ramp/connect/buy/estimated-quote.
type EstimatedQuoteRequest struct {
	FiatCurrency    string          `json:"fiatCurrency"`
	CryptoCurrency  string          `json:"cryptoCurrency"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	AmountType      int             `json:"amountType"`
	Network         string          `json:"network"`
	PayMethodCode   string          `json:"payMethodCode"`
}

// Envelope is the common Binance Connect response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type EstimatedQuote struct {
	QuoteID       string           `json:"quoteId"`
	QuotePrice    decimal.Decimal  `json:"quotePrice"`
	CryptoAmount  decimal.Decimal  `json:"cryptoAmount"`
	FiatAmount    decimal.Decimal  `json:"fiatAmount"`
	TotalFee      *decimal.Decimal `json:"totalFee"`
	NetworkFee    *decimal.Decimal `json:"networkFee"`
	PayMethodCode string           `json:"payMethodCode"`
}
