package transak

import "github.com/shopspring/decimal"

// QuoteResponse wraps GET /api/v1/pricing/public/quotes.
type QuoteResponse struct {
	Response Quote `json:"response"`
}

type Quote struct {
	QuoteID               string           `json:"quoteId"`
	ConversionPrice       decimal.Decimal  `json:"conversionPrice"`
	MarketConversionPrice decimal.Decimal  `json:"marketConversionPrice"`
	Slippage              decimal.Decimal  `json:"slippage"`
	FiatCurrency          string           `json:"fiatCurrency"`
	CryptoCurrency        string           `json:"cryptoCurrency"`
	PaymentMethod         string           `json:"paymentMethod"`
	FiatAmount            decimal.Decimal  `json:"fiatAmount"`
	CryptoAmount          decimal.Decimal  `json:"cryptoAmount"`
	IsBuyOrSell           string           `json:"isBuyOrSell"`
	Network               string           `json:"network"`
	FeeDecimal            decimal.Decimal  `json:"feeDecimal"`
	TotalFee              *decimal.Decimal `json:"totalFee"`
	FeeBreakdown          []FeeItem        `json:"feeBreakdown"`
}

type FeeItem struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	ID    string          `json:"id"`
}

// ErrorResponse is returned on 4xx.
type ErrorResponse struct {
	Error struct {
		StatusCode int    `json:"statusCode"`
		Name       string `json:"name"`
		Message    string `json:"message"`
	} `json:"error"`
}
