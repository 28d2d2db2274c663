package mtpelerin

import "github.com/shopspring/decimal"

// ConvertRequest is the body of POST /currency_rates/convert.
// Exactly one of SourceAmount and DestAmount is set.
type ConvertRequest struct {
	SourceCurrency string           `json:"sourceCurrency"`
	DestCurrency   string           `json:"destCurrency"`
	SourceAmount   *decimal.Decimal `json:"sourceAmount,omitempty"`
	DestAmount     *decimal.Decimal `json:"destAmount,omitempty"`
	SourceNetwork  string           `json:"sourceNetwork"`
	DestNetwork    string           `json:"destNetwork"`
	IsCardPayment  bool             `json:"isCardPayment"`
}

// Fees are denominated in the fiat source currency. Either part may be absent.
type Fees struct {
	NetworkFee *decimal.Decimal `json:"networkFee"`
	FixFee     *decimal.Decimal `json:"fixFee"`
}

// Total sums the fee parts present, or returns nil when the response carried none.
func (f *Fees) Total() *decimal.Decimal {
	if f == nil || (f.NetworkFee == nil && f.FixFee == nil) {
		return nil
	}
	total := decimal.Zero
	if f.NetworkFee != nil {
		total = total.Add(*f.NetworkFee)
	}
	if f.FixFee != nil {
		total = total.Add(*f.FixFee)
	}
	return &total
}

// ConvertResponse is the rate conversion result.
type ConvertResponse struct {
	SourceCurrency string          `json:"sourceCurrency"`
	DestCurrency   string          `json:"destCurrency"`
	SourceNetwork  string          `json:"sourceNetwork"`
	DestNetwork    string          `json:"destNetwork"`
	SourceAmount   decimal.Decimal `json:"sourceAmount"`
	DestAmount     decimal.Decimal `json:"destAmount"`
	Fees           *Fees           `json:"fees"`
}

// ErrorResponse is returned on 4xx.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
