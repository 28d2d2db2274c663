package signing

import (
	"strconv"
	"strings"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// Canonicalize serializes r into the signing input. Fields are written in a fixed order,
// each as <byte length>:<value>; so no value can be confused with a delimiter:
//
//	provider, network, cryptoCurrency, fiatCurrency, amountType, amount, address, paymentMethod
//
// The amount uses its shortest decimal form, so 500, 500.0 and 500.00 serialize identically.
func Canonicalize(r model.RedirectRequest) string {
	fields := [...]string{
		string(r.Provider),
		r.Network,
		r.CryptoCurrency,
		r.FiatCurrency,
		string(r.AmountType),
		r.Amount.String(),
		r.Address,
		r.PaymentMethod,
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
		b.WriteByte(';')
	}
	return b.String()
}
