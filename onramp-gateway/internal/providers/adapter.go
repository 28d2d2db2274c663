// Package providers defines the capability every on-ramp provider adapter implements
// and the mapping from provider call failures to quote error kinds.
package providers

import (
	"context"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// Adapter translates canonical requests into one provider's vocabulary and back.
//
// FetchQuote must honour ctx; the aggregator additionally bounds each call with its own
// deadline. BuildRedirect is pure: it performs no network I/O.
type Adapter interface {
	ID() model.ProviderID
	FetchQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error)
	BuildRedirect(req model.RedirectRequest, signed model.SignedPayload) (*model.RedirectTarget, error)
}

// RejectedError is a well-formed refusal reported by a provider (amount out of range,
// unsupported pair) that arrived with a non-4xx status, e.g. inside a success envelope.
type RejectedError struct {
	Provider model.ProviderID
	Code     string
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Code != "" {
		return string(e.Provider) + " rejected (" + e.Code + "): " + e.Message
	}
	return string(e.Provider) + " rejected: " + e.Message
}
