package providers

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/Checker-Finance/onramp/internal/httpclient"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// Classify maps an adapter error to a QuoteError. A *model.QuoteError is passed through
// with its provider set.
func Classify(provider model.ProviderID, err error) model.QuoteError {
	if err == nil {
		return model.QuoteError{Provider: provider, Kind: model.ErrUnknown, Message: "no quote returned"}
	}

	var qe *model.QuoteError
	if errors.As(err, &qe) {
		out := *qe
		out.Provider = provider
		return out
	}

	return model.QuoteError{Provider: provider, Kind: Kind(err), Message: err.Error()}
}

// Kind returns the error kind for err.
func Kind(err error) model.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrTimeout
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return model.ErrProviderRejected
	}

	var se *httpclient.StatusError
	if errors.As(err, &se) {
		if se.Client() {
			return model.ErrProviderRejected
		}
		return model.ErrNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return model.ErrTimeout
		}
		return model.ErrNetwork
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return model.ErrNetwork
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.ErrNetwork
	}

	return model.ErrUnknown
}
