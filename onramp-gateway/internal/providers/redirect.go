package providers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// NewRedirectTarget appends params to base as a query string and returns a GET target.
// Params are also returned flat so clients can POST them to providers that accept forms.
func NewRedirectTarget(provider model.ProviderID, base string, params url.Values, signed model.SignedPayload) (*model.RedirectTarget, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid widget url %q", provider, base)
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	flat := make(map[string]string, len(q))
	for k := range q {
		flat[k] = q.Get(k)
	}

	return &model.RedirectTarget{
		Provider:  provider,
		URL:       u.String(),
		Method:    http.MethodGet,
		Params:    flat,
		Signature: signed.Signature,
		Canonical: signed.CanonicalString,
	}, nil
}
