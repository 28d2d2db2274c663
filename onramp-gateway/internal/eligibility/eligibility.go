// Package eligibility decides which registered providers may serve a caller's country.
package eligibility

import (
	"strings"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/registry"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// Checker is a pure function over the registry. With failOpen unset (the default), an
// unknown country makes every provider ineligible.
type Checker struct {
	reg      *registry.Registry
	failOpen bool
}

func New(reg *registry.Registry, failOpen bool) *Checker {
	return &Checker{reg: reg, failOpen: failOpen}
}

// Known reports whether cc looks like a resolved ISO 3166-1 alpha-2 code.
func Known(cc string) bool {
	cc = strings.TrimSpace(cc)
	if len(cc) != 2 {
		return false
	}
	for _, r := range strings.ToUpper(cc) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	// XX and ZZ are used by lookup services for "unknown".
	up := strings.ToUpper(cc)
	return up != "XX" && up != "ZZ"
}

// EligibleProviders returns the requested providers allowed for countryCode, in request order.
func (c *Checker) EligibleProviders(countryCode string, requested []model.ProviderID) []model.ProviderID {
	eligible, _ := c.Partition(countryCode, requested)
	out := make([]model.ProviderID, len(eligible))
	for i, e := range eligible {
		out[i] = e.ID()
	}
	return out
}

// Partition splits requested providers into eligible registry entries and Ineligible errors.
// Duplicates are ignored after their first occurrence.
func (c *Checker) Partition(countryCode string, requested []model.ProviderID) ([]*registry.Entry, []model.QuoteError) {
	known := Known(countryCode)
	cc := strings.ToUpper(strings.TrimSpace(countryCode))

	var (
		eligible   []*registry.Entry
		ineligible []model.QuoteError
	)
	seen := make(map[model.ProviderID]struct{}, len(requested))
	for _, id := range requested {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		entry, ok := c.reg.Get(id)
		switch {
		case !ok:
			ineligible = append(ineligible, *model.NewQuoteError(id, model.ErrIneligible, "provider not registered"))
		case !known && c.failOpen:
			eligible = append(eligible, entry)
		case !known:
			ineligible = append(ineligible, *model.NewQuoteError(id, model.ErrIneligible, "country could not be resolved"))
		case entry.Supports(cc):
			eligible = append(eligible, entry)
		default:
			ineligible = append(ineligible, *model.NewQuoteError(id, model.ErrIneligible, "provider not available in %s", cc))
		}
	}
	return eligible, ineligible
}

// ForCountry returns every registered provider eligible for countryCode, in registry order.
func (c *Checker) ForCountry(countryCode string) []*registry.Entry {
	eligible, _ := c.Partition(countryCode, c.reg.IDs())
	return eligible
}
