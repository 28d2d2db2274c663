// Package registry holds the process-wide, read-only set of on-ramp providers.
package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// AnyCountry in SupportedCountries makes a provider eligible for every resolved country.
const AnyCountry = "*"

// Entry is one registered provider.
type Entry struct {
	Adapter               providers.Adapter
	SupportedCountries    map[string]struct{}
	RequiresPaymentMethod bool
	Timeout               time.Duration
	order                 int
}

// Order is the registration index, used as the final tie-break when sorting quotes.
func (e *Entry) Order() int { return e.order }

// ID returns the adapter's provider ID.
func (e *Entry) ID() model.ProviderID { return e.Adapter.ID() }

// Supports reports whether the provider serves countryCode.
func (e *Entry) Supports(countryCode string) bool {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	if cc == "" {
		return false
	}
	if _, ok := e.SupportedCountries[AnyCountry]; ok {
		return true
	}
	_, ok := e.SupportedCountries[cc]
	return ok
}

// Registry maps ProviderID to its Entry. It is built once with a Builder and then only read,
// so concurrent lookups need no locking.
type Registry struct {
	entries []*Entry
	byID    map[model.ProviderID]*Entry
}

// Get returns the entry for id.
func (r *Registry) Get(id model.ProviderID) (*Entry, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Entries returns entries in registration order. The slice must not be modified.
func (r *Registry) Entries() []*Entry { return r.entries }

// IDs returns provider IDs in registration order.
func (r *Registry) IDs() []model.ProviderID {
	out := make([]model.ProviderID, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.ID()
	}
	return out
}

// Has reports whether id is registered.
func (r *Registry) Has(id model.ProviderID) bool {
	_, ok := r.byID[id]
	return ok
}

// MaxTimeout is the largest per-provider timeout, the upper bound of one aggregation.
func (r *Registry) MaxTimeout() time.Duration {
	var longest time.Duration
	for _, e := range r.entries {
		if e.Timeout > longest {
			longest = e.Timeout
		}
	}
	return longest
}

// Options configures one registration.
type Options struct {
	Countries             []string
	RequiresPaymentMethod bool
	Timeout               time.Duration
}

// Builder accumulates registrations. It is not safe for concurrent use.
type Builder struct {
	defaultTimeout time.Duration
	entries        []*Entry
	byID           map[model.ProviderID]*Entry
	err            error
}

func NewBuilder(defaultTimeout time.Duration) *Builder {
	return &Builder{defaultTimeout: defaultTimeout, byID: make(map[model.ProviderID]*Entry)}
}

// Register adds an adapter. Registering the same ID twice is an error reported by Build.
func (b *Builder) Register(a providers.Adapter, opts Options) *Builder {
	if b.err != nil {
		return b
	}
	if a == nil {
		b.err = fmt.Errorf("registry: nil adapter")
		return b
	}
	id := a.ID()
	if _, dup := b.byID[id]; dup {
		b.err = fmt.Errorf("registry: provider %q registered twice", id)
		return b
	}

	countries := make(map[string]struct{}, len(opts.Countries))
	for _, c := range opts.Countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			countries[c] = struct{}{}
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.defaultTimeout
	}

	e := &Entry{
		Adapter:               a,
		SupportedCountries:    countries,
		RequiresPaymentMethod: opts.RequiresPaymentMethod,
		Timeout:               timeout,
		order:                 len(b.entries),
	}
	b.entries = append(b.entries, e)
	b.byID[id] = e
	return b
}

// Build freezes the registrations.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.entries) == 0 {
		return nil, fmt.Errorf("registry: no providers registered")
	}
	return &Registry{entries: b.entries, byID: b.byID}, nil
}
