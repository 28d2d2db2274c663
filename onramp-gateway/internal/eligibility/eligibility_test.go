package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/registry"
	"github.com/Checker-Finance/onramp/pkg/model"
)

type stubAdapter struct{ id model.ProviderID }

func (s stubAdapter) ID() model.ProviderID { return s.id }
func (s stubAdapter) FetchQuote(context.Context, model.QuoteRequest) (*model.Quote, error) {
	return nil, nil
}
func (s stubAdapter) BuildRedirect(model.RedirectRequest, model.SignedPayload) (*model.RedirectTarget, error) {
	return nil, nil
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuilder(time.Second).
		Register(stubAdapter{model.ProviderTransak}, registry.Options{Countries: []string{"GB", "US"}}).
		Register(stubAdapter{model.ProviderBinance}, registry.Options{Countries: []string{"FR"}}).
		Register(stubAdapter{model.ProviderMtPelerin}, registry.Options{Countries: []string{"GB", "CH"}}).
		Build()
	require.NoError(t, err)
	return reg
}

func TestEligibleProviders_Intersection(t *testing.T) {
	c := New(testRegistry(t), false)

	got := c.EligibleProviders("gb", []model.ProviderID{model.ProviderMtPelerin, model.ProviderBinance, model.ProviderTransak})
	assert.Equal(t, []model.ProviderID{model.ProviderMtPelerin, model.ProviderTransak}, got)
}

func TestPartition_IneligibleErrors(t *testing.T) {
	c := New(testRegistry(t), false)

	eligible, errs := c.Partition("US", []model.ProviderID{model.ProviderBinance, model.ProviderTransak, model.ProviderBinance})
	require.Len(t, eligible, 1)
	assert.Equal(t, model.ProviderTransak, eligible[0].ID())
	require.Len(t, errs, 1, "duplicates are reported once")
	assert.Equal(t, model.ProviderBinance, errs[0].Provider)
	assert.Equal(t, model.ErrIneligible, errs[0].Kind)
	assert.Contains(t, errs[0].Message, "US")
}

func TestPartition_UnknownCountryFailsClosed(t *testing.T) {
	c := New(testRegistry(t), false)

	for _, cc := range []string{"", "XX", "ZZ", "G1", "GBR"} {
		eligible, errs := c.Partition(cc, []model.ProviderID{model.ProviderTransak, model.ProviderMtPelerin})
		assert.Empty(t, eligible, cc)
		assert.Len(t, errs, 2, cc)
	}
}

func TestPartition_UnknownCountryFailOpen(t *testing.T) {
	c := New(testRegistry(t), true)

	eligible, errs := c.Partition("", []model.ProviderID{model.ProviderTransak, model.ProviderMtPelerin})
	assert.Len(t, eligible, 2)
	assert.Empty(t, errs)

	// A resolved country is still filtered when failing open.
	eligible, errs = c.Partition("FR", []model.ProviderID{model.ProviderTransak})
	assert.Empty(t, eligible)
	assert.Len(t, errs, 1)
}

func TestPartition_UnregisteredProvider(t *testing.T) {
	c := New(testRegistry(t), false)
	_, errs := c.Partition("GB", []model.ProviderID{"moonpay"})
	require.Len(t, errs, 1)
	assert.Equal(t, model.ErrIneligible, errs[0].Kind)
}

func TestForCountry(t *testing.T) {
	c := New(testRegistry(t), false)
	entries := c.ForCountry("GB")
	require.Len(t, entries, 2)
	assert.Equal(t, model.ProviderTransak, entries[0].ID())
	assert.Equal(t, model.ProviderMtPelerin, entries[1].ID())
}
