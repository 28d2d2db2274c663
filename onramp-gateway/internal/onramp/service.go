// Package onramp is the gateway's core surface: quotes, signed redirects, raw signatures
// and country onboarding.
package onramp

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/eligibility"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/metrics"
	"github.com/Checker-Finance/onramp/pkg/model"
	"github.com/Checker-Finance/onramp/pkg/utils"
)

const publishTimeout = 2 * time.Second

// QuoteAggregator fans a request out to eligible providers.
type QuoteAggregator interface {
	Aggregate(ctx context.Context, req model.QuoteRequest) model.AggregateResult
}

// RedirectBuilder validates, signs and builds a provider redirect.
type RedirectBuilder interface {
	Build(req model.RedirectRequest) (*model.RedirectTarget, error)
}

// Signer produces base64 signatures over arbitrary strings.
type Signer interface {
	Sign(msg string) (string, error)
}

// CountryResolver maps a caller IP to a country code, "" when unknown.
type CountryResolver interface {
	ResolveCountry(ctx context.Context, ip string) string
}

// EventPublisher receives analytics events. Optional.
type EventPublisher interface {
	PublishQuoteAggregated(ctx context.Context, correlationID uuid.UUID, evt model.QuoteAggregatedEvent) error
	PublishRedirectIssued(ctx context.Context, correlationID uuid.UUID, evt model.RedirectIssuedEvent) error
}

// OnboardProvider is one provider offered to a caller's country.
type OnboardProvider struct {
	ID                    model.ProviderID `json:"id"`
	RequiresPaymentMethod bool             `json:"requiresPaymentMethod"`
}

// OnboardResult lists the providers available where the caller is.
type OnboardResult struct {
	CountryCode string            `json:"countryCode"`
	Providers   []OnboardProvider `json:"providers"`
}

// Deps are the components a Service is assembled from.
type Deps struct {
	Aggregator  QuoteAggregator
	Redirects   RedirectBuilder
	Signer      Signer
	Eligibility *eligibility.Checker
	Geo         CountryResolver
	Events      EventPublisher
}

// Service wires the core components together. All fields are set once at construction.
type Service struct {
	logger *zap.Logger
	deps   Deps
}

func NewService(logger *zap.Logger, deps Deps) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, deps: deps}
}

// CountryFor resolves the caller's country, "" when unknown or no resolver is configured.
func (s *Service) CountryFor(ctx context.Context, ip string) string {
	if s.deps.Geo == nil {
		return ""
	}
	return s.deps.Geo.ResolveCountry(ctx, ip)
}

// GetQuotes returns every quote the eligible providers produced. Provider failures are
// reported inside the result; only invalid input yields an error.
func (s *Service) GetQuotes(ctx context.Context, req model.QuoteRequest) (model.AggregateResult, error) {
	if err := validateQuote(req); err != nil {
		return model.AggregateResult{}, err
	}
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	req.Providers = req.DedupProviders()

	start := time.Now()
	res := s.deps.Aggregator.Aggregate(ctx, req)
	s.emitQuoteAggregated(req, res, time.Since(start))
	return res, nil
}

// GetRedirect returns a signed redirect target, or a single BadRequest/SigningFailure.
func (s *Service) GetRedirect(ctx context.Context, req model.RedirectRequest) (*model.RedirectTarget, error) {
	target, err := s.deps.Redirects.Build(req)
	if err != nil {
		return nil, err
	}
	s.emitRedirectIssued(req)
	return target, nil
}

// Sign signs an arbitrary string with the service key.
func (s *Service) Sign(msg string) (string, error) {
	if s.deps.Signer == nil {
		return "", model.NewSigningFailure("signing key unavailable", nil)
	}
	return s.deps.Signer.Sign(msg)
}

// Onboard lists the providers available in the caller's country, in registry order.
func (s *Service) Onboard(ctx context.Context, ip string) OnboardResult {
	cc := s.CountryFor(ctx, ip)
	out := OnboardResult{CountryCode: cc, Providers: []OnboardProvider{}}
	if s.deps.Eligibility == nil {
		return out
	}
	for _, e := range s.deps.Eligibility.ForCountry(cc) {
		out.Providers = append(out.Providers, OnboardProvider{
			ID:                    e.ID(),
			RequiresPaymentMethod: e.RequiresPaymentMethod,
		})
	}
	s.logger.Debug("onramp.onboard",
		zap.String("ip", utils.MaskIP(ip)),
		zap.String("country", cc),
		zap.Int("providers", len(out.Providers)))
	return out
}

func validateQuote(req model.QuoteRequest) error {
	switch {
	case len(req.Providers) == 0:
		return model.NewBadRequest("providers", "'providers' must not be empty")
	case !req.AmountType.Valid():
		return model.NewBadRequest("amountType", "'amountType' must be fiat or crypto")
	case !req.Amount.IsPositive():
		return model.NewBadRequest("amount", "'amount' must be greater than zero")
	}
	return nil
}

// Events are published off the request path with their own deadline.
func (s *Service) emitQuoteAggregated(req model.QuoteRequest, res model.AggregateResult, elapsed time.Duration) {
	if s.deps.Events == nil {
		return
	}
	evt := model.QuoteAggregatedEvent{
		CountryCode:    req.CountryCode,
		Network:        req.Network,
		CryptoCurrency: req.CryptoCurrency,
		FiatCurrency:   req.FiatCurrency,
		AmountType:     req.AmountType,
		Quoted:         make([]model.ProviderID, 0, len(res.Quotes)),
		Failed:         make(map[string]int),
		DurationMS:     elapsed.Milliseconds(),
	}
	for _, q := range res.Quotes {
		evt.Quoted = append(evt.Quoted, q.Provider)
	}
	for _, e := range res.Errors {
		evt.Failed[string(e.Kind)]++
	}
	go s.publish("quote_aggregated", func(ctx context.Context) error {
		return s.deps.Events.PublishQuoteAggregated(ctx, uuid.New(), evt)
	})
}

func (s *Service) emitRedirectIssued(req model.RedirectRequest) {
	if s.deps.Events == nil {
		return
	}
	evt := model.RedirectIssuedEvent{
		Provider:       req.Provider,
		Network:        req.Network,
		CryptoCurrency: req.CryptoCurrency,
		FiatCurrency:   req.FiatCurrency,
		AmountType:     req.AmountType,
		Amount:         req.Amount.String(),
		PaymentMethod:  req.PaymentMethod,
	}
	go s.publish("redirect_issued", func(ctx context.Context) error {
		return s.deps.Events.PublishRedirectIssued(ctx, uuid.New(), evt)
	})
}

func (s *Service) publish(event string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		metrics.IncError("publisher", event)
		s.logger.Warn("onramp.publish_failed", zap.String("event", event), zap.Error(err))
	}
}
