package transak

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/internal/rate"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/pkg/model"
)

type Config struct {
	BaseURL   string
	WidgetURL string
	APIKey    string
	RetryMax  int
}

// Adapter implements providers.Adapter for Transak.
type Adapter struct {
	logger *zap.Logger
	client *Client
	mapper *Mapper
	cfg    Config
	newID  func() string
}

var _ providers.Adapter = (*Adapter)(nil)

func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, cfg Config) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		logger: logger,
		client: NewClient(logger, rateMgr, httpClient, cfg.RetryMax, cfg.BaseURL),
		mapper: NewMapper(),
		cfg:    cfg,
		newID:  func() string { return uuid.NewString() },
	}
}

func (a *Adapter) ID() model.ProviderID { return model.ProviderTransak }

func (a *Adapter) FetchQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	resp, err := a.client.GetQuote(ctx, a.mapper.QuoteQuery(req, a.cfg.APIKey))
	if err != nil {
		return nil, err
	}
	if resp.Response.QuoteID == "" && resp.Response.CryptoAmount.IsZero() {
		return nil, &providers.RejectedError{Provider: model.ProviderTransak, Message: "empty quote"}
	}

	q := a.mapper.FromQuote(req, resp.Response)
	a.logger.Debug("transak.quote_received",
		zap.String("quote_id", q.ProviderResponseID),
		zap.String("counter_amount", q.CounterAmount.String()))
	return q, nil
}

func (a *Adapter) BuildRedirect(req model.RedirectRequest, signed model.SignedPayload) (*model.RedirectTarget, error) {
	params := a.mapper.RedirectParams(req, signed, a.cfg.APIKey, a.newID())
	return providers.NewRedirectTarget(model.ProviderTransak, a.cfg.WidgetURL, params, signed)
}
