package binance

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
	BaseURL      string
	WidgetURL    string
	MerchantCode string
	RetryMax     int
}

// Adapter implements providers.Adapter for Binance Connect.
type Adapter struct {
	logger *zap.Logger
	client *Client
	mapper *Mapper
	cfg    Config
	newID  func() string
}

var _ providers.Adapter = (*Adapter)(nil)

// New builds the adapter. signer may be nil in environments without merchant credentials;
// the API will then reject quote calls.
func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, signer *RequestSigner, cfg Config) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		logger: logger,
		client: NewClient(logger, rateMgr, httpClient, cfg.RetryMax, cfg.BaseURL, signer),
		mapper: NewMapper(),
		cfg:    cfg,
		newID:  func() string { return uuid.NewString() },
	}
}

func (a *Adapter) ID() model.ProviderID { return model.ProviderBinance }

func (a *Adapter) FetchQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	bReq, err := a.mapper.ToEstimatedQuoteRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.EstimatedQuote(ctx, bReq)
	if err != nil {
		return nil, err
	}
	q := a.mapper.FromEstimatedQuote(req, *resp)
	if !q.CounterAmount.IsPositive() {
		return nil, &providers.RejectedError{Provider: model.ProviderBinance, Message: "empty quote"}
	}
	a.logger.Debug("binance.quote_received",
		zap.String("quote_id", q.ProviderResponseID),
		zap.String("counter_amount", q.CounterAmount.String()))
	return q, nil
}

func (a *Adapter) BuildRedirect(req model.RedirectRequest, signed model.SignedPayload) (*model.RedirectTarget, error) {
	params, err := a.mapper.RedirectParams(req, signed, a.cfg.MerchantCode, a.newID())
	if err != nil {
		return nil, err
	}
	return providers.NewRedirectTarget(model.ProviderBinance, a.cfg.WidgetURL, params, signed)
}
