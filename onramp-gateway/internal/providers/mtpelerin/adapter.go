package mtpelerin

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/internal/rate"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/pkg/model"
	"github.com/Checker-Finance/onramp/pkg/utils"
)

// Config holds Mt Pelerin settings. APIKey and ReferralCode are optional.
type Config struct {
	BaseURL      string
	WidgetURL    string
	APIKey       string
	ReferralCode string
	CardPayment  bool
	RetryMax     int
}

// Adapter implements providers.Adapter for Mt Pelerin.
type Adapter struct {
	logger *zap.Logger
	client *Client
	mapper *Mapper
	cfg    Config
}

var _ providers.Adapter = (*Adapter)(nil)

func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, cfg Config) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		logger: logger,
		client: NewClient(logger, rateMgr, httpClient, cfg.RetryMax, cfg.BaseURL, cfg.APIKey),
		mapper: NewMapper(),
		cfg:    cfg,
	}
}

func (a *Adapter) ID() model.ProviderID { return model.ProviderMtPelerin }

func (a *Adapter) FetchQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	convReq, err := a.mapper.ToConvertRequest(req)
	if err != nil {
		return nil, err
	}
	convReq.IsCardPayment = a.cfg.CardPayment

	resp, err := a.client.Convert(ctx, convReq)
	if err != nil {
		return nil, err
	}

	q := a.mapper.FromConvertResponse(req, resp, a.cfg.CardPayment)
	if !q.CounterAmount.IsPositive() {
		return nil, &providers.RejectedError{Provider: model.ProviderMtPelerin, Message: "empty quote"}
	}
	a.logger.Debug("mtpelerin.quote_received",
		zap.String("pair", convReq.SourceCurrency+"/"+convReq.DestCurrency),
		zap.String("counter_amount", q.CounterAmount.String()))
	return q, nil
}

func (a *Adapter) BuildRedirect(req model.RedirectRequest, signed model.SignedPayload) (*model.RedirectTarget, error) {
	params, err := a.mapper.RedirectParams(req, signed, a.cfg.ReferralCode)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("mtpelerin.redirect_built", zap.String("address", utils.MaskAddress(req.Address)))
	return providers.NewRedirectTarget(model.ProviderMtPelerin, a.cfg.WidgetURL, params, signed)
}
