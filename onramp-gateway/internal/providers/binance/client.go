package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/internal/httpclient"
	"github.com/Checker-Finance/onramp/internal/rate"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/pkg/model"
)

const venueTag = "binance"

// Client wraps HTTP communication with the Binance Connect API.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	signer  *RequestSigner
	baseURL string
}

func NewClient(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, retryMax int, baseURL string, signer *RequestSigner) *Client {
	exec := httpclient.New(logger, rateMgr, httpClient, retryMax, venueTag, func(status int, body []byte) error {
		var env Envelope
		_ = json.Unmarshal(body, &env)
		logger.Warn("binance.client_error",
			zap.Int("status", status),
			zap.String("code", env.Code),
			zap.String("message", env.Message))
		msg := env.Message
		if msg == "" {
			msg = string(body)
		}
		return &httpclient.StatusError{Venue: venueTag, Status: status, Body: body, Msg: msg}
	})
	return &Client{logger: logger, exec: exec, signer: signer, baseURL: baseURL}
}

// EstimatedQuote prices a buy.
// POST /papi/v1/ramp/connect/buy/estimated-quote
func (c *Client) EstimatedQuote(ctx context.Context, req *EstimatedQuoteRequest) (*EstimatedQuote, error) {
	var out EstimatedQuote
	if err := c.postJSON(ctx, "/papi/v1/ramp/connect/buy/estimated-quote", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// postJSON signs and sends body, then unwraps the envelope into out. success=false is a rejection.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != nil {
		if err := c.signer.Apply(req, payload); err != nil {
			return err
		}
	}

	var env Envelope
	if err := c.exec.DoJSON(ctx, req, venueTag, &env); err != nil {
		return err
	}
	if !env.Success {
		return &providers.RejectedError{Provider: model.ProviderBinance, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("binance: decode data: %w", err)
		}
	}
	return nil
}
