package mtpelerin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/internal/httpclient"
	"github.com/Checker-Finance/onramp/internal/rate"
)

const venueTag = "mtpelerin"

// Client wraps HTTP communication with the Mt Pelerin public API.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
}

// NewClient constructs a Mt Pelerin HTTP client. 4xx bodies are decoded into a *httpclient.StatusError.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, retryMax int, baseURL, apiKey string) *Client {
	exec := httpclient.New(logger, rateMgr, httpClient, retryMax, venueTag, func(status int, body []byte) error {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)

		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		logger.Warn("mtpelerin.client_error",
			zap.Int("status", status),
			zap.String("message", msg))

		return &httpclient.StatusError{Venue: venueTag, Status: status, Body: body, Msg: msg}
	})
	return &Client{logger: logger, exec: exec, baseURL: baseURL, apiKey: apiKey}
}

// Convert prices a fiat/crypto conversion.
// POST /currency_rates/convert
func (c *Client) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/currency_rates/convert", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-Api-Key", c.apiKey)
	}

	var resp ConvertResponse
	if err := c.exec.DoJSON(ctx, httpReq, venueTag, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
