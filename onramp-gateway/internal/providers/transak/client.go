package transak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/internal/httpclient"
	"github.com/Checker-Finance/onramp/internal/rate"
)

const venueTag = "transak"

// Client wraps HTTP communication with the Transak public pricing API.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

func NewClient(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, retryMax int, baseURL string) *Client {
	exec := httpclient.New(logger, rateMgr, httpClient, retryMax, venueTag, func(status int, body []byte) error {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("transak.client_error",
			zap.Int("status", status),
			zap.String("name", errResp.Error.Name),
			zap.String("message", errResp.Error.Message))

		msg := errResp.Error.Message
		if msg == "" {
			msg = string(body)
		}
		return &httpclient.StatusError{Venue: venueTag, Status: status, Body: body, Msg: msg}
	})
	return &Client{logger: logger, exec: exec, baseURL: baseURL}
}

// GetQuote fetches a buy quote.
// GET /api/v1/pricing/public/quotes
func (c *Client) GetQuote(ctx context.Context, query url.Values) (*QuoteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/pricing/public/quotes?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var resp QuoteResponse
	if err := c.exec.DoJSON(ctx, req, venueTag, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
