// Package geoip resolves a caller IP to an ISO 3166-1 alpha-2 country code.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/internal/store"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/metrics"
	"github.com/Checker-Finance/onramp/pkg/utils"
)

// Unknown is returned whenever a country cannot be determined.
const Unknown = ""

// countryCache is the subset of store.Store the resolver needs.
type countryCache interface {
	GetCountry(ctx context.Context, ip string) (string, error)
	PutCountry(ctx context.Context, ip, countryCode string, ttl time.Duration) error
}

// Resolver looks countries up from an ipapi-compatible endpoint
// (GET {base}/{ip}/country/ returning "GB" or {"country_code":"GB"}) and caches the answer.
type Resolver struct {
	logger  *zap.Logger
	http    *http.Client
	baseURL string
	cache   countryCache
	ttl     time.Duration
}

func NewResolver(logger *zap.Logger, httpClient *http.Client, baseURL string, cache countryCache, ttl time.Duration) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Second}
	}
	return &Resolver{
		logger:  logger,
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   cache,
		ttl:     ttl,
	}
}

// ResolveCountry never fails: lookup errors are logged and reported as Unknown.
func (r *Resolver) ResolveCountry(ctx context.Context, ip string) string {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		metrics.IncGeoLookup("unknown")
		return Unknown
	}
	key := addr.String()

	if r.cache != nil {
		cc, err := r.cache.GetCountry(ctx, key)
		if err == nil && cc != "" {
			metrics.IncGeoLookup("cache")
			return cc
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			r.logger.Warn("geoip.cache_get_failed", zap.Error(err))
		}
	}

	cc, err := r.lookup(ctx, key)
	if err != nil {
		metrics.IncGeoLookup("error")
		r.logger.Warn("geoip.lookup_failed", zap.String("ip", utils.MaskIP(key)), zap.Error(err))
		return Unknown
	}
	if cc == Unknown {
		metrics.IncGeoLookup("unknown")
		return Unknown
	}

	metrics.IncGeoLookup("remote")
	if r.cache != nil {
		if err := r.cache.PutCountry(ctx, key, cc, r.ttl); err != nil {
			r.logger.Warn("geoip.cache_put_failed", zap.Error(err))
		}
	}
	return cc
}

func (r *Resolver) lookup(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/country/", r.baseURL, ip), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain, application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo lookup status %d", resp.StatusCode)
	}
	return parseCountry(body), nil
}

// parseCountry accepts a bare code or a JSON object carrying country_code / country.
func parseCountry(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if strings.HasPrefix(raw, "{") {
		var doc struct {
			CountryCode string `json:"country_code"`
			Country     string `json:"country"`
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			return Unknown
		}
		raw = doc.CountryCode
		if raw == "" {
			raw = doc.Country
		}
	}
	cc := strings.ToUpper(strings.TrimSpace(raw))
	if len(cc) != 2 {
		return Unknown
	}
	for _, c := range cc {
		if c < 'A' || c > 'Z' {
			return Unknown
		}
	}
	return cc
}
