package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/Checker-Finance/onramp/pkg/secrets"
)

// Resolver resolves named service configuration (provider credentials, signing keys)
// from a secrets provider, caching results locally to reduce API calls. It is generic
// over the resolved config type T so every provider can share it.
//
// Secret naming convention: {env}/{service}/{name}
type Resolver[T any] struct {
	logger   *zap.Logger
	env      string
	service  string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[T]
}

// NewResolver constructs a generic config resolver.
func NewResolver[T any](
	logger *zap.Logger,
	env string,
	service string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[T],
) *Resolver[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver[T]{
		logger:   logger,
		env:      env,
		service:  service,
		provider: provider,
		cache:    cache,
	}
}

// SecretName builds the secrets-store key for name.
func (r *Resolver[T]) SecretName(name string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, r.service, name))
}

// Resolve fetches or caches config T for name.
// parse extracts T from the raw secret map; it should validate required fields.
func (r *Resolver[T]) Resolve(ctx context.Context, name string, parse func(map[string]string) (T, error)) (T, error) {
	key := r.SecretName(name)

	if cfg, ok := r.cache.Get(key); ok {
		return cfg, nil
	}

	secretMap, err := r.provider.GetSecret(ctx, key)
	if err != nil {
		r.logger.Warn("secrets.fetch_failed",
			zap.String("key", key),
			zap.Error(err))
		var zero T
		return zero, fmt.Errorf("resolve %q: %w", name, err)
	}

	cfg, err := parse(secretMap)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parse secret %q: %w", key, err)
	}

	r.cache.Put(key, cfg)

	// Values are never logged, only the name.
	r.logger.Info("secrets.resolved",
		zap.String("service", r.service),
		zap.String("name", name))
	return cfg, nil
}

// Discover lists the names configured under {env}/{service}/.
func (r *Resolver[T]) Discover(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(fmt.Sprintf("%s/%s/", r.env, r.service))

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover secrets: %w", err)
	}

	var out []string
	for _, n := range names {
		lower := strings.ToLower(n)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		trimmed := strings.TrimPrefix(lower, prefix)
		if trimmed != "" && !strings.Contains(trimmed, "/") {
			out = append(out, trimmed)
		}
	}

	r.logger.Info("secrets.discovered",
		zap.String("service", r.service),
		zap.Strings("names", out))
	return out, nil
}
