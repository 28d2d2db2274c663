package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// ErrNotFound is returned when a cached key is absent or expired.
var ErrNotFound = errors.New("store: not found")

// Store defines the contract for the gateway's cache and optional reference data.
type Store interface {
	GetCountry(ctx context.Context, ip string) (string, error)
	PutCountry(ctx context.Context, ip, countryCode string, ttl time.Duration) error
	LoadProviderCountries(ctx context.Context) (map[model.ProviderID][]string, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// HybridStore keeps short-lived lookups in Redis and reads provider reference data from Postgres.
type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first store. Postgres is optional and only used when pgURL is set.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

// NewWithClient wraps an existing Redis client. Used by tests and by callers that share a client.
func NewWithClient(rdb *redis.Client, logger *zap.Logger) *HybridStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridStore{redis: rdb, logger: logger}
}

// providerCountriesKey holds the last overrides read from Postgres.
const providerCountriesKey = "onramp:provider_countries"

func countryKey(ip string) string {
	return "geo:country:" + ip
}

// GetCountry returns the cached ISO country for ip, or ErrNotFound.
func (s *HybridStore) GetCountry(ctx context.Context, ip string) (string, error) {
	if s.redis == nil {
		return "", ErrNotFound
	}
	v, err := s.redis.Get(ctx, countryKey(ip)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get country: %w", err)
	}
	return v, nil
}

// PutCountry caches the country resolved for ip. Empty codes are not cached so that
// an unresolvable address is retried on the next request.
func (s *HybridStore) PutCountry(ctx context.Context, ip, countryCode string, ttl time.Duration) error {
	if s.redis == nil || countryCode == "" {
		return nil
	}
	return s.redis.Set(ctx, countryKey(ip), strings.ToUpper(countryCode), ttl).Err()
}

// LoadProviderCountries reads country allow-lists from onramp.provider_country.
// Returns an empty map when Postgres is not configured. Each successful read is copied
// to Redis, and that copy is served when Postgres cannot be queried.
func (s *HybridStore) LoadProviderCountries(ctx context.Context) (map[model.ProviderID][]string, error) {
	if s.PG == nil {
		return make(map[model.ProviderID][]string), nil
	}

	out, err := s.queryProviderCountries(ctx)
	if err != nil {
		var cached map[model.ProviderID][]string
		if cerr := s.GetJSON(ctx, providerCountriesKey, &cached); cerr == nil {
			s.logger.Warn("store.pg.provider_countries_from_cache", zap.Error(err))
			return cached, nil
		}
		return nil, err
	}

	if err := s.SetJSON(ctx, providerCountriesKey, out, 0); err != nil {
		s.logger.Warn("store.redis.provider_countries_cache_failed", zap.Error(err))
	}
	return out, nil
}

func (s *HybridStore) queryProviderCountries(ctx context.Context) (map[model.ProviderID][]string, error) {
	out := make(map[model.ProviderID][]string)
	rows, err := s.PG.Query(ctx, `
		SELECT provider, country_code
		FROM onramp.provider_country
		WHERE enabled = TRUE
		ORDER BY provider, country_code;
	`)
	if err != nil {
		s.logger.Error("store.pg.provider_countries_failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var provider, country string
		if err := rows.Scan(&provider, &country); err != nil {
			return nil, err
		}
		id := model.ProviderID(strings.ToLower(provider))
		out[id] = append(out[id], strings.ToUpper(country))
	}
	return out, rows.Err()
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.redis == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	if s.redis == nil {
		return ErrNotFound
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
