package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Checker-Finance/onramp/pkg/config"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// ProviderConfig is the static, non-secret configuration of one on-ramp provider.
// API keys are resolved from the secrets provider at startup.
type ProviderConfig struct {
	ID          model.ProviderID
	BaseURL     string
	WidgetURL   string
	Countries   []string
	Timeout     time.Duration
	CardPayment bool // Mt Pelerin: quote card rather than bank-transfer pricing
}

// Config holds the runtime configuration for the onramp-gateway.
type Config struct {
	ServiceName      string
	Env              string
	LogLevel         string
	Port             int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int
	ProxyHeader      string

	DatabaseURL string
	NATSURL     string
	RedisAddr   string
	RedisDB     int
	AWSRegion   string

	CacheTTL    time.Duration
	CleanupFreq time.Duration

	EventsSubjectPrefix string

	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration

	// SecretsSource is "env" or "aws".
	SecretsSource string
	// SigningScheme is "hmac" or "eth".
	SigningScheme string

	ProviderTimeout  time.Duration
	ProviderRetryMax int
	ProviderRPS      int

	GeoFailOpen  bool
	GeoLookupURL string
	GeoTimeout   time.Duration
	GeoCacheTTL  time.Duration

	// Providers are in registration order, which is also the final sort tie-break.
	Providers []ProviderConfig
}

var providerDefaults = map[model.ProviderID]ProviderConfig{
	model.ProviderTransak: {
		BaseURL:   "https://api.transak.com",
		WidgetURL: "https://global.transak.com",
		Countries: []string{"GB", "US", "CA", "AU", "IN", "BR", "MX", "FR", "DE", "ES", "IT", "NL", "BE", "PT", "IE", "AT", "FI", "SE", "DK", "NO", "PL", "CH"},
	},
	model.ProviderBinance: {
		BaseURL:   "https://api.commonservice.io",
		WidgetURL: "https://www.binance.com/en/crypto/buy",
		Countries: []string{"FR", "DE", "ES", "IT", "NL", "BE", "PT", "IE", "AT", "FI", "SE", "DK", "PL", "BR", "MX", "AR", "AU", "IN", "TR"},
	},
	model.ProviderMtPelerin: {
		BaseURL:   "https://api.mtpelerin.com",
		WidgetURL: "https://buy.mtpelerin.com",
		Countries: []string{"GB", "CH", "LI", "LU", "FR", "DE", "ES", "IT", "NL", "BE", "PT", "IE", "AT", "FI", "SE", "DK", "NO", "PL"},
	},
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:         pkgconfig.GetEnv("SERVICE_NAME", "onramp-gateway"),
		Env:                 pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:            pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:                pkgconfig.GetEnvInt("ONRAMP_PORT", 9040),
		HTTPReadTimeout:     pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:    pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		HTTPIdleTimeout:     pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:       pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 64*1024),
		ProxyHeader:         pkgconfig.GetEnv("PROXY_HEADER", "X-Forwarded-For"),
		DatabaseURL:         pkgconfig.GetEnv("DATABASE_URL", ""),
		NATSURL:             pkgconfig.GetEnv("NATS_URL", "nats://localhost:4222"),
		RedisAddr:           pkgconfig.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             pkgconfig.GetEnvInt("REDIS_DB", 0),
		AWSRegion:           pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		CacheTTL:            pkgconfig.GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:         pkgconfig.GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
		EventsSubjectPrefix: pkgconfig.GetEnv("EVENTS_SUBJECT_PREFIX", "evt.onramp"),
		PGMaxConns:          pkgconfig.GetEnvInt("PG_MAX_CONNS", 5),
		PGMinConns:          pkgconfig.GetEnvInt("PG_MIN_CONNS", 1),
		PGMaxConnLifetime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: pkgconfig.GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),
		SecretsSource:       strings.ToLower(pkgconfig.GetEnv("SECRETS_SOURCE", "env")),
		SigningScheme:       strings.ToLower(pkgconfig.GetEnv("SIGNING_SCHEME", "hmac")),
		ProviderTimeout:     pkgconfig.GetEnvDuration("PROVIDER_TIMEOUT", 5*time.Second),
		ProviderRetryMax:    pkgconfig.GetEnvInt("PROVIDER_RETRY_MAX", 1),
		ProviderRPS:         pkgconfig.GetEnvInt("PROVIDER_RPS", 20),
		GeoFailOpen:         pkgconfig.GetEnvBool("GEO_FAIL_OPEN", false),
		GeoLookupURL:        pkgconfig.GetEnv("GEO_LOOKUP_URL", "https://ipapi.co"),
		GeoTimeout:          pkgconfig.GetEnvDuration("GEO_TIMEOUT", 2*time.Second),
		GeoCacheTTL:         pkgconfig.GetEnvDuration("GEO_CACHE_TTL", 6*time.Hour),
	}

	if cfg.ProviderRetryMax > 1 {
		cfg.ProviderRetryMax = 1
	}

	enabled := pkgconfig.GetEnvList("ENABLED_PROVIDERS",
		[]string{string(model.ProviderTransak), string(model.ProviderBinance), string(model.ProviderMtPelerin)})
	seen := make(map[model.ProviderID]bool)
	for _, raw := range enabled {
		id := model.ParseProviderID(raw)
		if !id.Known() || seen[id] {
			continue
		}
		seen[id] = true
		cfg.Providers = append(cfg.Providers, loadProvider(id, cfg.ProviderTimeout))
	}
	return cfg
}

func loadProvider(id model.ProviderID, defaultTimeout time.Duration) ProviderConfig {
	def := providerDefaults[id]
	prefix := strings.ToUpper(string(id)) + "_"

	countries := pkgconfig.GetEnvList(prefix+"COUNTRIES", def.Countries)
	upper := make([]string, 0, len(countries))
	for _, c := range countries {
		upper = append(upper, strings.ToUpper(c))
	}

	return ProviderConfig{
		ID:          id,
		BaseURL:     strings.TrimSuffix(pkgconfig.GetEnv(prefix+"BASE_URL", def.BaseURL), "/"),
		WidgetURL:   pkgconfig.GetEnv(prefix+"WIDGET_URL", def.WidgetURL),
		Countries:   upper,
		Timeout:     pkgconfig.GetEnvDuration(prefix+"TIMEOUT", defaultTimeout),
		CardPayment: pkgconfig.GetEnvBool(prefix+"CARD_PAYMENT", false),
	}
}

// Provider returns the configuration for id, if enabled.
func (c *Config) Provider(id model.ProviderID) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
