package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/onramp/internal/rate"
	"github.com/Checker-Finance/onramp/internal/store"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/api"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/eligibility"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/geoip"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/onramp"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/publisher"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/quote"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/redirect"
	internalsecrets "github.com/Checker-Finance/onramp/onramp-gateway/internal/secrets"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/signing"
	"github.com/Checker-Finance/onramp/onramp-gateway/pkg/config"
	"github.com/Checker-Finance/onramp/pkg/logger"
	"github.com/Checker-Finance/onramp/pkg/secrets"
	"github.com/Checker-Finance/onramp/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Infof("starting [%s]...", cfg.ServiceName)
	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))

	// --- Secrets provider ---
	var provider secrets.Provider
	switch cfg.SecretsSource {
	case "aws":
		p, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		provider = p
	default:
		provider = secrets.NewEnvProvider()
	}

	resolver := internalsecrets.NewResolver(logger.Named("secrets"), cfg.Env, provider, cfg.CacheTTL)
	stopCleaner := make(chan struct{})
	resolver.StartCleaner(cfg.CleanupFreq, stopCleaner)

	if found, err := resolver.DiscoverProviders(ctx); err != nil {
		logg.Warnw("failed to discover provider secrets", "error", err)
	} else {
		logg.Infow("discovered provider secrets", "providers", found)
	}

	// --- Redirect signing key (loaded once, never logged) ---
	key, err := resolver.SigningKey(ctx)
	if err != nil {
		logg.Fatalw("failed to load signing key", "error", err)
	}
	scheme := cfg.SigningScheme
	if key.Scheme != "" {
		scheme = key.Scheme
	}
	rawSigner, err := signing.New(scheme, key.Key)
	if err != nil {
		logg.Fatalw("failed to init signer", "scheme", scheme, "error", err)
	}
	redirectSigner := signing.NewRedirectSigner(logger.Named("signing"), rawSigner)
	if eth, ok := rawSigner.(*signing.EthSigner); ok {
		logg.Infow("redirect signer ready", "scheme", scheme, "address", eth.Address().Hex())
	} else {
		logg.Infow("redirect signer ready", "scheme", scheme)
	}

	// --- Store (Redis + optional Postgres) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, logger.Named("store"))
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	overrides, err := st.LoadProviderCountries(ctx)
	if err != nil {
		logg.Warnw("failed to load provider country overrides, using configured lists", "error", err)
	}

	// --- NATS publisher (optional: analytics only) ---
	var (
		nc     *nats.Conn
		events onramp.EventPublisher
	)
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			logg.Warnw("NATS unavailable, events disabled", "error", err)
		} else if pub, err := publisher.New(conn, cfg.EventsSubjectPrefix, "ONRAMP_EVENTS"); err != nil {
			logg.Warnw("failed to init publisher, events disabled", "error", err)
			conn.Close()
		} else {
			nc = conn
			events = pub
		}
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.ProviderRPS,
		Burst:             cfg.ProviderRPS,
	})

	// --- Provider registry ---
	reg, err := buildRegistry(ctx, cfg, resolver, rateMgr, overrides)
	if err != nil {
		logg.Fatalw("failed to build provider registry", "error", err)
	}
	logg.Infow("providers registered", "providers", reg.IDs(), "max_timeout", reg.MaxTimeout())

	// --- Core ---
	elig := eligibility.New(reg, cfg.GeoFailOpen)
	geo := geoip.NewResolver(logger.Named("geoip"), &http.Client{Timeout: cfg.GeoTimeout}, cfg.GeoLookupURL, st, cfg.GeoCacheTTL)
	svc := onramp.NewService(logger.Named("onramp"), onramp.Deps{
		Aggregator:  quote.NewAggregator(logger.Named("quote"), reg, elig),
		Redirects:   redirect.NewBuilder(logger.Named("redirect"), reg, redirectSigner),
		Signer:      redirectSigner,
		Eligibility: elig,
		Geo:         geo,
		Events:      events,
	})

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
		ProxyHeader:  cfg.ProxyHeader,
	})

	handler := api.NewHandler(logger.Named("api"), svc, reg.Has)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow(fmt.Sprintf("[%s] running", cfg.ServiceName),
		"env", cfg.Env,
		"events", events != nil,
		"geo_fail_open", cfg.GeoFailOpen,
		"provider_timeout", cfg.ProviderTimeout)

	<-ctx.Done()
	logg.Infof("shutting down [%s]...", cfg.ServiceName)

	close(stopCleaner)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
