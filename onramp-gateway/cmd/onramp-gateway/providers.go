package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Checker-Finance/onramp/internal/rate"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers/binance"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers/mtpelerin"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/providers/transak"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/registry"
	internalsecrets "github.com/Checker-Finance/onramp/onramp-gateway/internal/secrets"
	"github.com/Checker-Finance/onramp/onramp-gateway/pkg/config"
	"github.com/Checker-Finance/onramp/pkg/logger"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// requiresPaymentMethod is the per-provider redirect policy.
var requiresPaymentMethod = map[model.ProviderID]bool{
	model.ProviderTransak: true,
}

// buildRegistry registers every enabled provider whose credentials resolve. A provider
// with missing credentials is skipped with a warning rather than failing startup.
func buildRegistry(
	ctx context.Context,
	cfg *config.Config,
	resolver *internalsecrets.Resolver,
	rateMgr *rate.Manager,
	countryOverrides map[model.ProviderID][]string,
) (*registry.Registry, error) {
	logg := logger.S()
	b := registry.NewBuilder(cfg.ProviderTimeout)

	for _, p := range cfg.Providers {
		creds, err := resolver.ProviderCredentials(ctx, p.ID)
		if err != nil {
			if p.ID != model.ProviderMtPelerin {
				logg.Warnw("provider disabled: credentials unavailable", "provider", p.ID, "error", err)
				continue
			}
			creds = &internalsecrets.Credentials{}
		}

		adapter, err := newAdapter(cfg, p, creds, rateMgr)
		if err != nil {
			logg.Warnw("provider disabled: adapter init failed", "provider", p.ID, "error", err)
			continue
		}

		countries := p.Countries
		if override, ok := countryOverrides[p.ID]; ok && len(override) > 0 {
			countries = override
		}
		b.Register(adapter, registry.Options{
			Countries:             countries,
			RequiresPaymentMethod: requiresPaymentMethod[p.ID],
			Timeout:               p.Timeout,
		})
	}
	return b.Build()
}

func newAdapter(cfg *config.Config, p config.ProviderConfig, creds *internalsecrets.Credentials, rateMgr *rate.Manager) (providers.Adapter, error) {
	httpClient := &http.Client{Timeout: p.Timeout}
	log := logger.Named(string(p.ID))

	switch p.ID {
	case model.ProviderTransak:
		return transak.New(log, rateMgr, httpClient, transak.Config{
			BaseURL:   p.BaseURL,
			WidgetURL: p.WidgetURL,
			APIKey:    creds.APIKey,
			RetryMax:  cfg.ProviderRetryMax,
		}), nil
	case model.ProviderBinance:
		signer, err := binance.NewRequestSigner(creds.ClientID, creds.PrivateKey)
		if err != nil {
			return nil, err
		}
		return binance.New(log, rateMgr, httpClient, signer, binance.Config{
			BaseURL:      p.BaseURL,
			WidgetURL:    p.WidgetURL,
			MerchantCode: creds.MerchantCode,
			RetryMax:     cfg.ProviderRetryMax,
		}), nil
	case model.ProviderMtPelerin:
		return mtpelerin.New(log, rateMgr, httpClient, mtpelerin.Config{
			BaseURL:      p.BaseURL,
			WidgetURL:    p.WidgetURL,
			APIKey:       creds.APIKey,
			ReferralCode: creds.ReferralCode,
			CardPayment:  p.CardPayment,
			RetryMax:     cfg.ProviderRetryMax,
		}), nil
	default:
		return nil, fmt.Errorf("no adapter for provider %q", p.ID)
	}
}
