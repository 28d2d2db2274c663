// Package redirect turns a caller's provider selection into a signed hand-off target.
package redirect

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/metrics"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/registry"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/signing"
	"github.com/Checker-Finance/onramp/pkg/model"
	"github.com/Checker-Finance/onramp/pkg/utils"
)

// evmNetworks take 0x-prefixed 20-byte addresses.
var evmNetworks = map[string]struct{}{
	"ethereum":  {},
	"polygon":   {},
	"arbitrum":  {},
	"optimism":  {},
	"base":      {},
	"bsc":       {},
	"avalanche": {},
}

// Builder validates provider policy, signs the request and delegates to the provider's adapter.
type Builder struct {
	logger *zap.Logger
	reg    *registry.Registry
	signer *signing.RedirectSigner
}

func NewBuilder(logger *zap.Logger, reg *registry.Registry, signer *signing.RedirectSigner) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, reg: reg, signer: signer}
}

// Build validates, signs and builds the redirect for req. Failures are *model.RequestError
// (BadRequest or SigningFailure) so the caller gets exactly one explicit error.
func (b *Builder) Build(req model.RedirectRequest) (*model.RedirectTarget, error) {
	entry, err := b.validate(req)
	if err != nil {
		metrics.IncRedirect(string(req.Provider), "bad_request")
		return nil, err
	}

	signed, err := b.signer.SignRequest(req)
	if err != nil {
		metrics.IncRedirect(string(req.Provider), "signing_failure")
		b.logger.Error("redirect.sign_failed", zap.String("provider", string(req.Provider)), zap.Error(err))
		return nil, err
	}

	target, err := entry.Adapter.BuildRedirect(req, signed)
	if err != nil {
		if model.IsBadRequest(err) {
			metrics.IncRedirect(string(req.Provider), "bad_request")
			return nil, err
		}
		metrics.IncRedirect(string(req.Provider), "error")
		b.logger.Error("redirect.build_failed", zap.String("provider", string(req.Provider)), zap.Error(err))
		return nil, model.NewSigningFailure("build redirect", err)
	}

	metrics.IncRedirect(string(req.Provider), "ok")
	b.logger.Info("redirect.signed",
		zap.String("provider", string(req.Provider)),
		zap.String("scheme", b.signer.Scheme()),
		zap.String("network", req.Network),
		zap.String("address", utils.MaskAddress(req.Address)))
	return target, nil
}

func (b *Builder) validate(req model.RedirectRequest) (*registry.Entry, error) {
	entry, ok := b.reg.Get(req.Provider)
	if !ok {
		return nil, model.NewBadRequest("provider", "provider %q is not available", req.Provider)
	}
	if !req.AmountType.Valid() {
		return nil, model.NewBadRequest("amountType", "'amountType' must be fiat or crypto")
	}
	if !req.Amount.IsPositive() {
		return nil, model.NewBadRequest("amount", "'amount' must be greater than zero")
	}
	if entry.RequiresPaymentMethod && strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, model.NewBadRequest("paymentMethod", "'paymentMethod' required for %s provider", req.Provider)
	}
	if req.Address != "" && IsEVMNetwork(req.Network) && !common.IsHexAddress(req.Address) {
		return nil, model.NewBadRequest("address", "'address' is not a valid %s address", req.Network)
	}
	return entry, nil
}

// IsEVMNetwork reports whether network uses EVM account addresses.
func IsEVMNetwork(network string) bool {
	_, ok := evmNetworks[strings.ToLower(network)]
	return ok
}
