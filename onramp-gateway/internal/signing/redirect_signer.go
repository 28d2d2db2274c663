package signing

import (
	"encoding/base64"

	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/metrics"
	"github.com/Checker-Finance/onramp/pkg/model"
)

// RedirectSigner wraps a Signer with canonical serialization and base64 encoding.
// The key is loaded once at startup and never logged.
type RedirectSigner struct {
	logger *zap.Logger
	signer Signer
}

func NewRedirectSigner(logger *zap.Logger, signer Signer) *RedirectSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectSigner{logger: logger, signer: signer}
}

// Sign signs an arbitrary string and returns the base64 signature.
func (s *RedirectSigner) Sign(msg string) (string, error) {
	if s == nil || s.signer == nil {
		metrics.IncSignature("none", "error")
		return "", model.NewSigningFailure("signing key unavailable", nil)
	}
	sig, err := s.signer.Sign([]byte(msg))
	if err != nil {
		metrics.IncSignature(s.signer.Scheme(), "error")
		s.logger.Error("signing.sign_failed", zap.String("scheme", s.signer.Scheme()), zap.Error(err))
		return "", model.NewSigningFailure("sign failed", err)
	}
	metrics.IncSignature(s.signer.Scheme(), "ok")
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature over msg.
func (s *RedirectSigner) Verify(msg, signature string) bool {
	if s == nil || s.signer == nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return s.signer.Verify([]byte(msg), sig)
}

// SignRequest canonicalizes r and signs it.
func (s *RedirectSigner) SignRequest(r model.RedirectRequest) (model.SignedPayload, error) {
	canonical := Canonicalize(r)
	sig, err := s.Sign(canonical)
	if err != nil {
		return model.SignedPayload{}, err
	}
	return model.SignedPayload{CanonicalString: canonical, Signature: sig}, nil
}

// VerifyRequest reports whether signature matches the canonical form of r.
func (s *RedirectSigner) VerifyRequest(r model.RedirectRequest, signature string) bool {
	return s.Verify(Canonicalize(r), signature)
}

// Scheme names the underlying algorithm.
func (s *RedirectSigner) Scheme() string {
	if s == nil || s.signer == nil {
		return ""
	}
	return s.signer.Scheme()
}
