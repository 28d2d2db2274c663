// Package signing produces and verifies redirect signatures.
package signing

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	SchemeHMAC = "hmac"
	SchemeEth  = "eth"

	minHMACKeyLen = 32
)

// Signer signs and verifies raw messages. Implementations hold only read-only key material
// and are safe for concurrent use.
type Signer interface {
	Scheme() string
	Sign(msg []byte) ([]byte, error)
	Verify(msg, sig []byte) bool
}

// HMACSigner is a symmetric HMAC-SHA256 signer; the destination must share the key.
type HMACSigner struct {
	key []byte
}

func NewHMACSigner(key []byte) (*HMACSigner, error) {
	if len(key) < minHMACKeyLen {
		return nil, fmt.Errorf("hmac key must be at least %d bytes", minHMACKeyLen)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &HMACSigner{key: k}, nil
}

func (s *HMACSigner) Scheme() string { return SchemeHMAC }

func (s *HMACSigner) Sign(msg []byte) ([]byte, error) {
	h := hmac.New(sha256.New, s.key)
	h.Write(msg)
	return h.Sum(nil), nil
}

func (s *HMACSigner) Verify(msg, sig []byte) bool {
	expected, _ := s.Sign(msg)
	return hmac.Equal(expected, sig)
}

// EthSigner signs with a secp256k1 key using the EIP-191 personal message prefix, so any
// holder of the service's public address can verify a redirect without sharing a secret.
type EthSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewEthSigner parses a hex private key, with or without 0x.
func NewEthSigner(hexKey string) (*EthSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse secp256k1 key: %w", err)
	}
	return &EthSigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (s *EthSigner) Scheme() string { return SchemeEth }

// Address is the public address signatures recover to.
func (s *EthSigner) Address() common.Address { return s.address }

// Sign returns the 65-byte [R || S || V] signature with V in {27, 28}.
func (s *EthSigner) Sign(msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), s.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

func (s *EthSigner) Verify(msg, sig []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg), normalized)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == s.address
}

// ErrUnknownScheme is returned by New for an unsupported scheme name.
var ErrUnknownScheme = errors.New("unknown signing scheme")

// New builds a Signer for scheme from key material (raw secret for hmac, hex key for eth).
func New(scheme, key string) (Signer, error) {
	switch strings.ToLower(scheme) {
	case SchemeHMAC, "":
		return NewHMACSigner([]byte(key))
	case SchemeEth:
		return NewEthSigner(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}
