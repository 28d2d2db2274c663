package binance

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RequestSigner produces the X-Tesla-* headers Binance Connect requires.
// The signature is RSA-SHA256 over body||timestamp, base64 encoded.
type RequestSigner struct {
	clientID string
	key      *rsa.PrivateKey
	now      func() time.Time
}

// NewRequestSigner parses a PEM-encoded PKCS#8 or PKCS#1 RSA private key.
func NewRequestSigner(clientID, privateKeyPEM string) (*RequestSigner, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("binance: private key is not PEM encoded")
	}

	var key *rsa.PrivateKey
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rk, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("binance: private key is not RSA")
		}
		key = rk
	} else {
		rk, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("binance: parse private key: %w", err)
		}
		key = rk
	}

	return &RequestSigner{clientID: clientID, key: key, now: time.Now}, nil
}

// Sign returns base64(RSA-SHA256(payload)).
func (s *RequestSigner) Sign(payload []byte) (string, error) {
	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Apply sets the authentication headers for body on req.
func (s *RequestSigner) Apply(req *http.Request, body []byte) error {
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	sig, err := s.Sign(append(append([]byte{}, body...), ts...))
	if err != nil {
		return fmt.Errorf("binance: sign request: %w", err)
	}
	req.Header.Set("X-Tesla-ClientId", s.clientID)
	req.Header.Set("X-Tesla-Timestamp", ts)
	req.Header.Set("X-Tesla-Signature", sig)
	return nil
}
