package secrets

import "context"

// Provider is a source of JSON-map secrets (provider API keys, the redirect signing key).
// AWS Secrets Manager backs deployed environments; EnvProvider backs local development.
type Provider interface {
	// GetSecret retrieves a secret by name and returns its key-value map.
	GetSecret(ctx context.Context, name string) (map[string]string, error)

	// ListSecrets returns the names of all secrets whose name starts with prefix.
	ListSecrets(ctx context.Context, prefix string) ([]string, error)
}
