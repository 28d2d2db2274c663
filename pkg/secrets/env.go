package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// EnvProvider serves secrets from environment variables for local development.
// The secret "dev/onramp/transak" is read from DEV_ONRAMP_TRANSAK and must hold a JSON object.
type EnvProvider struct {
	lookup  func(string) (string, bool)
	environ func() []string
}

// NewEnvProvider returns a Provider over the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv, environ: os.Environ}
}

// EnvVarName maps a secret name to the environment variable holding it.
func EnvVarName(name string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return strings.ToUpper(r.Replace(name))
}

func (p *EnvProvider) GetSecret(_ context.Context, name string) (map[string]string, error) {
	raw, ok := p.lookup(EnvVarName(name))
	if !ok || raw == "" {
		return nil, fmt.Errorf("secret [%s] not set (expected %s)", name, EnvVarName(name))
	}
	var result map[string]string
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("invalid secret format for [%s]: %w", name, err)
	}
	return result, nil
}

// ListSecrets reports the secret names whose variable starts with the mapped prefix.
// Names are returned in their variable form lower-cased with "_" turned back into "/".
func (p *EnvProvider) ListSecrets(_ context.Context, prefix string) ([]string, error) {
	want := EnvVarName(prefix)
	var names []string
	for _, kv := range p.environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, want) {
			continue
		}
		names = append(names, strings.ReplaceAll(strings.ToLower(key), "_", "/"))
	}
	sort.Strings(names)
	return names, nil
}
