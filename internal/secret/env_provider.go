package secret

import (
	"context"
	"fmt"
	"os"
)

// EnvProvider resolves a "secretref:env:<VAR>" reference from the process
// environment. It backs the clearing-adapter Endpoint/credential fields
// that reference an operator-supplied secret rather than a literal
// config value, letting a deployment keep clearing-system mTLS material
// and endpoint URLs out of the adapter repository's plaintext rows.
type EnvProvider struct{}

// NewEnvProvider returns an EnvProvider.
func NewEnvProvider() *EnvProvider { return &EnvProvider{} }

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

// Resolve implements Provider. ref is the bare environment variable name.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("secret: environment variable %q is not set", ref)
	}
	return value, nil
}

// Close implements Provider. EnvProvider holds no resources to release.
func (p *EnvProvider) Close() error { return nil }

var _ Provider = (*EnvProvider)(nil)
