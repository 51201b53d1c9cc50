package registry

import (
	"os"
	"strings"
)

// EnvCredentials resolves provider credentials from environment
// variables. Each provider maps to one variable name; unmapped
// providers fall back to the <PROVIDER>_API_KEY convention.
type EnvCredentials struct {
	envVars map[string]string
}

// NewEnvCredentials creates a credential source. envVars maps provider
// name to the environment variable holding its API key; a nil or
// partial map is fine.
func NewEnvCredentials(envVars map[string]string) *EnvCredentials {
	return &EnvCredentials{envVars: envVars}
}

// EnvVar returns the environment variable consulted for a provider.
func (c *EnvCredentials) EnvVar(provider string) string {
	if c.envVars != nil {
		if v, ok := c.envVars[provider]; ok && v != "" {
			return v
		}
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// HasCredential reports whether a non-empty credential is present for
// the provider. It never errors.
func (c *EnvCredentials) HasCredential(provider string) bool {
	return c.Key(provider) != ""
}

// Key returns the credential value, or "" when absent.
func (c *EnvCredentials) Key(provider string) string {
	value, ok := os.LookupEnv(c.EnvVar(provider))
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
