package config

import "context"

// SecretProvider resolves secret values by key. SSMProvider reads AWS SSM
// Parameter Store; EnvVarProvider reads the process environment.
type SecretProvider interface {
	// GetParametersBatch returns key -> plaintext for every key it could
	// resolve. Keys that do not exist are omitted or reported as an error,
	// depending on the implementation.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
