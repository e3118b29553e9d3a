package ports

import "context"

// SecretStore persists small secrets, encrypted at rest.
type SecretStore interface {
	// Get returns nil, nil when the key is not found.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
