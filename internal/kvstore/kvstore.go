package kvstore

import (
	"context"
	"errors"
)

// Store is an opaque namespaced byte store. The cart persists its whole
// serialized state as one record under a fixed namespace; the store does not
// interpret the payload.
// Consumers define this interface, not the backend implementations.
type Store interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, data []byte) error
	Delete(ctx context.Context, namespace string) error
}

// ErrNotFound distinguishes a first run (no record yet) from an empty payload.
var ErrNotFound = errors.New("record not found")
