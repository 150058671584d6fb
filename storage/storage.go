package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Marker keys written by the session store. The snapshot envelope lives
// under a distinct namespace so marker reads never confuse it for a token.
const (
	// KeyToken holds the raw bearer token string.
	KeyToken = "bearer_token"
	// KeyPrincipalKind holds the principal-kind tag ("staff" or "student").
	KeyPrincipalKind = "principal_kind"
	// KeySnapshot holds the schema-versioned state envelope.
	KeySnapshot = "snapshot/state"
)

// Store is the session-scoped key-value medium. Implementations must make a
// completed Set visible to any subsequent Get (read-after-write ordering is
// what lets a page reload observe the token Login just wrote).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
