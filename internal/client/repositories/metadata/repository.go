// Package metadata is the client's small persistent key/value store: the
// stashed return path, the last known user for instant paint before the
// startup probe answers, and similar client-side bookkeeping.
package metadata

import "context"

// Well-known keys.
const (
	KeyReturnTo = "return_to"
	KeyLastUser = "last_user"
)

// Repository persists opaque values by key. Get returns (nil, nil) for a
// missing key; Delete of a missing key is a no-op.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
