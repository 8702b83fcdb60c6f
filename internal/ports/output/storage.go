package output

import "context"

// KeyValueStore persists opaque string blobs by key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Update replaces the value of key with fn's result. Implementations
	// run fn while holding whatever lock keeps concurrent writers out.
	Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error
}
