// Package state provides the small key/value store the bot uses for
// idempotency keys and its last-lifecycle snapshot.
package state

import "context"

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
