// Package driven defines secondary port interfaces for external adapters.
package driven

import "context"

// TokenStore defines the driven port for persistent key-value storage of
// client credentials. Writes to the same key overwrite the previous value.
type TokenStore interface {
	// Get returns the value stored under key.
	// Returns ("", nil) if nothing is stored under that key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error
}
