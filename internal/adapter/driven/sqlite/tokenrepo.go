package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port interface.
// It is a flat key-value table; Set on an existing key replaces the value.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Set stores or replaces the value under key.
func (r *TokenRepo) Set(ctx context.Context, key, value string) error {
	const query = `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	_, err := r.db.Writer.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Get retrieves the value under key.
// Returns ("", nil) if no value is stored under that key.
func (r *TokenRepo) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv WHERE key = ?`
	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}
