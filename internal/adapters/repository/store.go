// Package repository persists per-team draft orders.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/hoopsrank/internal/domain/draft"
)

// Backend names a draft store implementation.
type Backend string

// Supported backends.
const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// ParseBackend validates a configured backend name.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendMemory, BackendPostgres, BackendSQLite:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Store is a draft store that holds resources until closed.
type Store interface {
	draft.Store
	Close() error
}

// Open creates the store for backend. dsn is the PostgreSQL connection
// string or the SQLite file path and is ignored for memory.
func Open(ctx context.Context, backend Backend, dsn string, opts ...Option) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(opts...), nil
	case BackendPostgres:
		return NewPostgresStore(ctx, dsn, opts...)
	case BackendSQLite:
		return NewSQLiteStore(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
