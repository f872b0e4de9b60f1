// Package tx defines the transaction boundary the domain services
// depend on. The pgx implementation lives in infrastructure/storage.
package tx

import "context"

// Manager runs a function inside a database transaction: commit on nil,
// rollback on error. Nested calls join the transaction already carried
// by the context.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds a read-only variant for pure queries.
type ReadOnlyManager interface {
	Manager

	// ReadOnly runs fn in a read-only transaction; writes fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
