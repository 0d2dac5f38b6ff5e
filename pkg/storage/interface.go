// Package storage defines the persistence interfaces for scan reports and
// background jobs. Implementations live in sub packages (e.g. postgres).
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"arbitrage/pkg/serrors"
	"context"
)

var (
	// ErrAlreadyInTx is returned by Begin on a handle that is already transactional.
	ErrAlreadyInTx = serrors.NewKind("ALREADY_IN_TX")
	// ErrNotInTx is returned by Commit and Rollback outside of a transaction.
	ErrNotInTx = serrors.NewKind("NOT_IN_TX")
)

// AllStorage is a composite interface that includes all domain-specific storage
// capabilities required by the application.
type AllStorage interface {
	ReportStorage
	JobStorage
}

// TxStorage describes a storage handle that operates within a database
// transaction. Implementations become unusable after Commit or Rollback.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage describes a non-transactional storage handle with the ability to
// start transactions.
type Storage interface {
	AllStorage

	// Close releases any resources held by the storage implementation.
	Close() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes cb and commits on success or rolls
	// back if cb returns an error.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
