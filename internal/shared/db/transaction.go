// Package db provides database utilities including transaction management.
package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrTransactionsUnsupported is returned when the store cannot run multi-statement transactions.
var ErrTransactionsUnsupported = errors.New("transactions are not supported by this store")

// txKey is the context key for storing transaction.
type txKey struct{}

// Transactor runs a function atomically. Implemented by TransactionManager and by the in-memory store.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionManager manages database transactions.
type TransactionManager struct {
	db      *gorm.DB
	enabled bool
}

// NewTransactionManager creates a new TransactionManager.
// When enabled is false, RunInTransaction always fails with ErrTransactionsUnsupported.
func NewTransactionManager(db *gorm.DB, enabled bool) *TransactionManager {
	return &TransactionManager{db: db, enabled: enabled}
}

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction will be rolled back.
// If the function completes successfully, the transaction will be committed.
func (tm *TransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !tm.enabled {
		return ErrTransactionsUnsupported
	}
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// GetTxFromContext returns the transaction from context if available.
// This is a standalone function for use in repositories.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return defaultDB.WithContext(ctx)
}

// IsTransactionUnsupported reports whether err means the backing store rejected a transaction
// because of its deployment topology rather than because of a data conflict.
func IsTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransactionsUnsupported) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transactions are not supported") ||
		strings.Contains(msg, "transaction numbers are only allowed") ||
		strings.Contains(msg, "storage engine doesn't support transactions")
}
