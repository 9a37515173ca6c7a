// Package store defines the transaction persistence interface consumed by the
// import pipeline, plus an in-memory implementation for single-instance
// deployments and tests. The production BigQuery implementation lives in
// internal/infra/bigquery.
package store

import (
	"context"
	"time"

	"github.com/mlevkov/docledger/internal/domain"
)

// TransactionStore is the persistence surface the import pipeline needs.
type TransactionStore interface {
	// FindDuplicate returns a persisted transaction matching (user, date,
	// amount, merchant), or nil when none exists. Kind is intentionally not
	// part of the key.
	FindDuplicate(ctx context.Context, userID string, date time.Time, amount float64, merchant string) (*domain.Transaction, error)

	// InsertBatch persists all transactions atomically and returns their IDs.
	// On error nothing is persisted.
	InsertBatch(ctx context.Context, txs []*domain.Transaction) ([]string, error)
}
