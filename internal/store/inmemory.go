package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mlevkov/docledger/internal/domain"
)

// InMemory stores transactions in memory and is safe for concurrent use.
// Data is lost on restart - for persistence, use the BigQuery-backed store.
type InMemory struct {
	mu  sync.RWMutex
	txs map[string]*domain.Transaction
}

// NewInMemory creates an empty in-memory transaction store.
func NewInMemory() *InMemory {
	return &InMemory{
		txs: make(map[string]*domain.Transaction),
	}
}

// FindDuplicate implements TransactionStore.
func (s *InMemory) FindDuplicate(ctx context.Context, userID string, date time.Time, amount float64, merchant string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.txs {
		if tx.UserID != userID || tx.Amount != amount || tx.Merchant != merchant {
			continue
		}
		if !sameDay(tx.OccurredOn, date) {
			continue
		}
		// Return a copy to avoid external modifications
		txCopy := *tx
		return &txCopy, nil
	}
	return nil, nil
}

// InsertBatch implements TransactionStore. The batch is validated up front so
// either every transaction is stored or none are.
func (s *InMemory) InsertBatch(ctx context.Context, txs []*domain.Transaction) ([]string, error) {
	for i, tx := range txs {
		if tx.UserID == "" {
			return nil, fmt.Errorf("InsertBatch: transaction %d has no user", i)
		}
		if !tx.Kind.Valid() {
			return nil, fmt.Errorf("InsertBatch: transaction %d has kind %q", i, tx.Kind)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		txCopy := *tx
		if txCopy.ID == "" {
			txCopy.ID = uuid.New().String()
		}
		if txCopy.CreatedAt.IsZero() {
			txCopy.CreatedAt = time.Now()
		}
		s.txs[txCopy.ID] = &txCopy
		ids = append(ids, txCopy.ID)
	}
	return ids, nil
}

// Count returns the number of stored transactions.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

var _ TransactionStore = (*InMemory)(nil)
