// Package staging holds extracted transaction candidates between parsing and
// user confirmation. Each user has at most one pending batch; staging a new
// batch replaces the old one. Stage, Preview, and Confirm for the same user
// are mutually exclusive, so a confirm always observes a consistent snapshot.
package staging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/store"
)

// ErrNoBatch is returned by Preview and Confirm when the user has nothing
// staged.
var ErrNoBatch = errors.New("no staged import batch")

// Store is an in-memory per-user staging area. Safe for concurrent use;
// operations for different users do not block each other.
type Store struct {
	mu    sync.Mutex // guards users map only
	users map[string]*userBatch

	txs store.TransactionStore
	log zerolog.Logger
}

type userBatch struct {
	mu         sync.Mutex
	candidates []domain.CandidateTransaction // nil when nothing is staged
}

// NewStore creates a staging store that confirms batches into txs.
func NewStore(txs store.TransactionStore, log zerolog.Logger) *Store {
	return &Store{
		users: make(map[string]*userBatch),
		txs:   txs,
		log:   log,
	}
}

func (s *Store) user(userID string) *userBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	ub, ok := s.users[userID]
	if !ok {
		ub = &userBatch{}
		s.users[userID] = ub
	}
	return ub
}

// Stage replaces the user's pending batch with candidates. Overwrite, not
// merge: re-uploading a statement must not double the preview.
func (s *Store) Stage(userID string, candidates []domain.CandidateTransaction) {
	ub := s.user(userID)
	ub.mu.Lock()
	defer ub.mu.Unlock()

	staged := make([]domain.CandidateTransaction, len(candidates))
	copy(staged, candidates)
	ub.candidates = staged
}

// Preview returns a copy of the user's pending batch, or ErrNoBatch.
func (s *Store) Preview(userID string) ([]domain.CandidateTransaction, error) {
	ub := s.user(userID)
	ub.mu.Lock()
	defer ub.mu.Unlock()

	if ub.candidates == nil {
		return nil, fmt.Errorf("Preview: user %s: %w", userID, ErrNoBatch)
	}
	out := make([]domain.CandidateTransaction, len(ub.candidates))
	copy(out, ub.candidates)
	return out, nil
}

// Confirm persists the user's pending batch. Candidates matching an existing
// persisted transaction on (user, date, amount, merchant) are silently
// skipped; malformed candidates are skipped with a warning. The surviving
// candidates are inserted as one atomic batch. On any persistence error the
// staged batch is kept so the confirm can be retried; it is cleared only
// after a successful insert.
func (s *Store) Confirm(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	ub := s.user(userID)
	ub.mu.Lock()
	defer ub.mu.Unlock()

	if ub.candidates == nil {
		return nil, fmt.Errorf("Confirm: user %s: %w", userID, ErrNoBatch)
	}

	now := time.Now()
	txs := make([]*domain.Transaction, 0, len(ub.candidates))
	for i := range ub.candidates {
		c := &ub.candidates[i]
		if err := c.Validate(); err != nil {
			s.log.Warn().
				Err(err).
				Str("user_id", userID).
				Int("index", i).
				Msg("Skipping malformed staged candidate")
			continue
		}

		dup, err := s.txs.FindDuplicate(ctx, userID, c.OccurredOn, c.Amount, c.Merchant)
		if err != nil {
			return nil, fmt.Errorf("Confirm: duplicate check: %w", err)
		}
		if dup != nil {
			s.log.Debug().
				Str("user_id", userID).
				Str("existing_id", dup.ID).
				Msg("Skipping duplicate staged candidate")
			continue
		}

		txs = append(txs, &domain.Transaction{
			ID:            uuid.New().String(),
			UserID:        userID,
			Kind:          c.Kind,
			Amount:        c.Amount,
			OccurredOn:    c.OccurredOn,
			Merchant:      c.Merchant,
			Note:          c.Note,
			PaymentMethod: c.PaymentMethod,
			CategoryID:    c.CategoryID,
			ReceiptPath:   c.ReceiptPath,
			CreatedAt:     now,
		})
	}

	if len(txs) > 0 {
		if _, err := s.txs.InsertBatch(ctx, txs); err != nil {
			return nil, fmt.Errorf("Confirm: insert batch: %w", err)
		}
	}

	ub.candidates = nil
	return txs, nil
}
