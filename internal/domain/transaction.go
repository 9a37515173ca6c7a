package domain

import (
	"fmt"
	"time"
)

// Kind is the direction of a transaction. Extraction never emits anything
// other than the two values below; the amount magnitude is always positive
// and direction is carried here, not in the sign.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Field length caps applied to extracted free text.
const (
	MaxMerchantLen = 100
	MaxNoteLen     = 500
)

// DefaultPaymentMethod is used when a document gives no hint about how the
// transaction was paid.
const DefaultPaymentMethod = "bank_transfer"

// CandidateTransaction is an extracted, not-yet-persisted transaction awaiting
// user confirmation. CategoryID is always empty at extraction time; assignment
// happens downstream.
type CandidateTransaction struct {
	OccurredOn    time.Time `json:"occurred_on"`
	Amount        float64   `json:"amount"` // positive magnitude
	Kind          Kind      `json:"kind"`
	Merchant      string    `json:"merchant,omitempty"`
	Note          string    `json:"note,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	ReceiptPath   string    `json:"receipt_path,omitempty"`

	// Confidence is populated only by single-document (receipt) extraction.
	Confidence float64 `json:"confidence,omitempty"`
}

// Validate checks the invariants every extraction path must uphold before a
// candidate may be staged or persisted.
func (c *CandidateTransaction) Validate() error {
	if c.OccurredOn.IsZero() {
		return fmt.Errorf("candidate has no date")
	}
	if c.Amount <= 0 {
		return fmt.Errorf("candidate amount must be positive, got %v", c.Amount)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("candidate kind %q is not income or expense", c.Kind)
	}
	return nil
}

// Transaction is a persisted transaction record as seen by the extraction
// core. The full relational shape lives with the storage backend; this is the
// minimal view the import pipeline needs.
type Transaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Kind          Kind      `json:"kind"`
	Amount        float64   `json:"amount"`
	OccurredOn    time.Time `json:"occurred_on"`
	Merchant      string    `json:"merchant,omitempty"`
	Note          string    `json:"note,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	ReceiptPath   string    `json:"receipt_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Truncate clamps s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
