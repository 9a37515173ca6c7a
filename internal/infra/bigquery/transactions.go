package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/mlevkov/docledger/internal/domain"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID string `bigquery:"user_id"` // REQUIRED

	Kind       string     `bigquery:"kind"`        // REQUIRED: income | expense
	Amount     float64    `bigquery:"amount"`      // REQUIRED, positive magnitude
	OccurredOn civil.Date `bigquery:"occurred_on"` // REQUIRED

	Merchant      bigquery.NullString `bigquery:"merchant"`       // NULLABLE
	Note          bigquery.NullString `bigquery:"note"`           // NULLABLE
	PaymentMethod bigquery.NullString `bigquery:"payment_method"` // NULLABLE
	CategoryID    bigquery.NullString `bigquery:"category_id"`    // NULLABLE
	ReceiptPath   bigquery.NullString `bigquery:"receipt_path"`   // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

func rowFromTransaction(tx *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Kind:          string(tx.Kind),
		Amount:        tx.Amount,
		OccurredOn:    civil.DateOf(tx.OccurredOn),
		Merchant:      nullString(tx.Merchant),
		Note:          nullString(tx.Note),
		PaymentMethod: nullString(tx.PaymentMethod),
		CategoryID:    nullString(tx.CategoryID),
		ReceiptPath:   nullString(tx.ReceiptPath),
		CreatedTS:     tx.CreatedAt,
	}
}

// Transaction converts the row back to the domain shape.
func (r *TransactionRow) Transaction() *domain.Transaction {
	return &domain.Transaction{
		ID:            r.TransactionID,
		UserID:        r.UserID,
		Kind:          domain.Kind(r.Kind),
		Amount:        r.Amount,
		OccurredOn:    r.OccurredOn.In(time.UTC),
		Merchant:      r.Merchant.StringVal,
		Note:          r.Note.StringVal,
		PaymentMethod: r.PaymentMethod.StringVal,
		CategoryID:    r.CategoryID.StringVal,
		ReceiptPath:   r.ReceiptPath.StringVal,
		CreatedAt:     r.CreatedTS,
	}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
