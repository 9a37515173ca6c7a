// Package bigquery persists confirmed transactions in BigQuery. It backs the
// pipeline's transaction store in production deployments; tests and
// single-instance runs use the in-memory store instead.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/store"
)

const transactionsTable = "transactions"

// Store implements store.TransactionStore on top of a BigQuery dataset.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewStore wraps an existing BigQuery client. The caller owns the client's
// lifecycle.
func NewStore(client *bigquery.Client, projectID, datasetID string) *Store {
	return &Store{client: client, projectID: projectID, datasetID: datasetID}
}

// FindDuplicate implements store.TransactionStore. Kind is deliberately not
// part of the match key.
func (s *Store) FindDuplicate(ctx context.Context, userID string, date time.Time, amount float64, merchant string) (*domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			kind,
			amount,
			occurred_on,
			merchant,
			note,
			payment_method,
			category_id,
			receipt_path,
			created_ts
		FROM `+"`%s.%s.%s`"+`
		WHERE user_id = @user_id
		  AND occurred_on = @occurred_on
		  AND amount = @amount
		  AND IFNULL(merchant, '') = @merchant
		LIMIT 1
	`, s.projectID, s.datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "occurred_on", Value: civil.DateOf(date)},
		{Name: "amount", Value: amount},
		{Name: "merchant", Value: merchant},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindDuplicate: query read: %w", err)
	}

	var r TransactionRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDuplicate: iter next: %w", err)
	}
	return r.Transaction(), nil
}

// InsertBatch implements store.TransactionStore. All rows go through one
// inserter call, which either accepts or rejects the batch as a unit.
func (s *Store) InsertBatch(ctx context.Context, txs []*domain.Transaction) ([]string, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	rows := make([]*TransactionRow, 0, len(txs))
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, rowFromTransaction(tx))
		ids = append(ids, tx.ID)
	}

	table := s.client.DatasetInProject(s.projectID, s.datasetID).Table(transactionsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return nil, fmt.Errorf("InsertBatch: inserting rows: %w", err)
	}
	return ids, nil
}

var _ store.TransactionStore = (*Store)(nil)
