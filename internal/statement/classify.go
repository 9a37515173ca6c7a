package statement

import (
	"strings"

	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/normalize"
)

// Classifier turns mapped table rows into transaction candidates. The keyword
// sets are injected from configuration; see config.Extraction.
type Classifier struct {
	incomeKeywords  []string
	expenseKeywords []string
}

// NewClassifier builds a classifier with the given income/expense keyword
// sets.
func NewClassifier(incomeKeywords, expenseKeywords []string) *Classifier {
	return &Classifier{
		incomeKeywords:  lowerAll(incomeKeywords),
		expenseKeywords: lowerAll(expenseKeywords),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// typeColumnValues normalizes explicit type-column text to a kind.
var typeColumnValues = map[string]domain.Kind{
	"income":     domain.KindIncome,
	"credit":     domain.KindIncome,
	"cr":         domain.KindIncome,
	"deposit":    domain.KindIncome,
	"in":         domain.KindIncome,
	"expense":    domain.KindExpense,
	"debit":      domain.KindExpense,
	"dr":         domain.KindExpense,
	"withdrawal": domain.KindExpense,
	"out":        domain.KindExpense,
}

// ClassifyRow converts one raw row into a candidate using the header mapping.
// Returns nil for rows that carry no usable transaction: a missing date or a
// non-positive amount means the row is dropped, never an error, because
// malformed rows are expected in real statements.
func (c *Classifier) ClassifyRow(row []string, mapping HeaderMapping) *domain.CandidateTransaction {
	if len(row) == 0 || len(mapping) == 0 {
		return nil
	}

	occurredOn, ok := normalize.ParseDate(mapping.cell(row, FieldDate))
	if !ok {
		return nil
	}

	description := mapping.cell(row, FieldMerchant)

	amount, kind, ok := c.resolveAmountAndKind(row, mapping, description)
	if !ok || amount <= 0 {
		return nil
	}

	merchant := description
	if merchant == "" {
		merchant = "Bank Transaction"
	}

	cand := &domain.CandidateTransaction{
		OccurredOn:    occurredOn,
		Amount:        amount,
		Kind:          kind,
		Merchant:      domain.Truncate(merchant, domain.MaxMerchantLen),
		PaymentMethod: domain.DefaultPaymentMethod,
	}
	if description != "" {
		cand.Note = domain.Truncate(description, domain.MaxNoteLen)
	}
	if method := mapping.cell(row, FieldPaymentMethod); method != "" {
		cand.PaymentMethod = domain.Truncate(method, domain.MaxMerchantLen)
	}
	return cand
}

// resolveAmountAndKind applies the layered decision policy:
//  1. explicit type column,
//  2. debit/credit column pair,
//  3. single amount column with keyword classification of the description.
func (c *Classifier) resolveAmountAndKind(row []string, mapping HeaderMapping, description string) (float64, domain.Kind, bool) {
	if typeText := mapping.cell(row, FieldType); typeText != "" {
		if kind, ok := typeColumnValues[strings.ToLower(typeText)]; ok {
			amount, ok2 := normalize.ParseAmount(mapping.cell(row, FieldAmount))
			if !ok2 {
				return 0, "", false
			}
			return amount, kind, true
		}
	}

	_, hasDebit := mapping[FieldDebit]
	_, hasCredit := mapping[FieldCredit]
	if hasDebit && hasCredit {
		debit, debitOK := normalize.ParseAmount(mapping.cell(row, FieldDebit))
		credit, creditOK := normalize.ParseAmount(mapping.cell(row, FieldCredit))
		// Debit is checked first, so a malformed row with both sides
		// populated lands as an expense.
		switch {
		case debitOK && debit > 0:
			return debit, domain.KindExpense, true
		case creditOK && credit > 0:
			return credit, domain.KindIncome, true
		default:
			// Neither side populated: a data-quality signal, not a
			// recoverable case.
			return 0, "", false
		}
	}

	if _, hasAmount := mapping[FieldAmount]; hasAmount {
		amount, ok := normalize.ParseAmount(mapping.cell(row, FieldAmount))
		if !ok {
			return 0, "", false
		}
		return amount, c.kindFromDescription(description), true
	}

	return 0, "", false
}

// kindFromDescription scans the description against the income set first,
// then the expense set; when neither matches the designed default is expense.
func (c *Classifier) kindFromDescription(description string) domain.Kind {
	lowered := strings.ToLower(description)
	for _, kw := range c.incomeKeywords {
		if strings.Contains(lowered, kw) {
			return domain.KindIncome
		}
	}
	for _, kw := range c.expenseKeywords {
		if strings.Contains(lowered, kw) {
			return domain.KindExpense
		}
	}
	return domain.KindExpense
}
