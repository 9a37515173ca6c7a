package statement

import (
	"strings"
	"unicode"
)

// Field is a logical column of a statement table.
type Field string

const (
	FieldDate          Field = "date"
	FieldMerchant      Field = "merchant"
	FieldAmount        Field = "amount"
	FieldDebit         Field = "debit"
	FieldCredit        Field = "credit"
	FieldType          Field = "type"
	FieldPaymentMethod Field = "payment_method"
	FieldBalance       Field = "balance"
)

// HeaderMapping associates logical fields with zero-based column indexes of
// one detected table. It is built per table and discarded after the table's
// rows are processed.
type HeaderMapping map[Field]int

// headerSynonyms lists, per logical field, the header texts banks actually
// print. Matching is a case-insensitive substring check, except for the
// two-letter forms ("dr", "cr") which must appear as standalone words so
// that "cr" does not hit "description".
var headerSynonyms = map[Field][]string{
	FieldDate:          {"date", "transaction date", "posting date", "txn date"},
	FieldMerchant:      {"description", "particulars", "narration", "details", "merchant", "payee"},
	FieldAmount:        {"amount", "txn amount", "transaction amount"},
	FieldDebit:         {"debit", "withdrawal", "dr", "debit amount"},
	FieldCredit:        {"credit", "deposit", "cr", "credit amount"},
	FieldType:          {"type", "dr/cr", "cr/dr", "transaction type"},
	FieldPaymentMethod: {"payment method", "payment mode", "mode", "channel"},
	FieldBalance:       {"balance", "running balance", "available balance"},
}

// fieldOrder fixes iteration order so the mapping is deterministic.
var fieldOrder = []Field{
	FieldDate, FieldMerchant, FieldAmount, FieldDebit,
	FieldCredit, FieldType, FieldPaymentMethod, FieldBalance,
}

// MapHeaders scans one candidate header row and returns the logical fields it
// provides. For each field the first matching cell wins; fields with no match
// are simply absent.
func MapHeaders(cells []string) HeaderMapping {
	lowered := make([]string, len(cells))
	for i, c := range cells {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}

	mapping := make(HeaderMapping)
	for _, field := range fieldOrder {
		for i, cell := range lowered {
			if cell == "" {
				continue
			}
			if cellMatchesField(cell, field) {
				mapping[field] = i
				break
			}
		}
	}
	return mapping
}

func cellMatchesField(cell string, field Field) bool {
	for _, name := range headerSynonyms[field] {
		if len(name) <= 2 {
			if containsWord(cell, name) {
				return true
			}
			continue
		}
		if strings.Contains(cell, name) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in s delimited by non-letter
// characters (or the string ends).
func containsWord(s, word string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		beforeOK := idx == 0 || !isWordRune(rune(s[idx-1]))
		afterOK := end == len(s) || !isWordRune(rune(s[end]))
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// usable reports whether the mapping anchors a real transaction table: a
// table without at least a date or amount column is noise.
func (m HeaderMapping) usable() bool {
	if _, ok := m[FieldDate]; ok {
		return true
	}
	if _, ok := m[FieldAmount]; ok {
		return true
	}
	return false
}

// anchored reports whether the mapping names both a date column and a money
// column. That combination distinguishes a transaction table header from
// preamble lines that merely mention a date.
func (m HeaderMapping) anchored() bool {
	if _, ok := m[FieldDate]; !ok {
		return false
	}
	if _, ok := m[FieldAmount]; ok {
		return true
	}
	_, hasDebit := m[FieldDebit]
	_, hasCredit := m[FieldCredit]
	return hasDebit && hasCredit
}

// cell returns the trimmed text of the mapped column within row, or "" when
// the field is unmapped or the row is too short.
func (m HeaderMapping) cell(row []string, field Field) string {
	idx, ok := m[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
