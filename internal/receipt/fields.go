package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/normalize"
)

// Amount patterns, tried in order; first parseable match wins.
var amountPatterns = []*regexp.Regexp{
	// total/amount/subtotal/sum or a currency marker, then the number.
	regexp.MustCompile(`(?i)(?:total|amount|subtotal|sum|₹|inr|rs\.?)\s*:?\s*(\d+(?:[,.]\d+)?)`),
	// Number followed by a currency marker.
	regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*(?:₹|inr|rs\.?)`),
	regexp.MustCompile(`\$\s*(\d+(?:\.\d{2})?)`),
	// Standalone decimal amount at the end of the text.
	regexp.MustCompile(`(\d+\.\d{2})\s*$`),
}

// Date patterns, tried in order; the matched text goes through the field
// normalizer so layout priority stays consistent with statement parsing.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(\d{2,4}[/-]\d{1,2}[/-]\d{1,2})`),
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+\d{2,4})`),
}

var (
	bareDateRe    = regexp.MustCompile(`^\d+[/-]\d+`)
	decimalRe     = regexp.MustCompile(`\d+\.\d{2}`)
	spacesRe      = regexp.MustCompile(`\s+`)
	boilerplateRe = regexp.MustCompile(`\b(RECEIPT|BILL|INVOICE|TAX|GST)\b`)
)

// parseReceiptText applies regex field extraction to recognized receipt text
// and scores the result. Missing fields stay at their zero values.
func parseReceiptText(text string) *domain.CandidateTransaction {
	c := &domain.CandidateTransaction{
		Kind: domain.KindExpense,
		Note: domain.Truncate(strings.TrimSpace(text), domain.MaxNoteLen),
	}

	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		c.Amount = f
		break
	}

	for _, re := range datePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := normalize.ParseDate(m[1]); ok {
			c.OccurredOn = d
			break
		}
	}

	c.Merchant = extractMerchant(text)
	c.Confidence = scoreConfidence(c)
	return c
}

// extractMerchant scans the first few non-blank lines for the first one that
// looks like a business name rather than a date or an amount.
func extractMerchant(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}

	for _, line := range lines {
		if len(line) <= 3 || bareDateRe.MatchString(line) || decimalRe.MatchString(line) {
			continue
		}
		merchant := spacesRe.ReplaceAllString(strings.ToUpper(line), " ")
		merchant = strings.TrimSpace(boilerplateRe.ReplaceAllString(merchant, ""))
		if len(merchant) > 2 {
			return domain.Truncate(merchant, domain.MaxMerchantLen)
		}
	}
	return ""
}

// scoreConfidence awards a fixed weight per recovered field. Amount matters
// most; a long note means recognition produced real text.
func scoreConfidence(c *domain.CandidateTransaction) float64 {
	score := 0.0
	if c.Amount > 0 {
		score += 0.4
	}
	if !c.OccurredOn.IsZero() {
		score += 0.3
	}
	if c.Merchant != "" {
		score += 0.2
	}
	if len(c.Note) > 10 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
