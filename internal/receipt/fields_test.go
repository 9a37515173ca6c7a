package receipt

import (
	"testing"
	"time"
)

func TestParseReceiptTextAmounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"total keyword", "SUPERMART\nTOTAL: 450.00", 450.0},
		{"total with rupee symbol", "TOTAL: ₹450.00", 450.0},
		{"amount keyword", "Amount 1200", 1200.0},
		{"number before marker", "you paid 99.50 INR today", 99.50},
		{"dollar sign", "Grand $ 42.75", 42.75},
		{"trailing decimal", "CORNER SHOP\nthanks for visiting\n18.20", 18.20},
		{"comma thousands", "TOTAL: 1,250", 1250.0},
		{"no amount", "no numbers here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseReceiptText(tt.text)
			if c.Amount != tt.want {
				t.Errorf("amount = %v, want %v", c.Amount, tt.want)
			}
		})
	}
}

func TestParseReceiptTextDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"day first slashes", "visited on 14/03/2023", time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)},
		{"day first dashes", "14-03-2023", time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)},
		{"year first", "printed 2023/3/4 10:42", time.Date(2023, time.March, 4, 0, 0, 0, 0, time.UTC)},
		{"month name", "Date: 5 mar 2023", time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"no date", "no date anywhere", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseReceiptText(tt.text)
			if !c.OccurredOn.Equal(tt.want) {
				t.Errorf("date = %v, want %v", c.OccurredOn, tt.want)
			}
		})
	}
}

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first line", "Super Mart\n14/03/2023\nTOTAL 450", "SUPER MART"},
		{"skips date line", "14/03/2023\nSuper Mart\nTOTAL 450", "SUPER MART"},
		{"skips amount line", "123.45\nSuper Mart", "SUPER MART"},
		{"strips boilerplate", "TAX INVOICE Super Mart", "SUPER MART"},
		{"skips short lines", "ab\nSuper Mart", "SUPER MART"},
		{"nothing usable", "ab\n12/05\n99.99", ""},
		{"only scans first five lines", "1/1\n2/2\n3/3\n4/4\n5/5\nSuper Mart", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMerchant(tt.text); got != tt.want {
				t.Errorf("extractMerchant = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReceiptTextConfidence(t *testing.T) {
	// Amount and date alone clear the review threshold.
	c := parseReceiptText("TOTAL: ₹450.00\n14-03-2023")
	if c.Amount != 450.0 {
		t.Errorf("amount = %v, want 450", c.Amount)
	}
	want := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !c.OccurredOn.Equal(want) {
		t.Errorf("date = %v, want %v", c.OccurredOn, want)
	}
	if c.Confidence < 0.7 {
		t.Errorf("confidence = %v, want >= 0.7", c.Confidence)
	}

	// All fields present caps near the top.
	c = parseReceiptText("SUPER MART\n14/03/2023\nTOTAL: 450.00\nthank you, come again")
	if c.Confidence != 1.0 {
		t.Errorf("full confidence = %v, want 1.0", c.Confidence)
	}

	// Empty text scores zero except possibly the note.
	c = parseReceiptText("")
	if c.Confidence != 0 {
		t.Errorf("empty confidence = %v, want 0", c.Confidence)
	}
}
