package vision

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
)

// scriptedGenerator returns canned responses per call.
type scriptedGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	var resp string
	if i < len(g.responses) {
		resp = g.responses[i]
	}
	return resp, err
}

func testRates() Rates { return Rates{USD: 83.0, EUR: 90.0, GBP: 105.0} }

func TestExtractTwoStepProtocol(t *testing.T) {
	gen := &scriptedGenerator{
		responses: []string{
			"SUPERMART\nTOTAL: 450.00\n14-03-2023",
			`{"merchant": "SUPERMART", "date": "2023-03-14", "amount": 450.0,
			  "currency": "INR", "items": ["milk", "bread"],
			  "payment_method": "Card", "note": null,
			  "raw_text": "SUPERMART TOTAL 450.00"}`,
		},
	}

	fields, err := NewReceiptAdapter(gen, testRates()).Extract(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", gen.calls)
	}
	// Step 2 must receive the step-1 transcription, not the image.
	if !strings.Contains(gen.prompts[1], "SUPERMART\nTOTAL: 450.00") {
		t.Error("structuring prompt does not embed the transcription")
	}

	if fields.Merchant != "SUPERMART" {
		t.Errorf("merchant = %q", fields.Merchant)
	}
	if fields.Date != "2023-03-14" {
		t.Errorf("date = %q", fields.Date)
	}
	if fields.Amount == nil || *fields.Amount != 450.0 {
		t.Errorf("amount = %v", fields.Amount)
	}
	if len(fields.Items) != 2 {
		t.Errorf("items = %v", fields.Items)
	}
	if fields.PaymentMethod != "Card" {
		t.Errorf("payment method = %q", fields.PaymentMethod)
	}
}

func TestExtractUnwrapsCodeFences(t *testing.T) {
	gen := &scriptedGenerator{
		responses: []string{
			"receipt text",
			"```json\n{\"merchant\": \"CAFE\", \"amount\": 12.5}\n```",
		},
	}
	fields, err := NewReceiptAdapter(gen, testRates()).Extract(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fields.Merchant != "CAFE" || fields.Amount == nil || *fields.Amount != 12.5 {
		t.Errorf("got %+v", fields)
	}
}

func TestExtractCurrencyConversion(t *testing.T) {
	tests := []struct {
		currency string
		amount   float64
		want     float64
	}{
		{"USD", 10, 830},
		{"EUR", 10, 900},
		{"GBP", 10, 1050},
		{"INR", 450, 450},
		{"", 450, 450},
	}
	for _, tt := range tests {
		gen := &scriptedGenerator{
			responses: []string{
				"text",
				`{"amount": ` + formatFloat(tt.amount) + `, "currency": "` + tt.currency + `"}`,
			},
		}
		fields, err := NewReceiptAdapter(gen, testRates()).Extract(context.Background(), nil, "")
		if err != nil {
			t.Fatalf("%s: %v", tt.currency, err)
		}
		if fields.Amount == nil || *fields.Amount != tt.want {
			t.Errorf("%s: amount = %v, want %v", tt.currency, fields.Amount, tt.want)
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func TestExtractFailuresPropagate(t *testing.T) {
	t.Run("transcription failure", func(t *testing.T) {
		gen := &scriptedGenerator{errs: []error{errors.New("model down")}}
		if _, err := NewReceiptAdapter(gen, testRates()).Extract(context.Background(), nil, ""); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"text", "this is not json at all"}}
		if _, err := NewReceiptAdapter(gen, testRates()).Extract(context.Background(), nil, ""); err == nil {
			t.Error("expected error")
		}
	})
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", "Here is the JSON:\n{\"a\": 1}", `{"a": 1}`},
		{"trailing prose", "{\"a\": 1}\nHope that helps!", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanModelJSON(tt.input); got != tt.want {
				t.Errorf("CleanModelJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
