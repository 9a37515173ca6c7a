package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Fields is the structured receipt data the model is asked to produce.
// Amount is nil when the model could not read a total.
type Fields struct {
	Merchant      string
	Date          string // ISO YYYY-MM-DD, as requested from the model
	Amount        *float64
	Currency      string
	Items         []string
	PaymentMethod string
	Note          string
	RawText       string
}

// Rates are the fixed conversion multipliers applied when the model reports
// a foreign currency; amounts are normalized to the home currency.
type Rates struct {
	USD float64
	EUR float64
	GBP float64
}

// ReceiptAdapter runs the two-step extraction protocol: a literal transcription
// request first (structuring degrades recognition accuracy when done in one
// shot), then a strict-JSON structuring request over that transcription.
type ReceiptAdapter struct {
	gen   Generator
	rates Rates
}

// NewReceiptAdapter builds an adapter over the given generation capability.
func NewReceiptAdapter(gen Generator, rates Rates) *ReceiptAdapter {
	return &ReceiptAdapter{gen: gen, rates: rates}
}

const transcribePrompt = `Transcribe ALL text visible in this receipt image, ` +
	`exactly as printed, line by line. Do not summarize, structure, or ` +
	`interpret anything. Output the raw text only.`

const structurePrompt = `You are a receipt parser. Below is the full text of a POS receipt.
Extract the following information and output STRICT JSON only (no comments,
no extra text, no Markdown fences):

{
  "merchant": "name of the store or null",
  "date": "date in YYYY-MM-DD format or null",
  "amount": total amount as a number or null,
  "currency": "ISO code of the printed currency (INR, USD, EUR, GBP) or null",
  "items": ["items purchased"],
  "payment_method": "payment method if visible (Cash, Card, UPI) or null",
  "note": "any other relevant information or null",
  "raw_text": "the receipt text verbatim"
}

Rules:
- Use the TOTAL amount, not a subtotal.
- Output must begin with "{" and end with "}".

Receipt text:
`

// Extract runs the protocol against a receipt image. Any call or parse
// failure is returned as an error for the caller to treat as "fall back to
// OCR"; it carries no user-facing meaning.
func (a *ReceiptAdapter) Extract(ctx context.Context, image []byte, mime string) (*Fields, error) {
	transcript, err := a.gen.Generate(ctx, transcribePrompt, image, mime)
	if err != nil {
		return nil, fmt.Errorf("vision: transcription step: %w", err)
	}

	response, err := a.gen.Generate(ctx, structurePrompt+transcript, nil, "")
	if err != nil {
		return nil, fmt.Errorf("vision: structuring step: %w", err)
	}

	fields, err := parseFields(response)
	if err != nil {
		return nil, err
	}
	if fields.RawText == "" {
		fields.RawText = transcript
	}
	a.normalizeCurrency(fields)
	return fields, nil
}

// parseFields decodes the model's JSON response. The model is told not to
// use code fences but sometimes does anyway, so the text is defensively
// unwrapped first.
func parseFields(response string) (*Fields, error) {
	clean := CleanModelJSON(response)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("vision: unmarshal model JSON: %w", err)
	}

	f := &Fields{
		Merchant:      stringField(raw, "merchant"),
		Date:          stringField(raw, "date"),
		Amount:        floatField(raw, "amount"),
		Currency:      strings.ToUpper(stringField(raw, "currency")),
		PaymentMethod: stringField(raw, "payment_method"),
		Note:          stringField(raw, "note"),
		RawText:       stringField(raw, "raw_text"),
	}
	if items, ok := raw["items"].([]interface{}); ok {
		for _, it := range items {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				f.Items = append(f.Items, s)
			}
		}
	}
	return f, nil
}

// normalizeCurrency converts a foreign amount to the home currency using the
// fixed multipliers. Unknown currencies pass through unchanged.
func (a *ReceiptAdapter) normalizeCurrency(f *Fields) {
	if f.Amount == nil {
		return
	}
	var rate float64
	switch f.Currency {
	case "USD":
		rate = a.rates.USD
	case "EUR":
		rate = a.rates.EUR
	case "GBP":
		rate = a.rates.GBP
	default:
		return
	}
	if rate <= 0 {
		return
	}
	converted := *f.Amount * rate
	f.Amount = &converted
}

// stringField reads a string value out of loosely typed model output,
// tolerating null and missing keys.
func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// floatField reads a numeric value, tolerating the model returning the
// number as a quoted string.
func floatField(m map[string]interface{}, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(val), "%g", &f); err == nil {
			return &f
		}
	}
	return nil
}
