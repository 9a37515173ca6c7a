// Package receipt extracts a single transaction candidate from a receipt
// image or PDF. Images go through the vision adapter when one is configured;
// any vision failure falls back to local OCR plus regex field extraction, so
// model unavailability never blocks extraction.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/normalize"
	"github.com/mlevkov/docledger/internal/pdftext"
	"github.com/mlevkov/docledger/internal/vision"
)

// ErrUnsupportedType is returned for documents that are neither images nor
// PDFs.
var ErrUnsupportedType = errors.New("unsupported document type")

// visionConfidence is assigned to candidates produced by the vision adapter,
// which is far more reliable than the OCR+regex path.
const visionConfidence = 0.95

type visionSource interface {
	Extract(ctx context.Context, image []byte, mime string) (*vision.Fields, error)
}

// Extractor turns receipt bytes into a transaction candidate.
type Extractor struct {
	vision visionSource // nil when no vision capability is configured
	log    zerolog.Logger

	// OCR seams, overridable in tests.
	ocrImage func(ctx context.Context, content []byte) (string, error)
	ocrPDF   func(ctx context.Context, content []byte) (string, error)
}

// NewExtractor builds an extractor. visionAdapter may be nil, in which case
// every document takes the OCR path.
func NewExtractor(log zerolog.Logger, visionAdapter *vision.ReceiptAdapter) *Extractor {
	e := &Extractor{log: log}
	if visionAdapter != nil {
		e.vision = visionAdapter
	}
	e.ocrImage = recognizeImage
	e.ocrPDF = recognizePDF
	return e
}

// Extract classifies the document by sniffing its content and runs the
// matching extraction path. The returned candidate may have zero-value fields
// when nothing could be recognized; Confidence reflects how much was found.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (*domain.CandidateTransaction, error) {
	mime := mimetype.Detect(content)

	switch {
	case strings.HasPrefix(mime.String(), "image/"):
		return e.extractImage(ctx, content, mime.String())
	case mime.Is("application/pdf"):
		return e.extractPDF(ctx, content)
	default:
		return nil, fmt.Errorf("Extract: %w: %s (%s)", ErrUnsupportedType, mime.String(), filename)
	}
}

func (e *Extractor) extractImage(ctx context.Context, content []byte, mime string) (*domain.CandidateTransaction, error) {
	if e.vision != nil {
		fields, err := e.vision.Extract(ctx, content, mime)
		if err == nil {
			return candidateFromVision(fields), nil
		}
		e.log.Warn().Err(err).Msg("Vision extraction failed, falling back to OCR")
	}

	text, err := e.ocrImage(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extractImage: %w", err)
	}
	return parseReceiptText(text), nil
}

func (e *Extractor) extractPDF(ctx context.Context, content []byte) (*domain.CandidateTransaction, error) {
	text, err := pdftext.Text(content)
	if err != nil {
		e.log.Debug().Err(err).Msg("PDF text layer unreadable, rasterizing")
		text = ""
	}

	if strings.TrimSpace(text) == "" {
		text, err = e.ocrPDF(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("extractPDF: %w", err)
		}
	}
	return parseReceiptText(text), nil
}

func candidateFromVision(f *vision.Fields) *domain.CandidateTransaction {
	c := &domain.CandidateTransaction{
		Kind:          domain.KindExpense,
		Merchant:      domain.Truncate(f.Merchant, domain.MaxMerchantLen),
		PaymentMethod: f.PaymentMethod,
		Confidence:    visionConfidence,
	}
	if f.Amount != nil {
		c.Amount = *f.Amount
	}
	if d, ok := normalize.ParseDate(f.Date); ok {
		c.OccurredOn = d
	}
	note := f.Note
	if note == "" && len(f.Items) > 0 {
		note = strings.Join(f.Items, ", ")
	}
	c.Note = domain.Truncate(note, domain.MaxNoteLen)
	return c
}
