package receipt

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mlevkov/docledger/internal/vision"
)

type fakeVision struct {
	extractFunc func(ctx context.Context, image []byte, mime string) (*vision.Fields, error)
}

func (f *fakeVision) Extract(ctx context.Context, image []byte, mime string) (*vision.Fields, error) {
	return f.extractFunc(ctx, image, mime)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestExtractRejectsUnsupportedType(t *testing.T) {
	e := NewExtractor(zerolog.Nop(), nil)
	_, err := e.Extract(context.Background(), []byte("just some plain text"), "notes.txt")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractImageUsesVision(t *testing.T) {
	amount := 450.0
	e := NewExtractor(zerolog.Nop(), nil)
	e.vision = &fakeVision{
		extractFunc: func(ctx context.Context, image []byte, mime string) (*vision.Fields, error) {
			if mime != "image/png" {
				t.Errorf("mime = %q, want image/png", mime)
			}
			return &vision.Fields{
				Merchant:      "SUPERMART",
				Date:          "2023-03-14",
				Amount:        &amount,
				PaymentMethod: "Card",
				Items:         []string{"milk", "bread"},
			}, nil
		},
	}
	e.ocrImage = func(ctx context.Context, content []byte) (string, error) {
		t.Fatal("OCR must not run when vision succeeds")
		return "", nil
	}

	c, err := e.Extract(context.Background(), pngBytes(t), "receipt.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Merchant != "SUPERMART" || c.Amount != 450.0 {
		t.Errorf("got %+v", c)
	}
	want := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !c.OccurredOn.Equal(want) {
		t.Errorf("date = %v, want %v", c.OccurredOn, want)
	}
	if c.Confidence != visionConfidence {
		t.Errorf("confidence = %v, want %v", c.Confidence, visionConfidence)
	}
	// Items become the note when the model gives no note.
	if c.Note != "milk, bread" {
		t.Errorf("note = %q", c.Note)
	}
}

func TestExtractImageFallsBackToOCR(t *testing.T) {
	e := NewExtractor(zerolog.Nop(), nil)
	e.vision = &fakeVision{
		extractFunc: func(ctx context.Context, image []byte, mime string) (*vision.Fields, error) {
			return nil, errors.New("model returned garbage")
		},
	}
	e.ocrImage = func(ctx context.Context, content []byte) (string, error) {
		return "CORNER SHOP\nTOTAL: 99.00\n14-03-2023", nil
	}

	c, err := e.Extract(context.Background(), pngBytes(t), "receipt.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Amount != 99.0 || c.Merchant != "CORNER SHOP" {
		t.Errorf("got %+v", c)
	}
}

func TestExtractImageWithoutVision(t *testing.T) {
	e := NewExtractor(zerolog.Nop(), nil)
	e.ocrImage = func(ctx context.Context, content []byte) (string, error) {
		return "TOTAL: 12.00", nil
	}
	c, err := e.Extract(context.Background(), pngBytes(t), "receipt.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Amount != 12.0 {
		t.Errorf("amount = %v", c.Amount)
	}
}

func TestExtractPDFRasterFallback(t *testing.T) {
	e := NewExtractor(zerolog.Nop(), nil)
	rasterized := false
	e.ocrPDF = func(ctx context.Context, content []byte) (string, error) {
		rasterized = true
		return "SUPERMART\nTOTAL: 450.00", nil
	}

	// Sniffs as PDF but has no readable text layer.
	c, err := e.Extract(context.Background(), []byte("%PDF-1.4\nnot really a pdf"), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !rasterized {
		t.Fatal("expected raster OCR fallback to run")
	}
	if c.Amount != 450.0 {
		t.Errorf("amount = %v", c.Amount)
	}
}

func TestOtsuThresholdSeparatesBimodalImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(30) // dark text
			if y >= 5 {
				v = 220 // light paper
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	th := otsuThreshold(img)
	if th < 30 || th >= 220 {
		t.Fatalf("threshold = %d, want between the two modes", th)
	}

	bin := binarize(img, th)
	if bin.NRGBAAt(0, 0).R != 0 {
		t.Error("dark pixel not mapped to black")
	}
	if bin.NRGBAAt(0, 9).R != 255 {
		t.Error("light pixel not mapped to white")
	}
}
