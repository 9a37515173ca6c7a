package receipt

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/jpeg"
	_ "image/png"
)

// recognizeImage preprocesses the image and runs Tesseract over it.
// Requires tesseract (tesseract-ocr) on PATH.
func recognizeImage(ctx context.Context, content []byte) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("recognizeImage: tesseract not available (install tesseract-ocr): %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("recognizeImage: decode image: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "receipt-ocr-*")
	if err != nil {
		return "", fmt.Errorf("recognizeImage: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "receipt.png")
	if err := imaging.Save(preprocess(img), inPath); err != nil {
		return "", fmt.Errorf("recognizeImage: save preprocessed image: %w", err)
	}

	text, err := runTesseract(ctx, inPath)
	if err != nil {
		return "", fmt.Errorf("recognizeImage: %w", err)
	}
	return text, nil
}

// recognizePDF rasterizes each PDF page at 300 DPI and runs Tesseract over
// every page image. Requires pdftoppm (poppler-utils) and tesseract on PATH.
func recognizePDF(ctx context.Context, content []byte) (string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", fmt.Errorf("recognizePDF: pdftoppm not available (install poppler-utils): %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("recognizePDF: tesseract not available (install tesseract-ocr): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "receipt-pdf-*")
	if err != nil {
		return "", fmt.Errorf("recognizePDF: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "receipt.pdf")
	if err := os.WriteFile(pdfPath, content, 0o600); err != nil {
		return "", fmt.Errorf("recognizePDF: write temp pdf: %w", err)
	}

	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", pdfPath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("recognizePDF: pdftoppm: %w (output: %s)", err, out)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("recognizePDF: read temp dir: %w", err)
	}
	var pageImages []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			pageImages = append(pageImages, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(pageImages)
	if len(pageImages) == 0 {
		return "", fmt.Errorf("recognizePDF: pdftoppm produced no page images")
	}

	var pages []string
	for _, imgPath := range pageImages {
		text, err := runTesseract(ctx, imgPath)
		if err != nil {
			// Some pages may still work.
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("recognizePDF: no text recognized from %d page images", len(pageImages))
	}
	return strings.Join(pages, "\n"), nil
}

// runTesseract OCRs one image file. PSM 6 assumes a uniform block of text,
// which fits the single-column layout of POS receipts.
func runTesseract(ctx context.Context, imgPath string) (string, error) {
	outBase := strings.TrimSuffix(imgPath, ".png") + "-text"
	cmd := exec.CommandContext(ctx, "tesseract", imgPath, outBase, "-l", "eng", "--psm", "6")
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tesseract: %w (output: %s)", err, out)
	}
	data, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("read tesseract output: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// preprocess converts the image to grayscale, smooths noise, and binarizes
// with an Otsu threshold so Tesseract sees high-contrast text.
func preprocess(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	gray = imaging.Blur(gray, 0.8)
	return binarize(gray, otsuThreshold(gray))
}

// otsuThreshold picks the gray level that maximizes between-class variance
// over the image histogram.
func otsuThreshold(img *image.NRGBA) uint8 {
	var hist [256]int
	total := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// Grayscale input, so any channel works.
			hist[img.NRGBAAt(x, y).R]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	sum := 0.0
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var (
		sumBack    float64
		weightBack int
		bestVar    float64
		best       uint8
	)
	for t := 0; t < 256; t++ {
		weightBack += hist[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		diff := meanBack - meanFore
		between := float64(weightBack) * float64(weightFore) * diff * diff
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := uint8(0)
			if img.NRGBAAt(x, y).R > threshold {
				v = 255
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
