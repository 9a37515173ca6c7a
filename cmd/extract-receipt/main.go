// Command extract-receipt runs receipt extraction against a local or
// GCS-archived image or PDF and prints the candidate as JSON. Set
// GEMINI_API_KEY to exercise the vision path; without it the run uses local
// OCR only.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mlevkov/docledger/internal/config"
	"github.com/mlevkov/docledger/internal/gcs"
	"github.com/mlevkov/docledger/internal/logger"
	"github.com/mlevkov/docledger/internal/receipt"
	"github.com/mlevkov/docledger/internal/vision"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("DOCLEDGER_CONFIG"), "Path to TOML config")
		timeout    = flag.Duration("timeout", 2*time.Minute, "Extraction timeout")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <receipt.{jpg,png,pdf} | gs://bucket/receipt>\n", os.Args[0])
		os.Exit(2)
	}
	path := flag.Arg(0)

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var content []byte
	var name string
	if strings.HasPrefix(path, "gs://") {
		content, err = gcs.Fetch(ctx, path)
		name = gcs.FilenameFromURI(path)
	} else {
		content, err = os.ReadFile(path)
		name = filepath.Base(path)
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read file")
	}

	var visionAdapter *vision.ReceiptAdapter
	if os.Getenv("GEMINI_API_KEY") != "" {
		gen := vision.NewGeminiGenerator(cfg.Vision.Model)
		visionAdapter = vision.NewReceiptAdapter(gen, vision.Rates{
			USD: cfg.Vision.USDRate,
			EUR: cfg.Vision.EURRate,
			GBP: cfg.Vision.GBPRate,
		})
	}

	extractor := receipt.NewExtractor(log, visionAdapter)
	candidate, err := extractor.Extract(ctx, content, name)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(candidate); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode candidate")
	}
}
