// Command parse-statement runs the statement extraction pipeline against a
// local PDF and prints the result as JSON. Useful for debugging new bank
// layouts without going through the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mlevkov/docledger/internal/config"
	"github.com/mlevkov/docledger/internal/gcs"
	"github.com/mlevkov/docledger/internal/logger"
	"github.com/mlevkov/docledger/internal/statement"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("DOCLEDGER_CONFIG"), "Path to TOML config")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <statement.pdf | gs://bucket/statement.pdf>\n", os.Args[0])
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var data []byte
	if strings.HasPrefix(pdfPath, "gs://") {
		data, err = gcs.Fetch(context.Background(), pdfPath)
	} else {
		data, err = os.ReadFile(pdfPath)
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", pdfPath).Msg("Failed to read PDF")
	}

	classifier := statement.NewClassifier(cfg.Extraction.IncomeKeywords, cfg.Extraction.ExpenseKeywords)
	parser := statement.NewDefaultParser(log, classifier)

	result := parser.Parse(data)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}

	if !result.Success {
		os.Exit(1)
	}
}
