package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bq "cloud.google.com/go/bigquery"

	"github.com/mlevkov/docledger/internal/api/handlers"
	"github.com/mlevkov/docledger/internal/api/middleware"
	"github.com/mlevkov/docledger/internal/config"
	"github.com/mlevkov/docledger/internal/gcs"
	infraBQ "github.com/mlevkov/docledger/internal/infra/bigquery"
	"github.com/mlevkov/docledger/internal/logger"
	"github.com/mlevkov/docledger/internal/receipt"
	"github.com/mlevkov/docledger/internal/staging"
	"github.com/mlevkov/docledger/internal/statement"
	"github.com/mlevkov/docledger/internal/store"
	"github.com/mlevkov/docledger/internal/vision"
)

func main() {
	var (
		port       = flag.String("port", "8080", "HTTP server port")
		configPath = flag.String("config", os.Getenv("DOCLEDGER_CONFIG"), "Path to TOML config (or set DOCLEDGER_CONFIG)")
		bucket     = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for receipt archival (or set GCS_BUCKET env)")
		bqProject  = flag.String("bq-project", os.Getenv("BQ_PROJECT"), "BigQuery project for transaction storage; empty uses in-memory storage")
		bqDataset  = flag.String("bq-dataset", "finance", "BigQuery dataset name")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
	}
	if *bucket == "" {
		*bucket = cfg.Storage.Bucket
	}
	if *bucket == "" {
		log.Warn().Msg("No GCS bucket configured - receipt archival will be disabled")
	}

	ctx := context.Background()

	// Transaction storage
	var txStore store.TransactionStore
	if *bqProject != "" {
		client, err := bq.NewClient(ctx, *bqProject)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer client.Close()
		txStore = infraBQ.NewStore(client, *bqProject, *bqDataset)
		log.Info().Str("project", *bqProject).Str("dataset", *bqDataset).Msg("Using BigQuery transaction store")
	} else {
		txStore = store.NewInMemory()
		log.Warn().Msg("No BigQuery project configured - transactions are stored in memory only")
	}

	// Statement pipeline
	classifier := statement.NewClassifier(cfg.Extraction.IncomeKeywords, cfg.Extraction.ExpenseKeywords)
	parser := statement.NewDefaultParser(log, classifier)
	stagingStore := staging.NewStore(txStore, log)

	// Receipt pipeline; vision is optional
	var visionAdapter *vision.ReceiptAdapter
	if os.Getenv("GEMINI_API_KEY") != "" {
		gen := vision.NewGeminiGenerator(cfg.Vision.Model)
		visionAdapter = vision.NewReceiptAdapter(gen, vision.Rates{
			USD: cfg.Vision.USDRate,
			EUR: cfg.Vision.EURRate,
			GBP: cfg.Vision.GBPRate,
		})
		log.Info().Str("model", cfg.Vision.Model).Msg("Vision extraction enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - receipts use local OCR only")
	}
	extractor := receipt.NewExtractor(log, visionAdapter)
	archiver := gcs.NewArchiver(*bucket, nil)

	importsHandler := handlers.NewImportsHandler(parser, stagingStore, log)
	receiptsHandler := handlers.NewReceiptsHandler(extractor, archiver, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/imports/bank-statement", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importsHandler.UploadStatement(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/imports/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			importsHandler.Preview(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/imports/confirm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importsHandler.Confirm(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.Extract(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
