package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mlevkov/docledger/internal/api/middleware"
	"github.com/mlevkov/docledger/internal/staging"
	"github.com/mlevkov/docledger/internal/statement"
)

// maxStatementSize caps bank statement uploads at 20MB.
const maxStatementSize = 20 << 20

// previewLimit is how many candidates the upload response includes; the full
// batch stays staged and is returned by the preview endpoint.
const previewLimit = 10

type statementParser interface {
	Parse(data []byte) *statement.ParseResult
}

// ImportsHandler handles bank statement import endpoints.
type ImportsHandler struct {
	parser  statementParser
	staging *staging.Store
	log     zerolog.Logger
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(parser statementParser, stagingStore *staging.Store, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		parser:  parser,
		staging: stagingStore,
		log:     log,
	}
}

// UploadStatement handles POST /api/imports/bank-statement
func (h *ImportsHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxStatementSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20MB")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Only PDF files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read statement upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	result := h.parser.Parse(data)
	if !result.Success {
		middleware.WriteError(w, http.StatusUnprocessableEntity, result.Message)
		return
	}

	h.staging.Stage(userID, result.Transactions)

	h.log.Info().
		Str("user_id", userID).
		Str("method", result.Method).
		Int("count", len(result.Transactions)).
		Msg("Statement parsed and staged")

	preview := result.Transactions
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"preview":     preview,
		"total_count": len(result.Transactions),
		"method":      result.Method,
		"message":     result.Message + ". Use /confirm to import all.",
	})
}

// Preview handles GET /api/imports/preview
func (h *ImportsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	batch, err := h.staging.Preview(userID)
	if err != nil {
		if errors.Is(err, staging.ErrNoBatch) {
			middleware.WriteError(w, http.StatusNotFound, "No preview data found. Please upload a statement first.")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to read staged preview")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read preview")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"preview":     batch,
		"total_count": len(batch),
	})
}

// Confirm handles POST /api/imports/confirm
func (h *ImportsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	records, err := h.staging.Confirm(r.Context(), userID)
	if err != nil {
		if errors.Is(err, staging.ErrNoBatch) {
			middleware.WriteError(w, http.StatusBadRequest, "No preview data found. Please upload a statement first.")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to import transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to import transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": records,
		"count":        len(records),
	})
}
