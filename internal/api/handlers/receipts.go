package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/mlevkov/docledger/internal/api/middleware"
	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/gcs"
	"github.com/mlevkov/docledger/internal/receipt"
)

// maxReceiptSize caps receipt uploads at 10MB.
const maxReceiptSize = 10 << 20

var allowedReceiptTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

type receiptExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (*domain.CandidateTransaction, error)
}

// ReceiptsHandler handles receipt extraction endpoints.
type ReceiptsHandler struct {
	extractor receiptExtractor
	archiver  *gcs.Archiver
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler. archiver may be nil or
// disabled, in which case extracted receipts are not stored.
func NewReceiptsHandler(extractor receiptExtractor, archiver *gcs.Archiver, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		extractor: extractor,
		archiver:  archiver,
		log:       log,
	}
}

// Extract handles POST /api/receipts/extract
func (h *ReceiptsHandler) Extract(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10MB")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read receipt upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	if mt := mimetype.Detect(content); !allowedReceiptTypes[mt.String()] {
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "File type "+mt.String()+" not supported. Allowed: image/jpeg, image/png, application/pdf")
		return
	}

	candidate, err := h.extractor.Extract(r.Context(), content, header.Filename)
	if err != nil {
		if errors.Is(err, receipt.ErrUnsupportedType) {
			middleware.WriteError(w, http.StatusUnsupportedMediaType, "File type not supported. Allowed: image/jpeg, image/png, application/pdf")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to process receipt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process receipt")
		return
	}

	// Archival failure must not lose the extraction result.
	if h.archiver != nil && h.archiver.Enabled() {
		uri, err := h.archiver.Archive(r.Context(), userID, header.Filename, content)
		if err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to archive receipt")
		} else {
			candidate.ReceiptPath = uri
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"extracted": candidate,
		"message":   "Receipt processed successfully. Review the extracted data before creating the transaction.",
	})
}
