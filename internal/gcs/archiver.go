package gcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadFunc writes data to gs://bucketName/objectName.
type UploadFunc func(ctx context.Context, bucketName, objectName string, data []byte) error

// Archiver stores uploaded receipts under receipts/<user>/<uuid><ext> and
// returns the resulting gs:// URI.
type Archiver struct {
	bucket string
	upload UploadFunc
}

// NewArchiver creates an archiver writing into bucket. A nil upload uses the
// real GCS client.
func NewArchiver(bucket string, upload UploadFunc) *Archiver {
	if upload == nil {
		upload = UploadBytes
	}
	return &Archiver{bucket: bucket, upload: upload}
}

// Enabled reports whether a bucket is configured; an empty bucket disables
// archival entirely.
func (a *Archiver) Enabled() bool {
	return a.bucket != ""
}

// Archive uploads the receipt content and returns its object URI. The
// original filename contributes only its extension; the object name itself is
// a fresh UUID so uploads never collide.
func (a *Archiver) Archive(ctx context.Context, userID, filename string, content []byte) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("Archive: no bucket configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectName := fmt.Sprintf("receipts/%s/%s%s", userID, uuid.New().String(), ext)
	if err := a.upload(ctx, a.bucket, objectName, content); err != nil {
		return "", fmt.Errorf("Archive: %w", err)
	}
	return ObjectURI(a.bucket, objectName), nil
}
