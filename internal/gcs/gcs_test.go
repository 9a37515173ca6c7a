package gcs

import (
	"context"
	"strings"
	"testing"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"ok", "gs://my-bucket/receipts/u1/f.pdf", "my-bucket", "receipts/u1/f.pdf", false},
		{"no scheme", "my-bucket/f.pdf", "", "", true},
		{"no object", "gs://my-bucket", "", "", true},
		{"empty object", "gs://my-bucket/", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestFilenameFromURI(t *testing.T) {
	if got := FilenameFromURI("gs://bucket/receipts/u1/file.pdf"); got != "file.pdf" {
		t.Errorf("got %q", got)
	}
}

func TestArchiveNamesObjects(t *testing.T) {
	var gotBucket, gotObject string
	a := NewArchiver("receipts-bucket", func(ctx context.Context, bucketName, objectName string, data []byte) error {
		gotBucket, gotObject = bucketName, objectName
		return nil
	})

	uri, err := a.Archive(context.Background(), "u1", "Dinner Receipt.JPG", []byte("img"))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if gotBucket != "receipts-bucket" {
		t.Errorf("bucket = %q", gotBucket)
	}
	if !strings.HasPrefix(gotObject, "receipts/u1/") || !strings.HasSuffix(gotObject, ".jpg") {
		t.Errorf("object = %q, want receipts/u1/<uuid>.jpg", gotObject)
	}
	if uri != ObjectURI("receipts-bucket", gotObject) {
		t.Errorf("uri = %q", uri)
	}
}

func TestArchiverDisabledWithoutBucket(t *testing.T) {
	a := NewArchiver("", nil)
	if a.Enabled() {
		t.Error("empty bucket must disable archival")
	}
	if _, err := a.Archive(context.Background(), "u1", "f.png", nil); err == nil {
		t.Error("expected error when no bucket configured")
	}
}
