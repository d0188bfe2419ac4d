package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxDocumentBytes caps how much of one document is loaded into memory
const DefaultMaxDocumentBytes = 32 << 20

// DocumentStore reads stored documents for the estimation pipeline
type DocumentStore struct {
	storage  Storage
	maxBytes int64
}

// NewDocumentStore wraps a Storage. A non-positive maxBytes selects DefaultMaxDocumentBytes.
func NewDocumentStore(s Storage, maxBytes int64) *DocumentStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &DocumentStore{storage: s, maxBytes: maxBytes}
}

// Read returns the full content of the document at path
func (d *DocumentStore) Read(ctx context.Context, path string) ([]byte, error) {
	rc, err := d.storage.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", path, d.maxBytes, ErrDocumentTooLarge)
	}
	return data, nil
}

// MimeType sniffs the media type of the document at path from its content
func (d *DocumentStore) MimeType(ctx context.Context, path string) (string, error) {
	rc, err := d.storage.Download(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", fmt.Errorf("failed to detect type of %s: %w", path, err)
	}
	return mt.String(), nil
}

// DetectMimeType sniffs the media type of in-memory content
func DetectMimeType(data []byte) string {
	return mimetype.Detect(data).String()
}
