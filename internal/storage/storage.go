package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/config"
	"go.uber.org/zap"
)

// Folders used for stored objects
const (
	FolderDocuments = "documents"
	FolderReports   = "reports"
)

var (
	// ErrNotFound is returned when a storage path does not exist
	ErrNotFound = errors.New("stored file not found")

	// ErrInvalidPath is returned for paths that escape the storage root
	ErrInvalidPath = errors.New("invalid storage path")

	// ErrDocumentTooLarge is returned when a document exceeds the configured read limit
	ErrDocumentTooLarge = errors.New("document too large")
)

// Storage defines the interface for file storage operations.
// Storage paths always use forward slashes.
type Storage interface {
	Upload(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, int64, error)
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

// NewStorage creates a new storage instance based on configuration.
// For local mode, files are stored on the local filesystem.
// For cloud/azure mode, files are stored in Azure Blob Storage.
func NewStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(ctx, cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// objectName builds a unique storage path under folder keeping the original extension
func objectName(folder, filename string) string {
	return path.Join(folder, uuid.New().String()+strings.ToLower(path.Ext(filename)))
}

// cleanPath normalizes a storage path and rejects absolute or escaping paths
func cleanPath(storagePath string) (string, error) {
	p := path.Clean(strings.ReplaceAll(storagePath, "\\", "/"))
	if p == "." || p == "" || strings.HasPrefix(p, "/") || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, storagePath)
	}
	return p, nil
}

// LocalStorage implements Storage interface for local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create base path if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

func (s *LocalStorage) fullPath(storagePath string) (string, string, error) {
	p, err := cleanPath(storagePath)
	if err != nil {
		return "", "", err
	}
	return p, filepath.Join(s.basePath, filepath.FromSlash(p)), nil
}

// Upload uploads a file to local storage
func (s *LocalStorage) Upload(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, int64, error) {
	storagePath, fullPath, err := s.fullPath(objectName(folder, filename))
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath) // Cleanup on error
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return storagePath, size, nil
}

// Download downloads a file from local storage
func (s *LocalStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	_, fullPath, err := s.fullPath(storagePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete deletes a file from local storage
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	_, fullPath, err := s.fullPath(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
