package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/sirupsen/logrus"
)

// FileStorage stores opaque blobs under generated names
type FileStorage interface {
	// Store saves data and returns the generated name, "<uuid><ext>"
	Store(ctx context.Context, data []byte, ext string) (string, error)

	// Load opens a stored file. Missing files yield ErrNotFound.
	Load(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a stored file and reports whether it existed
	Delete(ctx context.Context, name string) (bool, error)
}

// NewFileStorage builds the backend selected by STORAGE_BACKEND
func NewFileStorage(ctx context.Context, cfg *config.Config) (FileStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3FileStorage(ctx, cfg)
	case "", "local":
		return NewLocalFileStorage(cfg.FileStorageDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func generateFileName(ext string) string {
	return uuid.NewString() + ext
}

func checkFileName(name string) error {
	if !utils.SafeFileName(name) {
		return badRequest("INVALID_FILE_NAME", "invalid file name %q", name)
	}
	return nil
}

// LocalFileStorage keeps files in a directory on disk
type LocalFileStorage struct {
	root string
}

// NewLocalFileStorage creates the root directory if needed
func NewLocalFileStorage(root string) (*LocalFileStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	logrus.WithField("dir", abs).Info("Using local file storage")
	return &LocalFileStorage{root: abs}, nil
}

func (s *LocalFileStorage) Store(ctx context.Context, data []byte, ext string) (string, error) {
	name := generateFileName(ext)
	if err := checkFileName(name); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	logrus.WithFields(logrus.Fields{"name": name, "bytes": len(data)}).Debug("Stored file")
	return name, nil
}

func (s *LocalFileStorage) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := checkFileName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound("file", "name", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalFileStorage) Delete(ctx context.Context, name string) (bool, error) {
	if err := checkFileName(name); err != nil {
		return false, err
	}
	err := os.Remove(filepath.Join(s.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("name", name).Warn("File not found for deletion")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}
