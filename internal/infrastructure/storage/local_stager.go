package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/service"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
)

// LocalStager writes uploads under a directory on local disk and records
// their absolute path.
type LocalStager struct {
	dir string
}

func NewLocalStager(dir string) (*LocalStager, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %v", err)
	}
	return &LocalStager{dir: dir}, nil
}

func (s *LocalStager) Stage(ctx context.Context, upload service.Upload) (entity.FileRef, error) {
	_, ext, body, err := inspect(upload)
	if err != nil {
		return entity.FileRef{}, err
	}

	name, err := objectName(upload.FieldName, ext)
	if err != nil {
		return entity.FileRef{}, errors.Staging("Failed to name file", err)
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return entity.FileRef{}, errors.Staging("Failed to create file", err)
	}

	counter := &countingReader{r: body}
	if _, err := io.Copy(f, counter); err != nil {
		f.Close()
		os.Remove(path)
		return entity.FileRef{}, errors.Staging("Failed to write file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return entity.FileRef{}, errors.Staging("Failed to write file", err)
	}

	logger.Debug("Staged %s (%d bytes)", path, counter.n)
	return entity.FileRef{Path: filepath.ToSlash(path), Size: counter.n}, nil
}

// Discard removes a staged file. Missing files are not an error.
func (s *LocalStager) Discard(ctx context.Context, path string) error {
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStager) Close() error {
	return nil
}
