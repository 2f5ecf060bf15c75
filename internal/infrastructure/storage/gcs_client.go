package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/service"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

// CloudStorageStager stores uploads as objects in a GCS bucket and records
// their public URL.
type CloudStorageStager struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

func NewCloudStorageStager(ctx context.Context, bucketName, prefix string, opts ...option.ClientOption) (*CloudStorageStager, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageStager{
		client:     client,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (c *CloudStorageStager) Stage(ctx context.Context, upload service.Upload) (entity.FileRef, error) {
	contentType, ext, body, err := inspect(upload)
	if err != nil {
		return entity.FileRef{}, err
	}

	name, err := objectName(upload.FieldName, ext)
	if err != nil {
		return entity.FileRef{}, errors.Staging("Failed to name file", err)
	}
	if c.prefix != "" {
		name = path.Join(c.prefix, name)
	}

	obj := c.client.Bucket(c.bucketName).Object(name).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	counter := &countingReader{r: body}
	if _, err := io.Copy(wc, counter); err != nil {
		wc.Close()
		return entity.FileRef{}, errors.Staging("Failed to copy file to GCS", err)
	}

	if err := wc.Close(); err != nil {
		return entity.FileRef{}, errors.Staging("Failed to close writer", err)
	}

	logger.Debug("Staged gs://%s/%s (%d bytes)", c.bucketName, name, counter.n)
	return entity.FileRef{
		Path: fmt.Sprintf("%s%s/%s", publicURLPrefix, c.bucketName, name),
		Size: counter.n,
	}, nil
}

// Discard deletes the object behind a URL returned by Stage.
func (c *CloudStorageStager) Discard(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}

	if err := c.client.Bucket(c.bucketName).Object(parts[1]).Delete(ctx); err != nil {
		if stderrors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %v", err)
	}

	return nil
}

func (c *CloudStorageStager) Close() error {
	return c.client.Close()
}
