package service

import (
	"context"
	"io"
	"mime"
	"strings"

	"profilehub/internal/domain/entity"
)

// Upload is one file received from a client, before it is stored.
type Upload struct {
	FieldName   string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// BlobStager stores uploads durably and hands back the reference kept on the user.
type BlobStager interface {
	Stage(ctx context.Context, upload Upload) (entity.FileRef, error)
	Discard(ctx context.Context, path string) error
	Close() error
}

// IsAllowedMimeType accepts images and application/* documents (PDF included).
func IsAllowedMimeType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "application/")
}
