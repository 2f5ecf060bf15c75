package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/service"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
)

const defaultMaxFileSize = 5 * 1024 * 1024

// FileHandler pulls uploads out of multipart requests and stages them.
type FileHandler struct {
	stager      service.BlobStager
	maxFileSize int64
}

func NewFileHandler(stager service.BlobStager, maxFileSize int64) *FileHandler {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	return &FileHandler{
		stager:      stager,
		maxFileSize: maxFileSize,
	}
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func (h *FileHandler) files(c echo.Context, field string) ([]*multipart.FileHeader, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.BadRequest("Invalid multipart form", err)
	}
	return form.File[field], nil
}

// StageSingle stages the file sent under field, if any. More than one file
// under the same field is rejected.
func (h *FileHandler) StageSingle(c echo.Context, field string) (*entity.FileRef, error) {
	refs, err := h.StageMultiple(c, field, 1)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	return &refs[0], nil
}

// StageMultiple stages up to max files sent under field. When any file fails
// the ones already staged are discarded.
func (h *FileHandler) StageMultiple(c echo.Context, field string, max int) ([]entity.FileRef, error) {
	headers, err := h.files(c, field)
	if err != nil {
		return nil, err
	}
	if len(headers) > max {
		return nil, errors.BadRequest(fmt.Sprintf("Too many files for %s (max %d)", field, max), nil)
	}

	ctx := c.Request().Context()
	refs := make([]entity.FileRef, 0, len(headers))
	for _, fh := range headers {
		ref, err := h.stage(ctx, field, fh)
		if err != nil {
			h.Discard(ctx, refs...)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (h *FileHandler) stage(ctx context.Context, field string, fh *multipart.FileHeader) (entity.FileRef, error) {
	logger.Debug("Received file: %s, size: %d bytes, type: %s", fh.Filename, fh.Size, fh.Header.Get("Content-Type"))

	if fh.Size > h.maxFileSize {
		logger.Warn("File too large: %d bytes (max: %d)", fh.Size, h.maxFileSize)
		return entity.FileRef{}, errors.New("PAYLOAD_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)),
			http.StatusRequestEntityTooLarge, nil)
	}

	src, err := fh.Open()
	if err != nil {
		return entity.FileRef{}, errors.Internal("Unable to read file", err)
	}
	defer src.Close()

	return h.stager.Stage(ctx, service.Upload{
		FieldName:   field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     src,
	})
}

// Discard removes staged files after the mutation that was to reference them
// failed. Errors are logged, not returned.
func (h *FileHandler) Discard(ctx context.Context, refs ...entity.FileRef) {
	for _, ref := range refs {
		if err := h.stager.Discard(context.WithoutCancel(ctx), ref.Path); err != nil {
			logger.Warn("Failed to discard staged file %s: %v", ref.Path, err)
		}
	}
}
