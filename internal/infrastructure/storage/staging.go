package storage

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"profilehub/internal/domain/service"
	"profilehub/pkg/errors"
)

const sniffLen = 3072

var nameSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)

// inspect settles the upload's content type, sniffing the first bytes when the
// client sent none or a generic one, and rejects anything not image/* or
// application/*. The returned reader replays the sniffed bytes.
func inspect(upload service.Upload) (string, string, io.Reader, error) {
	if upload.Content == nil {
		return "", "", nil, errors.Staging("File has no content", nil)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", nil, errors.Staging("Failed to read upload", err)
	}
	head = head[:n]
	body := io.MultiReader(bytes.NewReader(head), upload.Content)

	detected := mimetype.Detect(head)
	contentType := strings.TrimSpace(upload.ContentType)
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = detected.String()
	}

	if !service.IsAllowedMimeType(contentType) {
		return "", "", nil, errors.Staging(fmt.Sprintf("File type %s is not allowed", contentType), nil)
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext == "" {
		ext = detected.Extension()
	}

	return contentType, ext, body, nil
}

// objectName builds "<field>-<16 digits><ext>".
func objectName(field, ext string) (string, error) {
	n, err := rand.Int(rand.Reader, nameSpace)
	if err != nil {
		return "", err
	}
	if field == "" {
		field = "file"
	}
	return fmt.Sprintf("%s-%016d%s", field, n, ext), nil
}

// countingReader records how many bytes were copied through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
