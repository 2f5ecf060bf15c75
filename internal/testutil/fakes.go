package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/service"
	"profilehub/pkg/errors"
)

// FakeStager records uploads in memory and hands out /staged/<field>-<n> paths.
type FakeStager struct {
	mu        sync.Mutex
	n         int
	Staged    []entity.FileRef
	Discarded []string
	// Contents maps staged paths to the bytes received.
	Contents map[string][]byte
}

func NewFakeStager() *FakeStager {
	return &FakeStager{Contents: make(map[string][]byte)}
}

func (s *FakeStager) Stage(ctx context.Context, upload service.Upload) (entity.FileRef, error) {
	if !service.IsAllowedMimeType(upload.ContentType) {
		return entity.FileRef{}, errors.Staging(fmt.Sprintf("File type %s is not allowed", upload.ContentType), nil)
	}
	data, err := io.ReadAll(upload.Content)
	if err != nil {
		return entity.FileRef{}, errors.Staging("Failed to read upload", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	ref := entity.FileRef{
		Path: fmt.Sprintf("/staged/%s-%d", upload.FieldName, s.n),
		Size: int64(len(data)),
	}
	s.Staged = append(s.Staged, ref)
	s.Contents[ref.Path] = data
	return ref, nil
}

func (s *FakeStager) Discard(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Discarded = append(s.Discarded, path)
	delete(s.Contents, path)
	return nil
}

func (s *FakeStager) Close() error {
	return nil
}

// StaticVerifier accepts tokens listed in Tokens, mapping each to a user id.
type StaticVerifier struct {
	Tokens map[string]string
}

func (v StaticVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	uid, ok := v.Tokens[token]
	if !ok {
		return "", fmt.Errorf("unknown token")
	}
	return uid, nil
}
