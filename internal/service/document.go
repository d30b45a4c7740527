package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/888Greys/rag-ai/internal/domain"
)

// BlobStoreInterface defines the raw-document storage operations.
type BlobStoreInterface interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	DeleteObject(ctx context.Context, key string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// Ingester is the slice of IngestService the document service needs.
type Ingester interface {
	Ingest(ctx context.Context, namespace, documentName, content string) (int, error)
	Delete(ctx context.Context, path string) (int64, error)
}

// DocumentFile describes a stored document in listings.
type DocumentFile struct {
	Path        string `json:"pathname"`
	DownloadURL string `json:"url,omitempty"`
}

// DocumentService manages raw uploaded documents: the blob copy in
// object storage and the embedded chunks derived from it.
type DocumentService struct {
	blobs  BlobStoreInterface
	ingest Ingester
}

// NewDocumentService creates a new DocumentService instance.
func NewDocumentService(blobs BlobStoreInterface, ingest Ingester) *DocumentService {
	return &DocumentService{blobs: blobs, ingest: ingest}
}

// Upload stores the raw document under the owner's namespace and ingests
// it for retrieval. Uploads must be valid UTF-8 text; binary formats are
// rejected before anything is written.
func (s *DocumentService) Upload(ctx context.Context, owner, filename string, content []byte) (int, error) {
	if filename == "" || strings.Contains(filename, "/") {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, "filename must be a plain name without slashes")
	}
	if !utf8.Valid(content) {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, "document is not valid UTF-8 text")
	}

	path := domain.DocumentPath(owner, filename)
	if err := s.blobs.PutObject(ctx, path, content, "text/plain; charset=utf-8"); err != nil {
		return 0, fmt.Errorf("store document blob: %w", err)
	}
	chunks, err := s.ingest.Ingest(ctx, owner, filename, string(content))
	if err != nil {
		return 0, err
	}
	return chunks, nil
}

// UploadShared stores a document in the shared namespace, visible to
// every user.
func (s *DocumentService) UploadShared(ctx context.Context, filename string, content []byte) (int, error) {
	return s.Upload(ctx, domain.NamespaceShared, filename, content)
}

// List returns the caller's own documents followed by the shared ones,
// each with a presigned download URL when one can be produced.
func (s *DocumentService) List(ctx context.Context, owner string) ([]DocumentFile, error) {
	var files []DocumentFile
	prefixes := []string{owner + "/", domain.NamespaceShared + "/", domain.NamespaceKCA + "/"}
	for _, prefix := range prefixes {
		keys, err := s.blobs.ListObjects(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, key := range keys {
			file := DocumentFile{Path: key}
			if url, err := s.blobs.GenerateDownloadURL(ctx, key); err == nil {
				file.DownloadURL = url
			}
			files = append(files, file)
		}
	}
	return files, nil
}

// Delete removes a document's blob and its chunks. Only the owner may
// delete a private document; shared documents are deleted through the
// admin CLI, not this path.
func (s *DocumentService) Delete(ctx context.Context, owner, path string) error {
	if !domain.OwnsPath(owner, path) {
		return domain.ErrPathNotOwned
	}
	if err := s.blobs.DeleteObject(ctx, path); err != nil {
		return fmt.Errorf("delete document blob: %w", err)
	}
	if _, err := s.ingest.Delete(ctx, path); err != nil {
		return err
	}
	return nil
}
