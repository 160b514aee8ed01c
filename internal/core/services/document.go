package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages stored documents.
type DocumentService struct {
	store driven.CorpusStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.CorpusStore) *DocumentService {
	return &DocumentService{store: store}
}

// List returns all documents ordered by title.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, documentID)
}

// Chunks returns the document's chunks overlapping r. Unlike the store,
// an unknown document is reported as domain.ErrNotFound.
func (s *DocumentService) Chunks(
	ctx context.Context,
	documentID string,
	r domain.OffsetRange,
) ([]domain.StoredChunk, error) {
	if r.Start != nil && r.End != nil && *r.End <= *r.Start {
		return nil, fmt.Errorf("%w: range end %d must be after start %d", domain.ErrInvalidInput, *r.End, *r.Start)
	}
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.GetDocumentChunks(ctx, documentID, r)
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	deleted, err := s.store.DeleteDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	if !deleted {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}

// Stats returns corpus totals.
func (s *DocumentService) Stats(ctx context.Context) (domain.CorpusStats, error) {
	return s.store.GetStats(ctx)
}

// Integrity compares stored chunks with the search index.
func (s *DocumentService) Integrity(ctx context.Context) (domain.IntegrityReport, error) {
	report, err := s.store.CheckIntegrity(ctx)
	if err != nil {
		return domain.IntegrityReport{}, fmt.Errorf("check integrity: %w", err)
	}
	if !report.Consistent() {
		logger.Warn("index drift: %d missing, %d orphaned, %d mismatched",
			len(report.Missing), len(report.Orphaned), len(report.Mismatched))
	}
	return report, nil
}
