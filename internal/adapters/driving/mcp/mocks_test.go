package mcp

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	context *domain.ChunkContext
	err     error

	lastLimit       int
	lastContextSize int
}

func (m *mockSearchService) Search(_ context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.lastLimit = limit
	return m.results, m.err
}

func (m *mockSearchService) Context(_ context.Context, _ int64, contextSize int) (*domain.ChunkContext, error) {
	m.lastContextSize = contextSize
	return m.context, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.StoredChunk
	stats     domain.CorpusStats
	err       error

	lastRange domain.OffsetRange
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil {
		return nil, domain.ErrNotFound
	}
	return m.document, nil
}

func (m *mockDocumentService) Chunks(
	_ context.Context,
	_ string,
	r domain.OffsetRange,
) ([]domain.StoredChunk, error) {
	m.lastRange = r
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockDocumentService) Integrity(_ context.Context) (domain.IntegrityReport, error) {
	return domain.IntegrityReport{}, m.err
}
