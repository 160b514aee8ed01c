package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func newTestServer(t *testing.T, search *mockSearchService, docs *mockDocumentService) *Server {
	t.Helper()
	ports := &Ports{Search: search}
	if docs != nil {
		ports.Document = docs
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		search := &mockSearchService{
			results: []domain.SearchResult{{
				ChunkID:       7,
				DocumentID:    "report_ab12cd34",
				Text:          "quarterly revenue grew",
				Score:         1.25,
				StartOffset:   120,
				EndOffset:     142,
				PageNumber:    3,
				DocumentTitle: "Annual Report",
				DocumentPath:  "/docs/report.pdf",
			}},
		}
		server := newTestServer(t, search, nil)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "revenue", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 3, search.lastLimit)
		require.Equal(t, 1, output.Count)
		got := output.Results[0]
		assert.Equal(t, int64(7), got.ChunkID)
		assert.Equal(t, "report_ab12cd34", got.DocumentID)
		assert.Equal(t, "Annual Report", got.Title)
		assert.Equal(t, "/docs/report.pdf", got.Path)
		assert.Equal(t, "quarterly revenue grew", got.Text)
		assert.Equal(t, 1.25, got.Score)
		assert.Equal(t, 120, got.StartOffset)
		assert.Equal(t, 142, got.EndOffset)
		assert.Equal(t, 3, got.PageNumber)
	})

	t.Run("zero limit is passed through to the service default", func(t *testing.T) {
		search := &mockSearchService{}
		server := newTestServer(t, search, nil)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "x"})

		require.NoError(t, err)
		assert.Equal(t, 0, search.lastLimit)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{err: errors.New("search failed")}, nil)

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleDocumentChunks(t *testing.T) {
	ctx := context.Background()
	start, end := 10, 50

	t.Run("returns chunks", func(t *testing.T) {
		docs := &mockDocumentService{chunks: []domain.StoredChunk{
			{ID: 1, DocumentID: "d", Text: "first", StartOffset: 0, EndOffset: 5, PageNumber: 1},
			{ID: 2, DocumentID: "d", Text: "second", StartOffset: 6, EndOffset: 12, PageNumber: 2},
		}}
		server := newTestServer(t, &mockSearchService{}, docs)

		_, output, err := server.handleDocumentChunks(ctx, nil, DocumentChunksInput{DocumentID: "d"})

		require.NoError(t, err)
		assert.Equal(t, "d", output.DocumentID)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, int64(2), output.Chunks[1].ChunkID)
		assert.Equal(t, "second", output.Chunks[1].Text)
		assert.Equal(t, 2, output.Chunks[1].PageNumber)
		assert.True(t, docs.lastRange.IsZero())
	})

	tests := []struct {
		name  string
		input DocumentChunksInput
		want  domain.OffsetRange
	}{
		{"both bounds", DocumentChunksInput{DocumentID: "d", StartOffset: &start, EndOffset: &end}, domain.Range(10, 50)},
		{"start only", DocumentChunksInput{DocumentID: "d", StartOffset: &start}, domain.From(10)},
		{"end only", DocumentChunksInput{DocumentID: "d", EndOffset: &end}, domain.Until(50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := &mockDocumentService{}
			server := newTestServer(t, &mockSearchService{}, docs)

			_, _, err := server.handleDocumentChunks(ctx, nil, tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.want, docs.lastRange)
		})
	}

	t.Run("missing document id", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockDocumentService{})
		_, _, err := server.handleDocumentChunks(ctx, nil, DocumentChunksInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("service error", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockDocumentService{err: domain.ErrNotFound})
		_, _, err := server.handleDocumentChunks(ctx, nil, DocumentChunksInput{DocumentID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no document service", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, nil)
		_, _, err := server.handleDocumentChunks(ctx, nil, DocumentChunksInput{DocumentID: "d"})
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})
}

func TestServer_handleChunkContext(t *testing.T) {
	ctx := context.Background()

	t.Run("returns joined context", func(t *testing.T) {
		search := &mockSearchService{context: &domain.ChunkContext{
			Chunks:      make([]domain.Chunk, 3),
			Text:        "a b c",
			Pages:       []int{1, 2},
			StartOffset: 0,
			EndOffset:   30,
		}}
		server := newTestServer(t, search, nil)

		_, output, err := server.handleChunkContext(ctx, nil, ChunkContextInput{ChunkID: 4, ContextSize: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, search.lastContextSize)
		assert.Equal(t, int64(4), output.ChunkID)
		assert.Equal(t, "a b c", output.Text)
		assert.Equal(t, []int{1, 2}, output.Pages)
		assert.Equal(t, 30, output.EndOffset)
		assert.Equal(t, 3, output.Chunks)
	})

	t.Run("default context size", func(t *testing.T) {
		search := &mockSearchService{context: &domain.ChunkContext{}}
		server := newTestServer(t, search, nil)

		_, _, err := server.handleChunkContext(ctx, nil, ChunkContextInput{ChunkID: 1})

		require.NoError(t, err)
		assert.Equal(t, defaultContextSize, search.lastContextSize)
	})

	t.Run("unknown chunk", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{err: domain.ErrNotFound}, nil)
		_, _, err := server.handleChunkContext(ctx, nil, ChunkContextInput{ChunkID: 99})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		docs := &mockDocumentService{documents: []domain.Document{
			{ID: "a_1", Title: "Alpha", Path: "/a.pdf", CreatedAt: created},
			{ID: "b_2", Title: "Beta", Path: "/b.md"},
		}}
		server := newTestServer(t, &mockSearchService{}, docs)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, "Alpha", output.Documents[0].Title)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Documents[0].CreatedAt)
		assert.Empty(t, output.Documents[1].CreatedAt)
	})

	t.Run("no document service", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, nil)
		_, _, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("service error", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockDocumentService{err: errors.New("db down")})
		_, _, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})
		assert.Error(t, err)
	})
}
