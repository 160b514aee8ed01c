package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid document URI", "corpus://documents/report_ab12cd34", "report_ab12cd34"},
		{"invalid prefix", "file://documents/doc-456", ""},
		{"stats URI", "corpus://stats", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns totals as JSON", func(t *testing.T) {
		docs := &mockDocumentService{stats: domain.CorpusStats{Documents: 2, Chunks: 9}}
		server := newTestServer(t, &mockSearchService{}, docs)

		result, err := server.handleStatsResource(ctx, makeReadResourceRequest("corpus://stats"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "corpus://stats", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var stats StatsResource
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &stats))
		assert.Equal(t, 2, stats.Documents)
		assert.Equal(t, 9, stats.Chunks)
		assert.InDelta(t, 4.5, stats.AverageChunks, 1e-9)
	})

	t.Run("no document service", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, nil)
		_, err := server.handleStatsResource(ctx, makeReadResourceRequest("corpus://stats"))
		assert.Error(t, err)
	})

	t.Run("service error", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockDocumentService{err: errors.New("boom")})
		_, err := server.handleStatsResource(ctx, makeReadResourceRequest("corpus://stats"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestServer_handleDocumentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document summary", func(t *testing.T) {
		docs := &mockDocumentService{
			document: &domain.Document{ID: "d_1", Title: "Doc", Path: "/d.txt"},
			chunks: []domain.StoredChunk{
				{ID: 1, Text: "hello"},
				{ID: 2, Text: "world!"},
			},
		}
		server := newTestServer(t, &mockSearchService{}, docs)

		result, err := server.handleDocumentResource(ctx, makeReadResourceRequest("corpus://documents/d_1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		var body DocumentResource
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &body))
		assert.Equal(t, "d_1", body.ID)
		assert.Equal(t, "Doc", body.Title)
		assert.Equal(t, 2, body.Chunks)
		assert.Equal(t, 11, body.Characters)
	})

	t.Run("unknown document", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockDocumentService{})
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("corpus://documents/nope"))
		assert.Error(t, err)
	})

	t.Run("malformed URI", func(t *testing.T) {
		server := newTestServer(t, &mockSearchService{}, &mockDocumentService{})
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("corpus://documents/"))
		assert.Error(t, err)
	})
}
