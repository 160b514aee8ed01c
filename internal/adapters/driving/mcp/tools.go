package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the full-text query to run against stored chunks"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search hit.
type SearchResultOutput struct {
	ChunkID     int64   `json:"chunk_id"`
	DocumentID  string  `json:"document_id"`
	Title       string  `json:"title"`
	Path        string  `json:"path"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	StartOffset int     `json:"start_offset"`
	EndOffset   int     `json:"end_offset"`
	PageNumber  int     `json:"page_number,omitempty"`
}

// DocumentChunksInput is the input schema for the get_document_chunks tool.
type DocumentChunksInput struct {
	DocumentID  string `json:"document_id" jsonschema:"the document to read chunks from"`
	StartOffset *int   `json:"start_offset,omitempty" jsonschema:"only chunks ending after this byte offset"`
	EndOffset   *int   `json:"end_offset,omitempty" jsonschema:"only chunks starting before this byte offset"`
}

// DocumentChunksOutput is the output schema for the get_document_chunks tool.
type DocumentChunksOutput struct {
	DocumentID string        `json:"document_id"`
	Chunks     []ChunkOutput `json:"chunks"`
	Count      int           `json:"count"`
}

// ChunkOutput is a stored chunk as returned to clients.
type ChunkOutput struct {
	ChunkID     int64  `json:"chunk_id"`
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	PageNumber  int    `json:"page_number,omitempty"`
}

// ChunkContextInput is the input schema for the chunk_context tool.
type ChunkContextInput struct {
	ChunkID     int64 `json:"chunk_id" jsonschema:"the chunk to build context around"`
	ContextSize int   `json:"context_size,omitempty" jsonschema:"number of neighbouring chunks on each side (default 1)"`
}

// ChunkContextOutput is the output schema for the chunk_context tool.
type ChunkContextOutput struct {
	ChunkID     int64  `json:"chunk_id"`
	Text        string `json:"text"`
	Pages       []int  `json:"pages"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Chunks      int    `json:"chunks"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes a stored document.
type DocumentOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	CreatedAt string `json:"created_at"`
}

// defaultContextSize is used when chunk_context is called without a size.
const defaultContextSize = 1

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search across all ingested document chunks",
	}, s.handleSearch)

	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "get_document_chunks",
		Description: "Read a document's chunks, optionally limited to a byte offset range",
	}, s.handleDocumentChunks)

	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "chunk_context",
		Description: "Return a chunk together with its neighbouring chunks",
	}, s.handleChunkContext)

	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all documents in the corpus",
	}, s.handleListDocuments)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		r := &results[i]
		output.Results[i] = SearchResultOutput{
			ChunkID:     r.ChunkID,
			DocumentID:  r.DocumentID,
			Title:       r.DocumentTitle,
			Path:        r.DocumentPath,
			Text:        r.Text,
			Score:       r.Score,
			StartOffset: r.StartOffset,
			EndOffset:   r.EndOffset,
			PageNumber:  r.PageNumber,
		}
	}

	return nil, output, nil
}

// handleDocumentChunks handles the get_document_chunks tool invocation.
func (s *Server) handleDocumentChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentChunksInput,
) (*mcp.CallToolResult, DocumentChunksOutput, error) {
	if s.ports.Document == nil {
		return nil, DocumentChunksOutput{}, ErrMissingDocumentService
	}
	if input.DocumentID == "" {
		return nil, DocumentChunksOutput{}, fmt.Errorf("document_id: %w", domain.ErrInvalidInput)
	}

	var r domain.OffsetRange
	switch {
	case input.StartOffset != nil && input.EndOffset != nil:
		r = domain.Range(*input.StartOffset, *input.EndOffset)
	case input.StartOffset != nil:
		r = domain.From(*input.StartOffset)
	case input.EndOffset != nil:
		r = domain.Until(*input.EndOffset)
	}

	chunks, err := s.ports.Document.Chunks(ctx, input.DocumentID, r)
	if err != nil {
		return nil, DocumentChunksOutput{}, err
	}

	output := DocumentChunksOutput{
		DocumentID: input.DocumentID,
		Chunks:     make([]ChunkOutput, len(chunks)),
		Count:      len(chunks),
	}
	for i := range chunks {
		output.Chunks[i] = ChunkOutput{
			ChunkID:     chunks[i].ID,
			Text:        chunks[i].Text,
			StartOffset: chunks[i].StartOffset,
			EndOffset:   chunks[i].EndOffset,
			PageNumber:  chunks[i].PageNumber,
		}
	}

	return nil, output, nil
}

// handleChunkContext handles the chunk_context tool invocation.
func (s *Server) handleChunkContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkContextInput,
) (*mcp.CallToolResult, ChunkContextOutput, error) {
	size := input.ContextSize
	if size <= 0 {
		size = defaultContextSize
	}

	cc, err := s.ports.Search.Context(ctx, input.ChunkID, size)
	if err != nil {
		return nil, ChunkContextOutput{}, err
	}

	return nil, ChunkContextOutput{
		ChunkID:     input.ChunkID,
		Text:        cc.Text,
		Pages:       cc.Pages,
		StartOffset: cc.StartOffset,
		EndOffset:   cc.EndOffset,
		Chunks:      len(cc.Chunks),
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, ErrMissingDocumentService
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}

	return nil, output, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	out := DocumentOutput{ID: doc.ID, Title: doc.Title, Path: doc.Path}
	if !doc.CreatedAt.IsZero() {
		out.CreatedAt = doc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return out
}
