package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

const (
	uriScheme = "corpus://"
	jsonMIME  = "application/json"
)

// StatsResource is the JSON body of the corpus://stats resource.
type StatsResource struct {
	Documents     int     `json:"documents"`
	Chunks        int     `json:"chunks"`
	AverageChunks float64 `json:"average_chunks"`
}

// DocumentResource is the JSON body of a corpus://documents/{id} resource.
type DocumentResource struct {
	DocumentOutput
	Chunks     int `json:"chunks"`
	Characters int `json:"characters"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.sdk.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Document and chunk totals for the corpus",
		MIMEType:    jsonMIME,
	}, s.handleStatsResource)

	s.sdk.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document",
		Description: "Metadata and chunk totals for a single document",
		MIMEType:    jsonMIME,
	}, s.handleDocumentResource)
}

// handleStatsResource returns corpus totals.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Document.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}

	return jsonResult(req.Params.URI, StatsResource{
		Documents:     stats.Documents,
		Chunks:        stats.Chunks,
		AverageChunks: stats.AverageChunks(),
	})
}

// handleDocumentResource returns a document's metadata and chunk totals.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	chunks, err := s.ports.Document.Chunks(ctx, docID, domain.OffsetRange{})
	if err != nil {
		return nil, fmt.Errorf("getting chunks: %w", err)
	}

	body := DocumentResource{DocumentOutput: toDocumentOutput(doc), Chunks: len(chunks)}
	for i := range chunks {
		body.Characters += len(chunks[i].Text)
	}

	return jsonResult(req.Params.URI, body)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like corpus://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
