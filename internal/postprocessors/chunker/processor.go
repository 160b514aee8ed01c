package chunker

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Processor names.
const (
	ChunkProcessorName = "chunker"
	MergeProcessorName = "merge"
)

// Verify interface compliance.
var (
	_ driven.PostProcessor = (*ChunkProcessor)(nil)
	_ driven.PostProcessor = (*MergeProcessor)(nil)
)

// ChunkProcessor creates chunks from a document's segments.
type ChunkProcessor struct {
	chunker *Chunker
}

// NewChunkProcessor wraps a chunker as a pipeline stage.
func NewChunkProcessor(c *Chunker) *ChunkProcessor {
	return &ChunkProcessor{chunker: c}
}

// Name returns "chunker".
func (p *ChunkProcessor) Name() string {
	return ChunkProcessorName
}

// Process ignores incoming chunks and chunks the document from scratch.
func (p *ChunkProcessor) Process(ctx context.Context, doc *domain.ExtractedDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.chunker.ChunkWithSegments(doc.Segments, doc.ID), nil
}

// MergeProcessor folds undersized chunks into their neighbours.
type MergeProcessor struct {
	chunker *Chunker
}

// NewMergeProcessor wraps a chunker's merge step as a pipeline stage.
func NewMergeProcessor(c *Chunker) *MergeProcessor {
	return &MergeProcessor{chunker: c}
}

// Name returns "merge".
func (p *MergeProcessor) Name() string {
	return MergeProcessorName
}

// Process merges the incoming chunks.
func (p *MergeProcessor) Process(ctx context.Context, _ *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.chunker.MergeSmallChunks(chunks), nil
}
