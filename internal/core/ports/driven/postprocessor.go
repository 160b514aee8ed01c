package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// PostProcessor is one chunking stage. A stage that creates chunks (the
// chunker) is called with nil chunks; a stage that refines them (merge)
// receives the previous stage's output.
type PostProcessor interface {
	// Name is the key used in PipelineConfig and in log lines.
	Name() string

	Process(ctx context.Context, doc *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns an extracted document into its final chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error)
}
