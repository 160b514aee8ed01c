package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// Normaliser extracts text segments from raw documents.
// Each normaliser handles specific MIME types (e.g., PDF, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise extracts ordered, contiguous segments from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Title is a document title found in the content, or empty.
	Title string

	// Segments are in reading order. The first starts at offset 0 and
	// each one starts where the previous ended.
	Segments []domain.TextSegment
}
