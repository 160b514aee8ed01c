package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// DocumentService manages stored documents.
type DocumentService interface {
	// List returns all documents ordered by title.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns the document's chunks overlapping r.
	Chunks(ctx context.Context, documentID string, r domain.OffsetRange) ([]domain.StoredChunk, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error

	// Stats returns corpus totals.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// Integrity compares stored chunks with the search index.
	Integrity(ctx context.Context) (domain.IntegrityReport, error)
}
