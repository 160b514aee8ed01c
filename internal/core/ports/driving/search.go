package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search performs full-text search across all stored chunks.
	// A limit of 0 or less uses the configured default.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// Context returns a stored chunk together with its neighbours.
	Context(ctx context.Context, chunkID int64, contextSize int) (*domain.ChunkContext, error)
}
