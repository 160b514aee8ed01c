package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs relevance search over stored chunks.
type SearchService struct {
	store        driven.CorpusStore
	defaultLimit int
}

// NewSearchService creates a new search service. A defaultLimit of 0 or
// less falls back to domain.DefaultSearchLimit.
func NewSearchService(store driven.CorpusStore, defaultLimit int) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultSearchLimit
	}
	return &SearchService{
		store:        store,
		defaultLimit: defaultLimit,
	}
}

// Search returns up to limit chunks ranked by relevance to query.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	defer logger.Timed("search")()

	results, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	logger.Debug("search: %q returned %d results", query, len(results))
	return results, nil
}

// Context returns the chunk with contextSize neighbours on each side,
// taken from the same document in offset order.
func (s *SearchService) Context(ctx context.Context, chunkID int64, contextSize int) (*domain.ChunkContext, error) {
	if contextSize < 0 {
		return nil, fmt.Errorf("%w: context size must not be negative, got %d", domain.ErrInvalidInput, contextSize)
	}

	target, err := s.store.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, fmt.Errorf("get chunk %d: %w", chunkID, err)
	}

	stored, err := s.store.GetDocumentChunks(ctx, target.DocumentID, domain.OffsetRange{})
	if err != nil {
		return nil, fmt.Errorf("get chunks of %s: %w", target.DocumentID, err)
	}

	chunks := make([]domain.Chunk, len(stored))
	index := -1
	for i, sc := range stored {
		chunks[i] = sc.AsChunk(i)
		if sc.ID == chunkID {
			index = i
		}
	}

	cc, ok := domain.BuildChunkContext(chunks, index, contextSize)
	if !ok {
		return nil, fmt.Errorf("chunk %d: %w", chunkID, domain.ErrNotFound)
	}
	return &cc, nil
}
