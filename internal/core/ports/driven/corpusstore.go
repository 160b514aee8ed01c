package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CorpusStore persists documents and their chunks and keeps a full-text
// index over chunk text. Every chunk row has exactly one index entry;
// mutations update both atomically.
type CorpusStore interface {
	// AddDocument registers a document. It returns false without error
	// when a document with the same ID already exists.
	AddDocument(ctx context.Context, docID, title, path string) (bool, error)

	// AddChunk stores one chunk and indexes its text.
	// A pageNumber of 0 records the page as unknown.
	AddChunk(ctx context.Context, docID, text string, start, end, pageNumber int) (int64, error)

	// AddChunks stores a batch of chunks in one transaction and returns
	// their IDs in input order. The primary page of each chunk is stored.
	AddChunks(ctx context.Context, docID string, chunks []domain.Chunk) ([]int64, error)

	// Search returns up to limit chunks ranked by relevance to query.
	// A limit of 0 or less uses domain.DefaultSearchLimit.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// GetDocumentChunks returns the document's chunks overlapping r,
	// ordered by start offset.
	GetDocumentChunks(ctx context.Context, docID string, r domain.OffsetRange) ([]domain.StoredChunk, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, docID string) (*domain.Document, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, chunkID int64) (*domain.StoredChunk, error)

	// DeleteDocument removes a document, its chunks and their index entries.
	// It returns false when the document did not exist.
	DeleteDocument(ctx context.Context, docID string) (bool, error)

	// ListDocuments returns all documents ordered by title.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetStats returns document and chunk totals.
	GetStats(ctx context.Context) (domain.CorpusStats, error)

	// CheckIntegrity compares chunk rows with index entries.
	CheckIntegrity(ctx context.Context) (domain.IntegrityReport, error)

	// Close releases the store's resources.
	Close() error
}
