package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// IngestOptions overrides derived document attributes.
type IngestOptions struct {
	// DocumentID replaces the ID derived from the file path.
	DocumentID string

	// Title replaces the title derived from the file name or content.
	Title string
}

// DirectoryOptions controls directory ingestion.
type DirectoryOptions struct {
	// Pattern is a glob matched against file names, e.g. "*.pdf".
	Pattern string

	// Recursive descends into subdirectories.
	Recursive bool

	// Workers bounds how many files are ingested at once.
	Workers int
}

// IngestionService turns files into stored, searchable chunks.
type IngestionService interface {
	// IngestFile extracts, chunks and stores a single file.
	// Existing documents are skipped, not replaced.
	IngestFile(ctx context.Context, path string, opts IngestOptions) (*domain.IngestResult, error)

	// IngestDirectory ingests every matching file under dir.
	// Per-file failures are reported as failed results, not errors.
	IngestDirectory(ctx context.Context, dir string, opts DirectoryOptions) ([]domain.IngestResult, error)

	// Reingest replaces a document with a fresh ingestion of path.
	Reingest(ctx context.Context, docID, path string) (*domain.IngestResult, error)

	// Validate checks a stored document for coverage and searchability.
	Validate(ctx context.Context, docID string) (*domain.ValidationReport, error)

	// ApplyChange keeps the corpus in step with a watched file: created or
	// updated files are re-ingested, deleted files are removed. The result
	// is nil for deletions.
	ApplyChange(ctx context.Context, change domain.FileChange) (*domain.IngestResult, error)

	// Stats returns corpus totals.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// DocumentID returns the ID a file at path is ingested under by default.
	DocumentID(path string) (string, error)

	// Supports reports whether path has an extension with a registered normaliser.
	Supports(path string) bool
}
