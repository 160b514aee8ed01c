package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService coordinates reading, extraction, chunking and storage.
type IngestionService struct {
	store       driven.CorpusStore
	connector   driven.Connector
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	store driven.CorpusStore,
	connector driven.Connector,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
) *IngestionService {
	return &IngestionService{
		store:       store,
		connector:   connector,
		normalisers: normalisers,
		pipeline:    pipeline,
	}
}

// DocumentID derives a stable document ID from the absolute file path:
// the file stem followed by eight hex digits of a name-based UUID.
func (s *IngestionService) DocumentID(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return fmt.Sprintf("%s_%x", stem(abs), id[:4]), nil
}

// Supports reports whether path has an extension with a registered normaliser.
func (s *IngestionService) Supports(path string) bool {
	mime := domain.MIMETypeForPath(path)
	return mime != "" && s.normalisers.Get(mime) != nil
}

// IngestFile extracts, chunks and stores a single file.
func (s *IngestionService) IngestFile(
	ctx context.Context,
	path string,
	opts driving.IngestOptions,
) (*domain.IngestResult, error) {
	raw, err := s.connector.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, raw, opts)
}

// Reingest replaces docID with a fresh ingestion of path, keeping the
// existing title. The file is normalised and chunked before anything is
// deleted, so a file that fails to extract leaves the stored copy intact.
func (s *IngestionService) Reingest(ctx context.Context, docID, path string) (*domain.IngestResult, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	raw, err := s.connector.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	var title string
	existing, err := s.store.GetDocument(ctx, docID)
	found := err == nil
	switch {
	case found:
		title = existing.Title
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}

	defer logger.Timed("reingest " + docID)()
	result, chunks, err := s.extract(ctx, raw, docID, title)
	if err != nil {
		return nil, err
	}
	if result.Status == domain.IngestFailed {
		return result, nil
	}

	if found {
		if _, err := s.store.DeleteDocument(ctx, docID); err != nil {
			return nil, fmt.Errorf("delete %s: %w", docID, err)
		}
		logger.Info("Deleted existing document %s", docID)
	}
	return s.save(ctx, result, chunks)
}

// ApplyChange re-ingests created or updated files and removes deleted ones.
func (s *IngestionService) ApplyChange(ctx context.Context, change domain.FileChange) (*domain.IngestResult, error) {
	docID, err := s.DocumentID(change.Path)
	if err != nil {
		return nil, err
	}

	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		return s.Reingest(ctx, docID, change.Path)
	case domain.ChangeDeleted:
		deleted, err := s.store.DeleteDocument(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("delete %s: %w", docID, err)
		}
		if deleted {
			logger.Info("Removed %s (%s)", docID, change.Path)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown change type %q", domain.ErrInvalidInput, change.Type)
	}
}

// IngestDirectory ingests every matching file under dir with up to
// opts.Workers files in flight. Results are in path order.
func (s *IngestionService) IngestDirectory(
	ctx context.Context,
	dir string,
	opts driving.DirectoryOptions,
) ([]domain.IngestResult, error) {
	files, err := s.connector.Discover(ctx, dir, opts.Pattern, opts.Recursive)
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d files in %s", len(files), dir)

	workers := opts.Workers
	if workers <= 0 {
		workers = domain.DefaultIngestWorkers
	}

	results := make([]domain.IngestResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		g.Go(func() error {
			res, err := s.IngestFile(gctx, file, driving.IngestOptions{})
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("Failed to ingest %s: %v", file, err)
				docID, _ := s.DocumentID(file)
				results[i] = domain.IngestResult{
					DocumentID: docID,
					Path:       file,
					Status:     domain.IngestFailed,
					Reason:     err.Error(),
				}
				return nil
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	successful := 0
	for _, r := range results {
		if r.Status == domain.IngestSuccess {
			successful++
		}
	}
	logger.Info("Ingested %d/%d documents successfully", successful, len(results))
	return results, nil
}

// Validate checks a stored document for coverage and searchability.
func (s *IngestionService) Validate(ctx context.Context, docID string) (*domain.ValidationReport, error) {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}

	chunks, err := s.store.GetDocumentChunks(ctx, docID, domain.OffsetRange{})
	if err != nil {
		return nil, fmt.Errorf("get chunks of %s: %w", docID, err)
	}

	report := &domain.ValidationReport{
		DocumentID: docID,
		ChunkCount: len(chunks),
		CheckedAt:  time.Now().UTC(),
	}

	if len(chunks) == 0 {
		report.Issues = append(report.Issues, "no chunks found")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartOffset > chunks[i-1].EndOffset+domain.ValidationGapTolerance {
			report.Issues = append(report.Issues, fmt.Sprintf("large gap between chunks %d and %d", i-1, i))
		}
	}
	blank := 0
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			blank++
		}
	}
	if blank > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("found %d empty chunks", blank))
	}

	report.SearchFunctional = s.probeSearch(ctx, doc, chunks, report)
	report.Valid = len(report.Issues) == 0
	return report, nil
}

// probeSearch searches for a term taken from the document. When the
// document has text, the probe must find at least one chunk.
func (s *IngestionService) probeSearch(
	ctx context.Context,
	doc *domain.Document,
	chunks []domain.StoredChunk,
	report *domain.ValidationReport,
) bool {
	probe := doc.Title
	var expectHit bool
	for _, c := range chunks {
		if terms := domain.Tokens(c.Text); len(terms) > 0 {
			probe, expectHit = terms[0], true
			break
		}
	}

	results, err := s.store.Search(ctx, probe, 1)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("search test failed: %v", err))
		return false
	}
	if expectHit && len(results) == 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("search for %q found nothing", probe))
		return false
	}
	return true
}

// Stats returns corpus totals.
func (s *IngestionService) Stats(ctx context.Context) (domain.CorpusStats, error) {
	return s.store.GetStats(ctx)
}

// ingest runs extraction, chunking and storage for a file already read.
func (s *IngestionService) ingest(
	ctx context.Context,
	raw *domain.RawDocument,
	opts driving.IngestOptions,
) (*domain.IngestResult, error) {
	docID := opts.DocumentID
	if docID == "" {
		var err error
		if docID, err = s.DocumentID(raw.URI); err != nil {
			return nil, err
		}
	}
	defer logger.Timed("ingest " + docID)()

	existing, err := s.store.GetDocument(ctx, docID)
	if err == nil {
		logger.Warn("Document %s already exists, skipping", docID)
		return &domain.IngestResult{
			DocumentID: docID,
			Path:       raw.URI,
			Title:      existing.Title,
			Status:     domain.IngestSkipped,
			Reason:     domain.ReasonAlreadyExists,
			IngestedAt: time.Now().UTC(),
		}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}

	result, chunks, err := s.extract(ctx, raw, docID, opts.Title)
	if err != nil {
		return nil, err
	}
	if result.Status == domain.IngestFailed {
		return result, nil
	}
	return s.save(ctx, result, chunks)
}

// extract normalises raw and runs the chunk pipeline without touching the
// store. A document with no text comes back with status failed and no chunks.
func (s *IngestionService) extract(
	ctx context.Context,
	raw *domain.RawDocument,
	docID, title string,
) (*domain.IngestResult, []domain.Chunk, error) {
	logger.Info("Starting ingestion of %s as %s", raw.URI, docID)
	result := &domain.IngestResult{
		DocumentID: docID,
		Path:       raw.URI,
		IngestedAt: time.Now().UTC(),
	}

	extracted, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	result.Title = firstNonEmpty(title, extracted.Title, stem(raw.URI))
	result.Segments = len(extracted.Segments)

	doc := &domain.ExtractedDocument{
		ID:       docID,
		Title:    result.Title,
		Path:     raw.URI,
		Segments: extracted.Segments,
	}
	if strings.TrimSpace(doc.Text()) == "" {
		logger.Warn("No text extracted from %s", raw.URI)
		result.Status = domain.IngestFailed
		result.Reason = domain.ReasonNoTextExtracted
		return result, nil, nil
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest %s: %w", raw.URI, err)
	}
	return result, chunks, nil
}

// save stores the document row and its chunks. A failed chunk write
// removes the document again.
func (s *IngestionService) save(
	ctx context.Context,
	result *domain.IngestResult,
	chunks []domain.Chunk,
) (*domain.IngestResult, error) {
	docID := result.DocumentID
	added, err := s.store.AddDocument(ctx, docID, result.Title, result.Path)
	if err != nil {
		return nil, fmt.Errorf("add document %s: %w", docID, err)
	}
	if !added {
		result.Status = domain.IngestSkipped
		result.Reason = domain.ReasonAlreadyExists
		return result, nil
	}

	result.ChunkIDs, err = s.store.AddChunks(ctx, docID, chunks)
	if err != nil {
		if _, cleanupErr := s.store.DeleteDocument(context.WithoutCancel(ctx), docID); cleanupErr != nil {
			logger.Error("cleanup of %s failed: %v", docID, cleanupErr)
		}
		return nil, fmt.Errorf("ingest %s: %w", result.Path, err)
	}

	result.Status = domain.IngestSuccess
	result.Chunks = len(chunks)
	for _, c := range chunks {
		result.Characters += len(c.Text)
	}
	logger.Info("Ingested %s: %d chunks, %d characters", docID, result.Chunks, result.Characters)
	return result, nil
}

// stem returns the file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
