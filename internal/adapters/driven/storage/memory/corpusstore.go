package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// BM25 parameters, matching the SQLite FTS5 defaults.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
// Rows and the inverted index are updated under one write lock, so readers
// never observe a chunk without its postings.
type CorpusStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[int64]*entry
	byDoc     map[string][]int64
	postings  map[string]map[int64]int
	totalLen  int
	nextID    int64
}

// entry is a stored chunk plus its index statistics.
type entry struct {
	chunk  domain.StoredChunk
	terms  map[string]int
	length int
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[int64]*entry),
		byDoc:     make(map[string][]int64),
		postings:  make(map[string]map[int64]int),
		nextID:    1,
	}
}

// AddDocument stores a document unless its ID already exists.
func (s *CorpusStore) AddDocument(_ context.Context, docID, title, path string) (bool, error) {
	if docID == "" {
		return false, fmt.Errorf("adding document: %w: empty document id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[docID]; ok {
		return false, nil
	}
	s.documents[docID] = domain.Document{
		ID:        docID,
		Title:     title,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

// GetDocument retrieves a document by ID.
func (s *CorpusStore) GetDocument(_ context.Context, docID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by title, then ID.
func (s *CorpusStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := slices.Collect(maps.Values(s.documents))
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Title != docs[j].Title {
			return docs[i].Title < docs[j].Title
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// DeleteDocument removes a document with its chunks and postings.
func (s *CorpusStore) DeleteDocument(_ context.Context, docID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[docID]; !ok {
		return false, nil
	}
	for _, id := range s.byDoc[docID] {
		s.unindex(id)
		delete(s.chunks, id)
	}
	delete(s.byDoc, docID)
	delete(s.documents, docID)
	return true, nil
}

// AddChunk stores one chunk and indexes it.
func (s *CorpusStore) AddChunk(ctx context.Context, docID, text string, start, end, pageNumber int) (int64, error) {
	ids, err := s.AddChunks(ctx, docID, []domain.Chunk{{
		Text:        text,
		StartOffset: start,
		EndOffset:   end,
		PageNumbers: pageList(pageNumber),
	}})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AddChunks stores chunks atomically; invalid input leaves the store unchanged.
func (s *CorpusStore) AddChunks(_ context.Context, docID string, chunks []domain.Chunk) ([]int64, error) {
	for i, c := range chunks {
		if c.StartOffset < 0 || c.EndOffset <= c.StartOffset {
			return nil, fmt.Errorf("adding chunk %d: %w: offsets [%d, %d)",
				i, domain.ErrInvalidInput, c.StartOffset, c.EndOffset)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[docID]; !ok {
		return nil, fmt.Errorf("adding chunk: document %s: %w", docID, domain.ErrNotFound)
	}

	ids := make([]int64, 0, len(chunks))
	for _, c := range chunks {
		id := s.nextID
		s.nextID++

		var meta map[string]any
		if len(c.Metadata) > 0 {
			meta = maps.Clone(c.Metadata)
		}
		e := &entry{
			chunk: domain.StoredChunk{
				ID:          id,
				DocumentID:  docID,
				Text:        c.Text,
				StartOffset: c.StartOffset,
				EndOffset:   c.EndOffset,
				PageNumber:  c.PrimaryPage(),
				Metadata:    meta,
			},
		}
		s.chunks[id] = e
		s.byDoc[docID] = append(s.byDoc[docID], id)
		s.index(id, e)
		ids = append(ids, id)
	}
	return ids, nil
}

// GetChunk retrieves a chunk by ID.
func (s *CorpusStore) GetChunk(_ context.Context, chunkID int64) (*domain.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.chunks[chunkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	chunk := e.chunk
	return &chunk, nil
}

// GetDocumentChunks returns the document's chunks intersecting r, ordered by start offset.
func (s *CorpusStore) GetDocumentChunks(_ context.Context, docID string, r domain.OffsetRange) ([]domain.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := []domain.StoredChunk{}
	for _, id := range s.byDoc[docID] {
		c := s.chunks[id].chunk
		if r.Intersects(c.StartOffset, c.EndOffset) {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].StartOffset != chunks[j].StartOffset {
			return chunks[i].StartOffset < chunks[j].StartOffset
		}
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// Search ranks chunks containing any query term with BM25.
func (s *CorpusStore) Search(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	terms := domain.SearchTerms(query)
	if len(terms) == 0 {
		return []domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.chunks)
	if n == 0 {
		return []domain.SearchResult{}, nil
	}
	avgLen := float64(s.totalLen) / float64(n)

	scores := make(map[int64]float64)
	for _, term := range terms {
		posting := s.postings[term]
		if len(posting) == 0 {
			continue
		}
		idf := math.Log((float64(n) - float64(len(posting)) + 0.5) / (float64(len(posting)) + 0.5))
		if idf <= 0 {
			idf = 1e-6
		}
		for id, tf := range posting {
			norm := 1 - bm25B + bm25B*float64(s.chunks[id].length)/avgLen
			scores[id] += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
	}

	results := make([]domain.SearchResult, 0, len(scores))
	for id, score := range scores {
		c := s.chunks[id].chunk
		doc := s.documents[c.DocumentID]
		results = append(results, domain.SearchResult{
			ChunkID:       id,
			DocumentID:    c.DocumentID,
			Text:          c.Text,
			Score:         score,
			StartOffset:   c.StartOffset,
			EndOffset:     c.EndOffset,
			PageNumber:    c.PageNumber,
			DocumentTitle: doc.Title,
			DocumentPath:  doc.Path,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetStats returns document and chunk counts.
func (s *CorpusStore) GetStats(_ context.Context) (domain.CorpusStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CorpusStats{Documents: len(s.documents), Chunks: len(s.chunks)}, nil
}

// CheckIntegrity rebuilds term counts from chunk text and compares them
// with the postings.
func (s *CorpusStore) CheckIntegrity(_ context.Context) (domain.IntegrityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.IntegrityReport{Chunks: len(s.chunks)}
	indexed := make(map[int64]bool)
	for _, posting := range s.postings {
		for id := range posting {
			indexed[id] = true
		}
	}
	report.IndexEntries = len(indexed)

	for id, e := range s.chunks {
		if !indexed[id] && len(e.terms) > 0 {
			report.Missing = append(report.Missing, id)
			continue
		}
		if !maps.Equal(termCounts(e.chunk.Text), e.terms) {
			report.Mismatched = append(report.Mismatched, id)
		}
	}
	for id := range indexed {
		if _, ok := s.chunks[id]; !ok {
			report.Orphaned = append(report.Orphaned, id)
		}
	}

	// Chunks without any token have no postings but are not missing.
	for _, e := range s.chunks {
		if len(e.terms) == 0 {
			report.IndexEntries++
		}
	}

	slices.Sort(report.Missing)
	slices.Sort(report.Orphaned)
	slices.Sort(report.Mismatched)
	return report, nil
}

// Close is a no-op for the in-memory store.
func (s *CorpusStore) Close() error {
	return nil
}

// index adds a chunk's terms to the postings. Callers hold the write lock.
func (s *CorpusStore) index(id int64, e *entry) {
	e.terms = termCounts(e.chunk.Text)
	for term, tf := range e.terms {
		e.length += tf
		posting, ok := s.postings[term]
		if !ok {
			posting = make(map[int64]int)
			s.postings[term] = posting
		}
		posting[id] = tf
	}
	s.totalLen += e.length
}

// unindex removes a chunk's postings. Callers hold the write lock.
func (s *CorpusStore) unindex(id int64) {
	e, ok := s.chunks[id]
	if !ok {
		return
	}
	for term := range e.terms {
		delete(s.postings[term], id)
		if len(s.postings[term]) == 0 {
			delete(s.postings, term)
		}
	}
	s.totalLen -= e.length
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, t := range domain.Tokens(text) {
		counts[t]++
	}
	return counts
}

func pageList(page int) []int {
	if page <= 0 {
		return nil
	}
	return []int{page}
}
