package domain

import (
	"strings"
	"unicode"
)

// DefaultSearchLimit is the number of results returned when no limit is given.
const DefaultSearchLimit = 5

// SearchResult is a single full-text search hit.
// Results are ordered by Score descending, ties by ChunkID ascending.
type SearchResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID int64

	// DocumentID is the owning document.
	DocumentID string

	// Text is the matched chunk text.
	Text string

	// Score is the relevance score; higher is more relevant.
	Score float64

	// StartOffset and EndOffset locate the chunk in its document.
	StartOffset int
	EndOffset   int

	// PageNumber is the chunk's primary page, 0 when unknown.
	PageNumber int

	// DocumentTitle and DocumentPath describe the owning document.
	DocumentTitle string
	DocumentPath  string
}

// CorpusStats holds aggregate corpus counts.
type CorpusStats struct {
	Documents int
	Chunks    int
}

// AverageChunks returns the mean number of chunks per document.
func (s CorpusStats) AverageChunks() float64 {
	if s.Documents == 0 {
		return 0
	}
	return float64(s.Chunks) / float64(s.Documents)
}

// IntegrityReport describes the agreement between chunk rows and
// search index entries.
type IntegrityReport struct {
	// Chunks is the number of chunk rows.
	Chunks int

	// IndexEntries is the number of search index entries.
	IndexEntries int

	// Missing lists chunk IDs without an index entry.
	Missing []int64

	// Orphaned lists index entries without a chunk row.
	Orphaned []int64

	// Mismatched lists chunk IDs whose indexed text differs from the row.
	Mismatched []int64
}

// Consistent reports whether every chunk is indexed and nothing else is.
func (r IntegrityReport) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0 && len(r.Mismatched) == 0 &&
		r.Chunks == r.IndexEntries
}

// Tokens splits text into lower-cased runs of letters and digits.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// SearchTerms returns the distinct tokens of a query in order of first use.
// Punctuation and operators carry no meaning in a query.
func SearchTerms(query string) []string {
	tokens := Tokens(query)
	terms := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}
