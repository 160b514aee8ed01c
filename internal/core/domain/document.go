package domain

import "time"

// Document is a document registered in the corpus store.
type Document struct {
	// ID is the unique document identifier.
	ID string

	// Title is the human-readable title.
	Title string

	// Path is the file path the document was ingested from.
	Path string

	// CreatedAt is when the document was added.
	CreatedAt time.Time
}

// StoredChunk is the persisted form of a Chunk.
// Its text is mirrored byte-for-byte into the search index.
type StoredChunk struct {
	// ID is the store-assigned chunk identifier.
	ID int64

	// DocumentID links to the owning Document.
	DocumentID string

	// Text is the chunk text.
	Text string

	// StartOffset and EndOffset locate the chunk in the source text.
	StartOffset int
	EndOffset   int

	// PageNumber is the primary page, 0 when unknown.
	PageNumber int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// AsChunk converts the stored chunk back into a Chunk at position index.
// Page numbers come from the page_numbers metadata when present and
// fall back to the primary page.
func (c StoredChunk) AsChunk(index int) Chunk {
	pages := metadataPages(c.Metadata[MetaPageNumbers])
	if len(pages) == 0 && c.PageNumber > 0 {
		pages = []int{c.PageNumber}
	}
	return Chunk{
		Text:        c.Text,
		StartOffset: c.StartOffset,
		EndOffset:   c.EndOffset,
		ChunkIndex:  index,
		PageNumbers: pages,
		Metadata:    c.Metadata,
	}
}

// metadataPages reads a page list that may have been decoded from JSON.
func metadataPages(v any) []int {
	switch pages := v.(type) {
	case []int:
		return SortedPages(pages)
	case []any:
		out := make([]int, 0, len(pages))
		for _, p := range pages {
			switch n := p.(type) {
			case float64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			}
		}
		return SortedPages(out)
	default:
		return nil
	}
}

// OffsetRange restricts a chunk lookup to a half-open offset range.
// A nil bound is open; the zero value matches every chunk.
type OffsetRange struct {
	Start *int
	End   *int
}

// Range returns the half-open range [start, end).
func Range(start, end int) OffsetRange {
	return OffsetRange{Start: &start, End: &end}
}

// From returns the range of chunks ending after start.
func From(start int) OffsetRange {
	return OffsetRange{Start: &start}
}

// Until returns the range of chunks beginning before end.
func Until(end int) OffsetRange {
	return OffsetRange{End: &end}
}

// IsZero reports whether the range is unbounded on both sides.
func (r OffsetRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Intersects reports whether [start, end) overlaps the range.
func (r OffsetRange) Intersects(start, end int) bool {
	if r.Start != nil && end <= *r.Start {
		return false
	}
	if r.End != nil && start >= *r.End {
		return false
	}
	return true
}
