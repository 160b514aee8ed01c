package domain

import (
	"slices"
	"strings"
)

// Chunk metadata keys.
const (
	MetaDocumentID     = "doc_id"
	MetaPageNumbers    = "page_numbers"
	MetaPageCount      = "page_count"
	MetaMerged         = "merged"
	MetaOriginalChunks = "original_chunks"
)

// ContextSeparator joins chunk texts in a ChunkContext.
const ContextSeparator = " "

// Chunk is a bounded, offset-addressable slice of a document's text.
// Chunks are created by the chunker and never modified afterwards.
type Chunk struct {
	// Text is the exact source text at [StartOffset, EndOffset).
	Text string

	// StartOffset is the byte offset of the chunk in the source text.
	StartOffset int

	// EndOffset is one past the last byte of the chunk.
	EndOffset int

	// ChunkIndex is the 0-based position in emission order.
	ChunkIndex int

	// PageNumbers is the sorted set of pages the chunk spans.
	PageNumbers []int

	// Metadata carries doc_id, page and merge information.
	Metadata map[string]any
}

// Len returns the chunk length in bytes.
func (c Chunk) Len() int {
	return len(c.Text)
}

// PrimaryPage returns the first page the chunk spans, or 0 if unknown.
func (c Chunk) PrimaryPage() int {
	if len(c.PageNumbers) == 0 {
		return 0
	}
	return c.PageNumbers[0]
}

// Section is a titled region of a document found by header patterns.
type Section struct {
	Title        string
	Text         string
	StartOffset  int
	EndOffset    int
	SectionIndex int
}

// ChunkContext is a target chunk together with its neighbours.
type ChunkContext struct {
	// Target is the chunk the context was built around.
	Target Chunk

	// Chunks are the target and up to N neighbours on each side, in order.
	Chunks []Chunk

	// Text is the neighbours' text joined by ContextSeparator.
	Text string

	// Pages is the sorted distinct union of the neighbours' pages.
	Pages []int

	// StartOffset and EndOffset span the first and last neighbour.
	StartOffset int
	EndOffset   int
}

// BuildChunkContext returns the context window around chunks[index].
// It reports false for an empty slice or an index out of range; the
// lookup has no side effects and is safe to call speculatively.
func BuildChunkContext(chunks []Chunk, index, contextSize int) (ChunkContext, bool) {
	if len(chunks) == 0 || index < 0 || index >= len(chunks) {
		return ChunkContext{}, false
	}
	if contextSize < 0 {
		contextSize = 0
	}

	lo := max(0, index-contextSize)
	hi := min(len(chunks), index+contextSize+1)
	window := chunks[lo:hi]

	texts := make([]string, len(window))
	var pages []int
	for i, c := range window {
		texts[i] = c.Text
		pages = append(pages, c.PageNumbers...)
	}

	return ChunkContext{
		Target:      chunks[index],
		Chunks:      window,
		Text:        strings.Join(texts, ContextSeparator),
		Pages:       SortedPages(pages),
		StartOffset: window[0].StartOffset,
		EndOffset:   window[len(window)-1].EndOffset,
	}, true
}

// SortedPages returns the sorted distinct page numbers.
func SortedPages(pages []int) []int {
	if len(pages) == 0 {
		return []int{}
	}
	out := slices.Clone(pages)
	slices.Sort(out)
	return slices.Compact(out)
}
