// Package chunker splits document text into overlapping, offset-addressable chunks.
//
// All offsets and sizes are measured in bytes of UTF-8 text. Chunk boundaries
// are always placed on rune boundaries, so every chunk's Text equals
// source[StartOffset:EndOffset] and is valid UTF-8.
package chunker

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Chunker is an immutable chunking configuration.
// It holds no mutable state and is safe for concurrent use.
type Chunker struct {
	chunkSize        int
	overlap          int
	respectSentences bool
	minChunkSize     int
	lookback         int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk length.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets how much of a chunk is repeated at the start of the next.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithRespectSentences enables breaking chunks at sentence ends.
func WithRespectSentences(respect bool) Option {
	return func(c *Chunker) {
		c.respectSentences = respect
	}
}

// WithMinChunkSize sets the length at or below which text is never split.
func WithMinChunkSize(size int) Option {
	return func(c *Chunker) {
		c.minChunkSize = size
	}
}

// WithSentenceLookback bounds how far back from the window end a
// sentence boundary is searched for.
func WithSentenceLookback(n int) Option {
	return func(c *Chunker) {
		c.lookback = n
	}
}

// New creates a chunker. Invalid configurations are rejected here,
// never mid-run.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:        domain.DefaultChunkSize,
		overlap:          domain.DefaultOverlapSize,
		respectSentences: true,
		minChunkSize:     domain.DefaultMinChunkSize,
		lookback:         domain.DefaultSentenceLookback,
	}

	for _, opt := range opts {
		opt(c)
	}

	settings := domain.ChunkerSettings{
		ChunkSize:    c.chunkSize,
		OverlapSize:  c.overlap,
		MinChunkSize: c.minChunkSize,
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if c.lookback < 0 {
		return nil, fmt.Errorf("%w: sentence lookback must not be negative, got %d",
			domain.ErrInvalidInput, c.lookback)
	}

	return c, nil
}

// FromSettings creates a chunker from application settings.
func FromSettings(s domain.ChunkerSettings) (*Chunker, error) {
	return New(
		WithChunkSize(s.ChunkSize),
		WithOverlap(s.OverlapSize),
		WithRespectSentences(s.RespectSentences),
		WithMinChunkSize(s.MinChunkSize),
	)
}

// ChunkSize returns the target chunk length.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// MinChunkSize returns the minimum chunk length.
func (c *Chunker) MinChunkSize() int { return c.minChunkSize }

// span is a half-open byte range of the source text.
type span struct {
	start, end int
}

// ChunkText splits text into chunks. Empty text yields no chunks and text
// no longer than the minimum chunk size yields exactly one.
func (c *Chunker) ChunkText(text, docID string) []domain.Chunk {
	spans := c.split(text)
	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, domain.Chunk{
			Text:        text[s.start:s.end],
			StartOffset: s.start,
			EndOffset:   s.end,
			ChunkIndex:  i,
			PageNumbers: []int{},
			Metadata:    baseMetadata(docID),
		})
	}

	logger.Debug("chunker: %d chunks from %d bytes", len(chunks), len(text))
	return chunks
}

// split computes chunk spans with the sliding window.
//
// Every iteration advances pos by at least one byte, so the loop
// terminates for any input, including long runs without punctuation.
func (c *Chunker) split(text string) []span {
	n := len(text)
	if n == 0 {
		return nil
	}
	if n <= c.minChunkSize {
		return []span{{0, n}}
	}

	spans := make([]span, 0, n/max(1, c.chunkSize-c.overlap)+1)
	pos := 0
	for pos < n {
		end := min(pos+c.chunkSize, n)
		if end < n {
			if c.respectSentences {
				if b, ok := c.sentenceBoundary(text, pos, end); ok {
					end = b
				}
			}
			end = alignEnd(text, pos, end)
		}

		spans = append(spans, span{pos, end})
		if end >= n {
			break
		}

		pos = alignStart(text, max(end-c.overlap, pos+1))
	}
	return spans
}

// sentenceBoundary finds the nearest sentence end at or before end.
// A boundary is the offset just past '.', '!' or '?' when followed by
// whitespace or end of text. Only boundaries past pos+overlap are usable,
// which keeps the next window start inside the current chunk.
func (c *Chunker) sentenceBoundary(text string, pos, end int) (int, bool) {
	lo := max(pos+c.overlap+1, pos+c.minChunkSize, end-c.lookback)
	for b := end; b >= lo; b-- {
		switch text[b-1] {
		case '.', '!', '?':
			if b == len(text) {
				return b, true
			}
			r, _ := utf8.DecodeRuneInString(text[b:])
			if unicode.IsSpace(r) {
				return b, true
			}
		}
	}
	return 0, false
}

// alignEnd moves end back to a rune boundary. If that would leave an
// empty chunk it moves forward to the next rune boundary instead.
func alignEnd(text string, pos, end int) int {
	e := end
	for e > pos && e < len(text) && !utf8.RuneStart(text[e]) {
		e--
	}
	if e > pos {
		return e
	}
	return alignStart(text, end)
}

// alignStart moves p forward to a rune boundary.
func alignStart(text string, p int) int {
	for p < len(text) && !utf8.RuneStart(text[p]) {
		p++
	}
	return p
}

func baseMetadata(docID string) map[string]any {
	meta := make(map[string]any)
	if docID != "" {
		meta[domain.MetaDocumentID] = docID
	}
	return meta
}

// pageSpan records which page contributed a range of the joined buffer.
type pageSpan struct {
	start, end int
	page       int
}

// ChunkWithSegments chunks the concatenation of segments and attaches the
// pages each chunk spans. Offsets are relative to the concatenated text,
// which equals source offsets for contiguous segments starting at 0.
func (c *Chunker) ChunkWithSegments(segments []domain.TextSegment, docID string) []domain.Chunk {
	if len(segments) == 0 {
		return nil
	}

	var buf strings.Builder
	pages := make([]pageSpan, 0, len(segments))
	for _, seg := range segments {
		start := buf.Len()
		buf.WriteString(seg.Text)
		if buf.Len() > start {
			pages = append(pages, pageSpan{start: start, end: buf.Len(), page: seg.PageNumber})
		}
	}

	chunks := c.ChunkText(buf.String(), docID)
	for i := range chunks {
		p := pagesFor(pages, chunks[i].StartOffset, chunks[i].EndOffset)
		chunks[i].PageNumbers = p
		if len(p) > 0 {
			chunks[i].Metadata[domain.MetaPageNumbers] = p
			chunks[i].Metadata[domain.MetaPageCount] = len(p)
		}
	}
	return chunks
}

// pagesFor returns the sorted distinct pages of spans intersecting [start, end).
func pagesFor(spans []pageSpan, start, end int) []int {
	first := sort.Search(len(spans), func(i int) bool {
		return spans[i].end > start
	})

	var pages []int
	for i := first; i < len(spans) && spans[i].start < end; i++ {
		pages = append(pages, spans[i].page)
	}
	return domain.SortedPages(pages)
}
