package chunker

import (
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// pending is a chunk being assembled from one or more input chunks.
type pending struct {
	chunk     domain.Chunk
	originals []int
}

// MergeSmallChunks combines chunks shorter than the minimum chunk size
// with their neighbours. A small chunk absorbs the chunks that follow it
// until it is large enough; a small remainder at the end is merged into
// the preceding chunk. The result is re-indexed from 0.
//
// Merged text covers the union of the constituent ranges, so overlapping
// text appears once and len(Text) == EndOffset-StartOffset still holds.
func (c *Chunker) MergeSmallChunks(chunks []domain.Chunk) []domain.Chunk {
	if len(chunks) == 0 {
		return nil
	}

	out := make([]pending, 0, len(chunks))
	for i := 0; i < len(chunks); {
		cur := pending{chunk: chunks[i], originals: []int{chunks[i].ChunkIndex}}
		i++

		for cur.chunk.Len() < c.minChunkSize && i < len(chunks) {
			cur.chunk = combine(cur.chunk, chunks[i])
			cur.originals = append(cur.originals, chunks[i].ChunkIndex)
			i++
		}

		if cur.chunk.Len() < c.minChunkSize && len(out) > 0 {
			last := &out[len(out)-1]
			last.chunk = combine(last.chunk, cur.chunk)
			last.originals = append(last.originals, cur.originals...)
			continue
		}
		out = append(out, cur)
	}

	result := make([]domain.Chunk, len(out))
	for idx, p := range out {
		ch := p.chunk
		ch.ChunkIndex = idx
		if len(p.originals) > 1 {
			meta := maps.Clone(ch.Metadata)
			if meta == nil {
				meta = make(map[string]any)
			}
			meta[domain.MetaMerged] = true
			meta[domain.MetaOriginalChunks] = p.originals
			if len(ch.PageNumbers) > 0 {
				meta[domain.MetaPageNumbers] = ch.PageNumbers
				meta[domain.MetaPageCount] = len(ch.PageNumbers)
			}
			ch.Metadata = meta
		}
		result[idx] = ch
	}
	return result
}

// combine joins b onto a. b is expected to start at or after a's start.
func combine(a, b domain.Chunk) domain.Chunk {
	merged := a
	merged.PageNumbers = domain.SortedPages(append(slices.Clone(a.PageNumbers), b.PageNumbers...))

	switch {
	case b.StartOffset > a.EndOffset:
		merged.Text = a.Text + strings.Repeat(" ", b.StartOffset-a.EndOffset) + b.Text
		merged.EndOffset = b.EndOffset
	case b.EndOffset > a.EndOffset:
		cut := min(a.EndOffset-b.StartOffset, len(b.Text))
		merged.Text = a.Text + b.Text[cut:]
		merged.EndOffset = b.EndOffset
	}
	return merged
}
