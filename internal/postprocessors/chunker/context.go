package chunker

import "github.com/custodia-labs/corpus-cli/internal/core/domain"

// ChunkContext returns chunks[index] with up to contextSize neighbours on
// each side. It reports false for empty input or an out-of-range index.
func (c *Chunker) ChunkContext(chunks []domain.Chunk, index, contextSize int) (domain.ChunkContext, bool) {
	return domain.BuildChunkContext(chunks, index, contextSize)
}
