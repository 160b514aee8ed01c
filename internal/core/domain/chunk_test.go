package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextFixture() []Chunk {
	return []Chunk{
		{Text: "First chunk.", StartOffset: 0, EndOffset: 12, ChunkIndex: 0, PageNumbers: []int{1}},
		{Text: "Second chunk.", StartOffset: 12, EndOffset: 25, ChunkIndex: 1, PageNumbers: []int{1, 2}},
		{Text: "Third chunk.", StartOffset: 25, EndOffset: 37, ChunkIndex: 2, PageNumbers: []int{2}},
		{Text: "Fourth chunk.", StartOffset: 37, EndOffset: 50, ChunkIndex: 3, PageNumbers: []int{3}},
	}
}

func TestBuildChunkContext_Middle(t *testing.T) {
	chunks := contextFixture()

	ctx, ok := BuildChunkContext(chunks, 1, 1)
	require.True(t, ok)

	require.Len(t, ctx.Chunks, 3)
	assert.Equal(t, 0, ctx.Chunks[0].ChunkIndex)
	assert.Equal(t, 1, ctx.Chunks[1].ChunkIndex)
	assert.Equal(t, 2, ctx.Chunks[2].ChunkIndex)
	assert.Equal(t, "Second chunk.", ctx.Target.Text)
	assert.Equal(t, "First chunk. Second chunk. Third chunk.", ctx.Text)
	assert.Equal(t, []int{1, 2}, ctx.Pages)
	assert.Equal(t, 0, ctx.StartOffset)
	assert.Equal(t, 37, ctx.EndOffset)
}

func TestBuildChunkContext_ClampsAtEdges(t *testing.T) {
	chunks := contextFixture()

	ctx, ok := BuildChunkContext(chunks, 0, 2)
	require.True(t, ok)
	assert.Len(t, ctx.Chunks, 3)

	ctx, ok = BuildChunkContext(chunks, 3, 5)
	require.True(t, ok)
	assert.Len(t, ctx.Chunks, 4)
	assert.Equal(t, []int{1, 2, 3}, ctx.Pages)
}

func TestBuildChunkContext_ZeroContext(t *testing.T) {
	ctx, ok := BuildChunkContext(contextFixture(), 2, 0)
	require.True(t, ok)
	require.Len(t, ctx.Chunks, 1)
	assert.Equal(t, "Third chunk.", ctx.Text)
}

func TestBuildChunkContext_NotFound(t *testing.T) {
	chunks := contextFixture()

	_, ok := BuildChunkContext(chunks, 5, 1)
	assert.False(t, ok)

	_, ok = BuildChunkContext(chunks, -1, 1)
	assert.False(t, ok)

	for _, idx := range []int{0, 1, 10} {
		_, ok = BuildChunkContext(nil, idx, 1)
		assert.False(t, ok)
	}
}

func TestChunk_PrimaryPage(t *testing.T) {
	assert.Equal(t, 0, Chunk{}.PrimaryPage())
	assert.Equal(t, 4, Chunk{PageNumbers: []int{4, 5}}.PrimaryPage())
}

func TestSortedPages(t *testing.T) {
	assert.Equal(t, []int{}, SortedPages(nil))
	assert.Equal(t, []int{1, 2, 5}, SortedPages([]int{5, 1, 2, 1, 5}))
}
