package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// stubStage returns fixed chunks, or its input when chunks is nil.
type stubStage struct {
	name   string
	chunks []domain.Chunk
	err    error
	seen   []domain.Chunk
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Process(_ context.Context, _ *domain.ExtractedDocument, in []domain.Chunk) ([]domain.Chunk, error) {
	s.seen = in
	if s.err != nil {
		return nil, s.err
	}
	if s.chunks != nil {
		return s.chunks, nil
	}
	return in, nil
}

func testDoc() *domain.ExtractedDocument {
	return &domain.ExtractedDocument{
		ID:       "doc",
		Segments: []domain.TextSegment{{Text: "test content", PageNumber: 1, EndOffset: 12}},
	}
}

func TestPipeline_AddAndNames(t *testing.T) {
	p := NewPipeline(&stubStage{name: "chunker"})
	p.Add(&stubStage{name: "merge"})

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"chunker", "merge"}, p.Names())
	assert.Empty(t, NewPipeline().Names())
}

func TestPipeline_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestPipeline_StagesChain(t *testing.T) {
	first := &stubStage{name: "first", chunks: []domain.Chunk{{Text: "test", EndOffset: 4}}}
	second := &stubStage{name: "second", chunks: []domain.Chunk{
		{Text: "test", EndOffset: 4, ChunkIndex: 7},
		{Text: " content", StartOffset: 4, EndOffset: 12, ChunkIndex: 9},
	}}
	third := &stubStage{name: "passthrough"}

	chunks, err := NewPipeline(first, second, third).Process(context.Background(), testDoc())

	require.NoError(t, err)
	assert.Nil(t, first.seen)
	assert.Len(t, second.seen, 1)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
}

func TestPipeline_StageError(t *testing.T) {
	boom := errors.New("processor failed")
	after := &stubStage{name: "after"}

	_, err := NewPipeline(&stubStage{name: "failing", err: boom}, after).Process(context.Background(), testDoc())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "processor failing")
	assert.Nil(t, after.seen)
}

func TestPipeline_RejectsEmptyRange(t *testing.T) {
	bad := &stubStage{name: "bad", chunks: []domain.Chunk{{Text: "", StartOffset: 3, EndOffset: 3}}}

	_, err := NewPipeline(bad).Process(context.Background(), testDoc())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty range")
}

func TestPipeline_CancelledContext(t *testing.T) {
	p, err := NewDefaultPipeline(domain.DefaultAppSettings().Chunker)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Process(ctx, &domain.ExtractedDocument{ID: "doc"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildPipeline_UnknownProcessor(t *testing.T) {
	_, err := BuildPipeline(defaultRegistry(t), domain.PipelineConfig{Processors: []string{"chunker", "stemmer"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDefaultPipeline_ChunksAndMerges(t *testing.T) {
	p, err := NewDefaultPipeline(domain.ChunkerSettings{
		ChunkSize:        50,
		OverlapSize:      10,
		RespectSentences: true,
		MinChunkSize:     20,
		MergeSmall:       true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	text := strings.Repeat("The quick brown fox jumps. ", 10)
	doc := &domain.ExtractedDocument{
		ID:       "fox",
		Segments: []domain.TextSegment{{Text: text, PageNumber: 1, EndOffset: len(text)}},
	}

	chunks, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, text[c.StartOffset:c.EndOffset], c.Text, "chunk %d", i)
		assert.Equal(t, "fox", c.Metadata[domain.MetaDocumentID])
	}
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)
}
