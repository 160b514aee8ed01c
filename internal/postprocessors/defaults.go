package postprocessors

import (
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/postprocessors/chunker"
)

// RegisterDefaults adds the chunk and merge processors to r.
func RegisterDefaults(r *Registry) error {
	if err := r.Register(chunker.ChunkProcessorName, buildChunker); err != nil {
		return err
	}
	return r.Register(chunker.MergeProcessorName, buildMerge)
}

// NewDefaultPipeline builds the chunker and merge pipeline for settings.
func NewDefaultPipeline(s domain.ChunkerSettings) (*Pipeline, error) {
	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		return nil, err
	}
	return BuildPipeline(r, domain.PipelineConfigFor(s))
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): bytes per chunk (default: 1000)
//   - overlap_size (int): bytes repeated between chunks (default: 200)
//   - respect_sentences (bool): break at sentence ends (default: true)
//   - min_chunk_size (int): texts this short are not split (default: 100)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	c, err := chunker.New(chunkerOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	return chunker.NewChunkProcessor(c), nil
}

// buildMerge creates a merge processor. Only min_chunk_size is used.
func buildMerge(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if v, ok := getIntFromConfig(cfg, "min_chunk_size"); ok {
		opts = append(opts, chunker.WithMinChunkSize(v))
	}
	c, err := chunker.New(opts...)
	if err != nil {
		return nil, err
	}
	return chunker.NewMergeProcessor(c), nil
}

func chunkerOptions(cfg map[string]any) []chunker.Option {
	var opts []chunker.Option
	if v, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(v))
	}
	if v, ok := getIntFromConfig(cfg, "overlap_size"); ok {
		opts = append(opts, chunker.WithOverlap(v))
	}
	if v, ok := getIntFromConfig(cfg, "min_chunk_size"); ok {
		opts = append(opts, chunker.WithMinChunkSize(v))
	}
	if v, ok := cfg["respect_sentences"].(bool); ok {
		opts = append(opts, chunker.WithRespectSentences(v))
	}
	return opts
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
