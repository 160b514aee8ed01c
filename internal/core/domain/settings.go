package domain

import "fmt"

// Default chunker settings.
const (
	DefaultChunkSize        = 1000
	DefaultOverlapSize      = 200
	DefaultMinChunkSize     = 100
	DefaultSentenceLookback = 200
)

// Default ingestion settings.
const (
	DefaultIngestWorkers = 4
	DefaultIngestPattern = "*.pdf"
)

// CorpusSettings locates the corpus database.
type CorpusSettings struct {
	// DataDir is the directory holding corpus.db. Empty means ~/.corpus/data.
	DataDir string
}

// ChunkerSettings configures the chunking algorithm.
type ChunkerSettings struct {
	ChunkSize        int
	OverlapSize      int
	RespectSentences bool
	MinChunkSize     int

	// MergeSmall runs the merge processor after chunking.
	MergeSmall bool
}

// Validate rejects configurations the chunker cannot run with.
func (c ChunkerSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidInput, c.ChunkSize)
	}
	if c.OverlapSize < 0 || c.OverlapSize >= c.ChunkSize {
		return fmt.Errorf("%w: overlap_size must be in [0, %d), got %d",
			ErrInvalidInput, c.ChunkSize, c.OverlapSize)
	}
	if c.MinChunkSize < 0 {
		return fmt.Errorf("%w: min_chunk_size must not be negative, got %d", ErrInvalidInput, c.MinChunkSize)
	}
	return nil
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultLimit is the result count used when none is requested.
	DefaultLimit int
}

// IngestSettings holds directory ingestion configuration.
type IngestSettings struct {
	// Workers is the number of documents ingested in parallel.
	Workers int

	// Pattern is the glob matched against file names.
	Pattern string

	// Recursive descends into subdirectories.
	Recursive bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Corpus  CorpusSettings
	Chunker ChunkerSettings
	Search  SearchSettings
	Ingest  IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunker: ChunkerSettings{
			ChunkSize:        DefaultChunkSize,
			OverlapSize:      DefaultOverlapSize,
			RespectSentences: true,
			MinChunkSize:     DefaultMinChunkSize,
			MergeSmall:       true,
		},
		Search: SearchSettings{
			DefaultLimit: DefaultSearchLimit,
		},
		Ingest: IngestSettings{
			Workers:   DefaultIngestWorkers,
			Pattern:   DefaultIngestPattern,
			Recursive: true,
		},
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the processor pipeline for chunker settings.
func PipelineConfigFor(c ChunkerSettings) PipelineConfig {
	cfg := PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size":        c.ChunkSize,
				"overlap_size":      c.OverlapSize,
				"respect_sentences": c.RespectSentences,
				"min_chunk_size":    c.MinChunkSize,
			},
		},
	}
	if c.MergeSmall {
		cfg.Processors = append(cfg.Processors, "merge")
		cfg.ProcessorConfigs["merge"] = map[string]any{
			"min_chunk_size": c.MinChunkSize,
		}
	}
	return cfg
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Chunker)
}
