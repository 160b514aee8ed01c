// Package postprocessors assembles chunking stages into pipelines.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Pipeline runs post-processors in order. The first stage receives no
// chunks and is expected to create them; later stages refine the output
// of the stage before.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline returns a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

func (p *Pipeline) Len() int { return len(p.stages) }

// Names lists stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name())
	}
	return names
}

// Process chunks doc. After every stage the chunks are renumbered from
// zero and each must cover a non-empty range. An empty pipeline yields
// no chunks.
func (p *Pipeline) Process(ctx context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		for i := range out {
			if out[i].EndOffset <= out[i].StartOffset {
				return nil, fmt.Errorf("processor %s: chunk %d has empty range [%d, %d)",
					stage.Name(), i, out[i].StartOffset, out[i].EndOffset)
			}
			out[i].ChunkIndex = i
		}
		logger.Debug("pipeline: %s %s -> %d chunks", doc.ID, stage.Name(), len(out))
		chunks = out
	}
	return chunks, nil
}

// BuildPipeline creates one stage per name in cfg.Processors.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range cfg.Processors {
		stage, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("building pipeline: %w", err)
		}
		p.Add(stage)
	}
	return p, nil
}
