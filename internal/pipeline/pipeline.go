package pipeline

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/importer"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

// Step is a single stage of the per-document pipeline.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *State) error
}

// State carries one document through the steps. Each step reads what the
// previous ones produced and fills in its own part.
type State struct {
	Document   importer.Document
	Extraction *deal.Extraction
	Records    []deal.Record
	Metrics    metrics.ClientMetrics
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// NewDocumentPipeline is the standard extract, normalize, aggregate chain.
func NewDocumentPipeline(importService *importer.Service) *Pipeline {
	return New(
		&ExtractStep{importer: importService, format: importer.FormatCrdeal},
		&NormalizeStep{},
		&AggregateStep{},
	)
}

// Execute runs all steps sequentially and stops at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
	}

	return nil
}
