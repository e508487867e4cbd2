package pipeline

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/importer"
	"github.com/MrJamesThe3rd/creditrisk/internal/logger"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

// ClientResult is the output of one successfully processed document.
// DealCount is the number of deal elements read; UniqueDeals the number of
// distinct deal references among them.
type ClientResult struct {
	Document    importer.Document
	DealCount   int
	UniqueDeals int
	Metrics     metrics.ClientMetrics
	Records     []deal.Record
	Warnings    []deal.Warning
}

// Failure is a document that could not be processed.
type Failure struct {
	ClientID string
	Path     string
	Err      error
}

// Result holds a whole run. Both slices are ordered by client ID, then path.
type Result struct {
	Clients  []ClientResult
	Failures []Failure
}

func (r *Result) Metrics() []metrics.ClientMetrics {
	out := make([]metrics.ClientMetrics, len(r.Clients))
	for i, c := range r.Clients {
		out[i] = c.Metrics
	}

	return out
}

// Records returns every normalized record of the run, client by client.
func (r *Result) Records() []deal.Record {
	var out []deal.Record
	for _, c := range r.Clients {
		out = append(out, c.Records...)
	}

	return out
}

// DealsProcessed is the number of deal elements read across the run,
// before duplicate references are merged.
func (r *Result) DealsProcessed() int {
	n := 0
	for _, c := range r.Clients {
		n += c.DealCount
	}

	return n
}

// WarningCounts tallies extraction warnings by kind.
func (r *Result) WarningCounts() map[deal.WarningKind]int {
	counts := make(map[deal.WarningKind]int)

	for _, c := range r.Clients {
		for _, w := range c.Warnings {
			counts[w.Kind]++
		}
	}

	return counts
}

// Runner fans documents out to a bounded number of workers. Each document
// runs through its own pipeline state, so one failing document never
// affects another.
type Runner struct {
	pipeline *Pipeline
	workers  int
}

func NewRunner(p *Pipeline, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}

	return &Runner{pipeline: p, workers: workers}
}

// Run processes docs and returns their results. The only error is context
// cancellation; document failures are reported in Result.Failures.
func (r *Runner) Run(ctx context.Context, docs []importer.Document) (*Result, error) {
	log := logger.FromContext(ctx)

	var (
		mu  sync.Mutex
		res = &Result{}
	)

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			state := &State{Document: doc}

			if err := r.pipeline.Execute(ctx, state); err != nil {
				log.Error().Err(err).Str("client_id", doc.ClientID).Str("path", doc.Path).Msg("document failed")

				mu.Lock()
				res.Failures = append(res.Failures, Failure{ClientID: doc.ClientID, Path: doc.Path, Err: err})
				mu.Unlock()

				return nil
			}

			result := ClientResult{
				Document: doc,
				Metrics:  state.Metrics,
				Records:  state.Records,
			}

			if state.Extraction != nil {
				result.DealCount = state.Extraction.DealCount
				result.UniqueDeals = state.Extraction.UniqueDeals()
				result.Warnings = state.Extraction.Warnings
			}

			mu.Lock()
			res.Clients = append(res.Clients, result)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(res.Clients, func(a, b ClientResult) int {
		return cmp.Or(
			cmp.Compare(a.Document.ClientID, b.Document.ClientID),
			cmp.Compare(a.Document.Path, b.Document.Path),
		)
	})

	slices.SortFunc(res.Failures, func(a, b Failure) int {
		return cmp.Or(cmp.Compare(a.ClientID, b.ClientID), cmp.Compare(a.Path, b.Path))
	})

	log.Info().
		Int("documents", len(docs)).
		Int("clients", len(res.Clients)).
		Int("failed", len(res.Failures)).
		Msg("run finished")

	return res, nil
}
