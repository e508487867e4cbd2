package pipeline

import (
	"context"
	"errors"

	"github.com/MrJamesThe3rd/creditrisk/internal/deal"
	"github.com/MrJamesThe3rd/creditrisk/internal/importer"
	"github.com/MrJamesThe3rd/creditrisk/internal/logger"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

var errNoExtraction = errors.New("no extraction in state")

// ExtractStep reads the document from disk into raw records.
type ExtractStep struct {
	importer *importer.Service
	format   importer.Format
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) Execute(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := state.Document

	f, err := doc.Open()
	if err != nil {
		return &importer.DocumentError{ClientID: doc.ClientID, Source: doc.Name(), Err: err}
	}
	defer f.Close()

	ext, err := s.importer.Import(s.format, doc, f)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx).With().Str("client_id", doc.ClientID).Logger()

	for _, w := range ext.Warnings {
		ev := log.Warn()
		if w.Kind == deal.WarnEmptyDeal {
			ev = log.Debug()
		}

		ev.Str("kind", string(w.Kind)).
			Str("deal_id", w.DealID).
			Str("field", w.Field).
			Str("value", w.Value).
			Msg(w.Message)
	}

	state.Extraction = ext

	return nil
}

// NormalizeStep collapses duplicate periods and canonicalizes values.
type NormalizeStep struct{}

func (s *NormalizeStep) Name() string { return "normalize" }

func (s *NormalizeStep) Execute(_ context.Context, state *State) error {
	if state.Extraction == nil {
		return errNoExtraction
	}

	state.Records = deal.Normalize(state.Extraction.Records)

	return nil
}

// AggregateStep derives the client metrics from the normalized records.
type AggregateStep struct{}

func (s *AggregateStep) Name() string { return "aggregate" }

func (s *AggregateStep) Execute(ctx context.Context, state *State) error {
	state.Metrics = metrics.Aggregate(state.Document.ClientID, state.Records)

	log := logger.FromContext(ctx)
	log.Debug().
		Str("client_id", state.Metrics.ClientID).
		Int("total_loans", state.Metrics.TotalLoans).
		Int("closed_loans", state.Metrics.ClosedLoans).
		Str("expired_30_plus", state.Metrics.Expired30Plus.StringFixed(2)).
		Msg("client aggregated")

	return nil
}
