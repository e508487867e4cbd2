package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/MrJamesThe3rd/creditrisk/internal/config"
)

const (
	MetricsFile  = "client_metrics_results.csv"
	DetailsFile  = "detailed_credit_data.csv"
	ReportFile   = "final_analysis_report.json"
	WorkbookFile = "risk_report.xlsx"
)

// Service writes run reports to disk.
type Service struct {
	formats []string
}

// NewService creates a Service writing the given formats (csv, json, xlsx).
func NewService(formats []string) *Service {
	return &Service{formats: formats}
}

// Export writes every enabled format into outputDir and returns the
// written paths in a fixed order.
func (s *Service) Export(ctx context.Context, d Data, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	type output struct {
		format string
		name   string
		write  func(io.Writer) error
	}

	outputs := []output{
		{config.FormatCSV, MetricsFile, func(w io.Writer) error { return WriteMetricsCSV(w, d.Result.Metrics()) }},
		{config.FormatCSV, DetailsFile, func(w io.Writer) error { return WriteDetailedCSV(w, d.Result.Records()) }},
		{config.FormatJSON, ReportFile, func(w io.Writer) error { return WriteJSON(w, d) }},
		{config.FormatXLSX, WorkbookFile, func(w io.Writer) error { return WriteWorkbook(w, d) }},
	}

	var written []string

	for _, o := range outputs {
		if !s.enabled(o.format) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return written, err
		}

		path := filepath.Join(outputDir, o.name)
		if err := writeFile(path, o.write); err != nil {
			return written, fmt.Errorf("writing %s: %w", o.name, err)
		}

		written = append(written, path)
	}

	return written, nil
}

func (s *Service) enabled(format string) bool {
	return slices.Contains(s.formats, format)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
