package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/creditrisk/internal/logger"
	"github.com/MrJamesThe3rd/creditrisk/internal/report"
)

type analyzeCmd struct {
	cli     *CLI
	dataDir string
	formats string
	publish bool
	quiet   bool
}

func newAnalyzeCmd(cli *CLI) *cobra.Command {
	ac := &analyzeCmd{
		cli:     cli,
		formats: strings.Join(cli.cfg.Output.Formats, ","),
		publish: cli.cfg.DB.Enabled,
	}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute client metrics and write reports",
		Args:  cobra.NoArgs,
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.dataDir, "data-dir", "", "Directory with client XML documents (default DATA_DIR, falling back to SAMPLE_DIR)")
	cmd.Flags().StringVar(&cli.cfg.Data.Pattern, "pattern", cli.cfg.Data.Pattern, "Glob pattern of client documents")
	cmd.Flags().StringVar(&cli.cfg.Output.Dir, "output-dir", cli.cfg.Output.Dir, "Directory for generated reports")
	cmd.Flags().StringVar(&ac.formats, "formats", ac.formats, "Comma-separated report formats (csv, json, xlsx)")
	cmd.Flags().IntVar(&cli.cfg.Workers, "workers", cli.cfg.Workers, "Documents processed in parallel")
	cmd.Flags().BoolVar(&ac.publish, "publish", ac.publish, "Store the run in Postgres")
	cmd.Flags().BoolVar(&ac.quiet, "quiet", false, "Do not print the console report")

	return cmd
}

func (ac *analyzeCmd) run(cmd *cobra.Command, _ []string) error {
	cfg := ac.cli.cfg
	cfg.Output.Formats = splitList(ac.formats)

	ctx, err := ac.cli.prepare(cmd.Context())
	if err != nil {
		return err
	}

	dataDir := ac.dataDir
	if dataDir == "" {
		dataDir = cfg.DataDir()
	}

	d, err := ac.cli.analyze(ctx, dataDir)
	if err != nil {
		return err
	}

	paths, err := report.NewService(cfg.Output.Formats).Export(ctx, d, cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("exporting reports: %w", err)
	}

	log := logger.FromContext(ctx)
	for _, p := range paths {
		log.Info().Str("path", p).Msg("report written")
	}

	if ac.publish {
		if err := ac.cli.publish(ctx, d); err != nil {
			return err
		}
	}

	if ac.quiet {
		return nil
	}

	return report.RenderConsole(cmd.OutOrStdout(), d)
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}

	return out
}
