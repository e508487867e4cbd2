package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/creditrisk/internal/validation"
)

var ErrValidationFailed = errors.New("validation failed")

type validateCmd struct {
	cli     *CLI
	dataDir string
}

func newValidateCmd(cli *CLI) *cobra.Command {
	vc := &validateCmd{cli: cli}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Process documents and check results and data quality",
		Args:  cobra.NoArgs,
		RunE:  vc.run,
	}

	cmd.Flags().StringVar(&vc.dataDir, "data-dir", "", "Directory with client XML documents (default DATA_DIR, falling back to SAMPLE_DIR)")
	cmd.Flags().StringVar(&cli.cfg.Data.Pattern, "pattern", cli.cfg.Data.Pattern, "Glob pattern of client documents")
	cmd.Flags().IntVar(&cli.cfg.Workers, "workers", cli.cfg.Workers, "Documents processed in parallel")

	return cmd
}

func (vc *validateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, err := vc.cli.prepare(cmd.Context())
	if err != nil {
		return err
	}

	dataDir := vc.dataDir
	if dataDir == "" {
		dataDir = vc.cli.cfg.DataDir()
	}

	d, err := vc.cli.analyze(ctx, dataDir)
	if err != nil {
		return err
	}

	v := d.Validation
	out := cmd.OutOrStdout()

	for n, i := range v.Issues {
		fmt.Fprintf(out, "%d. [%s] %s %s: %s\n", n+1, i.Severity, i.Check, i.ClientID, i.Message)
	}

	fmt.Fprintf(out, "clients=%d records=%d errors=%d warnings=%d\n",
		v.Clients, v.Records, v.Count(validation.SeverityError), v.Count(validation.SeverityWarning))

	if !v.Passed() {
		return ErrValidationFailed
	}

	fmt.Fprintln(out, "PASSED")

	return nil
}
