package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/creditrisk/internal/config"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
)

// RepositoryOpener connects the metrics sink. The returned func releases it.
type RepositoryOpener func(ctx context.Context, cfg *config.Config) (metrics.Repository, func() error, error)

// CLI represents the command-line interface.
type CLI struct {
	cfg      *config.Config
	out      io.Writer
	logOut   io.Writer
	now      func() time.Time
	openRepo RepositoryOpener
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI.
type Options struct {
	Config   *config.Config
	Output   io.Writer
	LogOut   io.Writer
	Now      func() time.Time
	OpenRepo RepositoryOpener
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.LogOut == nil {
		opts.LogOut = os.Stderr
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.OpenRepo == nil {
		opts.OpenRepo = openPostgres
	}

	cli := &CLI{
		cfg:      opts.Config,
		out:      opts.Output,
		logOut:   opts.LogOut,
		now:      opts.Now,
		openRepo: opts.OpenRepo,
	}

	cli.rootCmd = cli.newRootCmd()

	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "riskreport",
		Short:         "Credit bureau risk metrics",
		Long:          "Flattens per-client credit bureau XML documents and derives loan count, closure ratio and 30+ day overdue exposure.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(cli.out)

	cmd.PersistentFlags().StringVar(&cli.cfg.Log.Level, "log-level", cli.cfg.Log.Level, "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&cli.cfg.Log.Format, "log-format", cli.cfg.Log.Format, "Log format (console, json)")

	cmd.AddCommand(newAnalyzeCmd(cli))
	cmd.AddCommand(newValidateCmd(cli))

	return cmd
}
