package cli

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/creditrisk/internal/config"
	"github.com/MrJamesThe3rd/creditrisk/internal/database"
	"github.com/MrJamesThe3rd/creditrisk/internal/importer"
	"github.com/MrJamesThe3rd/creditrisk/internal/logger"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics"
	"github.com/MrJamesThe3rd/creditrisk/internal/metrics/store"
	"github.com/MrJamesThe3rd/creditrisk/internal/pipeline"
	"github.com/MrJamesThe3rd/creditrisk/internal/report"
	"github.com/MrJamesThe3rd/creditrisk/internal/validation"
)

// prepare validates the effective config and attaches the logger to ctx.
func (cli *CLI) prepare(ctx context.Context) (context.Context, error) {
	if err := cli.cfg.Validate(); err != nil {
		return ctx, err
	}

	log, err := logger.New(logger.Options{Level: cli.cfg.Log.Level, Format: cli.cfg.Log.Format, Out: cli.logOut})
	if err != nil {
		return ctx, err
	}

	log = log.With().Str("app", cli.cfg.App.Name).Logger()

	return logger.WithContext(ctx, log), nil
}

// analyze discovers, processes and validates every document of the data dir.
func (cli *CLI) analyze(ctx context.Context, dataDir string) (report.Data, error) {
	log := logger.FromContext(ctx)

	docs, err := importer.Discover(dataDir, cli.cfg.Data.Pattern)
	if err != nil {
		return report.Data{}, fmt.Errorf("discovering documents: %w", err)
	}

	log.Info().Str("dir", dataDir).Int("documents", len(docs)).Msg("documents discovered")

	run := metrics.NewRun(cli.now())
	run.Documents = len(docs)

	runner := pipeline.NewRunner(pipeline.NewDocumentPipeline(importer.NewService()), cli.cfg.Workers)

	res, err := runner.Run(ctx, docs)
	if err != nil {
		return report.Data{}, fmt.Errorf("processing documents: %w", err)
	}

	run.Failed = len(res.Failures)
	run.FinishedAt = cli.now()

	d := report.NewData(run, res, run.FinishedAt)

	v := validation.Check(res)
	d.Validation = &v

	for _, i := range v.Issues {
		ev := log.Warn()
		if i.Severity == validation.SeverityError {
			ev = log.Error()
		}

		ev.Str("check", i.Check).Str("client_id", i.ClientID).Msg(i.Message)
	}

	return d, nil
}

func (cli *CLI) publish(ctx context.Context, d report.Data) error {
	repo, closeRepo, err := cli.openRepo(ctx, cli.cfg)
	if err != nil {
		return fmt.Errorf("opening metrics store: %w", err)
	}
	defer closeRepo()

	if err := metrics.NewService(repo).Publish(ctx, d.Run, d.Result.Metrics()); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info().Str("run_id", d.Run.ID.String()).Msg("metrics published")

	return nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (metrics.Repository, func() error, error) {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, err
	}

	s := store.New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return s, db.Close, nil
}
