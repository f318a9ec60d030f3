package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/dovecot-archive/internal/archive"
	"github.com/teemow/dovecot-archive/internal/batch"
	"github.com/teemow/dovecot-archive/internal/datespec"
	"github.com/teemow/dovecot-archive/internal/doveadm"
	"github.com/teemow/dovecot-archive/internal/instrumentation"
	"github.com/teemow/dovecot-archive/internal/logging"
)

// runArchive resolves the options, sets up instrumentation and runs the
// archive.
func runArchive(cmd *cobra.Command, env environment) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	if opts.Request.User == "" {
		return usageErrorf("--%s is required", flagUser)
	}
	cutoff, err := datespec.Parse(opts.Before, env.now())
	if err != nil {
		return usageError{err: fmt.Errorf("invalid --%s: %w", flagBefore, err)}
	}

	logger := logging.New(env.stderr, opts.Verbose)
	if opts.Request.YearLast && !opts.Request.SplitByYear {
		logger.Warn("--year-as-last-folder has no effect without --split-by-year")
	}

	ctx := cmd.Context()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		// Metrics are still pushed after an interrupt.
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var dryRun io.Writer
	if opts.DryRun {
		dryRun = env.stdout
	}

	client := doveadm.NewClient(
		&doveadm.InstrumentedRunner{Runner: env.runner, Metrics: provider.Metrics()},
		doveadm.Options{
			Binary:    opts.Doveadm,
			Verbosity: opts.Verbose,
			DryRun:    dryRun,
			Logger:    logging.NewSlogAdapter(logger),
		},
	)

	if client.DryRun() {
		logger.Info("dry run, printing mutating doveadm commands instead of running them")
	}
	logger.Debug("resolved cutoff", slog.String("before", cutoff.String()), slog.Int("year", cutoff.Year))

	summary, err := archive.New(client, logger, provider.Metrics()).Run(ctx, opts.Request, cutoff)
	if opts.JSON {
		fmt.Fprintln(env.stdout, batch.FormatResults(summary.Results))
	}
	return err
}
