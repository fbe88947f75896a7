package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/datamart/pkg/cli/config"
	"github.com/m-mizutani/datamart/pkg/domain/types"
)

const sentryFlushTimeout = 2 * time.Second

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		logger    *slog.Logger
	)

	app := &cli.Command{
		Name:    "datamart",
		Usage:   "Dataset catalog browser",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			if err := sentryCfg.Configure(logger); err != nil {
				return nil, err
			}

			return ctxlog.With(ctx, logger), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			sentry.Flush(sentryFlushTimeout)
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdList(),
			cmdFacets(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
