package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/datamart/pkg/cli/config"
	controller "github.com/m-mizutani/datamart/pkg/controller/http"
	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/usecase"
	"github.com/m-mizutani/datamart/pkg/utils/async"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		catalogCfg   config.Catalog
		firestoreCfg config.Firestore
		authCfg      config.Auth
		webhookCfg   config.Webhook
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, webhookCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting datamart server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("catalog", catalogCfg),
				slog.Any("auth", authCfg),
				slog.Any("webhook", webhookCfg),
			)

			// Create use cases
			catalogUC, closeCatalog, err := catalogCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure catalog")
			}
			defer closeCatalog()

			savedRepo, closeSaved, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure saved dataset store")
			}
			defer closeSaved()

			savedUC := usecase.NewSaved(savedRepo, catalogUC)
			webhookUC := usecase.NewWebhook(catalogUC,
				usecase.WithRefreshInterval(webhookCfg.Interval, webhookCfg.Burst),
			)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				catalogUC,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithBaseURL(serverCfg.BaseURL),
				controller.WithWebhookSecret(webhookCfg.Secret),
				controller.WithJWTSecret(authCfg.JWTSecret),
				controller.WithSavedUseCase(savedUC),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "HTTP server error")
				}
				return nil
			})

			eg.Go(func() error {
				runRefresher(ctx, catalogUC, catalogCfg.RefreshInterval)
				return nil
			})

			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down...", slog.Any("cause", context.Cause(ctx)))

				// Graceful shutdown
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := async.Wait(shutdownCtx); err != nil {
					logger.Warn("Background tasks did not finish", slog.Any("error", err))
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// runRefresher loads the catalog once and then refreshes it every interval until ctx is done
func runRefresher(ctx context.Context, catalogUC interfaces.CatalogUseCase, interval time.Duration) {
	logger := ctxlog.From(ctx)

	// Failures are logged and reported by the use case; the previous collection stays in place.
	if err := catalogUC.Refresh(ctx); err != nil {
		logger.Warn("Initial catalog load failed", slog.Any("error", err))
	}

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := catalogUC.Refresh(ctx); err != nil {
				logger.Warn("Periodic catalog refresh failed", slog.Any("error", err))
			}
		}
	}
}
