package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/readingcorner/library-circulation/app/features/command/reconcileoverdue"
	"github.com/readingcorner/library-circulation/app/httpapi"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const (
	readHeaderTimeout = 5 * time.Second

	logMsgServerStarted      = "http server started"
	logMsgServerStopping     = "http server stopping"
	logMsgReconcilerStarted  = "overdue reconciler started"
	logMsgReconcileCompleted = "overdue reconcile completed"
	logMsgReconcileFailed    = "overdue reconcile failed"

	logAttrAddr     = "addr"
	logAttrInterval = "interval"
	logAttrOverdue  = "overdue"
	logAttrUpdated  = "updated"
	logAttrError    = "error"
)

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate, optionally seed, and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd, serve)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8001)")
	_ = c.viper.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func serve(ctx context.Context, rt *services) error {
	if err := migrate(ctx, rt); err != nil {
		return err
	}

	if rt.cfg.Seed.OnStartup {
		if _, err := seedDemoData(ctx, rt, time.Now()); err != nil {
			return err
		}
	}

	handlers, err := buildHandlers(rt.engine(), rt.authSettings(), rt.observation())
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)

	router, err := httpapi.NewRouter(handlers,
		httpapi.Config{CORSOrigins: rt.cfg.CORS.Origins, EnforceAuth: rt.cfg.Auth.Enforce},
		httpapi.WithContextualLogger(rt.logger),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              rt.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		rt.logger.InfoContext(ctx, logMsgServerStarted, logAttrAddr, server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	reconcilerCtx, stopReconciler := context.WithCancel(ctx)
	reconcilerDone := make(chan struct{})

	go func() {
		defer close(reconcilerDone)
		runReconciler(reconcilerCtx, handlers.ReconcileOverdue, rt.cfg.Overdue.ReconcileInterval, time.Now, rt.logger)
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
	}

	rt.logger.InfoContext(ctx, logMsgServerStopping)

	stopReconciler()
	<-reconcilerDone

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return errors.Join(err, server.Shutdown(shutdownCtx))
}

// runReconciler refreshes the overdue days of open loans every interval until ctx ends.
// A zero interval disables it.
func runReconciler(
	ctx context.Context,
	handler shell.CommandHandler[reconcileoverdue.Command, reconcileoverdue.Result],
	interval time.Duration,
	now func() time.Time,
	logger store.ContextualLogger,
) {
	if interval <= 0 {
		return
	}

	logger.InfoContext(ctx, logMsgReconcilerStarted, logAttrInterval, interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			result, err := handler.Handle(ctx, reconcileoverdue.BuildCommand(now()))
			if err != nil {
				if ctx.Err() == nil {
					logger.ErrorContext(ctx, logMsgReconcileFailed, logAttrError, err.Error())
				}

				continue
			}

			logger.InfoContext(ctx, logMsgReconcileCompleted,
				logAttrOverdue, len(result.Overdue),
				logAttrUpdated, result.Updated,
			)
		}
	}
}
