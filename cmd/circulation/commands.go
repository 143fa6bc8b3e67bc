package main

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/readingcorner/library-circulation/app/features/command/reconcileoverdue"
	"github.com/readingcorner/library-circulation/app/seed"
)

const logMsgSchemaMigrated = "schema migrated"

// ErrMigrationFailed is returned when the schema cannot be created.
var ErrMigrationFailed = errors.New("schema migration failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// withServices loads the configuration, opens everything and hands it to fn.
func (c *cli) withServices(cmd *cobra.Command, fn func(ctx context.Context, rt *services) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	rt, err := bootstrap(ctx, cfg, c.stderr)
	if err != nil {
		return err
	}

	runErr := fn(ctx, rt)

	// telemetry still gets flushed after a canceled run
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, rt.Close(closeCtx))
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd, migrate)
		},
	}
}

func migrate(ctx context.Context, rt *services) error {
	if err := rt.engine().Migrate(ctx); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	rt.logger.InfoContext(ctx, logMsgSchemaMigrated, logAttrDriver, rt.cfg.Database.Driver)

	return nil
}

func (c *cli) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo students, books and admin unless students exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd, func(ctx context.Context, rt *services) error {
				if err := migrate(ctx, rt); err != nil {
					return err
				}

				_, err := seedDemoData(ctx, rt, time.Now())

				return err
			})
		},
	}
}

func seedDemoData(ctx context.Context, rt *services, now time.Time) (seed.Result, error) {
	seeder := seed.NewSeeder(
		rt.engine(),
		seed.Admin{Username: rt.cfg.Seed.AdminUsername, Password: rt.cfg.Seed.AdminPassword},
		seed.WithContextualLogger(rt.logger),
	)

	return seeder.Seed(ctx, now)
}

func (c *cli) reconcileOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile-overdue",
		Short: "Recompute the overdue days of all open loans and print the overdue ones as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withServices(cmd, func(ctx context.Context, rt *services) error {
				handlers, err := buildHandlers(rt.engine(), rt.authSettings(), rt.observation())
				if err != nil {
					return err
				}

				result, err := handlers.ReconcileOverdue.Handle(ctx, reconcileoverdue.BuildCommand(time.Now()))
				if err != nil {
					return err
				}

				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(result.Overdue)
			})
		},
	}
}
