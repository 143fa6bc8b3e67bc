package main

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/app/shared/shell/config"
	"github.com/readingcorner/library-circulation/store/oteladapters"
	"github.com/readingcorner/library-circulation/store/sqlengine"
)

const (
	instrumentationName = "library-circulation"
	pingOperation       = "ping"
	pingMaxAttempts     = 8
	pingBaseDelay       = 250 * time.Millisecond

	logMsgDatabaseReady = "database ready"
	logAttrDriver       = "driver"
	logAttrAttempts     = "attempts"
)

// ErrDatabaseUnreachable is returned when the startup ping keeps failing.
var ErrDatabaseUnreachable = errors.New("database unreachable")

// telemetry bundles the adapters that are only set when observability is enabled.
type telemetry struct {
	metrics *oteladapters.MetricsCollector
	tracing *oteladapters.TracingCollector
}

func (t telemetry) enabled() bool {
	return t.metrics != nil
}

// services is everything a subcommand needs, opened in dependency order and closed in reverse.
type services struct {
	cfg       config.Config
	logger    *oteladapters.SlogBridgeLogger
	telemetry telemetry
	providers *config.ObservabilityProviders
	db        *config.Database
}

func bootstrap(ctx context.Context, cfg config.Config, logOut io.Writer) (*services, error) {
	rt := &services{cfg: cfg}

	if cfg.Observability.Enabled {
		providers, err := config.NewObservabilityProviders(ctx, cfg.Observability, version)
		if err != nil {
			return nil, err
		}

		rt.providers = providers
		rt.telemetry = telemetry{
			metrics: oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
			tracing: oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
		}
	}

	rt.logger = config.NewLogger(cfg.Log, cfg.Observability, logOut)

	engineOptions := []sqlengine.Option{sqlengine.WithContextualLogger(rt.logger)}
	if rt.telemetry.enabled() {
		engineOptions = append(engineOptions,
			sqlengine.WithMetrics(rt.telemetry.metrics),
			sqlengine.WithTracing(rt.telemetry.tracing),
		)
	}

	db, err := config.OpenDatabase(ctx, cfg.Database, engineOptions...)
	if err != nil {
		return nil, errors.Join(err, rt.Close(ctx))
	}

	rt.db = db

	if err := rt.awaitDatabase(ctx); err != nil {
		return nil, errors.Join(err, rt.Close(ctx))
	}

	return rt, nil
}

func (rt *services) engine() sqlengine.Engine {
	return rt.db.Engine
}

// awaitDatabase pings until the database answers, tolerating a database that starts slower than the service.
func (rt *services) awaitDatabase(ctx context.Context) error {
	options := []shell.RetryOption{
		shell.WithMaxAttempts(pingMaxAttempts),
		shell.WithBaseDelay(pingBaseDelay),
	}

	if rt.telemetry.enabled() {
		options = append(options, shell.WithMetrics(rt.telemetry.metrics, pingOperation))
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, rt.engine().Ping, options...)
	if err != nil {
		return errors.Join(ErrDatabaseUnreachable, err)
	}

	rt.logger.InfoContext(ctx, logMsgDatabaseReady,
		logAttrDriver, rt.cfg.Database.Driver,
		logAttrAttempts, meta.Attempts,
	)

	return nil
}

// Close releases the database and flushes telemetry.
func (rt *services) Close(ctx context.Context) error {
	var errs []error

	if rt.db != nil {
		errs = append(errs, rt.db.Close())
	}

	if rt.providers != nil {
		errs = append(errs, rt.providers.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

func (rt *services) observation() observation {
	if !rt.telemetry.enabled() {
		return observation{}
	}

	return observation{
		metrics: rt.telemetry.metrics,
		tracing: rt.telemetry.tracing,
		logger:  rt.logger,
	}
}

func (rt *services) authSettings() authSettings {
	return authSettings{secret: rt.cfg.Auth.JWTSecret, ttl: rt.cfg.Auth.TokenTTL}
}
