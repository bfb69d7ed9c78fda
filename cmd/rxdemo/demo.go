package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/rxkit/bootstrap"
	"github.com/kbukum/rxkit/catalog"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/scheduler"
	"github.com/kbukum/rxkit/server"
	"github.com/kbukum/rxkit/sse"
	"github.com/kbukum/rxkit/stream"
	"github.com/kbukum/rxkit/version"
)

const instrumentationName = "github.com/kbukum/rxkit/cmd/rxdemo"

type demo struct {
	cfg     *Config
	log     *logger.Logger
	catalog *catalog.Catalog
	runtime *stream.Runtime
}

// setup wires telemetry, the scheduler loop, and the stream runtime into app.
func setup(app *bootstrap.App[*Config]) (*demo, error) {
	cfg := app.Cfg
	log := app.Logger.WithComponent("rxdemo")
	log.Info("build", version.GetVersionInfo().Fields())

	if err := initTelemetry(app); err != nil {
		return nil, err
	}
	metrics, err := observability.NewStreamMetrics(observability.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	loop := scheduler.NewLoop(cfg.Scheduler)
	if err := app.RegisterComponent(loop); err != nil {
		return nil, err
	}

	return newDemo(cfg, log, stream.NewRuntime(
		stream.WithScheduler(loop),
		stream.WithLogger(log.WithComponent("stream")),
		stream.WithMetrics(metrics),
		stream.WithTracer(observability.Tracer(instrumentationName)),
	)), nil
}

func newDemo(cfg *Config, log *logger.Logger, rt *stream.Runtime) *demo {
	return &demo{
		cfg:     cfg,
		log:     log,
		catalog: catalog.New(catalog.NewService(catalog.WithElementDelay(cfg.Catalog.ElementDelay))),
		runtime: rt,
	}
}

// initTelemetry installs the OTLP providers when enabled and flushes them on stop.
func initTelemetry(app *bootstrap.App[*Config]) error {
	ctx := context.Background()
	if app.Cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &app.Cfg.Metrics)
		if err != nil {
			return err
		}
		app.OnStop(mp.Shutdown)
	}
	if app.Cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, app.Cfg.Tracing)
		if err != nil {
			return err
		}
		app.OnStop(tp.Shutdown)
	}
	return nil
}

// runExamples runs the named examples one after another, or all of them.
func (d *demo) runExamples(ctx context.Context, names []string) error {
	if len(names) == 0 {
		names = d.catalog.Names()
	}
	for _, name := range names {
		if err := d.runExample(ctx, name); err != nil {
			if errors.HasCode(err, errors.ErrCodeNotFound) || ctx.Err() != nil {
				return err
			}
		}
	}
	return nil
}

func (d *demo) runExample(ctx context.Context, name string) error {
	s, err := d.catalog.Stream(name)
	if err != nil {
		return err
	}

	ctx, span := observability.StartSpan(ctx, "rxdemo.example "+name)
	defer span.End()

	log := d.log.WithFields(logger.Fields("example", name))
	start := time.Now()
	err = stream.ForEach(ctx, s, func(_ context.Context, v any) error {
		log.Info("next", logger.Fields("value", v, "at", time.Since(start).Round(time.Millisecond).String()))
		return nil
	}, stream.WithRuntime(d.runtime))

	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Error("error", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	log.Info("complete", logger.DurationFields("example", time.Since(start)))
	return nil
}

// serve registers the HTTP server component with the example routes.
func (d *demo) serve(app *bootstrap.App[*Config]) error {
	srv := server.New(d.cfg.Server, app.Logger)
	srv.RegisterDefaultEndpoints(d.cfg.Name, app.Components.HealthAll)
	d.routes(srv.Engine())
	return app.RegisterComponent(server.NewComponent(srv))
}

func (d *demo) routes(r gin.IRouter) {
	r.GET("/examples", d.listExamples)
	r.GET("/examples/:name", d.streamExample)
}

func (d *demo) listExamples(c *gin.Context) {
	server.RespondOK(c, d.catalog.Examples())
}

func (d *demo) streamExample(c *gin.Context) {
	name := c.Param("name")
	s, err := d.catalog.Stream(name)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	sse.ServeStream(c.Writer, c.Request, s,
		sse.WithRuntime(d.runtime),
		sse.WithKeepAlive(d.cfg.SSE.KeepAlive),
		sse.WithName(name),
	)
}
