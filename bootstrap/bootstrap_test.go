package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/config"
	"github.com/kbukum/rxkit/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	status   component.HealthStatus
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "start:"+f.name)
	}
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "stop:"+f.name)
	}
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) component.Health {
	status := f.status
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: f.name, Status: status}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "rxdemo", Version: "1.0.0"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "rxdemo" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default 15s, got %v", app.gracefulTimeout)
	}
}

func TestNewApp_VersionFallback(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "rxdemo"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Version == "" {
		t.Error("expected build version when config has none")
	}
}

func TestNewApp_Validation(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestNewApp_InitializesGlobalLogger(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "rxdemo"}}
	cfg.Logging.Level = "error"
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Logger != logger.GetGlobalLogger() {
		t.Error("expected the global logger")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "rxdemo"}}
	app, _ := NewApp(cfg, WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponent_Duplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&fakeComponent{name: "scheduler:default"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := app.RegisterComponent(&fakeComponent{name: "scheduler:default"}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("empty registry should be ready: %v", err)
	}

	app.RegisterComponent(&fakeComponent{name: "scheduler:default"})
	app.RegisterComponent(&fakeComponent{name: "http-server", status: component.StatusDegraded})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http-server=degraded") {
		t.Errorf("expected degraded server reported, got %v", err)
	}
}

func TestRunTask_LifecycleOrder(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakeComponent{name: "scheduler", events: &events})
	app.RegisterComponent(&fakeComponent{name: "server", events: &events})

	hook := func(name string) Hook {
		return func(context.Context) error {
			events = append(events, name)
			return nil
		}
	}
	app.OnStart(hook("onStart"))
	app.OnConfigure(func(context.Context, *App[*testConfig]) error {
		events = append(events, "configure")
		return nil
	})
	app.OnReady(hook("onReady"))
	app.OnStop(hook("onStop"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	want := "start:scheduler,start:server,onStart,configure,onReady,task,onStop,stop:server,stop:scheduler"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRunTask_ReturnsTaskError(t *testing.T) {
	app := newTestApp(t)
	err := app.RunTask(context.Background(), func(context.Context) error {
		return fmt.Errorf("task error")
	})
	if err == nil || err.Error() != "task error" {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTask_TaskErrorWinsOverStopError(t *testing.T) {
	app := newTestApp(t)
	app.RegisterComponent(&fakeComponent{name: "server", stopErr: fmt.Errorf("stop failed")})

	err := app.RunTask(context.Background(), func(context.Context) error {
		return fmt.Errorf("task error")
	})
	if err == nil || err.Error() != "task error" {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTask_Cancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTask_StartupFailures(t *testing.T) {
	failing := func(context.Context) error { return fmt.Errorf("hook failed") }
	cases := []struct {
		name  string
		setup func(app *App[*testConfig])
	}{
		{"component start", func(app *App[*testConfig]) {
			app.RegisterComponent(&fakeComponent{name: "bad", startErr: fmt.Errorf("start failed")})
		}},
		{"start hook", func(app *App[*testConfig]) { app.OnStart(failing) }},
		{"configure", func(app *App[*testConfig]) {
			app.OnConfigure(func(context.Context, *App[*testConfig]) error { return fmt.Errorf("configure failed") })
		}},
		{"ready hook", func(app *App[*testConfig]) { app.OnReady(failing) }},
		{"stop hook", func(app *App[*testConfig]) { app.OnStop(failing) }},
		{"component stop", func(app *App[*testConfig]) {
			app.RegisterComponent(&fakeComponent{name: "server", stopErr: fmt.Errorf("stop failed")})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			tc.setup(app)
			ran := false
			err := app.RunTask(context.Background(), func(context.Context) error {
				ran = true
				return nil
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.name != "stop hook" && tc.name != "component stop" && ran {
				t.Error("task should not run after a startup failure")
			}
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&fakeComponent{name: "server", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Join(events, ",") != "start:server,stop:server" {
		t.Errorf("unexpected events %v", events)
	}
}

func TestWaitForSignal_ContextCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if sig := app.WaitForSignal(ctx); sig != nil {
		t.Errorf("expected nil signal, got %v", sig)
	}
}
