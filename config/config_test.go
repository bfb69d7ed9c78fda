package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Scheduler     struct {
		Name        string `mapstructure:"name"`
		MaxLateness string `mapstructure:"max_lateness"`
	} `mapstructure:"scheduler"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name to follow Name, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "name: is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "environment: must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: rxdemo
environment: staging
version: "1.0.0"
scheduler:
  name: main
`)

	var cfg testConfig
	if err := LoadConfig("rxdemo", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "rxdemo" {
		t.Errorf("expected name 'rxdemo', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Scheduler.Name != "main" {
		t.Errorf("expected scheduler.name 'main', got %q", cfg.Scheduler.Name)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected ApplyDefaults to run, got level %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: rxdemo
scheduler:
  name: main
`)
	t.Setenv("RX_SCHEDULER_MAX_LATENESS", "250ms")
	t.Setenv("RX_SCHEDULER_NAME", "override")

	var cfg testConfig
	if err := LoadConfig("rxdemo", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Scheduler.Name != "override" {
		t.Errorf("expected env override, got %q", cfg.Scheduler.Name)
	}
	if cfg.Scheduler.MaxLateness != "250ms" {
		t.Errorf("expected max_lateness from env, got %q", cfg.Scheduler.MaxLateness)
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "environment: nowhere\n")

	var cfg testConfig
	err := LoadConfig("rxdemo", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env")))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid config for service rxdemo") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("rxdemo", &cfg,
		WithFileSystem(&mockFS{files: map[string]bool{}}),
		WithDefaults(map[string]any{"name": "fallback", "scheduler.name": "default"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "fallback" || cfg.Scheduler.Name != "default" {
		t.Errorf("expected defaults, got name=%q scheduler=%q", cfg.Name, cfg.Scheduler.Name)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/rxdemo/config.yml": true,
		"./.env":                  true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("rxdemo", LoaderConfig{})
	if files.ConfigFile != "./cmd/rxdemo/config.yml" {
		t.Errorf("expected config file at ./cmd/rxdemo/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file ./.env, got %q", files.EnvFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("SCHEDULER_MAX_LATENESS")
	want := map[string]bool{
		"scheduler_max_lateness": true,
		"scheduler.max.lateness": true,
		"scheduler.max_lateness": true,
	}
	found := 0
	for _, v := range got {
		if want[v] {
			found++
		}
	}
	if found != len(want) {
		t.Errorf("expected variants %v in %v", want, got)
	}
	if single := generateEnvKeyVariants("NAME"); len(single) != 1 || single[0] != "name" {
		t.Errorf("expected [name], got %v", single)
	}
}

func TestWithEnvPrefixOption(t *testing.T) {
	var lc LoaderConfig
	WithEnvPrefix("app_")(&lc)
	if lc.EnvPrefix != "APP" {
		t.Errorf("expected normalized prefix APP, got %q", lc.EnvPrefix)
	}
}
