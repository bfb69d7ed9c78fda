package main

import (
	"fmt"
	"time"

	"github.com/kbukum/rxkit/config"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/scheduler"
	"github.com/kbukum/rxkit/server"
	"github.com/kbukum/rxkit/validation"
)

// Config is the rxdemo configuration, read from config.yml and RX_* env vars.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Scheduler scheduler.LoopConfig       `yaml:"scheduler" mapstructure:"scheduler"`
	Server    server.Config              `yaml:"server" mapstructure:"server"`
	Catalog   CatalogConfig              `yaml:"catalog" mapstructure:"catalog"`
	SSE       SSEConfig                  `yaml:"sse" mapstructure:"sse"`
	Metrics   observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	Tracing   observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

// CatalogConfig tunes the demo data service.
type CatalogConfig struct {
	ElementDelay time.Duration `yaml:"element_delay" mapstructure:"element_delay" validate:"gte=0"`
}

// SSEConfig tunes the event stream endpoints.
type SSEConfig struct {
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive" validate:"gt=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "rxdemo"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	if c.Server.Name == "" {
		c.Server.Name = c.Name
	}
	c.Server.ApplyDefaults()

	if c.Catalog.ElementDelay == 0 {
		c.Catalog.ElementDelay = 300 * time.Millisecond
	}
	if c.SSE.KeepAlive == 0 {
		c.SSE.KeepAlive = 30 * time.Second
	}

	meter := observability.DefaultMeterConfig(c.Name)
	c.Metrics.ServiceName = c.Name
	c.Metrics.ServiceVersion = c.Version
	c.Metrics.Environment = c.Environment
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = meter.Endpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = meter.Interval
	}

	tracer := observability.DefaultTracerConfig(c.Name)
	c.Tracing.ServiceName = c.Name
	c.Tracing.ServiceVersion = c.Version
	c.Tracing.Environment = c.Environment
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = tracer.Endpoint
	}
	if c.Tracing.Enabled && c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = tracer.SampleRate
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("config.scheduler: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := validation.Struct(c.Catalog); err != nil {
		return fmt.Errorf("config.catalog: %w", err)
	}
	if err := validation.Struct(c.SSE); err != nil {
		return fmt.Errorf("config.sse: %w", err)
	}
	if err := validation.Struct(c.Tracing); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	return nil
}
