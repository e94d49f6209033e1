// Package telemetry exports the traces the conversation runner emits. It
// installs an OTLP/HTTP trace pipeline as the global tracer provider; without
// this module spans fall through to the no-op default.
package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/core"
)

func init() {
	core.RegisterModule(&Telemetry{})
}

// Config holds trace export configuration.
type Config struct {
	// Endpoint is the OTLP/HTTP collector address, host:port.
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
	// ServiceName tags exported spans. Defaults to "parley".
	ServiceName string `yaml:"service_name"`
}

func (c *Config) defaults() {
	if c.ServiceName == "" {
		c.ServiceName = "parley"
	}
}

// Telemetry is the "observe.otel" module.
type Telemetry struct {
	config Config
	logger *slog.Logger
	tp     *sdktrace.TracerProvider
}

// ModuleInfo implements core.Module.
func (t *Telemetry) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "observe.otel",
		New: func() core.Module { return &Telemetry{} },
	}
}

// Configure implements core.Configurable.
func (t *Telemetry) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return err
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Telemetry) Provision(ctx *core.AppContext) error {
	t.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (t *Telemetry) Validate() error {
	if t.config.Endpoint == "" {
		return errors.New("telemetry: endpoint is required")
	}
	return nil
}

// Start implements core.Starter. The exporter connects lazily, so Start
// never blocks on the collector.
func (t *Telemetry) Start() error {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(t.config.Endpoint),
	}
	if t.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return errors.New("telemetry: create exporter: " + err.Error())
	}

	t.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", t.config.ServiceName),
		)),
	)
	otel.SetTracerProvider(t.tp)

	t.logger.Info("trace export enabled", "endpoint", t.config.Endpoint)
	return nil
}

// Stop implements core.Stopper. Flushes pending spans within the caller's
// deadline.
func (t *Telemetry) Stop(ctx context.Context) error {
	if t.tp == nil {
		return nil
	}
	return t.tp.Shutdown(ctx)
}
