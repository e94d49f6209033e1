package telemetry

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/core"
)

var (
	_ core.Module       = (*Telemetry)(nil)
	_ core.Configurable = (*Telemetry)(nil)
	_ core.Provisioner  = (*Telemetry)(nil)
	_ core.Validator    = (*Telemetry)(nil)
	_ core.Starter      = (*Telemetry)(nil)
	_ core.Stopper      = (*Telemetry)(nil)
)

func yamlNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(src), &node); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	return &node
}

func TestConfigure_Defaults(t *testing.T) {
	t.Parallel()

	tel := &Telemetry{}
	if err := tel.Configure(yamlNode(t, "endpoint: collector:4318\ninsecure: true")); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if tel.config.ServiceName != "parley" {
		t.Errorf("service_name = %q, want parley", tel.config.ServiceName)
	}
	if !tel.config.Insecure {
		t.Error("insecure not decoded")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tel := &Telemetry{config: Config{}}
	if err := tel.Validate(); err == nil {
		t.Fatal("Validate: expected error for missing endpoint")
	}

	tel.config.Endpoint = "collector:4318"
	if err := tel.Validate(); err != nil {
		t.Fatalf("Validate: unexpected error: %v", err)
	}
}

func TestModuleRegistered(t *testing.T) {
	t.Parallel()

	if _, ok := core.GetModule("observe.otel"); !ok {
		t.Fatal("observe.otel not registered")
	}
}
