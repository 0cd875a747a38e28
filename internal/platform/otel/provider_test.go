package otel

import (
	"context"
	"testing"
)

func TestConfigActive(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{}, false},
		{Config{Enabled: true}, false},
		{Config{Endpoint: "http://localhost:4318"}, false},
		{Config{Endpoint: " ", Enabled: true}, false},
		{Config{Endpoint: "http://localhost:4318", Enabled: true}, true},
	}
	for _, tt := range tests {
		if got := tt.cfg.Active(); got != tt.want {
			t.Fatalf("%+v active = %v, want %v", tt.cfg, got, tt.want)
		}
	}
}

func TestSetupNoopWithoutEndpoint(t *testing.T) {
	t.Setenv("WARLORD_OTEL_ENDPOINT", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	t.Setenv("WARLORD_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("WARLORD_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupRejectsBadFlag(t *testing.T) {
	t.Setenv("WARLORD_OTEL_ENABLED", "sometimes")
	if _, err := Setup(context.Background(), "test-service"); err == nil {
		t.Fatal("expected config error")
	}
}

func TestSetupWithConfigCreatesProvider(t *testing.T) {
	// Non-routable address: nothing is exported before shutdown.
	shutdown, err := SetupWithConfig(context.Background(), "test-service", Config{
		Endpoint: "http://192.0.2.1:4318",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if Tracer("warlord/test") == nil {
		t.Fatal("expected tracer")
	}
}
