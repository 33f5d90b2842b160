package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPass(t *testing.T) {
	result := Pass("dashboard_listening", "Port 5601 is listening")

	if !result.Healthy {
		t.Error("Healthy = false, want true")
	}
	if result.Name != "dashboard_listening" {
		t.Errorf("Name = %q, want dashboard_listening", result.Name)
	}
	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
}

func TestFail(t *testing.T) {
	testErr := errors.New("test error")
	result := Fail("dashboard_http", "timeout", testErr)

	if result.Healthy {
		t.Error("Healthy = true, want false")
	}
	if result.Detail != "timeout" {
		t.Errorf("Detail = %q, want timeout", result.Detail)
	}
	if result.Err != testErr {
		t.Errorf("Err = %v, want %v", result.Err, testErr)
	}
}

func TestProbeResult_With(t *testing.T) {
	result := Pass("http", "ok").
		WithObservedCode("302").
		WithDuration(150 * time.Millisecond)

	if result.ObservedCode != "302" {
		t.Errorf("ObservedCode = %q, want 302", result.ObservedCode)
	}
	if result.Duration != 150*time.Millisecond {
		t.Errorf("Duration = %v, want 150ms", result.Duration)
	}
}

func TestProbeFunc(t *testing.T) {
	called := false
	probe := NewProbeFunc("custom", func(ctx context.Context) ProbeResult {
		called = true
		return Pass("custom", "fine")
	})

	if probe.Name() != "custom" {
		t.Errorf("Name() = %q, want custom", probe.Name())
	}

	result := probe.Run(context.Background())
	if !called {
		t.Error("function was not called")
	}
	if !result.Healthy {
		t.Error("Healthy = false, want true")
	}
}

func TestProbeFunc_ImplementsProbe(t *testing.T) {
	var _ Probe = (*ProbeFunc)(nil)
	var _ Probe = (*ListenProbe)(nil)
	var _ Probe = (*HTTPProbe)(nil)
	var _ Probe = (*PresenceProbe)(nil)
}
