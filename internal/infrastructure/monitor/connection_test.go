package monitor

import (
	"context"
	"errors"
	"testing"
)

func TestMonitor_Refresh(t *testing.T) {
	m := New([]Check{
		{Name: "store", Required: true, Probe: func(ctx context.Context) error { return nil }},
		{Name: "cache", Probe: func(ctx context.Context) error { return errors.New("connection refused") }},
	}, 0, nil)

	m.Refresh()
	status := m.GetStatus()

	if !status.Healthy() || !m.IsOnline() {
		t.Fatalf("optional failure must not make the service unhealthy: %+v", status)
	}
	if !status.Components["store"].Online {
		t.Fatalf("store should be online")
	}
	cache := status.Components["cache"]
	if cache.Online || cache.Error != "connection refused" {
		t.Fatalf("unexpected cache status: %+v", cache)
	}
	if status.LastCheck.IsZero() {
		t.Fatalf("last check not recorded")
	}
}

func TestMonitor_RequiredFailure(t *testing.T) {
	m := New([]Check{
		{Name: "store", Required: true, Probe: func(ctx context.Context) error { return errors.New("closed") }},
	}, 0, nil)
	m.Refresh()
	if m.IsOnline() {
		t.Fatalf("required failure should report offline")
	}
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m := New(nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
