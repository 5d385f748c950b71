package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"thermostat_hub/internal/models"
)

// flakyDevices fails the first failures refreshes.
type flakyDevices struct {
	failures int32
	calls    atomic.Int32
	forced   atomic.Int32
}

func (f *flakyDevices) GetOrRefresh(_ context.Context, force bool) (models.DeviceSnapshot, error) {
	n := f.calls.Add(1)
	if force {
		f.forced.Add(1)
	}
	if n <= f.failures {
		return models.DeviceSnapshot{}, errors.New("upstream down")
	}
	return models.DeviceSnapshot{CapturedAt: time.Now()}, nil
}

func (f *flakyDevices) Snapshot() models.DeviceSnapshot { return models.DeviceSnapshot{} }

func TestRefreshScheduler_InitialLoadRetries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		attempts  int
		wantCalls int32
	}{
		{name: "first try", failures: 0, attempts: 5, wantCalls: 1},
		{name: "succeeds on third", failures: 2, attempts: 5, wantCalls: 3},
		{name: "gives up after attempts", failures: 10, attempts: 3, wantCalls: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices := &flakyDevices{failures: tt.failures}
			s := NewRefreshScheduler(devices, RefreshSchedulerOptions{
				Interval:        time.Hour,
				InitialAttempts: tt.attempts,
				InitialBackoff:  time.Millisecond,
			}, nil)

			s.initialLoad(context.Background())
			if got := devices.calls.Load(); got != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tt.wantCalls)
			}
			if devices.forced.Load() != devices.calls.Load() {
				t.Fatalf("initial load must force a refresh")
			}
		})
	}
}

func TestRefreshScheduler_ServeRefreshesPeriodically(t *testing.T) {
	devices := &flakyDevices{failures: 1}
	s := NewRefreshScheduler(devices, RefreshSchedulerOptions{
		Interval:        5 * time.Millisecond,
		InitialAttempts: 1,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := s.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve returned %v", err)
	}
	// one failed initial attempt, then at least a couple of ticks
	if got := devices.calls.Load(); got < 3 {
		t.Fatalf("calls = %d, want periodic refreshes after a failed initial load", got)
	}
}

type countingTelemetry struct{ samples atomic.Int32 }

func (c *countingTelemetry) Sample(context.Context) error {
	c.samples.Add(1)
	return errors.New("ignored")
}

func (c *countingTelemetry) List(context.Context, TelemetryFilter) ([]models.TelemetrySample, error) {
	return nil, nil
}

func TestTelemetrySampler_KeepsTickingOnErrors(t *testing.T) {
	tel := &countingTelemetry{}
	s := NewTelemetrySampler(tel, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	_ = s.Serve(ctx)
	if got := tel.samples.Load(); got < 2 {
		t.Fatalf("samples = %d, want at least 2", got)
	}
}

func TestWeatherRefresher_FetchesImmediately(t *testing.T) {
	clock := newTestClock()
	src := &fakeWeatherSource{}
	w := newTestWeather(src, nil, clock)
	r := NewWeatherRefresher(w, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	deadline := time.After(time.Second)
	for w.Cached().LastCheckTime == nil {
		select {
		case <-deadline:
			t.Fatal("no observation fetched on start")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve returned %v", err)
	}
}
