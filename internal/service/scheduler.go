package service

import (
	"context"
	"time"

	"thermostat_hub/internal/logger"
)

// Each loop below implements suture.Service: Serve blocks until ctx is done.

type RefreshSchedulerOptions struct {
	Interval        time.Duration
	InitialAttempts int
	InitialBackoff  time.Duration
}

// RefreshScheduler performs the bounded initial load and then forces a
// refresh on every interval. It is the fallback when pushed events are lost.
type RefreshScheduler struct {
	devices Devices
	opts    RefreshSchedulerOptions
	log     *logger.Logger
}

func NewRefreshScheduler(devices Devices, opts RefreshSchedulerOptions, log *logger.Logger) *RefreshScheduler {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.InitialAttempts <= 0 {
		opts.InitialAttempts = 1
	}
	return &RefreshScheduler{devices: devices, opts: opts, log: log}
}

func (s *RefreshScheduler) Serve(ctx context.Context) error {
	s.initialLoad(ctx)

	t := time.NewTicker(s.opts.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := s.devices.GetOrRefresh(ctx, true); err != nil && s.log != nil {
				s.log.Warnw("scheduled_refresh_failed", "err", err)
			}
		}
	}
}

func (s *RefreshScheduler) String() string { return "refresh-scheduler" }

func (s *RefreshScheduler) initialLoad(ctx context.Context) {
	for attempt := 1; attempt <= s.opts.InitialAttempts; attempt++ {
		_, err := s.devices.GetOrRefresh(ctx, true)
		if err == nil {
			if s.log != nil {
				s.log.Infow("initial_load_ok", "attempt", attempt)
			}
			return
		}
		if s.log != nil {
			s.log.Warnw("initial_load_failed", "attempt", attempt, "err", err)
		}
		if attempt == s.opts.InitialAttempts || !sleepCtx(ctx, s.opts.InitialBackoff) {
			return
		}
	}
}

// WeatherRefresher keeps the outdoor observation warm so telemetry and new
// subscribers see recent data.
type WeatherRefresher struct {
	weather  Weather
	interval time.Duration
	log      *logger.Logger
}

func NewWeatherRefresher(weather Weather, interval time.Duration, log *logger.Logger) *WeatherRefresher {
	if interval <= 0 {
		interval = DefaultWeatherFreshness
	}
	return &WeatherRefresher{weather: weather, interval: interval, log: log}
}

func (r *WeatherRefresher) Serve(ctx context.Context) error {
	return tick(ctx, r.interval, true, func(ctx context.Context) {
		if _, err := r.weather.Observation(ctx); err != nil && r.log != nil {
			r.log.Warnw("weather_refresh_failed", "err", err)
		}
	})
}

func (r *WeatherRefresher) String() string { return "weather-refresher" }

// TelemetrySampler writes a telemetry row set on every interval.
type TelemetrySampler struct {
	telemetry Telemetry
	interval  time.Duration
	log       *logger.Logger
}

func NewTelemetrySampler(telemetry Telemetry, interval time.Duration, log *logger.Logger) *TelemetrySampler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TelemetrySampler{telemetry: telemetry, interval: interval, log: log}
}

func (s *TelemetrySampler) Serve(ctx context.Context) error {
	return tick(ctx, s.interval, false, func(ctx context.Context) {
		if err := s.telemetry.Sample(ctx); err != nil && s.log != nil {
			s.log.Errorw("telemetry_sample_failed", "err", err)
		}
	})
}

func (s *TelemetrySampler) String() string { return "telemetry-sampler" }

// tick runs fn every interval until ctx is done, optionally once up front.
func tick(ctx context.Context, interval time.Duration, immediate bool, fn func(context.Context)) error {
	if immediate {
		fn(ctx)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fn(ctx)
		}
	}
}

// sleepCtx waits for d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
