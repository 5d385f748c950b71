package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thermostat_hub/internal/models"
	"thermostat_hub/internal/repository"
)

const defaultDeviceName = "Thermostat"

var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// TelemetryFilter narrows a telemetry listing. Zero times are open bounds.
type TelemetryFilter struct {
	From     time.Time
	To       time.Time
	DeviceID string
}

// TelemetryService writes one row per device from the current snapshot and
// the cached outdoor weather.
type TelemetryService struct {
	repo    repository.TelemetryRepo
	devices Devices
	weather Weather
	now     func() time.Time
}

func NewTelemetryService(repo repository.TelemetryRepo, devices Devices, weather Weather, clock func() time.Time) *TelemetryService {
	if clock == nil {
		clock = time.Now
	}
	return &TelemetryService{repo: repo, devices: devices, weather: weather, now: clock}
}

var _ Telemetry = (*TelemetryService)(nil)

// Sample records the current snapshot. An unpopulated snapshot records nothing.
func (s *TelemetryService) Sample(ctx context.Context) error {
	snap := s.devices.Snapshot()
	if !snap.Populated() || len(snap.Records) == 0 {
		return nil
	}
	var outdoor models.WeatherData
	if s.weather != nil {
		outdoor = s.weather.Cached()
	}

	now := s.now().UTC()
	samples := make([]models.TelemetrySample, 0, len(snap.Records))
	for _, rec := range snap.Records {
		samples = append(samples, buildSample(rec, outdoor, now))
	}
	if err := s.repo.AppendBatch(ctx, samples); err != nil {
		return fmt.Errorf("telemetry sample: %w", err)
	}
	return nil
}

// List returns samples in [From, To] for DeviceID; zero bounds and an empty
// id do not filter.
func (s *TelemetryService) List(ctx context.Context, f TelemetryFilter) ([]models.TelemetrySample, error) {
	f = f.normalize()
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, ErrInvalidTimeRange
	}
	return s.repo.List(ctx, f.From, f.To, f.DeviceID)
}

func (f TelemetryFilter) normalize() TelemetryFilter {
	return TelemetryFilter{
		From:     normalizeToUTC(f.From),
		To:       normalizeToUTC(f.To),
		DeviceID: strings.TrimSpace(f.DeviceID),
	}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func buildSample(rec models.DeviceRecord, outdoor models.WeatherData, now time.Time) models.TelemetrySample {
	name := defaultDeviceName
	if rec.DeviceName != nil && *rec.DeviceName != "" {
		name = *rec.DeviceName
	}
	fanMode, secondsLeft := fanState(rec, now)
	return models.TelemetrySample{
		SampledAt:          now,
		DeviceID:           rec.DeviceID,
		DeviceName:         name,
		TempUnits:          rec.TempUnits,
		TempMode:           rec.TempMode,
		HvacStatus:         rec.HvacStatus,
		FanMode:            fanMode,
		EcoMode:            rec.EcoMode,
		IndoorTempCelsius:  orZero(rec.AmbientTempCelsius),
		HeatCelsius:        orZero(rec.HeatCelsius),
		CoolCelsius:        orZero(rec.CoolCelsius),
		EcoHeatCelsius:     orZero(rec.EcoHeatCelsius),
		EcoCoolCelsius:     orZero(rec.EcoCoolCelsius),
		FanSecondsLeft:     secondsLeft,
		IndoorHumidity:     orZero(rec.AmbientHumidity),
		OutdoorTempCelsius: orZero(outdoor.CurrentTemperature),
		OutdoorHumidity:    orZero(outdoor.CurrentRelativeHumidity),
	}
}

// fanState: a running timer means ON, otherwise the fan follows the HVAC.
func fanState(rec models.DeviceRecord, now time.Time) (string, int) {
	if rec.FanTimer != nil {
		left := int(rec.FanTimer.Sub(now).Seconds())
		if left < 0 {
			left = 0
		}
		return models.FanModeOn, left
	}
	if rec.HvacStatus != models.HvacOff {
		return models.FanModeAuto, 0
	}
	return models.FanModeOff, 0
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
