package service

import (
	"context"
	"time"

	"thermostat_hub/internal/exclusive"
	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/models"
	"thermostat_hub/internal/repository"
	"thermostat_hub/internal/sdm"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Devices is the snapshot cache.
type Devices interface {
	GetOrRefresh(ctx context.Context, forceFlush bool) (models.DeviceSnapshot, error)
	Snapshot() models.DeviceSnapshot
}

// Events merges pushed change events into the snapshot.
type Events interface {
	ApplyEvent(ctx context.Context, payload []byte) (needsFullRefresh bool, err error)
	HandleEvent(ctx context.Context, payload []byte)
}

// Commands drives the thermostats. Failures are reported in the result.
type Commands interface {
	SetHeat(ctx context.Context, deviceID string, heatCelsius float64) models.CommandResult
	SetCool(ctx context.Context, deviceID string, coolCelsius float64) models.CommandResult
	SetRange(ctx context.Context, deviceID string, heatCelsius, coolCelsius float64) models.CommandResult
	SetTempMode(ctx context.Context, deviceID string, mode models.TempMode) models.CommandResult
	SetEcoMode(ctx context.Context, deviceID string, mode models.EcoMode) models.CommandResult
	SetFanTimer(ctx context.Context, deviceID string, mode models.FanTimerMode, durationSeconds int) models.CommandResult
}

type Weather interface {
	Observation(ctx context.Context) (models.WeatherData, error)
	Cached() models.WeatherData
	SetLocation(latitude, longitude float64)
}

type Telemetry interface {
	Sample(ctx context.Context) error
	List(ctx context.Context, f TelemetryFilter) ([]models.TelemetrySample, error)
}

// Publisher fans messages out to subscribers.
type Publisher interface {
	Broadcast(msgType string, data any) int
}

// DeviceLister is the remote device listing.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]sdm.Device, error)
}

// CommandExecutor sends one device command.
type CommandExecutor interface {
	ExecuteCommand(ctx context.Context, deviceID string, cmd sdm.Command) error
}

// WeatherSource fetches outdoor observations.
type WeatherSource interface {
	Lookup(ctx context.Context, latitude, longitude float64, prev models.WeatherData) (models.WeatherData, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Devices
	Events
	Commands
	Weather
	Telemetry
	Authorization
}

// Deps carries what the services need besides the repositories.
type Deps struct {
	Lister    DeviceLister
	Executor  CommandExecutor
	Weather   WeatherSource
	Publisher Publisher
	Log       *logger.Logger

	Demo           bool
	DemoDelay      time.Duration
	CacheTTL       time.Duration
	Latitude       float64
	Longitude      float64
	WeatherFresh   time.Duration
	SigningKey     string
	TokenTTL       time.Duration
	TelemetryClock func() time.Time
}

// NewService wires the repositories and remote clients into concrete services.
func NewService(repos *repository.Repository, d Deps) *Service {
	devices := NewDeviceService(d.Lister, exclusive.New(), d.Publisher, DeviceOptions{
		TTL:       d.CacheTTL,
		Demo:      d.Demo,
		DemoDelay: d.DemoDelay,
	}, d.Log.Named("devices"))
	weather := NewWeatherService(d.Weather, d.Publisher, WeatherOptions{
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Freshness: d.WeatherFresh,
		Demo:      d.Demo,
	}, d.Log.Named("weather"))

	return &Service{
		Devices:       devices,
		Events:        NewEventService(devices, d.Log.Named("events")),
		Commands:      NewCommandService(d.Executor, d.Demo, d.Log.Named("commands")),
		Weather:       weather,
		Telemetry:     NewTelemetryService(repos.Telemetry, devices, weather, d.TelemetryClock),
		Authorization: NewAuthService(repos.Auth, d.SigningKey, d.TokenTTL),
	}
}
