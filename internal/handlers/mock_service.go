package handlers

import (
	"context"
	"net/http"
	"sync"

	"thermostat_hub/internal/broadcast"
	"thermostat_hub/internal/models"
	"thermostat_hub/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDevices struct {
	snap      models.DeviceSnapshot
	err       error
	lastForce bool
	calls     int
}

func (m *mockDevices) GetOrRefresh(_ context.Context, forceFlush bool) (models.DeviceSnapshot, error) {
	m.calls++
	m.lastForce = forceFlush
	return m.snap, m.err
}
func (m *mockDevices) Snapshot() models.DeviceSnapshot { return m.snap }

type mockEvents struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (m *mockEvents) ApplyEvent(_ context.Context, payload []byte) (bool, error) {
	m.HandleEvent(context.Background(), payload)
	return false, nil
}
func (m *mockEvents) HandleEvent(_ context.Context, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, append([]byte(nil), payload...))
}

// mockCommands answers every command with res and remembers the call.
type mockCommands struct {
	res models.CommandResult

	lastMethod   string
	lastDeviceID string
	lastArgs     []any
}

func (m *mockCommands) record(method, deviceID string, args ...any) models.CommandResult {
	m.lastMethod = method
	m.lastDeviceID = deviceID
	m.lastArgs = args
	return m.res
}
func (m *mockCommands) SetHeat(_ context.Context, deviceID string, heat float64) models.CommandResult {
	return m.record("SetHeat", deviceID, heat)
}
func (m *mockCommands) SetCool(_ context.Context, deviceID string, cool float64) models.CommandResult {
	return m.record("SetCool", deviceID, cool)
}
func (m *mockCommands) SetRange(_ context.Context, deviceID string, heat, cool float64) models.CommandResult {
	return m.record("SetRange", deviceID, heat, cool)
}
func (m *mockCommands) SetTempMode(_ context.Context, deviceID string, mode models.TempMode) models.CommandResult {
	return m.record("SetTempMode", deviceID, mode)
}
func (m *mockCommands) SetEcoMode(_ context.Context, deviceID string, mode models.EcoMode) models.CommandResult {
	return m.record("SetEcoMode", deviceID, mode)
}
func (m *mockCommands) SetFanTimer(_ context.Context, deviceID string, mode models.FanTimerMode, seconds int) models.CommandResult {
	return m.record("SetFanTimer", deviceID, mode, seconds)
}

type mockWeather struct {
	data    models.WeatherData
	err     error
	lastLat float64
	lastLon float64
	moved   int
}

func (m *mockWeather) Observation(context.Context) (models.WeatherData, error) {
	return m.data, m.err
}
func (m *mockWeather) Cached() models.WeatherData { return m.data }
func (m *mockWeather) SetLocation(latitude, longitude float64) {
	m.moved++
	m.lastLat, m.lastLon = latitude, longitude
}

type mockTelemetry struct {
	resp   []models.TelemetrySample
	err    error
	last   service.TelemetryFilter
	called bool
}

func (m *mockTelemetry) Sample(context.Context) error { return nil }
func (m *mockTelemetry) List(_ context.Context, f service.TelemetryFilter) ([]models.TelemetrySample, error) {
	m.called = true
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWith(s, nil, Options{})
}

func newTestRouterWith(s *service.Service, hub *broadcast.Hub, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, hub, opts, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
