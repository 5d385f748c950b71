package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"thermostat_hub/internal/broadcast"
	"thermostat_hub/internal/models"
	"thermostat_hub/internal/sdm"
	"thermostat_hub/internal/service"
)

func populatedSnapshot() models.DeviceSnapshot {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	rec := models.NewDeviceRecord("enterprises/p/devices/d1")
	rec.DeviceName = models.Ptr("Hallway")
	rec.TempMode = models.TempModeHeat
	rec.HeatCelsius = models.Ptr(20.5)
	return models.DeviceSnapshot{
		Records:    []models.DeviceRecord{rec},
		CapturedAt: now,
		StaleAfter: now.Add(time.Minute),
	}
}

func TestInfo(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		devices   *mockDevices
		wantCode  int
		wantStale bool
		wantCount int
		wantForce bool
	}{
		{
			name:      "fresh snapshot",
			devices:   &mockDevices{snap: populatedSnapshot()},
			wantCode:  http.StatusOK,
			wantCount: 1,
		},
		{
			name:      "force flush",
			query:     "?force_flush=true",
			devices:   &mockDevices{snap: populatedSnapshot()},
			wantCode:  http.StatusOK,
			wantCount: 1,
			wantForce: true,
		},
		{
			name:      "refresh failed with older snapshot",
			devices:   &mockDevices{snap: populatedSnapshot(), err: &sdm.FetchError{HTTPCode: 503, Message: "unavailable"}},
			wantCode:  http.StatusOK,
			wantStale: true,
			wantCount: 1,
		},
		{
			name:     "refresh failed with nothing cached",
			devices:  &mockDevices{err: &sdm.FetchError{HTTPCode: 503, Message: "unavailable"}},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "auth failure without status",
			devices:  &mockDevices{err: &sdm.AuthError{Message: "no refresh token"}},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "bad force_flush",
			query:    "?force_flush=maybe",
			devices:  &mockDevices{snap: populatedSnapshot()},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Devices: tc.devices})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/info"+tc.query, nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if got := w.Header().Get(headerSnapshotStale) == "true"; got != tc.wantStale {
				t.Fatalf("stale header=%v want %v", got, tc.wantStale)
			}
			if tc.devices.lastForce != tc.wantForce {
				t.Fatalf("force=%v want %v", tc.devices.lastForce, tc.wantForce)
			}
			if tc.wantCode != http.StatusOK {
				var body map[string]string
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if body["error"] == "" {
					t.Fatalf("expected error message, got %s", w.Body.String())
				}
				return
			}
			var records []models.DeviceRecord
			if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(records) != tc.wantCount {
				t.Fatalf("records=%d want %d", len(records), tc.wantCount)
			}
		})
	}
}

func TestInfo_EmptySnapshotIsArray(t *testing.T) {
	now := time.Now()
	devices := &mockDevices{snap: models.DeviceSnapshot{CapturedAt: now, StaleAfter: now.Add(time.Minute)}}
	r := newTestRouter(&service.Service{Devices: devices})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Fatalf("body=%s want []", got)
	}
}

func TestCommands(t *testing.T) {
	const dev = "enterprises/p/devices/d1"

	cases := []struct {
		name       string
		path       string
		body       string
		res        models.CommandResult
		wantCode   int
		wantMethod string
		wantArgs   []any
	}{
		{
			name:       "set heat",
			path:       "/set_heat",
			body:       `{"deviceID":"` + dev + `","heatCelsius":21.5}`,
			res:        models.CommandResult{Success: true},
			wantCode:   http.StatusOK,
			wantMethod: "SetHeat",
			wantArgs:   []any{21.5},
		},
		{
			name:       "set heat to zero",
			path:       "/set_heat",
			body:       `{"deviceID":"` + dev + `","heatCelsius":0}`,
			res:        models.CommandResult{Success: true},
			wantCode:   http.StatusOK,
			wantMethod: "SetHeat",
			wantArgs:   []any{0.0},
		},
		{
			name:     "set heat missing value",
			path:     "/set_heat",
			body:     `{"deviceID":"` + dev + `"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:       "set range",
			path:       "/set_range",
			body:       `{"deviceID":"` + dev + `","heatCelsius":19,"coolCelsius":24}`,
			res:        models.CommandResult{Success: true},
			wantCode:   http.StatusOK,
			wantMethod: "SetRange",
			wantArgs:   []any{19.0, 24.0},
		},
		{
			name:       "set temp mode",
			path:       "/set_temp_mode",
			body:       `{"deviceID":"` + dev + `","tempMode":"HEATCOOL"}`,
			res:        models.CommandResult{Success: true},
			wantCode:   http.StatusOK,
			wantMethod: "SetTempMode",
			wantArgs:   []any{models.TempModeHeatCool},
		},
		{
			name:     "set temp mode unknown",
			path:     "/set_temp_mode",
			body:     `{"deviceID":"` + dev + `","tempMode":"AUTO"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:       "set eco mode",
			path:       "/set_eco_mode",
			body:       `{"deviceID":"` + dev + `","ecoMode":"MANUAL_ECO"}`,
			res:        models.CommandResult{Success: true},
			wantCode:   http.StatusOK,
			wantMethod: "SetEcoMode",
			wantArgs:   []any{models.EcoModeOn},
		},
		{
			name:       "set fan timer",
			path:       "/set_fan_timer",
			body:       `{"deviceID":"` + dev + `","timerMode":"ON","durationSeconds":900}`,
			res:        models.CommandResult{Success: true},
			wantCode:   http.StatusOK,
			wantMethod: "SetFanTimer",
			wantArgs:   []any{models.FanTimerOn, 900},
		},
		{
			name:       "device rejected command",
			path:       "/set_cool",
			body:       `{"deviceID":"` + dev + `","coolCelsius":10}`,
			res:        models.CommandResult{HTTPCode: http.StatusBadRequest, Error: "Cool value is out of range"},
			wantCode:   http.StatusBadRequest,
			wantMethod: "SetCool",
			wantArgs:   []any{10.0},
		},
		{
			name:       "upstream failure",
			path:       "/set_cool",
			body:       `{"deviceID":"` + dev + `","coolCelsius":23}`,
			res:        models.CommandResult{HTTPCode: http.StatusBadGateway, Error: "bad gateway"},
			wantCode:   http.StatusInternalServerError,
			wantMethod: "SetCool",
			wantArgs:   []any{23.0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmds := &mockCommands{res: tc.res}
			r := newTestRouter(&service.Service{Commands: cmds})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if cmds.lastMethod != tc.wantMethod {
				t.Fatalf("method=%q want %q", cmds.lastMethod, tc.wantMethod)
			}
			if tc.wantMethod == "" {
				return
			}
			if cmds.lastDeviceID != dev {
				t.Fatalf("device=%q", cmds.lastDeviceID)
			}
			if len(cmds.lastArgs) != len(tc.wantArgs) {
				t.Fatalf("args=%v want %v", cmds.lastArgs, tc.wantArgs)
			}
			for i := range tc.wantArgs {
				if cmds.lastArgs[i] != tc.wantArgs[i] {
					t.Fatalf("arg %d=%v want %v", i, cmds.lastArgs[i], tc.wantArgs[i])
				}
			}

			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if tc.wantCode == http.StatusOK {
				if body["success"] != true || body["message"] == "" {
					t.Fatalf("unexpected success body: %s", w.Body.String())
				}
			} else if body["error"] != tc.res.Error {
				t.Fatalf("error=%v want %q", body["error"], tc.res.Error)
			}
		})
	}
}

func TestCommands_RequireTokenWhenConfigured(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	cmds := &mockCommands{res: models.CommandResult{Success: true}}
	r := newTestRouterWith(&service.Service{Commands: cmds, Authorization: auth}, nil, Options{AuthRequired: true})

	body := `{"deviceID":"d1","ecoMode":"OFF"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/set_eco_mode", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status=%d", w.Code)
	}
	if cmds.lastMethod != "" {
		t.Fatalf("command ran without a token")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/set_eco_mode", bytes.NewBufferString(body))
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	hub := broadcast.NewHub(nil)
	r := newTestRouterWith(&service.Service{}, hub, Options{})
	hub.Register(newWSSubscriber())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "thermostat_hub_subscribers") {
		t.Fatalf("subscriber gauge missing from /metrics")
	}
}
