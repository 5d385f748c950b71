package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"thermostat_hub/internal/models"
	"thermostat_hub/internal/service"
)

func TestWeather(t *testing.T) {
	t.Run("observation", func(t *testing.T) {
		wx := &mockWeather{data: models.WeatherData{
			ObservationCity:    models.Ptr("New York"),
			CurrentTemperature: models.Ptr(3.3),
		}}
		r := newTestRouter(&service.Service{Weather: wx})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/weather", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var got models.WeatherData
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ObservationCity == nil || *got.ObservationCity != "New York" {
			t.Fatalf("city=%v", got.ObservationCity)
		}
	})

	t.Run("lookup failure", func(t *testing.T) {
		wx := &mockWeather{err: errors.New("weather.gov: status 500")}
		r := newTestRouter(&service.Service{Weather: wx})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/weather", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status=%d", w.Code)
		}
	})
}

func TestSetLatLong(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantCode  int
		wantMoved int
		wantLat   float64
		wantLon   float64
	}{
		{"valid", "?lat=40.7128&long=-74.006", http.StatusOK, 1, 40.7128, -74.006},
		{"missing long", "?lat=40.7", http.StatusBadRequest, 0, 0, 0},
		{"latitude out of range", "?lat=91&long=0", http.StatusBadRequest, 0, 0, 0},
		{"longitude not a number", "?lat=10&long=east", http.StatusBadRequest, 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wx := &mockWeather{}
			r := newTestRouter(&service.Service{Weather: wx})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set_lat_long"+tc.query, nil))
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d", w.Code, tc.wantCode)
			}
			if wx.moved != tc.wantMoved {
				t.Fatalf("SetLocation calls=%d want %d", wx.moved, tc.wantMoved)
			}
			if wx.lastLat != tc.wantLat || wx.lastLon != tc.wantLon {
				t.Fatalf("location=(%v,%v) want (%v,%v)", wx.lastLat, wx.lastLon, tc.wantLat, tc.wantLon)
			}
			if tc.wantCode == http.StatusOK && w.Body.String() != "Latitude and Longitude have been updated." {
				t.Fatalf("body=%q", w.Body.String())
			}
		})
	}
}
