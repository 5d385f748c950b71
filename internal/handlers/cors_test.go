package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"thermostat_hub/internal/service"
)

func TestOriginAllowed(t *testing.T) {
	cases := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"example.com"}, "", true},
		{"empty list allows all", nil, "https://anything.io", true},
		{"localhost always", []string{"example.com"}, "http://localhost:3000", true},
		{"configured substring", []string{"example.com"}, "https://app.example.com", true},
		{"not configured", []string{"example.com"}, "https://evil.io", false},
		{"blank entries ignored", []string{""}, "https://evil.io", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := originAllowed(tc.origins)(nil, tc.origin); got != tc.want {
				t.Fatalf("originAllowed(%v)(%q)=%v want %v", tc.origins, tc.origin, got, tc.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := newTestRouterWith(&service.Service{}, nil, Options{CORSOrigins: []string{"example.com"}})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/set_heat", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Fatalf("allow-origin=%q", got)
		}
	})

	t.Run("simple request from other origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.io")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow-origin=%q want empty", got)
		}
	})
}
