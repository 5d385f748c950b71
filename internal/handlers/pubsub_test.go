package handlers

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"thermostat_hub/internal/service"
)

const testPushToken = "push-secret"

func pushEnvelope(event string) string {
	return `{"message":{"data":"` + base64.StdEncoding.EncodeToString([]byte(event)) +
		`","messageId":"42"},"subscription":"projects/p/subscriptions/s"}`
}

func TestPubsubPush(t *testing.T) {
	event := `{"resourceUpdate":{"name":"enterprises/p/devices/d1","traits":{}}}`
	valid := pushEnvelope(event)

	cases := []struct {
		name      string
		body      string
		wantCalls int
	}{
		{"valid envelope", valid, 1},
		{"not json", `nope`, 0},
		{"missing data", `{"message":{"messageId":"1"}}`, 0},
		{"data not base64", `{"message":{"data":"%%%"}}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := &mockEvents{}
			r := newTestRouterWith(&service.Service{Events: events}, nil, Options{PushToken: testPushToken})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/pubsub/push?token="+testPushToken, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Fatalf("status=%d want 204", w.Code)
			}
			if len(events.payloads) != tc.wantCalls {
				t.Fatalf("HandleEvent calls=%d want %d", len(events.payloads), tc.wantCalls)
			}
			if tc.wantCalls == 1 && string(events.payloads[0]) != event {
				t.Fatalf("payload=%s", events.payloads[0])
			}
		})
	}
}

func TestPubsubPush_RequiresToken(t *testing.T) {
	body := pushEnvelope(`{"resourceUpdate":{"name":"enterprises/p/devices/d1","traits":{}}}`)

	cases := []struct {
		name      string
		token     string
		query     string
		wantCode  int
		wantCalls int
	}{
		{"missing token", testPushToken, "", http.StatusUnauthorized, 0},
		{"wrong token", testPushToken, "?token=guess", http.StatusUnauthorized, 0},
		{"token prefix", testPushToken, "?token=push", http.StatusUnauthorized, 0},
		{"matching token", testPushToken, "?token=" + testPushToken, http.StatusNoContent, 1},
		{"route disabled without configured token", "", "?token=", http.StatusNotFound, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := &mockEvents{}
			r := newTestRouterWith(&service.Service{Events: events}, nil, Options{PushToken: tc.token})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/pubsub/push"+tc.query, bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d", w.Code, tc.wantCode)
			}
			if len(events.payloads) != tc.wantCalls {
				t.Fatalf("HandleEvent calls=%d want %d", len(events.payloads), tc.wantCalls)
			}
		})
	}
}
