package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"thermostat_hub/internal/broadcast"
	"thermostat_hub/internal/models"
	"thermostat_hub/internal/service"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, s *service.Service, hub *broadcast.Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestRouterWith(s, hub, Options{}))
	t.Cleanup(srv.Close)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_GreetingSnapshotAndBroadcast(t *testing.T) {
	hub := broadcast.NewHub(nil)
	devices := &mockDevices{snap: populatedSnapshot()}
	conn := dialWS(t, &service.Service{Devices: devices}, hub)

	env := readEnvelope(t, conn)
	if env.Type != models.MessageStatusUpdate {
		t.Fatalf("first frame type=%q", env.Type)
	}
	var status models.StatusUpdate
	if err := json.Unmarshal(env.Data, &status); err != nil || status.Message != "Connected" {
		t.Fatalf("status=%+v err=%v", status, err)
	}

	env = readEnvelope(t, conn)
	if env.Type != models.MessageTempUpdate {
		t.Fatalf("second frame type=%q", env.Type)
	}
	var temp models.TempUpdate
	if err := json.Unmarshal(env.Data, &temp); err != nil {
		t.Fatalf("unmarshal tempUpdate: %v", err)
	}
	if len(temp.TempData) != 1 || temp.TempData[0].DeviceID != "enterprises/p/devices/d1" {
		t.Fatalf("tempData=%+v", temp.TempData)
	}

	if hub.Count() != 1 {
		t.Fatalf("subscribers=%d want 1", hub.Count())
	}
	if n := hub.Broadcast(models.MessageWeatherUpdate, models.WeatherUpdate{
		WeatherData: models.WeatherData{ObservationCity: models.Ptr("Boston")},
	}); n != 1 {
		t.Fatalf("delivered=%d want 1", n)
	}

	env = readEnvelope(t, conn)
	if env.Type != models.MessageWeatherUpdate {
		t.Fatalf("broadcast frame type=%q", env.Type)
	}
}

func TestWebSocket_NoSnapshotSendsOnlyGreeting(t *testing.T) {
	hub := broadcast.NewHub(nil)
	conn := dialWS(t, &service.Service{Devices: &mockDevices{}}, hub)

	if env := readEnvelope(t, conn); env.Type != models.MessageStatusUpdate {
		t.Fatalf("first frame type=%q", env.Type)
	}

	hub.Broadcast(models.MessageErrorUpdate, models.ErrorUpdate{ErrorMessage: "boom"})
	if env := readEnvelope(t, conn); env.Type != models.MessageErrorUpdate {
		t.Fatalf("next frame type=%q, want errorUpdate", env.Type)
	}
}

func TestWebSocket_UnregistersOnClose(t *testing.T) {
	hub := broadcast.NewHub(nil)
	conn := dialWS(t, &service.Service{Devices: &mockDevices{}}, hub)
	readEnvelope(t, conn)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWSSubscriber_SendDoesNotBlock(t *testing.T) {
	sub := newWSSubscriber()
	for i := 0; i < sendBuffer; i++ {
		if err := sub.Send([]byte("x")); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := sub.Send([]byte("x")); err != errSubscriberFull {
		t.Fatalf("err=%v want errSubscriberFull", err)
	}
	sub.close()
	<-sub.out
	if err := sub.Send([]byte("x")); err == nil {
		t.Fatalf("send after close succeeded")
	}
}
