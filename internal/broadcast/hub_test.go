package broadcast

import (
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

type fakeSub struct {
	id    string
	err   error
	panic bool

	mu  sync.Mutex
	got [][]byte
}

func (f *fakeSub) ID() string { return f.id }

func (f *fakeSub) Send(p []byte) error {
	if f.panic {
		panic("socket gone")
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.got = append(f.got, p)
	f.mu.Unlock()
	return nil
}

func (f *fakeSub) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}

func TestBroadcast_FailingSubscriberIsIsolated(t *testing.T) {
	tests := []struct {
		name   string
		broken *fakeSub
	}{
		{"send error", &fakeSub{id: "b", err: errors.New("closed")}},
		{"send panic", &fakeSub{id: "b", panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHub(nil)
			a, c := &fakeSub{id: "a"}, &fakeSub{id: "c"}
			h.Register(a)
			h.Register(tt.broken)
			h.Register(c)

			n := h.Broadcast("statusUpdate", map[string]string{"message": "hi"})
			if n != 2 {
				t.Fatalf("delivered = %d, want 2", n)
			}
			for _, s := range []*fakeSub{a, c} {
				if len(s.received()) != 1 {
					t.Fatalf("subscriber %s got %d messages", s.id, len(s.received()))
				}
			}
		})
	}
}

func TestBroadcast_SerializesOnce(t *testing.T) {
	h := NewHub(nil)
	a, b := &fakeSub{id: "a"}, &fakeSub{id: "b"}
	h.Register(a)
	h.Register(b)

	h.Broadcast("tempUpdate", map[string]int{"x": 1})

	pa, pb := a.received()[0], b.received()[0]
	if &pa[0] != &pb[0] {
		t.Fatalf("expected the same encoded buffer for every subscriber")
	}
	var env struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(pa, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != "tempUpdate" || env.Data["x"] != 1 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub(nil)
	h.Register(&fakeSub{id: "a"})
	h.Register(&fakeSub{id: "b"})
	h.Unregister("a")
	if h.Count() != 1 {
		t.Fatalf("count = %d", h.Count())
	}
	if n := h.Broadcast("statusUpdate", nil); n != 1 {
		t.Fatalf("delivered = %d", n)
	}
}
