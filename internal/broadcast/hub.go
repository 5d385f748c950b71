// Package broadcast fans messages out to every connected subscriber.
package broadcast

import (
	"fmt"
	"sync"

	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/metrics"
	"thermostat_hub/internal/models"

	"github.com/goccy/go-json"
)

// Subscriber receives serialized messages. Send must not block for long; a
// slow or broken subscriber only affects itself.
type Subscriber interface {
	ID() string
	Send(payload []byte) error
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
	log  *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{subs: make(map[string]Subscriber), log: log}
}

func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s.ID()] = s
	n := len(h.subs)
	h.mu.Unlock()
	metrics.Subscribers.Set(float64(n))
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	n := len(h.subs)
	h.mu.Unlock()
	metrics.Subscribers.Set(float64(n))
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Encode builds the wire form of a message.
func Encode(msgType string, data any) ([]byte, error) {
	return json.Marshal(models.Message{Type: msgType, Data: data})
}

// Broadcast serializes the message once and delivers it to every subscriber
// registered at call time. It returns the number of successful deliveries.
func (h *Hub) Broadcast(msgType string, data any) int {
	payload, err := Encode(msgType, data)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("broadcast_encode_failed", "type", msgType, "err", err)
		}
		return 0
	}

	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := h.deliver(s, payload); err != nil {
			metrics.BroadcastDeliveries.WithLabelValues("error").Inc()
			if h.log != nil {
				h.log.Warnw("broadcast_delivery_failed", "subscriber", s.ID(), "type", msgType, "err", err)
			}
			continue
		}
		metrics.BroadcastDeliveries.WithLabelValues("ok").Inc()
		delivered++
	}
	return delivered
}

func (h *Hub) deliver(s Subscriber, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return s.Send(payload)
}
