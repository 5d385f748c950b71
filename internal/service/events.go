package service

import (
	"context"
	"fmt"

	"thermostat_hub/internal/exclusive"
	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/metrics"
	"thermostat_hub/internal/sdm"

	"github.com/goccy/go-json"
)

// MergeError means a pushed event was malformed or could not be mapped. The
// snapshot is never touched when one is returned.
type MergeError struct {
	DeviceID string
	Message  string
	Err      error
}

func (e *MergeError) Error() string {
	msg := "merge event: " + e.Message
	if e.DeviceID != "" {
		msg += " (device " + e.DeviceID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MergeError) Unwrap() error { return e.Err }

// changeEvent is the envelope of a device change notification:
//
//	{"timestamp": "...", "resourceUpdate": {"name": "enterprises/p/devices/id", "traits": {...}}}
type changeEvent struct {
	Timestamp      string `json:"timestamp"`
	ResourceUpdate *struct {
		Name   *string                    `json:"name"`
		Traits map[string]json.RawMessage `json:"traits"`
	} `json:"resourceUpdate"`
}

type EventService struct {
	devices *DeviceService
	log     *logger.Logger
}

func NewEventService(devices *DeviceService, log *logger.Logger) *EventService {
	return &EventService{devices: devices, log: log}
}

// ApplyEvent merges one change event into a copy of the snapshot and installs
// it. An event for a device that is not in the snapshot reports
// needsFullRefresh and changes nothing.
func (s *EventService) ApplyEvent(ctx context.Context, payload []byte) (bool, error) {
	deviceID, traits, err := parseChangeEvent(payload)
	if err != nil {
		return false, err
	}

	return exclusive.Do(ctx, s.devices.coord, func(context.Context) (bool, error) {
		cur := s.devices.Snapshot()
		idx := cur.Index(deviceID)
		if idx < 0 {
			return true, nil
		}

		next := cur.Clone()
		rec := &next.Records[idx]
		for _, rule := range traitTable {
			raw, ok := traits[rule.trait]
			if !ok {
				continue
			}
			fields, err := decodeTrait(raw)
			if err != nil {
				return false, &MergeError{DeviceID: deviceID, Message: "decode " + rule.trait, Err: err}
			}
			if err := rule.apply(rec, fields); err != nil {
				return false, &MergeError{DeviceID: deviceID, Message: "apply " + rule.trait, Err: err}
			}
		}

		s.devices.install(next)
		return false, nil
	})
}

// HandleEvent is the subscription entry point. It never fails: bad events are
// logged and dropped, and unknown devices trigger a forced refresh.
func (s *EventService) HandleEvent(ctx context.Context, payload []byte) {
	needsRefresh, err := s.ApplyEvent(ctx, payload)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("dropped").Inc()
		if s.log != nil {
			s.log.Warnw("event_dropped", "err", err, "payload_bytes", len(payload))
		}
		return
	}
	if !needsRefresh {
		metrics.EventsTotal.WithLabelValues("merged").Inc()
		return
	}

	metrics.EventsTotal.WithLabelValues("full_refresh").Inc()
	if s.log != nil {
		s.log.Infow("event_unknown_device")
	}
	if _, err := s.devices.GetOrRefresh(ctx, true); err != nil && s.log != nil {
		s.log.Errorw("event_full_refresh_failed", "err", err)
	}
}

func parseChangeEvent(payload []byte) (string, map[string]json.RawMessage, error) {
	var ev changeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", nil, &MergeError{Message: "payload is not a JSON object", Err: err}
	}
	switch {
	case ev.ResourceUpdate == nil:
		return "", nil, &MergeError{Message: "missing resourceUpdate"}
	case ev.ResourceUpdate.Name == nil:
		return "", nil, &MergeError{Message: "missing resourceUpdate.name"}
	case ev.ResourceUpdate.Traits == nil:
		return "", nil, &MergeError{Message: "missing resourceUpdate.traits"}
	}
	id := sdm.DeviceID(*ev.ResourceUpdate.Name)
	if id == "" {
		return "", nil, &MergeError{Message: fmt.Sprintf("no device id in %q", *ev.ResourceUpdate.Name)}
	}
	return id, ev.ResourceUpdate.Traits, nil
}

var (
	_ Events  = (*EventService)(nil)
	_ Devices = (*DeviceService)(nil)
)
