package service

import (
	"context"
	"sync/atomic"
	"time"

	"thermostat_hub/internal/exclusive"
	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/metrics"
	"thermostat_hub/internal/models"
	"thermostat_hub/internal/sdm"
)

const DefaultCacheTTL = 600 * time.Second

type DeviceOptions struct {
	TTL       time.Duration
	Demo      bool
	DemoDelay time.Duration
}

// DeviceService owns the device snapshot. Every mutation happens while holding
// the coordinator; readers load the current snapshot without locking and must
// treat it as read-only.
type DeviceService struct {
	lister DeviceLister
	coord  *exclusive.Coordinator
	pub    Publisher
	opts   DeviceOptions
	log    *logger.Logger
	now    func() time.Time

	current atomic.Pointer[models.DeviceSnapshot]
}

func NewDeviceService(lister DeviceLister, coord *exclusive.Coordinator, pub Publisher, opts DeviceOptions, log *logger.Logger) *DeviceService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	s := &DeviceService{
		lister: lister,
		coord:  coord,
		pub:    pub,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
	s.current.Store(&models.DeviceSnapshot{})
	return s
}

// Snapshot returns the installed snapshot without refreshing.
func (s *DeviceService) Snapshot() models.DeviceSnapshot {
	return *s.current.Load()
}

// GetOrRefresh serves the cached snapshot while it is fresh and otherwise
// replaces it from the remote listing. On failure the previous snapshot is
// returned together with the error and stays installed.
func (s *DeviceService) GetOrRefresh(ctx context.Context, forceFlush bool) (models.DeviceSnapshot, error) {
	snap, err := exclusive.Do(ctx, s.coord, func(ctx context.Context) (models.DeviceSnapshot, error) {
		return s.getOrRefreshLocked(ctx, forceFlush)
	})
	if err != nil {
		return s.Snapshot(), err
	}
	return snap, nil
}

func (s *DeviceService) getOrRefreshLocked(ctx context.Context, forceFlush bool) (models.DeviceSnapshot, error) {
	cur := s.Snapshot()
	now := s.now()
	if !forceFlush && cur.Populated() && !cur.Stale(now) {
		metrics.RefreshTotal.WithLabelValues("hit").Inc()
		return cur, nil
	}

	start := time.Now()
	records, err := s.fetch(ctx)
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		if s.log != nil {
			s.log.Errorw("device_refresh_failed", "err", err, "force", forceFlush)
		}
		return cur, err
	}

	now = s.now()
	next := models.DeviceSnapshot{
		Records:    records,
		CapturedAt: now,
		StaleAfter: now.Add(s.opts.TTL),
	}
	s.install(next)
	metrics.RefreshTotal.WithLabelValues("refreshed").Inc()
	if s.log != nil {
		s.log.Debugw("device_refresh_ok", "devices", len(records), "stale_after", next.StaleAfter)
	}
	return next, nil
}

// install swaps in a new snapshot and announces it. Callers hold the coordinator.
func (s *DeviceService) install(next models.DeviceSnapshot) {
	s.current.Store(&next)
	if s.pub != nil {
		s.pub.Broadcast(models.MessageTempUpdate, models.TempUpdate{TempData: next.Records})
	}
}

func (s *DeviceService) fetch(ctx context.Context) ([]models.DeviceRecord, error) {
	if s.opts.Demo {
		if s.opts.DemoDelay > 0 {
			t := time.NewTimer(s.opts.DemoDelay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
		return demoRecords(), nil
	}

	devices, err := s.lister.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]models.DeviceRecord, 0, len(devices))
	for _, d := range devices {
		records = append(records, s.buildRecord(d))
	}
	return records, nil
}

// buildRecord starts from defaults and applies every trait the device reports.
// A missing or unreadable trait is logged and leaves its fields at their defaults.
func (s *DeviceService) buildRecord(d sdm.Device) models.DeviceRecord {
	rec := models.NewDeviceRecord(d.ID())
	for _, rule := range traitTable {
		raw, ok := d.Traits[rule.trait]
		if !ok {
			if s.log != nil {
				s.log.Warnw("device_trait_missing", "device_id", rec.DeviceID, "trait", rule.trait)
			}
			continue
		}
		fields, err := decodeTrait(raw)
		if err == nil {
			next := rec.Clone()
			if err = rule.apply(&next, fields); err == nil {
				rec = next
				continue
			}
		}
		if s.log != nil {
			s.log.Warnw("device_trait_invalid", "device_id", rec.DeviceID, "trait", rule.trait, "err", err)
		}
	}
	return rec
}

func demoRecords() []models.DeviceRecord {
	return []models.DeviceRecord{
		{
			DeviceID:           "DEMO1",
			DeviceName:         models.Ptr("My Demo Thermostat"),
			Connectivity:       models.Online,
			TempMode:           models.TempModeHeatCool,
			HvacStatus:         models.HvacOff,
			EcoMode:            models.EcoModeOff,
			HeatCelsius:        models.Ptr(18.888889),
			CoolCelsius:        models.Ptr(22.222222),
			EcoHeatCelsius:     models.Ptr(12.777778),
			EcoCoolCelsius:     models.Ptr(27.777778),
			AmbientTempCelsius: models.Ptr(20.0),
			AmbientHumidity:    models.Ptr(52.0),
			TempUnits:          models.Fahrenheit,
		},
		{
			DeviceID:           "DEMO2",
			DeviceName:         models.Ptr("My Other Thermostat"),
			Connectivity:       models.Online,
			TempMode:           models.TempModeCool,
			HvacStatus:         models.HvacCooling,
			EcoMode:            models.EcoModeOff,
			CoolCelsius:        models.Ptr(21.111111),
			EcoHeatCelsius:     models.Ptr(13.888889),
			EcoCoolCelsius:     models.Ptr(26.666667),
			AmbientTempCelsius: models.Ptr(22.222222),
			AmbientHumidity:    models.Ptr(39.0),
			TempUnits:          models.Celsius,
		},
	}
}
