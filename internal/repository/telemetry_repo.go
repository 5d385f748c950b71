package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"thermostat_hub/internal/models"

	"github.com/google/uuid"
)

type TelemetrySQLite struct {
	db *sql.DB
}

func NewTelemetrySQLite(db *sql.DB) *TelemetrySQLite { return &TelemetrySQLite{db: db} }

var _ TelemetryRepo = (*TelemetrySQLite)(nil)

const (
	insertSampleSQL = `
		INSERT INTO telemetry_samples (
			id, sampled_at, device_id, device_name, temp_units, temp_mode, hvac_status, fan_mode, eco_mode,
			indoor_temp_c, heat_c, cool_c, eco_heat_c, eco_cool_c, fan_seconds_left,
			indoor_humidity, outdoor_temp_c, outdoor_humidity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectSamplesSQL = `SELECT id, sampled_at, device_id, device_name, temp_units, temp_mode, hvac_status, fan_mode, eco_mode, ` +
		`indoor_temp_c, heat_c, cool_c, eco_heat_c, eco_cool_c, fan_seconds_left, indoor_humidity, outdoor_temp_c, outdoor_humidity ` +
		`FROM telemetry_samples`
)

// AppendBatch stores all samples of one tick in a single transaction. Missing
// ids and timestamps are filled in.
func (r *TelemetrySQLite) AppendBatch(ctx context.Context, samples []models.TelemetrySample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin telemetry tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range samples {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.SampledAt.IsZero() {
			s.SampledAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx, insertSampleSQL,
			s.ID,
			s.SampledAt.UTC(),
			s.DeviceID,
			s.DeviceName,
			int(s.TempUnits),
			string(s.TempMode),
			string(s.HvacStatus),
			s.FanMode,
			string(s.EcoMode),
			s.IndoorTempCelsius,
			s.HeatCelsius,
			s.CoolCelsius,
			s.EcoHeatCelsius,
			s.EcoCoolCelsius,
			s.FanSecondsLeft,
			s.IndoorHumidity,
			s.OutdoorTempCelsius,
			s.OutdoorHumidity,
		); err != nil {
			return fmt.Errorf("insert telemetry sample for %q: %w", s.DeviceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit telemetry tx: %w", err)
	}
	return nil
}

// List returns samples in [from, to] (either bound optional), optionally for a
// single device, oldest first.
func (r *TelemetrySQLite) List(ctx context.Context, from, to time.Time, deviceID string) ([]models.TelemetrySample, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "sampled_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "sampled_at <= ?")
		args = append(args, to.UTC())
	}
	if deviceID = strings.TrimSpace(deviceID); deviceID != "" {
		conds = append(conds, "device_id = ?")
		args = append(args, deviceID)
	}

	q := selectSamplesSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY sampled_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query telemetry: %w", err)
	}
	defer rows.Close()

	out := make([]models.TelemetrySample, 0, 64)
	for rows.Next() {
		var (
			s                          models.TelemetrySample
			units                      int
			mode, hvac, fanMode, ecoMd string
		)
		if err := rows.Scan(
			&s.ID, &s.SampledAt, &s.DeviceID, &s.DeviceName, &units, &mode, &hvac, &fanMode, &ecoMd,
			&s.IndoorTempCelsius, &s.HeatCelsius, &s.CoolCelsius, &s.EcoHeatCelsius, &s.EcoCoolCelsius,
			&s.FanSecondsLeft, &s.IndoorHumidity, &s.OutdoorTempCelsius, &s.OutdoorHumidity,
		); err != nil {
			return nil, fmt.Errorf("scan telemetry: %w", err)
		}
		s.SampledAt = s.SampledAt.UTC()
		s.TempUnits = models.TempUnits(units)
		s.TempMode = models.TempMode(mode)
		s.HvacStatus = models.HvacStatus(hvac)
		s.FanMode = fanMode
		s.EcoMode = models.EcoMode(ecoMd)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
