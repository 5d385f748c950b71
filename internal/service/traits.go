package service

import (
	"fmt"
	"time"

	"thermostat_hub/internal/models"
	"thermostat_hub/internal/sdm"

	"github.com/goccy/go-json"
)

// traitFields is one decoded trait object, e.g. {"mode":"COOL"}.
type traitFields map[string]json.RawMessage

// traitRule maps one remote trait onto record fields. apply only touches the
// fields whose keys are present in f.
type traitRule struct {
	trait string
	apply func(rec *models.DeviceRecord, f traitFields) error
}

// traitTable is evaluated in order for both full refreshes and pushed events.
// ThermostatMode runs before the setpoint trait so an event carrying both a
// mode switch and a new setpoint keeps the new setpoint.
var traitTable = []traitRule{
	{sdm.TraitInfo, func(rec *models.DeviceRecord, f traitFields) error {
		return setOptionalString(f, "customName", &rec.DeviceName)
	}},
	{sdm.TraitHumidity, func(rec *models.DeviceRecord, f traitFields) error {
		return setFloat(f, "ambientHumidityPercent", &rec.AmbientHumidity)
	}},
	{sdm.TraitConnectivity, func(rec *models.DeviceRecord, f traitFields) error {
		return setEnum(f, "status", &rec.Connectivity)
	}},
	{sdm.TraitFan, applyFan},
	{sdm.TraitMode, applyMode},
	{sdm.TraitEco, func(rec *models.DeviceRecord, f traitFields) error {
		if err := setEnum(f, "mode", &rec.EcoMode); err != nil {
			return err
		}
		if err := setFloat(f, "heatCelsius", &rec.EcoHeatCelsius); err != nil {
			return err
		}
		return setFloat(f, "coolCelsius", &rec.EcoCoolCelsius)
	}},
	{sdm.TraitHvac, func(rec *models.DeviceRecord, f traitFields) error {
		return setEnum(f, "status", &rec.HvacStatus)
	}},
	{sdm.TraitSettings, applySettings},
	{sdm.TraitSetpoint, func(rec *models.DeviceRecord, f traitFields) error {
		if err := setFloat(f, "heatCelsius", &rec.HeatCelsius); err != nil {
			return err
		}
		return setFloat(f, "coolCelsius", &rec.CoolCelsius)
	}},
	{sdm.TraitTemperature, func(rec *models.DeviceRecord, f traitFields) error {
		return setFloat(f, "ambientTemperatureCelsius", &rec.AmbientTempCelsius)
	}},
}

// applyMode also clears setpoints the new mode does not use.
func applyMode(rec *models.DeviceRecord, f traitFields) error {
	if _, ok := f["mode"]; !ok {
		return nil
	}
	if err := setEnum(f, "mode", &rec.TempMode); err != nil {
		return err
	}
	switch rec.TempMode {
	case models.TempModeCool:
		rec.HeatCelsius = nil
	case models.TempModeHeat:
		rec.CoolCelsius = nil
	case models.TempModeOff:
		rec.HeatCelsius = nil
		rec.CoolCelsius = nil
	}
	return nil
}

// applyFan needs timerMode. OFF clears the deadline, ON takes timerTimeout when
// it is present and otherwise keeps the current deadline.
func applyFan(rec *models.DeviceRecord, f traitFields) error {
	var mode models.FanTimerMode
	if _, ok := f["timerMode"]; !ok {
		return nil
	}
	if err := setEnum(f, "timerMode", &mode); err != nil {
		return err
	}
	if mode == models.FanTimerOff {
		rec.FanTimer = nil
		return nil
	}
	raw, ok := f["timerTimeout"]
	if !ok {
		return nil
	}
	var ts *string
	if err := json.Unmarshal(raw, &ts); err != nil {
		return fmt.Errorf("timerTimeout: %w", err)
	}
	if ts == nil {
		rec.FanTimer = nil
		return nil
	}
	deadline, err := time.Parse(time.RFC3339Nano, *ts)
	if err != nil {
		return fmt.Errorf("timerTimeout: %w", err)
	}
	rec.FanTimer = &deadline
	return nil
}

func applySettings(rec *models.DeviceRecord, f traitFields) error {
	raw, ok := f["temperatureScale"]
	if !ok {
		return nil
	}
	var scale string
	if err := json.Unmarshal(raw, &scale); err != nil {
		return fmt.Errorf("temperatureScale: %w", err)
	}
	switch scale {
	case models.ScaleCelsius:
		rec.TempUnits = models.Celsius
	case models.ScaleFahrenheit:
		rec.TempUnits = models.Fahrenheit
	default:
		return fmt.Errorf("temperatureScale: unknown value %q", scale)
	}
	return nil
}

type enum interface {
	~string
	Valid() bool
}

func setEnum[T enum](f traitFields, key string, dst *T) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if !v.Valid() {
		return fmt.Errorf("%s: unknown value %q", key, string(v))
	}
	*dst = v
	return nil
}

// setFloat stores a number, or nil for an explicit JSON null.
func setFloat(f traitFields, key string, dst **float64) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

// setOptionalString treats null and "" alike as unknown.
func setOptionalString(f traitFields, key string, dst **string) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if v != nil && *v == "" {
		v = nil
	}
	*dst = v
	return nil
}

func decodeTrait(raw json.RawMessage) (traitFields, error) {
	var f traitFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f, nil
}
