package service

import (
	"testing"

	"thermostat_hub/internal/models"
	"thermostat_hub/internal/sdm"
)

func ruleFor(t *testing.T, trait string) traitRule {
	t.Helper()
	for _, r := range traitTable {
		if r.trait == trait {
			return r
		}
	}
	t.Fatalf("no rule for %s", trait)
	return traitRule{}
}

func TestTraitTable_ModeBeforeSetpoint(t *testing.T) {
	mode, setpoint := -1, -1
	for i, r := range traitTable {
		switch r.trait {
		case sdm.TraitMode:
			mode = i
		case sdm.TraitSetpoint:
			setpoint = i
		}
	}
	if mode < 0 || setpoint < 0 || mode > setpoint {
		t.Fatalf("mode at %d, setpoint at %d", mode, setpoint)
	}
}

func TestTraitRules(t *testing.T) {
	tests := []struct {
		name  string
		trait string
		body  string
		check func(r models.DeviceRecord) bool
	}{
		{"empty name is unknown", sdm.TraitInfo, `{"customName":""}`,
			func(r models.DeviceRecord) bool { return r.DeviceName == nil }},
		{"null humidity", sdm.TraitHumidity, `{"ambientHumidityPercent":null}`,
			func(r models.DeviceRecord) bool { return r.AmbientHumidity == nil }},
		{"celsius scale", sdm.TraitSettings, `{"temperatureScale":"CELSIUS"}`,
			func(r models.DeviceRecord) bool { return r.TempUnits == models.Celsius }},
		{"eco values", sdm.TraitEco, `{"mode":"MANUAL_ECO","heatCelsius":10,"coolCelsius":30}`,
			func(r models.DeviceRecord) bool {
				return r.EcoMode == models.EcoModeOn && *r.EcoHeatCelsius == 10 && *r.EcoCoolCelsius == 30
			}},
		{"fan without timerMode is ignored", sdm.TraitFan, `{"timerTimeout":"2024-03-01T09:00:00Z"}`,
			func(r models.DeviceRecord) bool { return r.FanTimer == nil }},
		{"offline", sdm.TraitConnectivity, `{"status":"OFFLINE"}`,
			func(r models.DeviceRecord) bool { return r.Connectivity == models.Offline }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.NewDeviceRecord("T1")
			rec.DeviceName = models.Ptr("before")
			rec.AmbientHumidity = models.Ptr(50.0)
			rec.TempUnits = models.Fahrenheit
			rec.Connectivity = models.Online

			f, err := decodeTrait([]byte(tt.body))
			if err != nil {
				t.Fatalf("decodeTrait: %v", err)
			}
			if err := ruleFor(t, tt.trait).apply(&rec, f); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !tt.check(rec) {
				t.Fatalf("record = %+v", rec)
			}
		})
	}
}
