package models

import "time"

// Fan modes recorded in telemetry.
const (
	FanModeOn   = "ON"
	FanModeOff  = "OFF"
	FanModeAuto = "AUTO"
)

// TelemetrySample is one logged row for one device.
type TelemetrySample struct {
	ID                 string     `json:"id"`
	SampledAt          time.Time  `json:"sampled_at"`
	DeviceID           string     `json:"device_id"`
	DeviceName         string     `json:"device_name"`
	TempUnits          TempUnits  `json:"temp_units"`
	TempMode           TempMode   `json:"temp_mode"`
	HvacStatus         HvacStatus `json:"hvac_status"`
	FanMode            string     `json:"fan_mode"`
	EcoMode            EcoMode    `json:"eco_mode"`
	IndoorTempCelsius  float64    `json:"indoor_temp_c"`
	HeatCelsius        float64    `json:"heat_c"`
	CoolCelsius        float64    `json:"cool_c"`
	EcoHeatCelsius     float64    `json:"eco_heat_c"`
	EcoCoolCelsius     float64    `json:"eco_cool_c"`
	FanSecondsLeft     int        `json:"fan_seconds_left"`
	IndoorHumidity     float64    `json:"indoor_humidity"`
	OutdoorTempCelsius float64    `json:"outdoor_temp_c"`
	OutdoorHumidity    float64    `json:"outdoor_humidity"`
}
