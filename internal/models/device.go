package models

import "time"

// TempMode is the HVAC mode of a thermostat.
type TempMode string

const (
	TempModeHeat     TempMode = "HEAT"
	TempModeCool     TempMode = "COOL"
	TempModeHeatCool TempMode = "HEATCOOL"
	TempModeOff      TempMode = "OFF"
)

// HvacStatus is what the HVAC equipment is doing right now.
type HvacStatus string

const (
	HvacHeating HvacStatus = "HEATING"
	HvacCooling HvacStatus = "COOLING"
	HvacOff     HvacStatus = "OFF"
)

type EcoMode string

const (
	EcoModeOn  EcoMode = "MANUAL_ECO"
	EcoModeOff EcoMode = "OFF"
)

type Connectivity string

const (
	Online  Connectivity = "ONLINE"
	Offline Connectivity = "OFFLINE"
)

type FanTimerMode string

const (
	FanTimerOn  FanTimerMode = "ON"
	FanTimerOff FanTimerMode = "OFF"
)

// TempUnits is the display unit preference. Serialized as 0 (celsius) or 1 (fahrenheit).
type TempUnits int

const (
	Celsius    TempUnits = 0
	Fahrenheit TempUnits = 1
)

// Temperature scale names used by the remote API.
const (
	ScaleCelsius    = "CELSIUS"
	ScaleFahrenheit = "FAHRENHEIT"
)

func (m TempMode) Valid() bool {
	switch m {
	case TempModeHeat, TempModeCool, TempModeHeatCool, TempModeOff:
		return true
	}
	return false
}

func (s HvacStatus) Valid() bool {
	switch s {
	case HvacHeating, HvacCooling, HvacOff:
		return true
	}
	return false
}

func (m EcoMode) Valid() bool { return m == EcoModeOn || m == EcoModeOff }

func (c Connectivity) Valid() bool { return c == Online || c == Offline }

func (m FanTimerMode) Valid() bool { return m == FanTimerOn || m == FanTimerOff }

// DeviceRecord is one thermostat's state. All temperatures are Celsius.
// Nil pointers mean the value is unknown or not applicable.
type DeviceRecord struct {
	DeviceID           string       `json:"deviceID"`
	DeviceName         *string      `json:"deviceName"`
	Connectivity       Connectivity `json:"connectivity"`
	TempMode           TempMode     `json:"tempMode"`
	HvacStatus         HvacStatus   `json:"hvacStatus"`
	EcoMode            EcoMode      `json:"ecoMode"`
	HeatCelsius        *float64     `json:"heatCelsius"`
	CoolCelsius        *float64     `json:"coolCelsius"`
	EcoHeatCelsius     *float64     `json:"ecoHeatCelsius"`
	EcoCoolCelsius     *float64     `json:"ecoCoolCelsius"`
	AmbientTempCelsius *float64     `json:"ambientTempCelsius"`
	AmbientHumidity    *float64     `json:"ambientHumidity"`
	FanTimer           *time.Time   `json:"fanTimer"` // nil when no fan timer is running
	TempUnits          TempUnits    `json:"tempUnits"`
}

// NewDeviceRecord returns a record with the defaults used before any trait is known.
func NewDeviceRecord(id string) DeviceRecord {
	return DeviceRecord{
		DeviceID:     id,
		Connectivity: Offline,
		TempMode:     TempModeOff,
		HvacStatus:   HvacOff,
		EcoMode:      EcoModeOff,
		TempUnits:    Celsius,
	}
}

// Clone returns a deep copy; the copy shares no pointers with r.
func (r DeviceRecord) Clone() DeviceRecord {
	out := r
	out.DeviceName = clonePtr(r.DeviceName)
	out.HeatCelsius = clonePtr(r.HeatCelsius)
	out.CoolCelsius = clonePtr(r.CoolCelsius)
	out.EcoHeatCelsius = clonePtr(r.EcoHeatCelsius)
	out.EcoCoolCelsius = clonePtr(r.EcoCoolCelsius)
	out.AmbientTempCelsius = clonePtr(r.AmbientTempCelsius)
	out.AmbientHumidity = clonePtr(r.AmbientHumidity)
	out.FanTimer = clonePtr(r.FanTimer)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// DeviceSnapshot is the immutable view of all device records at a point in time.
// Holders must not modify Records; use Clone to derive a new snapshot.
type DeviceSnapshot struct {
	Records    []DeviceRecord `json:"records"`
	CapturedAt time.Time      `json:"capturedAt"`
	StaleAfter time.Time      `json:"staleAfter"`
}

// Populated reports whether the snapshot came from at least one successful refresh.
func (s DeviceSnapshot) Populated() bool { return !s.CapturedAt.IsZero() }

// Stale reports whether now is at or past the freshness deadline.
func (s DeviceSnapshot) Stale(now time.Time) bool { return !now.Before(s.StaleAfter) }

// Index returns the position of the record with the given id, or -1.
func (s DeviceSnapshot) Index(deviceID string) int {
	for i := range s.Records {
		if s.Records[i].DeviceID == deviceID {
			return i
		}
	}
	return -1
}

func (s DeviceSnapshot) Clone() DeviceSnapshot {
	out := DeviceSnapshot{CapturedAt: s.CapturedAt, StaleAfter: s.StaleAfter}
	if s.Records != nil {
		out.Records = make([]DeviceRecord, len(s.Records))
		for i := range s.Records {
			out.Records[i] = s.Records[i].Clone()
		}
	}
	return out
}
