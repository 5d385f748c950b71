package models

import "time"

// WeatherData is the latest outdoor observation near the configured location.
type WeatherData struct {
	GridID                  *string    `json:"gridId"`
	ObservationStationsURL  *string    `json:"observationStationsURL"`
	LastCheckTime           *time.Time `json:"lastCheckTime"`
	ObservationStation      *string    `json:"observationStation"`
	ObservationURL          *string    `json:"observationURL"`
	ObservationCity         *string    `json:"observationCity"`
	ForecastURL             *string    `json:"forecastURL"`
	CurrentTemperature      *float64   `json:"currentTemperature"`
	CurrentRelativeHumidity *float64   `json:"currentRelativeHumidity"`
	CurrentTextDescription  *string    `json:"currentTextDescription"`
	CurrentWeatherIconURL   *string    `json:"currentWeatherIconURL"`
}
