package models

// Websocket message types pushed to subscribers.
const (
	MessageTempUpdate    = "tempUpdate"
	MessageWeatherUpdate = "weatherUpdate"
	MessageErrorUpdate   = "errorUpdate"
	MessageStatusUpdate  = "statusUpdate"
)

// Message is the envelope written to every subscriber.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type TempUpdate struct {
	TempData []DeviceRecord `json:"tempData"`
}

type WeatherUpdate struct {
	WeatherData WeatherData `json:"weatherData"`
}

type ErrorUpdate struct {
	ErrorMessage string `json:"errorMessage"`
}

type StatusUpdate struct {
	Message string `json:"message"`
}
