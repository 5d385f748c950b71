// Package weather reads current outdoor conditions from the api.weather.gov
// observation network.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/metrics"
	"thermostat_hub/internal/models"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL   = "https://api.weather.gov"
	DefaultUserAgent = "thermostat_hub (github.com/thermostat_hub)"

	defaultTimeout = 10 * time.Second
)

// StatusError is a non-2xx answer from the weather API.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather api %s: status %d", e.URL, e.Code)
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	log       *logger.Logger
}

func NewClient(baseURL, userAgent string, httpClient *http.Client, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	metrics.BreakerState.WithLabelValues("weather").Set(float64(gobreaker.StateClosed))
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      httpClient,
		log:       log,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "weather",
			Timeout: time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, _, to gobreaker.State) {
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			},
		}),
	}
}

type Points struct {
	StationsURL string
	ForecastURL string
	GridID      string
}

type Station struct {
	ID   string
	City string
}

type Observation struct {
	Text        *string
	TempCelsius *float64
	Humidity    *float64
	IconURL     *string
}

// Points resolves a coordinate to its grid and observation-station list.
func (c *Client) Points(ctx context.Context, latitude, longitude float64) (Points, error) {
	var resp struct {
		Properties struct {
			ObservationStations string `json:"observationStations"`
			Forecast            string `json:"forecast"`
			GridID              string `json:"gridId"`
		} `json:"properties"`
	}
	u := fmt.Sprintf("%s/points/%s,%s", c.baseURL, formatCoord(latitude), formatCoord(longitude))
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return Points{}, err
	}
	if resp.Properties.ObservationStations == "" {
		return Points{}, errors.New("weather: points response has no observationStations")
	}
	return Points{
		StationsURL: resp.Properties.ObservationStations,
		ForecastURL: resp.Properties.Forecast,
		GridID:      resp.Properties.GridID,
	}, nil
}

// NearestStation returns the first station of a station list.
func (c *Client) NearestStation(ctx context.Context, stationsURL string) (Station, error) {
	var resp struct {
		Features []struct {
			Properties struct {
				StationIdentifier string `json:"stationIdentifier"`
				Name              string `json:"name"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := c.getJSON(ctx, stationsURL, &resp); err != nil {
		return Station{}, err
	}
	if len(resp.Features) == 0 || resp.Features[0].Properties.StationIdentifier == "" {
		return Station{}, errors.New("weather: no observation stations returned")
	}
	p := resp.Features[0].Properties
	city, _, _ := strings.Cut(p.Name, ",")
	return Station{ID: p.StationIdentifier, City: strings.TrimSpace(city)}, nil
}

func (c *Client) ObservationURL(stationID string) string {
	return fmt.Sprintf("%s/stations/%s/observations/latest", c.baseURL, url.PathEscape(stationID))
}

// Latest fetches the most recent observation at a station URL.
func (c *Client) Latest(ctx context.Context, observationURL string) (Observation, error) {
	var resp struct {
		Properties struct {
			TextDescription  *string `json:"textDescription"`
			Icon             *string `json:"icon"`
			Temperature      struct {
				Value *float64 `json:"value"`
			} `json:"temperature"`
			RelativeHumidity struct {
				Value *float64 `json:"value"`
			} `json:"relativeHumidity"`
		} `json:"properties"`
	}
	if err := c.getJSON(ctx, observationURL, &resp); err != nil {
		return Observation{}, err
	}
	p := resp.Properties
	return Observation{
		Text:        p.TextDescription,
		TempCelsius: p.Temperature.Value,
		Humidity:    p.RelativeHumidity.Value,
		IconURL:     p.Icon,
	}, nil
}

// Lookup refreshes prev: station discovery runs only when prev has no
// station yet, the observation is always fetched.
func (c *Client) Lookup(ctx context.Context, latitude, longitude float64, prev models.WeatherData) (models.WeatherData, error) {
	data := prev
	if data.ObservationStation == nil || data.ObservationURL == nil {
		pts, err := c.Points(ctx, latitude, longitude)
		if err != nil {
			return prev, err
		}
		st, err := c.NearestStation(ctx, pts.StationsURL)
		if err != nil {
			return prev, err
		}
		data.ObservationStationsURL = &pts.StationsURL
		data.ForecastURL = &pts.ForecastURL
		data.GridID = &pts.GridID
		data.ObservationStation = &st.ID
		data.ObservationCity = &st.City
		obsURL := c.ObservationURL(st.ID)
		data.ObservationURL = &obsURL
	}

	obs, err := c.Latest(ctx, *data.ObservationURL)
	if err != nil {
		return prev, err
	}
	now := time.Now()
	data.LastCheckTime = &now
	data.CurrentTextDescription = obs.Text
	data.CurrentTemperature = obs.TempCelsius
	data.CurrentRelativeHumidity = obs.Humidity
	data.CurrentWeatherIconURL = obs.IconURL
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		// api.weather.gov rejects requests without a User-Agent
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/geo+json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Code: resp.StatusCode, URL: u}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if c.log != nil {
			c.log.Warnw("weather_request_failed", "url", u, "err", err)
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("weather: decode %s: %w", u, err)
	}
	return nil
}

func formatCoord(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
