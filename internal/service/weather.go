package service

import (
	"context"
	"sync"
	"time"

	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/models"
)

// DefaultWeatherFreshness is how long an observation is reused before the
// station is asked again.
const DefaultWeatherFreshness = 180 * time.Second

type WeatherOptions struct {
	Latitude  float64
	Longitude float64
	Freshness time.Duration
	Demo      bool
}

// WeatherService caches the latest outdoor observation for one location.
type WeatherService struct {
	src  WeatherSource
	pub  Publisher
	opts WeatherOptions
	log  *logger.Logger
	now  func() time.Time

	mu        sync.Mutex
	latitude  float64
	longitude float64
	data      models.WeatherData
}

func NewWeatherService(src WeatherSource, pub Publisher, opts WeatherOptions, log *logger.Logger) *WeatherService {
	if opts.Freshness <= 0 {
		opts.Freshness = DefaultWeatherFreshness
	}
	return &WeatherService{
		src:       src,
		pub:       pub,
		opts:      opts,
		log:       log,
		now:       time.Now,
		latitude:  opts.Latitude,
		longitude: opts.Longitude,
	}
}

var _ Weather = (*WeatherService)(nil)

// Observation returns the cached observation while it is fresh and otherwise
// asks the source. A failed lookup returns the cached data with the error.
func (s *WeatherService) Observation(ctx context.Context) (models.WeatherData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Demo {
		s.data = demoWeather(s.now())
		s.announce(s.data)
		return s.data, nil
	}

	if s.data.LastCheckTime != nil && s.data.LastCheckTime.Add(s.opts.Freshness).After(s.now()) {
		return s.data, nil
	}

	next, err := s.src.Lookup(ctx, s.latitude, s.longitude, s.data)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("weather_lookup_failed", "err", err)
		}
		return s.data, err
	}
	s.data = next
	s.announce(next)
	return next, nil
}

func (s *WeatherService) Cached() models.WeatherData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// SetLocation moves the service to a new coordinate and forgets the station.
func (s *WeatherService) SetLocation(latitude, longitude float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latitude, s.longitude = latitude, longitude
	s.data = models.WeatherData{}
	if s.log != nil {
		s.log.Infow("weather_location_changed", "latitude", latitude, "longitude", longitude)
	}
}

func (s *WeatherService) announce(data models.WeatherData) {
	if s.pub != nil {
		s.pub.Broadcast(models.MessageWeatherUpdate, models.WeatherUpdate{WeatherData: data})
	}
}

func demoWeather(now time.Time) models.WeatherData {
	return models.WeatherData{
		LastCheckTime:           &now,
		ObservationCity:         models.Ptr("Demo City"),
		CurrentTemperature:      models.Ptr(19.4),
		CurrentRelativeHumidity: models.Ptr(63.0),
		CurrentTextDescription:  models.Ptr("Mostly Cloudy"),
		CurrentWeatherIconURL:   models.Ptr("https://api.weather.gov/icons/land/day/bkn?size=medium"),
	}
}
