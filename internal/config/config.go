// Package config loads the service configuration from configs/config.yml,
// the environment and built-in defaults, in that order of precedence:
// environment first, then file, then defaults.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	DemoMode    bool   `mapstructure:"demo_mode"`

	Log       LogConfig       `mapstructure:"log"`
	SDM       SDMConfig       `mapstructure:"sdm"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	DB        DBConfig        `mapstructure:"db"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SDMConfig holds the device management API credentials and client tuning.
type SDMConfig struct {
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	RefreshToken   string        `mapstructure:"refresh_token"`
	ProjectID      string        `mapstructure:"project_id"`
	BaseURL        string        `mapstructure:"base_url"`
	TokenURL       string        `mapstructure:"token_url"`
	TokenBuffer    time.Duration `mapstructure:"token_buffer"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	RateBurst      int           `mapstructure:"rate_burst"`
	DemoDelay      time.Duration `mapstructure:"demo_delay"`
}

type RefreshConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	InitialAttempts int           `mapstructure:"initial_attempts"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
}

type PubSubConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	ProjectID    string        `mapstructure:"project_id"`
	Topic        string        `mapstructure:"topic"`
	Subscription string        `mapstructure:"subscription"`
	Embedded     bool          `mapstructure:"embedded"`
	EmbeddedPort int           `mapstructure:"embedded_port"`
	StoreDir     string        `mapstructure:"store_dir"`
	AckWait      time.Duration `mapstructure:"ack_wait"`
	MinBackoff   time.Duration `mapstructure:"min_backoff"`
	MaxBackoff   time.Duration `mapstructure:"max_backoff"`

	// PushToken must match the token query parameter on /pubsub/push. An
	// empty token leaves the push route unregistered.
	PushToken string `mapstructure:"push_token"`
}

type WeatherConfig struct {
	Latitude  float64       `mapstructure:"latitude"`
	Longitude float64       `mapstructure:"longitude"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Freshness time.Duration `mapstructure:"freshness"`
}

type TelemetryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type AuthConfig struct {
	Required   bool          `mapstructure:"required"`
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

const subscriptionPrefix = "thermostat-sub-id-"

var ErrMissingCredentials = errors.New("missing device API credentials")

// legacyEnv maps config keys to the environment variable names deployments
// already use. Every other key is read from its upper-cased, underscored form
// (sdm.cache_ttl -> SDM_CACHE_TTL).
var legacyEnv = map[string]string{
	"sdm.client_id":     "CLIENT_ID",
	"sdm.client_secret": "CLIENT_SECRET",
	"sdm.project_id":    "PROJECT_ID",
	"sdm.refresh_token": "REFRESH_TOKEN",
	"pubsub.topic":      "TOPIC_ID",
	"pubsub.project_id": "PUBSUB_PROJECT_ID",
	"demo_mode":         "DEMO_MODE",
	"environment":       "ENVIRONMENT",
	"weather.latitude":  "WEATHER_LATITUDE",
	"weather.longitude": "WEATHER_LONGITUDE",
	"cors.origins":      "DEFAULT_CORS_ORIGIN",
	"telemetry.enabled": "DB_LOGGING",
	"port":              "PORT",
	"log.level":         "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("environment", "prod")
	v.SetDefault("demo_mode", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("sdm.client_id", "")
	v.SetDefault("sdm.client_secret", "")
	v.SetDefault("sdm.refresh_token", "")
	v.SetDefault("sdm.project_id", "")
	v.SetDefault("sdm.base_url", "https://smartdevicemanagement.googleapis.com/v1")
	v.SetDefault("sdm.token_url", "https://www.googleapis.com/oauth2/v4/token")
	v.SetDefault("sdm.token_buffer", 300*time.Second)
	v.SetDefault("sdm.cache_ttl", 600*time.Second)
	v.SetDefault("sdm.request_timeout", 10*time.Second)
	v.SetDefault("sdm.rate_per_second", 5.0)
	v.SetDefault("sdm.rate_burst", 5)
	v.SetDefault("sdm.demo_delay", 2*time.Second)

	v.SetDefault("refresh.interval", 5*time.Minute)
	v.SetDefault("refresh.initial_attempts", 5)
	v.SetDefault("refresh.initial_backoff", 2*time.Second)

	v.SetDefault("pubsub.enabled", true)
	v.SetDefault("pubsub.url", "nats://127.0.0.1:4222")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "thermostat-topic-id")
	v.SetDefault("pubsub.subscription", "")
	v.SetDefault("pubsub.embedded", false)
	v.SetDefault("pubsub.embedded_port", 4222)
	v.SetDefault("pubsub.store_dir", "")
	v.SetDefault("pubsub.ack_wait", 30*time.Second)
	v.SetDefault("pubsub.min_backoff", time.Second)
	v.SetDefault("pubsub.max_backoff", 20*time.Second)
	v.SetDefault("pubsub.push_token", "")

	v.SetDefault("weather.latitude", 39.833333)
	v.SetDefault("weather.longitude", -98.583333)
	v.SetDefault("weather.base_url", "https://api.weather.gov")
	v.SetDefault("weather.user_agent", "thermostat_hub (ops@example.com)")
	v.SetDefault("weather.freshness", 180*time.Second)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.interval", 60*time.Second)
	v.SetDefault("db.path", "thermostat.db")

	v.SetDefault("cors.origins", []string{})

	v.SetDefault("auth.required", false)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// Load reads configuration. dir is searched for config.yml; a missing file is
// not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, env, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		flagHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagHook decodes boolean strings the way existing deployments write them:
// 1, yes, true, on (any case) are true.
func flagHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return parseFlag(data.(string))
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "y", "true", "t", "on":
		return true, nil
	case "", "0", "no", "n", "false", "f", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.PubSub.Subscription == "" {
		c.PubSub.Subscription = subscriptionPrefix + c.Environment
	}
	origins := c.CORS.Origins[:0]
	for _, o := range c.CORS.Origins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.Origins = origins
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	if !c.DemoMode {
		var missing []string
		for name, val := range map[string]string{
			"client_id":     c.SDM.ClientID,
			"client_secret": c.SDM.ClientSecret,
			"refresh_token": c.SDM.RefreshToken,
			"project_id":    c.SDM.ProjectID,
		} {
			if strings.TrimSpace(val) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
		}
	}
	if c.Weather.Latitude < -90 || c.Weather.Latitude > 90 {
		return fmt.Errorf("weather.latitude %v out of range", c.Weather.Latitude)
	}
	if c.Weather.Longitude < -180 || c.Weather.Longitude > 180 {
		return fmt.Errorf("weather.longitude %v out of range", c.Weather.Longitude)
	}
	if c.Refresh.Interval <= 0 {
		return errors.New("refresh.interval must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.Interval <= 0 {
		return errors.New("telemetry.interval must be positive")
	}
	return nil
}
