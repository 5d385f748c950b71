package sdm

import (
	"bytes"
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

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://smartdevicemanagement.googleapis.com/v1"

	ThermostatType = "sdm.devices.types.THERMOSTAT"

	TraitInfo         = "sdm.devices.traits.Info"
	TraitHumidity     = "sdm.devices.traits.Humidity"
	TraitConnectivity = "sdm.devices.traits.Connectivity"
	TraitFan          = "sdm.devices.traits.Fan"
	TraitMode         = "sdm.devices.traits.ThermostatMode"
	TraitEco          = "sdm.devices.traits.ThermostatEco"
	TraitHvac         = "sdm.devices.traits.ThermostatHvac"
	TraitSettings     = "sdm.devices.traits.Settings"
	TraitSetpoint     = "sdm.devices.traits.ThermostatTemperatureSetpoint"
	TraitTemperature  = "sdm.devices.traits.Temperature"

	CommandSetHeat     = "sdm.devices.commands.ThermostatTemperatureSetpoint.SetHeat"
	CommandSetCool     = "sdm.devices.commands.ThermostatTemperatureSetpoint.SetCool"
	CommandSetRange    = "sdm.devices.commands.ThermostatTemperatureSetpoint.SetRange"
	CommandSetMode     = "sdm.devices.commands.ThermostatMode.SetMode"
	CommandSetEcoMode  = "sdm.devices.commands.ThermostatEco.SetMode"
	CommandSetFanTimer = "sdm.devices.commands.Fan.SetTimer"

	defaultRequestTimeout = 10 * time.Second
	maxErrorBody          = 512
)

// Device is one entry of the device listing as returned by the provider.
// Traits are kept raw and decoded by whoever merges them.
type Device struct {
	Name   string                     `json:"name"`
	Type   string                     `json:"type"`
	Traits map[string]json.RawMessage `json:"traits"`
}

// ID is the last path segment of the device resource name.
func (d Device) ID() string { return DeviceID(d.Name) }

// DeviceID returns the last segment of a resource name such as
// enterprises/p/devices/abc.
func DeviceID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Command is an executeCommand request body.
type Command struct {
	Name   string         `json:"command"`
	Params map[string]any `json:"params"`
}

type ClientConfig struct {
	BaseURL       string
	ProjectID     string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

// Client talks to the device management API. Every call goes through a rate
// limiter and a circuit breaker.
type Client struct {
	baseURL   string
	projectID string
	http      *http.Client
	creds     CredentialProvider
	breaker   *gobreaker.CircuitBreaker[[]byte]
	limiter   *rate.Limiter
	log       *logger.Logger
}

func NewClient(cfg ClientConfig, creds CredentialProvider, httpClient *http.Client, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		http:      httpClient,
		creds:     creds,
		breaker:   newBreaker("sdm", log),
		limiter:   rate.NewLimiter(limit, burst),
		log:       log,
	}
}

func newBreaker(name string, log *logger.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			if log != nil {
				log.Warnw("breaker_state_changed", "name", name, "from", from.String(), "to", to.String())
			}
		},
		IsSuccessful: func(err error) bool {
			// the remote answered; a rejected request says nothing about its health
			var se *statusError
			if errors.As(err, &se) {
				return se.code < 500 && se.code != http.StatusTooManyRequests
			}
			return err == nil
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (c *Client) devicesURL() string {
	return fmt.Sprintf("%s/enterprises/%s/devices", c.baseURL, c.projectID)
}

// ListDevices returns every thermostat visible to the project.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	body, err := c.do(ctx, http.MethodGet, c.devicesURL(), nil)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, &FetchError{HTTPCode: statusOf(err), Message: messageOf(err), Err: err}
	}

	var resp struct {
		Devices *[]Device `json:"devices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &FetchError{Message: "decode device listing", Err: err}
	}
	// an empty object or null body is not an empty listing
	if resp.Devices == nil {
		return nil, &FetchError{Message: "no devices found or invalid response format"}
	}

	out := make([]Device, 0, len(*resp.Devices))
	for _, d := range *resp.Devices {
		if d.Type == ThermostatType {
			out = append(out, d)
		}
	}
	return out, nil
}

// ExecuteCommand sends one command to one device.
func (c *Client) ExecuteCommand(ctx context.Context, deviceID string, cmd Command) error {
	if cmd.Params == nil {
		cmd.Params = map[string]any{}
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return &CommandError{Command: cmd.Name, Message: "encode command", Err: err}
	}

	target := fmt.Sprintf("%s/%s:executeCommand", c.devicesURL(), url.PathEscape(deviceID))
	if _, err := c.do(ctx, http.MethodPost, target, payload); err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &CommandError{Command: cmd.Name, HTTPCode: statusOf(err), Message: messageOf(err), Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	cred, err := c.creds.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rdr)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+cred.Token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if len(b) > maxErrorBody {
				b = b[:maxErrorBody]
			}
			return nil, &statusError{code: resp.StatusCode, body: string(b)}
		}
		return b, nil
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusUnauthorized {
			if inv, ok := c.creds.(interface{ Invalidate() }); ok {
				inv.Invalidate()
			}
		}
		if c.log != nil {
			c.log.Warnw("sdm_request_failed", "method", method, "url", target, "err", err)
		}
		return nil, err
	}
	return body, nil
}

func statusOf(err error) int {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return se.code
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	}
	return 0
}

func messageOf(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "upstream temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.body
	}
	return err.Error()
}
