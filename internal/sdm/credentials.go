package sdm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/metrics"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTokenURL    = "https://www.googleapis.com/oauth2/v4/token"
	DefaultTokenBuffer = 300 * time.Second

	// used when the provider omits expires_in
	defaultTokenLifetime = time.Hour
	tokenExchangeTimeout = 10 * time.Second
	demoToken            = "demo-access-token"
)

// Credential is a bearer token and the instant it must be refreshed by.
// ExpiresAt already has the safety buffer subtracted.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// CredentialProvider hands out a valid bearer token.
type CredentialProvider interface {
	EnsureValid(ctx context.Context) (Credential, error)
}

// CredentialConfig configures the refresh-token exchange.
type CredentialConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	Buffer       time.Duration
	Timeout      time.Duration
	Demo         bool
}

// CredentialCache owns the current access token. Concurrent callers that find
// it expired share a single exchange.
type CredentialCache struct {
	oauth        *oauth2.Config
	refreshToken string
	buffer       time.Duration
	timeout      time.Duration
	demo         bool
	httpClient   *http.Client
	log          *logger.Logger
	now          func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cred  *Credential
}

func NewCredentialCache(cfg CredentialConfig, httpClient *http.Client, log *logger.Logger) *CredentialCache {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultTokenBuffer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = tokenExchangeTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &CredentialCache{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: cfg.RefreshToken,
		buffer:       cfg.Buffer,
		timeout:      cfg.Timeout,
		demo:         cfg.Demo,
		httpClient:   httpClient,
		log:          log,
		now:          time.Now,
	}
}

// EnsureValid returns the cached credential while it is valid and otherwise
// exchanges the refresh token for a new one. A failed exchange leaves the
// previous credential in place and returns an *AuthError.
func (c *CredentialCache) EnsureValid(ctx context.Context) (Credential, error) {
	if c.demo {
		return Credential{Token: demoToken, ExpiresAt: c.now().Add(defaultTokenLifetime)}, nil
	}
	if cred, ok := c.cached(); ok {
		return cred, nil
	}

	ch := c.group.DoChan("token", func() (interface{}, error) {
		// a flight that finished just before this one may already have stored a token
		if cred, ok := c.cached(); ok {
			return cred, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return Credential{}, &AuthError{Message: "token refresh abandoned", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	}
}

// Invalidate drops the cached credential so the next call exchanges again.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()
}

func (c *CredentialCache) cached() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred == nil || !c.now().Before(c.cred.ExpiresAt) {
		return Credential{}, false
	}
	return *c.cred, true
}

func (c *CredentialCache) store(cred Credential) {
	c.mu.Lock()
	c.cred = &cred
	c.mu.Unlock()
}

func (c *CredentialCache) refresh(ctx context.Context) (Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken}).Token()
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		authErr := &AuthError{Message: "token exchange failed", Err: err}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			if re.Response != nil {
				authErr.HTTPCode = re.Response.StatusCode
			}
			if re.ErrorCode != "" {
				authErr.Message = "token exchange rejected: " + re.ErrorCode
			}
		}
		if c.log != nil {
			c.log.Errorw("token_refresh_failed", "err", err, "status", authErr.HTTPCode)
		}
		return Credential{}, authErr
	}

	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = c.now().Add(defaultTokenLifetime)
	}
	cred := Credential{Token: tok.AccessToken, ExpiresAt: expiry.Add(-c.buffer)}
	c.store(cred)
	metrics.TokenRefreshTotal.WithLabelValues("ok").Inc()
	if c.log != nil {
		c.log.Debugw("token_refreshed", "expires_at", cred.ExpiresAt)
	}
	return cred, nil
}
