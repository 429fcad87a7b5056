package fetch

import (
	"errors"
	"log/slog"
	"net/http"
)

// Option configures a Client. Options that receive invalid values
// make New fail.
type Option func(*options) error

type options struct {
	httpClient *http.Client
	token      string
	userAgent  string
	throttle   *ThrottleConfig
	logger     *slog.Logger
}

type ThrottleConfig struct {
	RPS   int
	Burst int
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("http client must not be nil")
		}
		o.httpClient = c
		return nil
	}
}

// WithToken sends "Authorization: Bearer <token>" on http and ws
// requests.
func WithToken(token string) Option {
	return func(o *options) error {
		o.token = token
		return nil
	}
}

func WithUserAgent(ua string) Option {
	return func(o *options) error {
		if ua == "" {
			return errors.New("user agent must not be empty")
		}
		o.userAgent = ua
		return nil
	}
}

// WithThrottle limits outbound requests to rps with the given burst.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		o.throttle = &ThrottleConfig{RPS: rps, Burst: burst}
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = l
		return nil
	}
}
