package fetch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
)

// throttle is a token bucket http.RoundTripper. Manifest fetches are
// rare, but the CLI may be scripted in a loop against a shared endpoint.
type throttle struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	next    http.RoundTripper
	logger  *slog.Logger
}

func newThrottle(
	rps, burst int,
	logger *slog.Logger,
	next http.RoundTripper,
) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf(
			"rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero,
		)
	}
	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		next:    next,
		logger:  logger,
	}, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !t.limiter.Allow() {
		start := time.Now()
		t.logger.Info("throttle tokens exhausted",
			"rate", t.rps, "burst", t.burst, "path", r.URL.Path,
		)
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
		}
		t.logger.Info("throttle wait complete",
			"waited", time.Since(start).String(),
		)
	}

	return t.next.RoundTrip(r)
}

type userAgent struct {
	value string
	base  http.RoundTripper
}

func (u userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", u.value)
	return u.base.RoundTrip(r)
}
