// Package fetch retrieves manifest text from an http(s), ws(s) or file
// source and parses it.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tqbf/shasync/pkg/manifest"
)

const (
	// DefaultURL serves the current Limbus Company depot manifest.
	DefaultURL = "https://api.lethelc.site/limbus-manifest.txt"

	maxManifestBytes = 64 << 20
)

var (
	tracer = otel.Tracer("github.com/tqbf/shasync/pkg/fetch")

	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrTooLarge          = errors.New("manifest exceeds size limit")
)

type Client struct {
	URL        *url.URL
	Token      string
	HTTPClient *http.Client
	logger     *slog.Logger
}

func New(rawURL string, optFns ...Option) (*Client, error) {
	u, err := parseSource(rawURL)
	if err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying fetch option: %w", err)
		}
	}

	c := &Client{
		URL:        u,
		Token:      opts.token,
		HTTPClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	if opts.logger != nil {
		c.logger = opts.logger
	}

	base := http.DefaultTransport
	if opts.httpClient != nil {
		c.HTTPClient = opts.httpClient
		if opts.httpClient.Transport != nil {
			base = opts.httpClient.Transport
		}
	}

	if opts.userAgent == "" && opts.throttle == nil {
		return c, nil
	}

	transport := base
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		transport, err = newThrottle(
			opts.throttle.RPS, opts.throttle.Burst,
			c.logger, transport,
		)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
	}
	hc := *c.HTTPClient
	hc.Transport = transport
	c.HTTPClient = &hc

	return c, nil
}

func parseSource(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("empty manifest url")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths, including Windows drive letters.
		return &url.URL{Scheme: "file", Path: raw}, nil
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss", "file":
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

// Fetch retrieves and parses the manifest. Retrieval failures are
// *NetworkError; malformed text is *manifest.ParseError.
func (c *Client) Fetch(ctx context.Context) (*manifest.Manifest, error) {
	ctx, span := tracer.Start(ctx, "fetch.manifest")
	defer span.End()

	text, err := c.Text(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieve failed")
		return nil, err
	}

	m, err := manifest.Parse(bytes.NewReader(text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("manifest.entries", m.Len()))
	return m, nil
}

// Text retrieves the raw manifest text without parsing it.
func (c *Client) Text(ctx context.Context) ([]byte, error) {
	start := time.Now()

	var (
		text []byte
		err  error
	)
	switch c.URL.Scheme {
	case "http", "https":
		text, err = c.getHTTP(ctx)
	case "ws", "wss":
		text, err = c.getWebSocket(ctx)
	default:
		text, err = readFile(c.URL)
	}
	if err != nil {
		return nil, &NetworkError{URL: c.URL.Redacted(), Err: err}
	}

	c.logger.Debug("manifest retrieved",
		"url", c.URL.Redacted(),
		"bytes", len(text),
		"elapsed", time.Since(start),
	)
	return text, nil
}

func (c *Client) getHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, "GET", c.URL.String(), nil,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/plain")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, parseStatusError(resp.StatusCode, body)
	}
	return readLimited(resp.Body)
}

func readFile(u *url.URL) ([]byte, error) {
	path := u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxManifestBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxManifestBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
