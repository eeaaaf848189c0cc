package readiness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Prober issues a single readiness probe and reports the HTTP status code.
type Prober interface {
	Probe(ctx context.Context) (int, error)
}

// Ensure Client implements Prober at compile time.
var _ Prober = (*Client)(nil)

// Client probes the application's health endpoint.
type Client struct {
	target    *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent    = "superplane-desktop/0.1"
	defaultProbeTimeout = 3 * time.Second
)

// NewClient builds a Client for rawURL. A bare host:port is treated as http.
func NewClient(rawURL string, timeout time.Duration) (*Client, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Client{
		target: target,
		http: &http.Client{
			Timeout: timeout,
			// Redirects count as a live application; do not follow them.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: defaultUserAgent,
	}, nil
}

// URL returns the probed endpoint.
func (c *Client) URL() string {
	return c.target.String()
}

// Probe performs one GET against the endpoint.
func (c *Client) Probe(ctx context.Context) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, nil
}

// Healthy reports whether code counts as a ready application.
func Healthy(code int) bool {
	return code >= 200 && code < 400
}

func parseTarget(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("health url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse health url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("health url %q has no host", rawURL)
	}
	u.Fragment = ""
	return u, nil
}
