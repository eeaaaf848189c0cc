package readiness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, url string, probeTimeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(url, probeTimeout)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestWait_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	const failures = 3
	const interval = 50 * time.Millisecond

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		if hits.Add(1) <= failures {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	p := NewPoller(newTestClient(t, server.URL+"/health", time.Second), interval, 5*time.Second, zerolog.Nop())

	start := time.Now()
	code, err := p.Wait(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("code = %d, want 200", code)
	}
	if got := hits.Load(); got != failures+1 {
		t.Fatalf("probes = %d, want %d", got, failures+1)
	}
	if elapsed < failures*interval {
		t.Fatalf("Wait succeeded after %v, want >= %v", elapsed, failures*interval)
	}
}

func TestWait_RedirectCountsAsReady(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	t.Cleanup(server.Close)

	p := NewPoller(newTestClient(t, server.URL, time.Second), 10*time.Millisecond, time.Second, zerolog.Nop())
	code, err := p.Wait(context.Background())
	if err != nil || code != http.StatusFound {
		t.Fatalf("Wait = %d, %v; want 302, nil", code, err)
	}
}

func TestWait_TimesOut(t *testing.T) {
	t.Parallel()

	const (
		interval     = 50 * time.Millisecond
		timeout      = 300 * time.Millisecond
		probeTimeout = 200 * time.Millisecond
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	p := NewPoller(newTestClient(t, server.URL, probeTimeout), interval, timeout, zerolog.Nop())

	start := time.Now()
	_, err := p.Wait(context.Background())
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Wait error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Attempts == 0 {
		t.Fatalf("Attempts = 0, want probes to have been made")
	}
	if elapsed < timeout {
		t.Fatalf("timed out after %v, want >= %v", elapsed, timeout)
	}
	if elapsed >= timeout+interval+probeTimeout {
		t.Fatalf("timed out after %v, want < %v", elapsed, timeout+interval+probeTimeout)
	}
}

func TestWait_HungProbeIsBoundedByProbeTimeout(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	p := NewPoller(newTestClient(t, server.URL, 100*time.Millisecond), 20*time.Millisecond, 5*time.Second, zerolog.Nop())

	start := time.Now()
	code, err := p.Wait(context.Background())
	if err != nil || code != http.StatusNoContent {
		t.Fatalf("Wait = %d, %v; want 204, nil", code, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Wait took %v, want the hung probe to be abandoned", elapsed)
	}
}

func TestWait_ConnectionRefusedKeepsPolling(t *testing.T) {
	t.Parallel()

	// Reserve a port, then close it so probes are refused.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := NewPoller(newTestClient(t, url, 100*time.Millisecond), 20*time.Millisecond, 150*time.Millisecond, zerolog.Nop())
	_, err := p.Wait(context.Background())
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Wait error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Attempts < 2 {
		t.Fatalf("Attempts = %d, want repeated probes", timeoutErr.Attempts)
	}
}

func TestWait_ContextCancel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	p := NewPoller(newTestClient(t, server.URL, time.Second), 20*time.Millisecond, 10*time.Second, zerolog.Nop())
	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait error = %v, want context.Canceled", err)
	}
}

func TestNewClient_ParsesTarget(t *testing.T) {
	c, err := NewClient("127.0.0.1:3000/health", 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.URL() != "http://127.0.0.1:3000/health" {
		t.Fatalf("URL = %q", c.URL())
	}
	if _, err := NewClient("   ", 0); err == nil {
		t.Fatalf("NewClient accepted empty url")
	}
}

func TestHealthy(t *testing.T) {
	cases := map[int]bool{199: false, 200: true, 204: true, 302: true, 399: true, 400: false, 503: false}
	for code, want := range cases {
		if got := Healthy(code); got != want {
			t.Errorf("Healthy(%d) = %v, want %v", code, got, want)
		}
	}
}
