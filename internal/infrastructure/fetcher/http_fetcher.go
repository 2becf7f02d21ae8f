// Package fetcher implements ports.Fetcher over HTTP with a politeness delay, a per-request
// timeout and optional robots.txt compliance.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"NewsHarvest/internal/ports"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMinDelay     = time.Second
	defaultMaxDelay     = 2 * time.Second
	defaultMaxBodyBytes = 5 << 20
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Options configure an HTTPFetcher. Zero values pick the defaults, except delays: set
// NoDelay to disable the politeness pause entirely.
type Options struct {
	Timeout       time.Duration
	MinDelay      time.Duration
	MaxDelay      time.Duration
	NoDelay       bool
	UserAgent     string
	MaxBodyBytes  int64
	RespectRobots bool
}

// HTTPFetcher fetches pages one request at a time.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
	robots *RobotsChecker
	logger *slog.Logger
	pause  func(ctx context.Context, d time.Duration) bool
	jitter func(n int64) int64
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// New builds a fetcher; client may be nil.
func New(client *http.Client, opts Options, logger *slog.Logger) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if !opts.NoDelay {
		if opts.MinDelay <= 0 {
			opts.MinDelay = defaultMinDelay
		}
		if opts.MaxDelay < opts.MinDelay {
			opts.MaxDelay = max(defaultMaxDelay, opts.MinDelay)
		}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &HTTPFetcher{
		client: client,
		opts:   opts,
		logger: logger,
		pause:  sleepContext,
		jitter: rand.Int63n,
	}
	if opts.RespectRobots {
		f.robots = NewRobotsChecker(client, opts.UserAgent, 0)
	}
	return f
}

// Fetch waits for the politeness delay, then GETs url. Any failure is logged and reported
// as ok=false.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, bool) {
	if !f.pause(ctx, f.delay()) {
		return "", false
	}

	if f.robots != nil {
		allowed, err := f.robots.IsAllowed(ctx, url)
		if err != nil {
			f.logger.Warn("robots check failed", "url", url, "error", err)
			return "", false
		}
		if !allowed {
			f.logger.Info("disallowed by robots.txt", "url", url)
			return "", false
		}
	}

	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.Warn("fetch failed", "url", url, "error", err)
		return "", false
	}
	return body, true
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(raw), nil
}

func (f *HTTPFetcher) delay() time.Duration {
	if f.opts.NoDelay {
		return 0
	}
	span := int64(f.opts.MaxDelay - f.opts.MinDelay)
	if span <= 0 {
		return f.opts.MinDelay
	}
	return f.opts.MinDelay + time.Duration(f.jitter(span+1))
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
