package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := New(server.Client(), Options{NoDelay: true, UserAgent: "NewsHarvestTest/1.0"}, nil)
	body, ok := f.Fetch(context.Background(), server.URL+"/news/a")

	require.True(t, ok)
	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, "NewsHarvestTest/1.0", gotUA.Load())
}

func TestFetchNonOKStatusFails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	f := New(server.Client(), Options{NoDelay: true}, nil)
	_, ok := f.Fetch(context.Background(), server.URL)
	assert.False(t, ok)
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := New(server.Client(), Options{NoDelay: true, Timeout: 50 * time.Millisecond}, nil)
	_, ok := f.Fetch(context.Background(), server.URL)
	assert.False(t, ok)
}

func TestFetchCapsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	f := New(server.Client(), Options{NoDelay: true, MaxBodyBytes: 4}, nil)
	body, ok := f.Fetch(context.Background(), server.URL)
	require.True(t, ok)
	assert.Equal(t, "0123", body)
}

func TestPolitenessDelayWithinBounds(t *testing.T) {
	t.Parallel()

	f := New(nil, Options{MinDelay: time.Second, MaxDelay: 2 * time.Second}, nil)
	var waited []time.Duration
	f.pause = func(_ context.Context, d time.Duration) bool {
		waited = append(waited, d)
		return false
	}

	for i := 0; i < 20; i++ {
		_, ok := f.Fetch(context.Background(), "http://unused.invalid/")
		assert.False(t, ok)
	}

	require.Len(t, waited, 20)
	for _, d := range waited {
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestDefaultsApplied(t *testing.T) {
	t.Parallel()

	f := New(nil, Options{}, nil)
	assert.Equal(t, defaultTimeout, f.opts.Timeout)
	assert.Equal(t, defaultMinDelay, f.opts.MinDelay)
	assert.Equal(t, defaultMaxDelay, f.opts.MaxDelay)
	assert.Equal(t, int64(defaultMaxBodyBytes), f.opts.MaxBodyBytes)
}

func TestFetchCancelledDuringDelay(t *testing.T) {
	t.Parallel()

	f := New(nil, Options{MinDelay: time.Hour, MaxDelay: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := f.Fetch(ctx, "http://unused.invalid/")
	assert.False(t, ok)
}

func TestFetchRespectsRobots(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("page"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := New(server.Client(), Options{NoDelay: true, RespectRobots: true}, nil)

	_, ok := f.Fetch(context.Background(), server.URL+"/private/story")
	assert.False(t, ok)
	assert.Zero(t, hits.Load())

	body, ok := f.Fetch(context.Background(), server.URL+"/news/story")
	assert.True(t, ok)
	assert.Equal(t, "page", body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRobotsMissingAllowsAll(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	rc := NewRobotsChecker(server.Client(), "bot", 0)
	allowed, err := rc.IsAllowed(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	assert.True(t, allowed)

	_, err = rc.IsAllowed(context.Background(), "/relative/only")
	assert.Error(t, err)
}
