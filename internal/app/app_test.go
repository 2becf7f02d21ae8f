package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsHarvest/internal/config"
	"NewsHarvest/internal/domain"
	"NewsHarvest/internal/logging"
	"NewsHarvest/internal/usecase"
)

func testConfig() config.Config {
	return config.Config{
		Logging: config.LoggingConfig{Level: "debug"},
		Fetcher: config.FetcherConfig{DisableDelay: true, Timeout: 2 * time.Second},
		Harvest: config.HarvestConfig{MaxArticles: 5, QualityThreshold: 0.6, MaxArticlesLimit: 50},
		Sources: []config.SourceConfig{{Match: "127.0.0.1", Label: "Loopback News"}},
	}
}

func newsServer(t *testing.T) *httptest.Server {
	t.Helper()

	body := strings.TrimSpace(strings.Repeat("the council met today. ", 50))
	story := func(title string) string {
		return `<html><body><h1>` + title + `</h1><div class="byline">By Jane Reporter</div><article>` +
			`<p>` + body + `</p><p>` + body + `</p><p>` + body + `</p></article></body></html>`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body>
			<a href="/news/budget">Budget</a>
			<a href="/news/budget-copy">Budget copy</a>
			<a href="/live/now">Live</a>
			<a href="/news/missing">Missing</a>
			<a href="/world/harbour">Harbour</a>
		</body></html>`))
	})
	mux.HandleFunc("/news/budget", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(story("Local Council Approves New Budget Plan")))
	})
	mux.HandleFunc("/news/budget-copy", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(story("Local Council Approves New Budget Plan")))
	})
	mux.HandleFunc("/world/harbour", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(story("Harbour Expansion Gets Final Approval")))
	})
	return httptest.NewServer(mux)
}

func TestApplicationHarvestEndToEnd(t *testing.T) {
	t.Parallel()

	server := newsServer(t)
	defer server.Close()

	var logs bytes.Buffer
	a, err := New(testConfig(), logging.NewWithWriter(&logs, "debug"))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Prepare(context.Background()))

	status, err := a.Harvest(context.Background(), a.DefaultTarget(server.URL+"/"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateCompleted, status.State)
	assert.Equal(t, 4, status.URLsFound)
	assert.Equal(t, 4, status.URLsProcessed)
	assert.Equal(t, 2, status.Accepted)
	assert.Equal(t, 5, status.MaxArticles)
	assert.Equal(t, 1, status.Skipped[domain.SkipDuplicate])
	assert.Equal(t, 1, status.Skipped[domain.SkipFetchFailed])

	require.Len(t, status.Articles, 2)
	assert.Equal(t, "Loopback News", status.Articles[0].Source)
	assert.Equal(t, "By Jane Reporter", status.Articles[0].Author)
	assert.Equal(t, 0.95, status.Articles[0].QualityScore)
	assert.Equal(t, server.URL+"/world/harbour", status.Articles[1].URL)

	require.NotNil(t, status.Metrics)
	assert.Equal(t, 2, status.Metrics.TotalArticles)
	assert.Equal(t, status, a.Status())

	assert.Contains(t, logs.String(), "harvest started")
	assert.Contains(t, logs.String(), "component=fetcher")
}

func TestNewRejectsBadPatterns(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Discovery.IncludePatterns = []string{"(unclosed"}
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, err)

	got := a.withDefaults(usecase.Target{URL: "https://news.example.com/"})
	assert.Equal(t, 5, got.MaxArticles)
	assert.Equal(t, 0.6, got.QualityThreshold)

	got = a.withDefaults(usecase.Target{URL: "https://news.example.com/", MaxArticles: 2, QualityThreshold: 0.8})
	assert.Equal(t, 2, got.MaxArticles)
	assert.Equal(t, 0.8, got.QualityThreshold)

	assert.Equal(t, usecase.Target{URL: "https://news.example.com/", MaxArticles: 5, QualityThreshold: 0.6},
		a.DefaultTarget("https://news.example.com/"))
}

func TestHarvestKeepsExplicitZeroThreshold(t *testing.T) {
	t.Parallel()

	server := newsServer(t)
	defer server.Close()

	cfg := testConfig()
	cfg.Harvest.QualityThreshold = 0.99
	a, err := New(cfg, logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, err)

	target := a.DefaultTarget(server.URL + "/")
	target.QualityThreshold = 0
	status, err := a.Harvest(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 0.0, status.QualityThreshold)
	assert.Equal(t, 2, status.Accepted)
}

func TestScheduleRequiresTargets(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	assert.Error(t, a.Schedule(context.Background()))
}

// onceDriver fires the job once, then ends the schedule.
type onceDriver struct {
	cancel context.CancelFunc
}

func (d onceDriver) Start(_ context.Context, job func(time.Time)) error {
	job(time.Now())
	d.cancel()
	return nil
}

func (onceDriver) Stop(context.Context) error { return nil }

type nextOnceDriver struct {
	onceDriver
	next time.Time
}

func (d nextOnceDriver) Next(time.Time) (time.Time, error) { return d.next, nil }

func TestRunSchedulerUntilCancelled(t *testing.T) {
	t.Parallel()

	server := newsServer(t)
	defer server.Close()

	a, err := New(testConfig(), logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = a.runScheduler(ctx, onceDriver{cancel: cancel}, []usecase.Target{a.withDefaults(usecase.Target{URL: server.URL + "/"})})
	require.NoError(t, err)

	status := a.Status()
	assert.Equal(t, domain.StateCompleted, status.State)
	assert.Equal(t, 2, status.Accepted)
}

func TestRunSchedulerLogsNextRun(t *testing.T) {
	t.Parallel()

	server := newsServer(t)
	defer server.Close()

	var logs bytes.Buffer
	a, err := New(testConfig(), logging.NewWithWriter(&logs, "info"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	driver := nextOnceDriver{onceDriver: onceDriver{cancel: cancel}, next: time.Date(2025, time.March, 4, 6, 0, 0, 0, time.UTC)}
	require.NoError(t, a.runScheduler(ctx, driver, []usecase.Target{a.DefaultTarget(server.URL + "/")}))

	assert.Contains(t, logs.String(), "next harvest scheduled")
	assert.Contains(t, logs.String(), "next_run=2025-03-04T06:00:00.000Z")
}
