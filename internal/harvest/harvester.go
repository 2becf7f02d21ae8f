// Package harvest runs harvest sessions: discovery, extraction, scoring, bias analysis,
// deduplication and aggregation for one homepage at a time.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"NewsHarvest/internal/bias"
	"NewsHarvest/internal/dedup"
	"NewsHarvest/internal/discovery"
	"NewsHarvest/internal/domain"
	"NewsHarvest/internal/extractor"
	"NewsHarvest/internal/ports"
	"NewsHarvest/internal/quality"
)

var (
	// ErrConflict is returned when a session is already running.
	ErrConflict = errors.New("harvest already in progress")
	// ErrInvalidParameter is returned for out-of-range StartHarvest arguments.
	ErrInvalidParameter = errors.New("invalid harvest parameter")
	// ErrSessionActive is returned by GetResults while a session is running.
	ErrSessionActive = errors.New("harvest session still active")
)

const (
	// DefaultMaxArticlesLimit is the largest maxArticles StartHarvest accepts by default.
	DefaultMaxArticlesLimit = 50

	minTitleRunes = 10
	minWordCount  = 100
	urlBudget     = 2
)

// Deps are the collaborators of a Harvester. Only Fetcher is required.
type Deps struct {
	Fetcher    ports.Fetcher
	Discoverer ports.Discoverer
	Extractor  *extractor.Extractor
	Bias       *bias.Analyzer
	Sources    *SourceLabeler
	Logger     *slog.Logger
}

// Options tune argument validation.
type Options struct {
	MaxArticlesLimit int
}

// Harvester runs at most one session at a time.
type Harvester struct {
	fetcher    ports.Fetcher
	discoverer ports.Discoverer
	extractor  *extractor.Extractor
	bias       *bias.Analyzer
	sources    *SourceLabeler
	logger     *slog.Logger
	maxLimit   int

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	current *Handle
}

// New wires a harvester, filling unset collaborators with defaults.
func New(deps Deps, opts Options) (*Harvester, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("harvest: fetcher is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Discoverer == nil {
		deps.Discoverer = discovery.New(deps.Fetcher, nil, discovery.Options{}, logger)
	}
	if deps.Extractor == nil {
		deps.Extractor = extractor.New(nil)
	}
	if deps.Bias == nil {
		deps.Bias = bias.NewAnalyzer(nil)
	}
	if deps.Sources == nil {
		deps.Sources = NewSourceLabeler(nil)
	}
	if opts.MaxArticlesLimit <= 0 {
		opts.MaxArticlesLimit = DefaultMaxArticlesLimit
	}

	return &Harvester{
		fetcher:    deps.Fetcher,
		discoverer: deps.Discoverer,
		extractor:  deps.Extractor,
		bias:       deps.Bias,
		sources:    deps.Sources,
		logger:     logger.With("component", "harvester"),
		maxLimit:   opts.MaxArticlesLimit,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// StartHarvest validates the arguments and starts a session in the background. The run
// outlives ctx cancellation; use the handle to cancel it.
func (h *Harvester) StartHarvest(ctx context.Context, homepageURL string, maxArticles int, qualityThreshold float64) (*Handle, error) {
	if err := h.validate(homepageURL, maxArticles, qualityThreshold); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil && h.current.session.active() {
		return nil, ErrConflict
	}

	id := h.newID()
	handle := &Handle{
		id: id,
		session: newSession(domain.HarvestStatus{
			SessionID:        id,
			State:            domain.StateIdle,
			Active:           true,
			Status:           "Starting...",
			Articles:         []domain.AcceptedArticle{},
			Skipped:          map[domain.SkipReason]int{},
			HomepageURL:      homepageURL,
			MaxArticles:      maxArticles,
			QualityThreshold: qualityThreshold,
			StartedAt:        h.now(),
		}),
		done: make(chan struct{}),
	}
	h.current = handle

	h.logger.Info("harvest started", "session", id, "url", homepageURL,
		"max_articles", maxArticles, "threshold", qualityThreshold)

	go h.run(context.WithoutCancel(ctx), handle, homepageURL, maxArticles, qualityThreshold)
	return handle, nil
}

// GetStatus returns a snapshot of the latest session, or an idle status before the first one.
func (h *Harvester) GetStatus() domain.HarvestStatus {
	h.mu.Lock()
	current := h.current
	h.mu.Unlock()

	if current == nil {
		return domain.HarvestStatus{State: domain.StateIdle, Status: "Ready"}
	}
	return current.session.snapshot()
}

// GetResults returns the accepted articles of the latest finished session.
func (h *Harvester) GetResults() ([]domain.AcceptedArticle, error) {
	st := h.GetStatus()
	if st.Active {
		return nil, ErrSessionActive
	}
	return st.Articles, nil
}

// Cancel requests cooperative cancellation of the running session, if any.
func (h *Harvester) Cancel() {
	h.mu.Lock()
	current := h.current
	h.mu.Unlock()

	if current != nil {
		current.Cancel()
	}
}

func (h *Harvester) validate(homepageURL string, maxArticles int, threshold float64) error {
	u, err := url.Parse(homepageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: homepage url %q must be an absolute http(s) url", ErrInvalidParameter, homepageURL)
	}
	if maxArticles < 1 || maxArticles > h.maxLimit {
		return fmt.Errorf("%w: maxArticles %d outside [1, %d]", ErrInvalidParameter, maxArticles, h.maxLimit)
	}
	if !(threshold >= 0 && threshold <= 1) {
		return fmt.Errorf("%w: qualityThreshold %v outside [0, 1]", ErrInvalidParameter, threshold)
	}
	return nil
}

func (h *Harvester) run(ctx context.Context, handle *Handle, homepageURL string, maxArticles int, threshold float64) {
	defer close(handle.done)

	s := handle.session
	logger := h.logger.With("session", handle.id)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("harvest aborted", "panic", r)
			h.finish(s, domain.StateFailed, fmt.Sprintf("Error: %v", r))
		}
	}()

	s.update(func(st *domain.HarvestStatus) {
		st.State = domain.StateDiscovering
		st.Status = "Discovering articles..."
	})

	urls := h.discoverer.Discover(ctx, homepageURL)
	s.update(func(st *domain.HarvestStatus) { st.URLsFound = len(urls) })

	if len(urls) == 0 {
		h.finish(s, domain.StateCompleted, "No articles found on this page")
		logger.Info("harvest finished", "state", domain.StateCompleted, "accepted", 0)
		return
	}

	if limit := urlBudget * maxArticles; len(urls) > limit {
		urls = urls[:limit]
	}

	s.update(func(st *domain.HarvestStatus) { st.State = domain.StateProcessing })

	seen := &dedup.Set{}
	accepted := 0
	for i, pageURL := range urls {
		if handle.cancelled.Load() {
			h.finish(s, domain.StateCancelled,
				fmt.Sprintf("Cancelled after %d URLs; collected %d articles", i, accepted))
			logger.Info("harvest cancelled", "processed", i, "accepted", accepted)
			return
		}

		s.update(func(st *domain.HarvestStatus) {
			st.Status = fmt.Sprintf("Processing article %d of %d...", i+1, len(urls))
		})

		article, reason := h.process(ctx, logger, pageURL, threshold, seen)
		if article == nil {
			logger.Debug("article skipped", "url", pageURL, "reason", reason)
		} else {
			accepted++
		}

		processed := i + 1
		s.update(func(st *domain.HarvestStatus) {
			st.URLsProcessed = processed
			st.Progress = min(100, float64(processed)/float64(maxArticles)*100)
			if article != nil {
				st.Articles = append(st.Articles, *article)
				st.Accepted = len(st.Articles)
			} else {
				st.Skipped[reason]++
			}
		})

		if accepted >= maxArticles {
			break
		}
	}

	h.finish(s, domain.StateCompleted, fmt.Sprintf("Complete! Collected %d high-quality articles", accepted))
	logger.Info("harvest finished", "state", domain.StateCompleted, "accepted", accepted, "fingerprints", seen.Len())
}

// process runs one URL through every gate, returning the accepted article or the reason
// it was skipped.
func (h *Harvester) process(ctx context.Context, logger *slog.Logger, pageURL string, threshold float64, seen *dedup.Set) (*domain.AcceptedArticle, domain.SkipReason) {
	page, ok := h.fetcher.Fetch(ctx, pageURL)
	if !ok {
		return nil, domain.SkipFetchFailed
	}

	article, err := h.extractor.Extract(page, pageURL)
	if err != nil {
		return nil, domain.SkipNotExtractable
	}
	article.Source = h.sources.Label(pageURL)

	if utf8.RuneCountInString(article.Title) < minTitleRunes {
		return nil, domain.SkipInvalidTitle
	}
	if article.WordCount < minWordCount {
		return nil, domain.SkipTooShort
	}

	q := quality.Evaluate(*article)
	logger.Debug("quality scored", "url", pageURL, "score", q.Score,
		"title", q.Title, "length", q.Length, "structure", q.Structure,
		"language", q.Language, "metadata", q.Metadata)
	score := q.Score
	if score < threshold {
		return nil, domain.SkipLowQuality
	}

	report := h.bias.Analyze(article.Title + " " + article.Content)

	hash := dedup.Fingerprint(article.Title, article.Content)
	if seen.SeenBefore(hash) {
		return nil, domain.SkipDuplicate
	}
	seen.Add(hash)

	return &domain.AcceptedArticle{
		ExtractedArticle: *article,
		QualityScore:     score,
		Bias:             report,
		ContentHash:      hash,
	}, ""
}

func (h *Harvester) finish(s *session, state domain.State, status string) {
	finishedAt := h.now()
	s.update(func(st *domain.HarvestStatus) {
		if st.State.Terminal() {
			return
		}
		st.State = state
		st.Status = status
		st.Active = false
		st.Metrics = Aggregate(st.Articles)
		st.FinishedAt = finishedAt
	})
}
