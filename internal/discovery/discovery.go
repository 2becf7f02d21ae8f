// Package discovery finds candidate article URLs one hop away from a news homepage.
package discovery

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsHarvest/internal/classifier"
	"NewsHarvest/internal/ports"
)

// DefaultMaxCandidates bounds how many URLs a single discovery returns.
const DefaultMaxCandidates = 40

const feedLinkSelector = `link[rel="alternate"][href]`

// Options configure a Discoverer.
type Options struct {
	MaxCandidates int
	IncludeFeeds  bool
}

// Discoverer implements ports.Discoverer over a Fetcher and a URL classifier.
type Discoverer struct {
	fetcher    ports.Fetcher
	classifier *classifier.Classifier
	opts       Options
	logger     *slog.Logger
}

var _ ports.Discoverer = (*Discoverer)(nil)

// New wires a discoverer; a nil classifier uses the default rules.
func New(fetcher ports.Fetcher, c *classifier.Classifier, opts Options, logger *slog.Logger) *Discoverer {
	if c == nil {
		c = classifier.Default()
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{fetcher: fetcher, classifier: c, opts: opts, logger: logger}
}

// Discover returns article-shaped links found on homepageURL in document order, without
// duplicates and capped at MaxCandidates. A failed homepage fetch yields no candidates.
func (d *Discoverer) Discover(ctx context.Context, homepageURL string) []string {
	base, err := url.Parse(homepageURL)
	if err != nil || base.Host == "" {
		d.logger.Warn("invalid homepage url", "url", homepageURL, "error", err)
		return nil
	}

	page, ok := d.fetcher.Fetch(ctx, homepageURL)
	if !ok {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		d.logger.Warn("parse homepage", "url", homepageURL, "error", err)
		return nil
	}

	c := newCollector(d.classifier, base.Host, d.opts.MaxCandidates, d.logger)

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return c.add(resolve(base, href))
	})

	if d.opts.IncludeFeeds && !c.full() {
		for _, feedURL := range feedLinks(doc, base) {
			if !d.collectFeed(ctx, feedURL, c) {
				break
			}
		}
	}

	d.logger.Debug("discovery done", "homepage", homepageURL, "candidates", len(c.urls))
	return c.urls
}

// collectFeed adds feed item links, resolved against feedURL, and reports whether there is
// room for more.
func (d *Discoverer) collectFeed(ctx context.Context, feedURL string, c *collector) bool {
	base, err := url.Parse(feedURL)
	if err != nil {
		return true
	}
	body, ok := d.fetcher.Fetch(ctx, feedURL)
	if !ok {
		return true
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		d.logger.Warn("parse feed", "url", feedURL, "error", err)
		return true
	}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if !c.add(resolve(base, item.Link)) {
			return false
		}
	}
	return true
}

func feedLinks(doc *goquery.Document, base *url.URL) []string {
	var out []string
	doc.Find(feedLinkSelector).Each(func(_ int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		typ = strings.ToLower(typ)
		if !strings.Contains(typ, "rss") && !strings.Contains(typ, "atom") {
			return
		}
		href, _ := s.Attr("href")
		if abs := resolve(base, href); abs != "" {
			out = append(out, abs)
		}
	})
	return out
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

type collector struct {
	classifier *classifier.Classifier
	host       string
	limit      int
	seen       map[string]struct{}
	urls       []string
	logger     *slog.Logger
}

func newCollector(c *classifier.Classifier, host string, limit int, logger *slog.Logger) *collector {
	return &collector{
		classifier: c,
		host:       host,
		limit:      limit,
		seen:       map[string]struct{}{},
		logger:     logger,
	}
}

// add classifies u and keeps it when new; it reports whether more URLs fit.
func (c *collector) add(u string) bool {
	if u == "" {
		return !c.full()
	}
	if _, dup := c.seen[u]; dup {
		return !c.full()
	}
	c.seen[u] = struct{}{}

	ok, pattern := c.classifier.Match(u, c.host)
	if !ok {
		return !c.full()
	}
	c.logger.Debug("article url", "url", u, "pattern", pattern)
	c.urls = append(c.urls, u)
	return !c.full()
}

func (c *collector) full() bool {
	return len(c.urls) >= c.limit
}
