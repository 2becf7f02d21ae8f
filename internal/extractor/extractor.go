// Package extractor turns raw article markup into a domain.ExtractedArticle using ordered
// fallback strategies per field.
package extractor

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsHarvest/internal/domain"
)

// ErrNotExtractable marks a page that could not be turned into an article at all.
var ErrNotExtractable = errors.New("page not extractable")

const (
	minContentParagraphs  = 3
	minFallbackParagraphs = 5
	maxAuthorRunes        = 100
)

// Default selector lists, most site-specific first.
var (
	DefaultTitleSelectors = []string{
		`h1[data-testid="headline"]`,
		`h1.story-headline`,
		`h1.article-title`,
		`h1`,
		`.headline h1`,
		`.article-header h1`,
		`.article-title`,
		`[data-component="headline"]`,
	}
	DefaultContentSelectors = []string{
		`[data-component="text-block"] p`,
		`article p`,
		`.story-body p`,
		`.article-content p`,
		`.post-content p`,
		`.content p`,
	}
	DefaultAuthorSelectors = []string{
		`.byline`, `.author`, `[data-component="byline"]`,
		`.article-author`, `[rel="author"]`, `.writer`,
		`.journalist`, `.correspondent`,
	}
	DefaultDateSelectors = []string{
		`time[datetime]`, `[data-testid="timestamp"]`,
		`.date`, `.published`, `.article-date`,
		`.publish-date`, `.timestamp`,
	}
)

// FieldStrategies is the ordered strategy list for each extracted field.
type FieldStrategies struct {
	Title       []Strategy
	Content     []Strategy
	Author      []Strategy
	PublishDate []Strategy
}

// BuildStrategies turns selector lists into strategies. The all-paragraph fallback is always
// appended to the content list.
func BuildStrategies(title, content, author, date []string) FieldStrategies {
	fs := FieldStrategies{}
	for _, s := range title {
		fs.Title = append(fs.Title, FirstText(s))
	}
	for _, s := range content {
		fs.Content = append(fs.Content, Paragraphs(s, minContentParagraphs))
	}
	fs.Content = append(fs.Content, Paragraphs("p", minFallbackParagraphs))
	for _, s := range author {
		fs.Author = append(fs.Author, MaxRunes(FirstText(s), maxAuthorRunes))
	}
	for _, s := range date {
		fs.PublishDate = append(fs.PublishDate, AttrOrText(s, "datetime"))
	}
	return fs
}

// Extractor applies site profiles on top of the generic strategies.
type Extractor struct {
	registry *Registry
	generic  FieldStrategies
	now      func() time.Time
}

// New wires an extractor; registry may be nil.
func New(registry *Registry) *Extractor {
	return &Extractor{
		registry: registry,
		generic: BuildStrategies(DefaultTitleSelectors, DefaultContentSelectors,
			DefaultAuthorSelectors, DefaultDateSelectors),
		now: time.Now,
	}
}

// Extract parses markup fetched from pageURL. Missing fields are left empty; only an
// unparsable document yields ErrNotExtractable.
func (e *Extractor) Extract(markup, pageURL string) (*domain.ExtractedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrNotExtractable, pageURL, err)
	}

	fs := e.strategiesFor(pageURL)

	article := &domain.ExtractedArticle{
		URL:       pageURL,
		ScrapedAt: e.now(),
	}
	article.Title, _ = First(doc, fs.Title)
	content, _ := First(doc, fs.Content)
	article.SetContent(content)
	article.Author, _ = First(doc, fs.Author)
	article.PublishDate, _ = First(doc, fs.PublishDate)

	return article, nil
}

func (e *Extractor) strategiesFor(pageURL string) FieldStrategies {
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = u.Host
	}

	profile, ok := e.registry.Resolve(host)
	if !ok {
		return e.generic
	}

	return BuildStrategies(
		concat(profile.Title, DefaultTitleSelectors),
		concat(profile.Content, DefaultContentSelectors),
		concat(profile.Author, DefaultAuthorSelectors),
		concat(profile.PublishDate, DefaultDateSelectors),
	)
}

func concat(first, rest []string) []string {
	out := make([]string, 0, len(first)+len(rest))
	out = append(out, first...)
	return append(out, rest...)
}
