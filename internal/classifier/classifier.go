// Package classifier decides whether a URL looks like a news article.
package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIncludePatterns are path shapes typical of article pages.
var DefaultIncludePatterns = []string{
	`/news/`, `/article/`, `/\d{4}/\d{2}/`, `/world/`,
	`/politics/`, `/technology/`, `/business/`, `/health/`,
	`/science/`, `/environment/`, `/sports/`,
}

// DefaultExcludePatterns mark sections that are never articles.
var DefaultExcludePatterns = []string{
	`/live/`, `/weather/`, `/search`, `#`, `javascript:`,
	`/video/`, `/gallery/`, `/podcast/`, `/newsletter/`,
	`/subscribe/`, `/contact/`, `/about/`,
}

// Classifier holds the compiled include and exclude rules.
type Classifier struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// New compiles the given patterns. Empty lists fall back to the defaults.
func New(include, exclude []string) (*Classifier, error) {
	if len(include) == 0 {
		include = DefaultIncludePatterns
	}
	if len(exclude) == 0 {
		exclude = DefaultExcludePatterns
	}

	inc, err := compileAll(include)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	exc, err := compileAll(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	return &Classifier{include: inc, exclude: exc}, nil
}

// Default returns a classifier using the built-in rules.
func Default() *Classifier {
	c, err := New(nil, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// IsArticleURL reports whether url belongs to baseDomain and has an article-shaped path.
func (c *Classifier) IsArticleURL(url, baseDomain string) bool {
	ok, _ := c.Match(url, baseDomain)
	return ok
}

// Match is IsArticleURL that also returns the include pattern that fired.
// The pattern is returned even when an exclude rule vetoes the URL.
func (c *Classifier) Match(url, baseDomain string) (bool, string) {
	if !strings.Contains(url, baseDomain) {
		return false, ""
	}

	for _, inc := range c.include {
		if !inc.MatchString(url) {
			continue
		}
		for _, exc := range c.exclude {
			if exc.MatchString(url) {
				return false, inc.String()
			}
		}
		return true, inc.String()
	}

	return false, ""
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
