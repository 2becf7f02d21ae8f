package harvest

import (
	"net/url"
	"strings"
	"unicode"
)

// SourceRule maps a host fragment to a display label.
type SourceRule struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
}

// DefaultSourceRules label a handful of well-known outlets.
var DefaultSourceRules = []SourceRule{
	{Match: "bbc", Label: "BBC"},
	{Match: "reuters", Label: "Reuters"},
	{Match: "guardian", Label: "Guardian"},
	{Match: "techcrunch", Label: "TechCrunch"},
	{Match: "cnn", Label: "CNN"},
	{Match: "npr", Label: "NPR"},
}

// SourceLabeler derives a source label from an article URL. Rules are checked in order.
type SourceLabeler struct {
	rules []SourceRule
}

// NewSourceLabeler copies rules; an empty list uses DefaultSourceRules.
func NewSourceLabeler(rules []SourceRule) *SourceLabeler {
	if len(rules) == 0 {
		rules = DefaultSourceRules
	}
	out := make([]SourceRule, 0, len(rules))
	for _, r := range rules {
		if r.Match == "" {
			continue
		}
		out = append(out, SourceRule{Match: strings.ToLower(r.Match), Label: r.Label})
	}
	return &SourceLabeler{rules: out}
}

// Label returns the first matching rule's label, or the host without "www." title-cased.
func (l *SourceLabeler) Label(pageURL string) string {
	host := strings.ToLower(pageURL)
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}

	for _, r := range l.rules {
		if strings.Contains(host, r.Match) {
			return r.Label
		}
	}

	return titleCase(strings.ReplaceAll(host, "www.", ""))
}

// titleCase upper-cases the first letter of every run of letters.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
