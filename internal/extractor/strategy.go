package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Strategy pulls one field out of a parsed document. It reports false when it found nothing
// usable, which lets the caller move on to the next strategy.
type Strategy func(doc *goquery.Document) (string, bool)

// FirstText returns the normalised text of the first element matching selector.
func FirstText(selector string) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		text := normalizeSpace(sel.Text())
		return text, text != ""
	}
}

// Paragraphs joins the non-empty texts of every element matching selector, provided at least
// minCount of them are non-empty.
func Paragraphs(selector string, minCount int) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		var parts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := normalizeSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) < minCount {
			return "", false
		}
		return strings.Join(parts, " "), true
	}
}

// AttrOrText prefers attr of the first element matching selector and falls back to its text.
func AttrOrText(selector, attr string) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		if v, ok := sel.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
		text := normalizeSpace(sel.Text())
		return text, text != ""
	}
}

// MaxRunes rejects whatever s yields when it is longer than limit characters.
func MaxRunes(s Strategy, limit int) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		text, ok := s(doc)
		if !ok || utf8.RuneCountInString(text) > limit {
			return "", false
		}
		return text, true
	}
}

// First runs strategies in order and returns the first success.
func First(doc *goquery.Document, strategies []Strategy) (string, bool) {
	for _, s := range strategies {
		if text, ok := s(doc); ok {
			return text, true
		}
	}
	return "", false
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
