// Package quality scores extracted articles on a 0-1 scale from fixed, additively capped
// sub-scores.
package quality

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"NewsHarvest/internal/domain"
)

const (
	maxScore = 1.0

	minTitleRunes  = 10
	goodTitleRunes = 20
	titleGood      = 0.25
	titleOK        = 0.15

	metadataField = 0.05
)

var lengthTiers = []tier{
	{500, 0.35},
	{300, 0.25},
	{200, 0.20},
	{100, 0.15},
}

var structureTiers = []tier{
	{10, 0.20},
	{5, 0.15},
	{3, 0.10},
}

type tier struct {
	min   int
	award float64
}

// Report is the per-factor breakdown of a score.
type Report struct {
	Score     float64 `json:"score"`
	Title     float64 `json:"title"`
	Length    float64 `json:"length"`
	Structure float64 `json:"structure"`
	Language  float64 `json:"language"`
	Metadata  float64 `json:"metadata"`
}

// Score returns the quality score of a in [0, 1].
func Score(a domain.ExtractedArticle) float64 {
	return Evaluate(a).Score
}

// Evaluate computes every sub-score and their clamped total. The total is rounded to four
// decimals so threshold comparisons do not depend on float summation order.
func Evaluate(a domain.ExtractedArticle) Report {
	r := Report{
		Title:     titleScore(a.Title),
		Length:    tierScore(a.WordCount, lengthTiers),
		Structure: tierScore(sentenceEndings(a.Content), structureTiers),
		Language:  languageScore(a.Content),
		Metadata:  metadataScore(a),
	}

	total := r.Title + r.Length + r.Structure + r.Language + r.Metadata
	total = math.Round(total*10000) / 10000
	r.Score = math.Max(0, math.Min(total, maxScore))
	return r
}

func titleScore(title string) float64 {
	n := utf8.RuneCountInString(title)
	if title == "" || n < minTitleRunes || isUpper(title) {
		return 0
	}
	if n >= goodTitleRunes {
		return titleGood
	}
	return titleOK
}

func tierScore(v int, tiers []tier) float64 {
	for _, t := range tiers {
		if v >= t.min {
			return t.award
		}
	}
	return 0
}

func sentenceEndings(content string) int {
	return strings.Count(content, ".") + strings.Count(content, "!") + strings.Count(content, "?")
}

// languageScore penalises shouting: the share of upper-case characters in content.
func languageScore(content string) float64 {
	total := utf8.RuneCountInString(content)
	if total == 0 {
		return 0
	}
	upper := 0
	for _, r := range content {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	ratio := float64(upper) / float64(total)
	switch {
	case ratio <= 0.05:
		return 0.10
	case ratio <= 0.10:
		return 0.05
	default:
		return 0
	}
}

func metadataScore(a domain.ExtractedArticle) float64 {
	score := 0.0
	if a.Author != "" {
		score += metadataField
	}
	if a.PublishDate != "" {
		score += metadataField
	}
	return score
}

// isUpper reports whether s has at least one cased letter and none of them is lower-case.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
