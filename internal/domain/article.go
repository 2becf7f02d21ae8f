package domain

import (
	"strings"
	"time"
)

// ExtractedArticle is the structured data scraped from one page.
type ExtractedArticle struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content"`
	Author      string    `json:"author,omitempty"`
	PublishDate string    `json:"publish_date,omitempty"`
	WordCount   int       `json:"word_count"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Source      string    `json:"source"`
}

// SetContent replaces the content and recomputes the word count from it.
func (a *ExtractedArticle) SetContent(content string) {
	a.Content = content
	a.WordCount = CountWords(content)
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// BiasReport captures keyword-density bias indicators for a piece of text.
type BiasReport struct {
	CategoryCounts  map[string]int `json:"bias_scores"`
	TotalIndicators int            `json:"total_bias_indicators"`
	Density         float64        `json:"bias_density"`
	Balanced        bool           `json:"is_balanced"`
	Concerns        []string       `json:"concerns"`
}

// Clone returns a copy that shares neither the counts map nor the concerns slice with b.
func (b BiasReport) Clone() BiasReport {
	out := b
	if b.CategoryCounts != nil {
		out.CategoryCounts = make(map[string]int, len(b.CategoryCounts))
		for k, v := range b.CategoryCounts {
			out.CategoryCounts[k] = v
		}
	}
	if b.Concerns != nil {
		out.Concerns = append([]string(nil), b.Concerns...)
	}
	return out
}

// AcceptedArticle is an article that cleared every gate of a harvest session.
type AcceptedArticle struct {
	ExtractedArticle
	QualityScore float64    `json:"quality_score"`
	Bias         BiasReport `json:"bias_analysis"`
	ContentHash  string     `json:"content_hash"`
}

// Metrics summarises the accepted set of a finished session.
type Metrics struct {
	TotalArticles     int     `json:"total_articles"`
	AvgQualityScore   float64 `json:"avg_quality_score"`
	AvgBiasDensity    float64 `json:"avg_bias_density"`
	AvgWordCount      int     `json:"avg_word_count"`
	BalancedArticles  int     `json:"balanced_articles"`
	BalancePercentage float64 `json:"balance_percentage"`
}
