// Package bias measures keyword-based ideological and demographic bias indicators in text.
package bias

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"NewsHarvest/internal/domain"
)

// Category names with dedicated concern rules.
const (
	PoliticalLeft  = "political_left"
	PoliticalRight = "political_right"
	Gender         = "gender_bias"
	Age            = "age_bias"
	Geographic     = "geographic_bias"
	Economic       = "economic_bias"
)

const (
	balancedBelow       = 2.0
	highDensityFrom     = 3.0
	politicalSkewAbove  = 3
	demographicSkewOver = 5
)

// KeywordTable maps a category name to the keywords that indicate it.
type KeywordTable map[string][]string

// DefaultKeywords is the built-in keyword table.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		PoliticalLeft:  {"progressive", "liberal", "democrat", "climate change", "social justice"},
		PoliticalRight: {"conservative", "republican", "traditional values", "law and order"},
		Gender:         {"spokesman", "spokeswoman", "he said", "she said"},
		Age:            {"young", "old", "elderly", "millennial", "boomer"},
		Geographic:     {"urban", "rural", "city", "countryside"},
		Economic:       {"wealthy", "poor", "working class", "elite"},
	}
}

// Analyzer holds an immutable copy of the keyword table.
type Analyzer struct {
	categories  []string
	keywords    map[string][]string
	demographic bool
}

// Option tweaks an Analyzer.
type Option func(*Analyzer)

// WithDemographicConcerns toggles the gender+age+geographic concern rule.
func WithDemographicConcerns(enabled bool) Option {
	return func(a *Analyzer) { a.demographic = enabled }
}

// NewAnalyzer copies table so later changes by the caller are not observed.
// An empty table falls back to DefaultKeywords.
func NewAnalyzer(table KeywordTable, opts ...Option) *Analyzer {
	if len(table) == 0 {
		table = DefaultKeywords()
	}

	a := &Analyzer{
		keywords:    make(map[string][]string, len(table)),
		demographic: true,
	}
	for category, words := range table {
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				lowered = append(lowered, w)
			}
		}
		a.keywords[category] = lowered
		a.categories = append(a.categories, category)
	}
	sort.Strings(a.categories)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds the bias report for text.
func (a *Analyzer) Analyze(text string) domain.BiasReport {
	words := domain.CountWords(text)
	if words == 0 {
		return domain.BiasReport{
			CategoryCounts: map[string]int{},
			Balanced:       true,
			Concerns:       []string{},
		}
	}

	lower := strings.ToLower(text)
	counts := make(map[string]int, len(a.categories))
	total := 0
	for _, category := range a.categories {
		n := 0
		for _, kw := range a.keywords[category] {
			n += strings.Count(lower, kw)
		}
		counts[category] = n
		total += n
	}

	// Thresholds apply to the unrounded ratio; only the reported density is rounded.
	raw := float64(total) / float64(words) * 100

	report := domain.BiasReport{
		CategoryCounts:  counts,
		TotalIndicators: total,
		Density:         round2(raw),
		Balanced:        raw < balancedBelow,
		Concerns:        []string{},
	}

	if raw >= highDensityFrom {
		report.Concerns = append(report.Concerns, fmt.Sprintf("High bias density: %.2f%%", raw))
	}

	left, right := counts[PoliticalLeft], counts[PoliticalRight]
	if left > politicalSkewAbove && right == 0 {
		report.Concerns = append(report.Concerns, "Strong left-leaning political language")
	}
	if right > politicalSkewAbove && left == 0 {
		report.Concerns = append(report.Concerns, "Strong right-leaning political language")
	}

	if a.demographic && counts[Gender]+counts[Age]+counts[Geographic] > demographicSkewOver {
		report.Concerns = append(report.Concerns, "High demographic bias indicators")
	}

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
