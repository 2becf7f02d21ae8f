package harvest

import (
	"math"

	"NewsHarvest/internal/domain"
)

// Aggregate summarises the accepted set. It returns nil for an empty set.
func Aggregate(articles []domain.AcceptedArticle) *domain.Metrics {
	n := len(articles)
	if n == 0 {
		return nil
	}

	var quality, density float64
	var words, balanced int
	for _, a := range articles {
		quality += a.QualityScore
		density += a.Bias.Density
		words += a.WordCount
		if a.Bias.Balanced {
			balanced++
		}
	}

	return &domain.Metrics{
		TotalArticles:     n,
		AvgQualityScore:   round(quality/float64(n), 3),
		AvgBiasDensity:    round(density/float64(n), 2),
		AvgWordCount:      words / n,
		BalancedArticles:  balanced,
		BalancePercentage: round(float64(balanced)/float64(n)*100, 1),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
