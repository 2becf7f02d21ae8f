package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsHarvest/internal/domain"
)

func accepted(score, density float64, words int, balanced bool) domain.AcceptedArticle {
	return domain.AcceptedArticle{
		ExtractedArticle: domain.ExtractedArticle{WordCount: words},
		QualityScore:     score,
		Bias:             domain.BiasReport{Density: density, Balanced: balanced},
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Aggregate(nil))
	assert.Nil(t, Aggregate([]domain.AcceptedArticle{}))
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	m := Aggregate([]domain.AcceptedArticle{
		accepted(0.9, 1.25, 600, true),
		accepted(0.65, 3.5, 301, false),
		accepted(0.7, 0.0, 150, true),
	})
	require.NotNil(t, m)
	assert.Equal(t, 3, m.TotalArticles)
	assert.Equal(t, 0.75, m.AvgQualityScore)
	assert.Equal(t, 1.58, m.AvgBiasDensity)
	assert.Equal(t, 350, m.AvgWordCount)
	assert.Equal(t, 2, m.BalancedArticles)
	assert.Equal(t, 66.7, m.BalancePercentage)
}

func TestSourceLabels(t *testing.T) {
	t.Parallel()

	l := NewSourceLabeler(nil)
	assert.Equal(t, "BBC", l.Label("https://www.bbc.co.uk/news/world-1"))
	assert.Equal(t, "Reuters", l.Label("https://www.reuters.com/world/x"))
	assert.Equal(t, "Guardian", l.Label("https://www.theguardian.com/uk"))
	assert.Equal(t, "TechCrunch", l.Label("https://techcrunch.com/2025/03/x"))
	assert.Equal(t, "CNN", l.Label("https://edition.cnn.com/politics/y"))
	assert.Equal(t, "NPR", l.Label("https://www.npr.org/2025/03/z"))
	assert.Equal(t, "Apnews.Com", l.Label("https://www.apnews.com/article/z"))
	assert.Equal(t, "Local-Times.Co.Uk", l.Label("https://local-times.co.uk/news/a"))

	custom := NewSourceLabeler([]SourceRule{{Match: "Example", Label: "Example Daily"}, {Match: ""}})
	assert.Equal(t, "Example Daily", custom.Label("https://news.example.com/news/a"))
	assert.Equal(t, "Bbc.Co.Uk", custom.Label("https://www.bbc.co.uk/news/a"))
}
