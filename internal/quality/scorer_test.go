package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsHarvest/internal/domain"
)

func article(title, content, author, date string) domain.ExtractedArticle {
	a := domain.ExtractedArticle{Title: title, Author: author, PublishDate: date}
	a.SetContent(content)
	return a
}

func TestScoreFullArticle(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("the council met today. ", 150)
	a := article("Local Council Approves New Budget Plan", content, "", "")

	r := Evaluate(a)
	assert.Equal(t, 0.25, r.Title)
	assert.Equal(t, 0.35, r.Length)
	assert.Equal(t, 0.20, r.Structure)
	assert.Equal(t, 0.10, r.Language)
	assert.Equal(t, 0.0, r.Metadata)
	assert.Equal(t, 0.9, r.Score)
	assert.Equal(t, 0.9, Score(a))
}

func TestScoreMinimalArticle(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("word ", 97) + "end. one. two."
	a := article("Council Votes On Plan", content, "", "")

	assert.Equal(t, 100, a.WordCount)
	assert.Equal(t, 0.6, Score(a))
}

func TestTitleScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, titleScore(""))
	assert.Equal(t, 0.0, titleScore("Too short"))
	assert.Equal(t, 0.0, titleScore("ALL CAPS HEADLINE HERE"))
	assert.Equal(t, 0.15, titleScore("Short title"))
	assert.Equal(t, 0.25, titleScore("A headline of decent length"))
	assert.Equal(t, 0.15, titleScore("1234567890"))
}

func TestLengthAndStructureTiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, tierScore(99, lengthTiers))
	assert.Equal(t, 0.15, tierScore(100, lengthTiers))
	assert.Equal(t, 0.20, tierScore(200, lengthTiers))
	assert.Equal(t, 0.25, tierScore(499, lengthTiers))
	assert.Equal(t, 0.35, tierScore(500, lengthTiers))

	assert.Equal(t, 0, sentenceEndings("no terminators"))
	assert.Equal(t, 3, sentenceEndings("One. Two! Three?"))
	assert.Equal(t, 0.0, tierScore(2, structureTiers))
	assert.Equal(t, 0.10, tierScore(3, structureTiers))
	assert.Equal(t, 0.15, tierScore(5, structureTiers))
	assert.Equal(t, 0.20, tierScore(10, structureTiers))
}

func TestLanguageScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, languageScore(""))
	assert.Equal(t, 0.10, languageScore("A"+strings.Repeat("a", 19)))
	assert.Equal(t, 0.05, languageScore("AA"+strings.Repeat("a", 18)))
	assert.Equal(t, 0.0, languageScore("AAA"+strings.Repeat("a", 17)))
}

func TestMetadataScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, metadataScore(domain.ExtractedArticle{}))
	assert.Equal(t, 0.05, metadataScore(domain.ExtractedArticle{Author: "Sam"}))
	assert.Equal(t, 0.1, metadataScore(domain.ExtractedArticle{Author: "Sam", PublishDate: "today"}))
}

func TestScoreIsBounded(t *testing.T) {
	t.Parallel()

	inputs := []domain.ExtractedArticle{
		{},
		article("x", "", "", ""),
		article("A Perfectly Reasonable Headline", strings.Repeat("Sentence here. ", 400), "Sam", "2025-01-01"),
		article("SHOUTING", strings.Repeat("LOUD WORDS! ", 300), "", ""),
	}
	for _, a := range inputs {
		s := Score(a)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
