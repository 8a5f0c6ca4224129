package analysis

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pevans/opinionscraper/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTranslator maps titles to translations; unknown titles fail
type fakeTranslator struct {
	translations map[string]string
	calls        []string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	f.calls = append(f.calls, text)
	if from != SourceLanguage || to != TargetLanguage {
		return "", errors.New("unexpected languages")
	}
	if translated, ok := f.translations[text]; ok {
		return translated, nil
	}
	return "[Translation failed: HTTP 500]", errors.New("HTTP 500")
}

func article(title, body string) discovery.Article {
	return discovery.Article{
		URL:       "https://elpais.com/opinion/" + title,
		Title:     title,
		Body:      body,
		ImagePath: discovery.NoImageFound,
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"the", "state", "s", "crisis", "2024", "snake_case"},
		Words("The state's CRISIS, 2024 -- snake_case!"))
	assert.Equal(t, []string{"españa", "análisis"}, Words("España: análisis"))
	assert.Empty(t, Words("  ... !!! "))
}

func TestRepeatedWords(t *testing.T) {
	titles := []string{
		"The war and the peace",
		"Peace talks in the war zone",
		"War, peace and a new government",
		"Government of peace",
	}

	got := RepeatedWords(titles)

	assert.Equal(t, []WordCount{
		{Word: "peace", Count: 4},
		{Word: "war", Count: 3},
	}, got)
}

func TestRepeatedWords_TiesSortAlphabetically(t *testing.T) {
	got := RepeatedWords([]string{"zeta alpha", "zeta alpha", "zeta alpha"})

	assert.Equal(t, []WordCount{{Word: "alpha", Count: 3}, {Word: "zeta", Count: 3}}, got)
}

func TestRepeatedWords_IgnoresStopWordsAndSingleCharacters(t *testing.T) {
	got := RepeatedWords([]string{"the a x of by", "the a x of by", "the a x of by"})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRepeatedWords_ExactlyTwiceNotReported(t *testing.T) {
	assert.Empty(t, RepeatedWords([]string{"crisis", "crisis"}))
}

func TestAnalyze_TranslatesScrapedArticles(t *testing.T) {
	translator := &fakeTranslator{translations: map[string]string{
		"La crisis política":     "The political crisis",
		"Otra crisis política":   "Another political crisis",
		"Crisis y más crisis":    "Crisis and more crisis",
	}}
	articles := []discovery.Article{
		article("La crisis política", "cuerpo largo"),
		article("Otra crisis política", "cuerpo largo"),
		article("Sin cuerpo", discovery.BodyNotScraped),
		article("Crisis y más crisis", "cuerpo largo"),
	}

	report := Analyze(context.Background(), "Chrome Windows 11", articles, translator, log.New(io.Discard))

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, "Chrome Windows 11", report.Session)
	require.Len(t, report.Articles, 4)
	assert.Equal(t, "The political crisis", report.Articles[0].TranslatedTitle)
	assert.True(t, report.Articles[0].Translated)
	assert.Empty(t, report.Articles[2].TranslatedTitle, "articles without a body are not translated")
	assert.False(t, report.Articles[2].Translated)
	assert.NotContains(t, translator.calls, "Sin cuerpo")

	assert.Equal(t, []WordCount{{Word: "crisis", Count: 4}}, report.RepeatedWords)
}

func TestAnalyze_FailedTranslationsExcludedFromWordCount(t *testing.T) {
	translator := &fakeTranslator{translations: map[string]string{
		"Uno": "Failed failed",
	}}
	articles := []discovery.Article{
		article("Uno", "cuerpo"),
		article("Dos", "cuerpo"),
		article("Tres", "cuerpo"),
	}

	report := Analyze(context.Background(), "s", articles, translator, log.New(io.Discard))

	assert.Equal(t, "[Translation failed: HTTP 500]", report.Articles[1].TranslatedTitle)
	assert.False(t, report.Articles[1].Translated)
	assert.Empty(t, report.RepeatedWords, "placeholders must not count as words")
}

func TestAnalyze_NoArticles(t *testing.T) {
	report := Analyze(context.Background(), "s", nil, &fakeTranslator{}, log.New(io.Discard))

	assert.NotNil(t, report.Articles)
	assert.Empty(t, report.Articles)
	assert.Empty(t, report.RepeatedWords)
}
