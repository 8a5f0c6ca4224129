// Package analysis post-processes the articles of a session: it translates
// the Spanish titles and looks for words repeated across the translations.
package analysis

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pevans/opinionscraper/discovery"
)

const (
	SourceLanguage = "es"
	TargetLanguage = "en"

	// MinRepeats is the count a word must exceed to be reported.
	MinRepeats = 2
)

// StopWords are ignored when counting words.
var StopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "to": true,
	"in": true, "is": true, "it": true, "for": true, "of": true,
	"on": true, "with": true, "from": true, "at": true, "by": true,
}

// Translator translates text. On failure it still returns printable text
// together with a non-nil error.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Report is the outcome of one session.
type Report struct {
	ID            uuid.UUID       `json:"id"`
	Session       string          `json:"session"`
	CreatedAt     time.Time       `json:"created_at"`
	Articles      []ArticleReport `json:"articles"`
	RepeatedWords []WordCount     `json:"repeated_words"`
}

// ArticleReport is an article with its translated title. TranslatedTitle is
// empty when the article was not translated, and holds a placeholder when
// translation failed.
type ArticleReport struct {
	discovery.Article
	TranslatedTitle string `json:"translated_title,omitempty"`
	Translated      bool   `json:"translated"`
}

// WordCount is a word and the number of times it occurs.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Analyze translates the title of every article whose body was scraped and
// counts words across the successful translations.
func Analyze(ctx context.Context, session string, articles []discovery.Article, translator Translator, logger *log.Logger) Report {
	if logger == nil {
		logger = log.Default()
	}

	report := Report{
		ID:            uuid.New(),
		Session:       session,
		CreatedAt:     time.Now(),
		Articles:      make([]ArticleReport, 0, len(articles)),
		RepeatedWords: []WordCount{},
	}

	var translated []string
	for _, article := range articles {
		entry := ArticleReport{Article: article}

		if article.Title != "" && article.Body != discovery.BodyNotScraped {
			title, err := translator.Translate(ctx, article.Title, SourceLanguage, TargetLanguage)
			entry.TranslatedTitle = title
			if err != nil {
				logger.Warn("title not translated", "title", article.Title, "err", err)
			} else {
				entry.Translated = true
				translated = append(translated, title)
			}
		}

		report.Articles = append(report.Articles, entry)
	}

	report.RepeatedWords = RepeatedWords(translated)
	return report
}

// RepeatedWords counts the words of texts and returns those occurring more
// than MinRepeats times, most frequent first and alphabetically on ties.
// Stop words and single-character words are not counted.
func RepeatedWords(texts []string) []WordCount {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range Words(text) {
			if StopWords[word] || len([]rune(word)) < 2 {
				continue
			}
			counts[word]++
		}
	}

	repeated := []WordCount{}
	for word, count := range counts {
		if count > MinRepeats {
			repeated = append(repeated, WordCount{Word: word, Count: count})
		}
	}

	slices.SortFunc(repeated, func(a, b WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})

	return repeated
}

// Words splits text into lower-case words: maximal runs of letters, digits
// and underscores.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
