package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/opinionscraper/analysis"
	"github.com/pevans/opinionscraper/discovery"
	"github.com/stretchr/testify/assert"
)

func sampleReport() analysis.Report {
	return analysis.Report{
		ID:        uuid.MustParse("0b6f1d2e-3a4b-4c5d-8e9f-a0b1c2d3e4f5"),
		Session:   "Chrome Windows 11",
		CreatedAt: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
		Articles: []analysis.ArticleReport{
			{
				Article: discovery.Article{
					URL:       "https://elpais.com/opinion/a.html",
					Title:     "La crisis política",
					Body:      strings.Repeat("b", 300),
					ImagePath: "scraped_images/article_1_Chrome_Windows_11.jpg",
				},
				TranslatedTitle: "The political crisis",
				Translated:      true,
			},
			{
				Article: discovery.Article{
					URL:       "https://elpais.com/opinion/b.html",
					Title:     "Sin cuerpo",
					Body:      discovery.BodyNotScraped,
					ImagePath: discovery.NoImageFound,
				},
			},
		},
		RepeatedWords: []analysis.WordCount{{Word: "crisis", Count: 3}},
	}
}

func TestWriteSession(t *testing.T) {
	var buf bytes.Buffer

	WriteSession(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "--- Chrome Windows 11: RESULTS & ANALYSIS ---")
	assert.Contains(t, out, "[ ARTICLE 1 ]")
	assert.Contains(t, out, "Spanish Title: La crisis política")
	assert.Contains(t, out, "Spanish Content (Snippet): "+strings.Repeat("b", 250)+"...\n")
	assert.NotContains(t, out, strings.Repeat("b", 251))
	assert.Contains(t, out, "Image Status: scraped_images/article_1_Chrome_Windows_11.jpg")
	assert.Contains(t, out, "Translated Header (EN): The political crisis")
	assert.Contains(t, out, "[ ARTICLE 2 ]")
	assert.Contains(t, out, "Spanish Content (Snippet): CONTENT NOT SCRAPED...")
	assert.Equal(t, 1, strings.Count(out, "Translated Header (EN):"), "untranslated articles print no header")
	assert.Contains(t, out, "Word Repetition Analysis (Words repeated > 2 times)")
	assert.Contains(t, out, "crisis")
}

func TestWriteSession_NoArticles(t *testing.T) {
	var buf bytes.Buffer

	WriteSession(&buf, analysis.Report{Session: "Edge"})

	assert.Equal(t, "\n--- Edge: ANALYSIS FAILED: No articles scraped. ---\n", buf.String())
}

func TestWriteRepeatedWords_None(t *testing.T) {
	var buf bytes.Buffer

	WriteRepeatedWords(&buf, nil)

	assert.Equal(t, NoRepeatedWords+"\n", buf.String())
}

func TestWriteRepeatedWords_Table(t *testing.T) {
	var buf bytes.Buffer

	WriteRepeatedWords(&buf, []analysis.WordCount{{Word: "crisis", Count: 4}, {Word: "war", Count: 3}})
	out := buf.String()

	assert.Contains(t, out, "WORD")
	assert.Contains(t, out, "crisis")
	assert.Contains(t, out, "4")
	assert.Less(t, strings.Index(out, "crisis"), strings.Index(out, "war"))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer

	WriteSummary(&buf, "Chrome Windows 11", 5)

	assert.Equal(t, "\nChrome Windows 11: Total articles scraped: 5\n", buf.String())
}

func TestWriteList(t *testing.T) {
	var buf bytes.Buffer

	WriteList(&buf, []analysis.Report{sampleReport()})
	out := buf.String()

	assert.Contains(t, out, "0b6f1d2e")
	assert.NotContains(t, out, "0b6f1d2e-3a4b", "IDs are shortened")
	assert.Contains(t, out, "Chrome Windows 11")
	assert.Contains(t, out, "2025-03-01 12:30")
	assert.Contains(t, out, "crisis")
}

func TestWriteList_Empty(t *testing.T) {
	var buf bytes.Buffer

	WriteList(&buf, nil)

	assert.Equal(t, "No results to display.\n", buf.String())
}
