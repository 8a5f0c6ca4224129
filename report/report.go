// Package report renders session reports for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/opinionscraper/analysis"
)

// SnippetLength is how much of an article body is shown.
const SnippetLength = 250

const rule = "=================================================="

// NoRepeatedWords is printed when no word passes the repetition threshold.
const NoRepeatedWords = "No words were repeated more than twice across the translated headers (after filtering stop words)."

// WriteSession prints the articles of one session with their translated
// titles, followed by the word repetition analysis.
func WriteSession(w io.Writer, r analysis.Report) {
	if len(r.Articles) == 0 {
		fmt.Fprintf(w, "\n--- %s: ANALYSIS FAILED: No articles scraped. ---\n", r.Session)
		return
	}

	fmt.Fprintf(w, "\n%s\n--- %s: RESULTS & ANALYSIS ---\n%s\n", rule, r.Session, rule)

	for i, a := range r.Articles {
		fmt.Fprintf(w, "\n[ ARTICLE %d ]\n", i+1)
		fmt.Fprintf(w, "Spanish Title: %s\n", a.Title)
		fmt.Fprintf(w, "Spanish Content (Snippet): %s...\n", snippet(a.Body, SnippetLength))
		fmt.Fprintf(w, "Image Status: %s\n", a.ImagePath)
		if a.TranslatedTitle != "" {
			fmt.Fprintf(w, "Translated Header (EN): %s\n", a.TranslatedTitle)
		}
		fmt.Fprintln(w, strings.Repeat("-", len(rule)))
	}

	fmt.Fprintf(w, "\n--- %s: Word Repetition Analysis (Words repeated > %d times) ---\n", r.Session, analysis.MinRepeats)
	WriteRepeatedWords(w, r.RepeatedWords)
}

// WriteRepeatedWords prints the repeated words as a table.
func WriteRepeatedWords(w io.Writer, words []analysis.WordCount) {
	if len(words) == 0 {
		fmt.Fprintln(w, NoRepeatedWords)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Word", "Count"})
	for _, wc := range words {
		t.AppendRow(table.Row{wc.Word, wc.Count})
	}
	t.Render()
}

// WriteSummary prints the closing line of a session.
func WriteSummary(w io.Writer, session string, articles int) {
	fmt.Fprintf(w, "\n%s: Total articles scraped: %d\n", session, articles)
}

// WriteList prints stored reports as a table, one row per session.
func WriteList(w io.Writer, reports []analysis.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No results to display.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Session", "Created", "Articles", "Translated", "Repeated Words"})
	for _, r := range reports {
		translated := 0
		for _, a := range r.Articles {
			if a.Translated {
				translated++
			}
		}

		words := make([]string, 0, len(r.RepeatedWords))
		for _, wc := range r.RepeatedWords {
			words = append(words, wc.Word)
		}

		t.AppendRow(table.Row{
			r.ID.String()[:8],
			r.Session,
			r.CreatedAt.Format("2006-01-02 15:04"),
			len(r.Articles),
			translated,
			strings.Join(words, ", "),
		})
	}
	t.AppendFooter(table.Row{"", "Total", "", len(reports)})
	t.Render()
}

func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
