package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/opinionscraper/discovery"
	"github.com/pevans/opinionscraper/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: RSS document with one <item> per (link, title) pair
func rss(pairs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Opinión</title>`)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "<item><title>%s</title><link>%s</link></item>", pairs[i+1], pairs[i])
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

// Test helper: serve body as an RSS feed
func serveFeed(t *testing.T, body string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// Test helper: collector over the default site
func newCollector(t *testing.T) *discovery.LinkCollector {
	collector, err := discovery.NewLinkCollector(scraper.DefaultSite(), log.New(io.Discard))
	require.NoError(t, err)
	return collector
}

func TestFetch_ParsesRSS(t *testing.T) {
	server := serveFeed(t, rss("https://elpais.com/opinion/a.html", "Una columna de opinión"))
	source := NewSource(server.URL, nil, log.New(io.Discard))

	feed, err := source.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Opinión", feed.Title)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "https://elpais.com/opinion/a.html", feed.Items[0].Link)
}

func TestFetch_InvalidFeed(t *testing.T) {
	server := serveFeed(t, "<html><body>not a feed</body></html>")
	source := NewSource(server.URL, nil, log.New(io.Discard))

	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func TestTopUp_FillsToTarget(t *testing.T) {
	server := serveFeed(t, rss(
		"https://elpais.com/opinion/a.html", "Already on the listing page",
		"https://elpais.com/deportes/b.html", "Sports piece outside the section",
		"https://elpais.com/opinion/c.html", "Short",
		"https://elpais.com/opinion/d.html", "Feed column number one",
		"https://elpais.com/opinion/e.html", "Feed column number two",
		"https://elpais.com/opinion/f.html", "Feed column number three",
	))
	source := NewSource(server.URL, nil, log.New(io.Discard))

	collector := newCollector(t)
	first, ok := collector.Offer("/opinion/a.html", "Listing page column")
	require.True(t, ok)
	second, ok := collector.Offer("/opinion/z.html", "Another listing column")
	require.True(t, ok)

	links := source.TopUp(context.Background(), collector, []discovery.ArticleLink{first, second}, 4)

	require.Len(t, links, 4)
	assert.Equal(t, "https://elpais.com/opinion/a.html", links[0].URL)
	assert.Equal(t, "https://elpais.com/opinion/z.html", links[1].URL)
	assert.Equal(t, "https://elpais.com/opinion/d.html", links[2].URL)
	assert.Equal(t, "https://elpais.com/opinion/e.html", links[3].URL)
}

func TestTopUp_AlreadyFullSkipsFetch(t *testing.T) {
	fetched := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = true
	}))
	defer server.Close()

	source := NewSource(server.URL, nil, log.New(io.Discard))
	links := []discovery.ArticleLink{{URL: "u", Title: "t"}}

	got := source.TopUp(context.Background(), newCollector(t), links, 1)

	assert.Equal(t, links, got)
	assert.False(t, fetched)
}

func TestTopUp_UnavailableFeedKeepsLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewSource(server.URL, nil, log.New(io.Discard))

	got := source.TopUp(context.Background(), newCollector(t), []discovery.ArticleLink{}, 5)

	assert.Empty(t, got)
}

func TestItemLink(t *testing.T) {
	href, title := ItemLink(&gofeed.Item{Link: " https://elpais.com/opinion/a.html ", Title: " Título "})
	assert.Equal(t, "https://elpais.com/opinion/a.html", href)
	assert.Equal(t, "Título", title)

	href, _ = ItemLink(&gofeed.Item{GUID: "https://elpais.com/opinion/guid.html"})
	assert.Equal(t, "https://elpais.com/opinion/guid.html", href)

	href, _ = ItemLink(&gofeed.Item{GUID: "urn:uuid:1234"})
	assert.Empty(t, href)
}
