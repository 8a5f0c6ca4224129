// Package feed reads the section's RSS feed as a secondary source of article
// links for when the listing page comes up short.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/discovery"
)

// Source is an RSS or Atom feed of articles.
type Source struct {
	url    string
	parser *gofeed.Parser
	logger *log.Logger
}

// NewSource creates a source for feedURL. A nil client uses one with a 30s
// timeout.
func NewSource(feedURL string, client *http.Client, logger *log.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = browser.DefaultUserAgent

	return &Source{
		url:    feedURL,
		parser: parser,
		logger: logger,
	}
}

// Fetch fetches and parses the feed. gofeed detects RSS and Atom on its own.
func (s *Source) Fetch(ctx context.Context) (*gofeed.Feed, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

// ItemLink returns the article URL and title of a feed item. gofeed
// normalizes RSS <link> and Atom <link rel="alternate"> to Link; a GUID that
// is a URL stands in when Link is missing.
func ItemLink(item *gofeed.Item) (href, title string) {
	href = strings.TrimSpace(item.Link)
	if href == "" && strings.HasPrefix(item.GUID, "http") {
		href = strings.TrimSpace(item.GUID)
	}
	return href, strings.TrimSpace(item.Title)
}

// TopUp offers feed items to collector until links holds target entries or
// the feed runs out. Items are validated and deduplicated by the collector
// exactly like links from the listing page. A feed that cannot be fetched
// leaves links unchanged.
func (s *Source) TopUp(ctx context.Context, collector *discovery.LinkCollector, links []discovery.ArticleLink, target int) []discovery.ArticleLink {
	if len(links) >= target {
		return links
	}

	feed, err := s.Fetch(ctx)
	if err != nil {
		s.logger.Warn("feed fallback unavailable", "url", s.url, "err", err)
		return links
	}

	added := 0
	for _, item := range feed.Items {
		if len(links) >= target {
			break
		}
		if item == nil {
			continue
		}

		link, ok := collector.Offer(ItemLink(item))
		if !ok {
			continue
		}
		links = append(links, link)
		added++
	}

	s.logger.Info("topped up links from feed", "added", added, "total", len(links))
	return links
}
