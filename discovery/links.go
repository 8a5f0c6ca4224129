package discovery

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/scraper"
)

// ArticleLink is an article found on a listing page.
type ArticleLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// LinkCollector gathers unique article links for one session. It remembers
// every URL it has accepted, so links offered from several sources are
// deduplicated against each other.
type LinkCollector struct {
	site   scraper.Site
	base   *url.URL
	seen   map[string]bool
	logger *log.Logger
}

// NewLinkCollector creates a collector for site.
func NewLinkCollector(site scraper.Site, logger *log.Logger) (*LinkCollector, error) {
	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &LinkCollector{
		site:   site,
		base:   base,
		seen:   make(map[string]bool),
		logger: logger,
	}, nil
}

// CollectLinks is a one-shot LinkCollector.Collect.
func CollectLinks(page browser.Scope, site scraper.Site) []ArticleLink {
	collector, err := NewLinkCollector(site, log.Default())
	if err != nil {
		return []ArticleLink{}
	}
	return collector.Collect(page)
}

// Collect returns up to site.TargetCount valid, unique links from the
// article containers on page, in document order. A container that cannot be
// read is skipped.
func (c *LinkCollector) Collect(page browser.Scope) []ArticleLink {
	links := []ArticleLink{}

	containers := ResolveMany(page, c.site.ContainerStrategies, c.site.TargetCount)
	c.logger.Debug("resolved article containers", "count", len(containers))

	for i, container := range containers {
		if len(links) >= c.site.TargetCount {
			break
		}

		link, ok, err := c.fromContainer(container)
		if err != nil {
			c.logger.Warn("skipping article container", "index", i, "err", err)
			continue
		}
		if !ok {
			continue
		}

		links = append(links, link)
		c.logger.Info(fmt.Sprintf("Found article %d", len(links)), "title", truncate(link.Title, 60))
	}

	return links
}

// fromContainer reads the href and title of one container and offers them.
func (c *LinkCollector) fromContainer(container browser.Element) (link ArticleLink, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic reading container: %v", r)
		}
	}()

	href := containerHref(container)

	title := ""
	if heading, found := ResolveFirst(container, c.site.LinkTitleStrategies, hasText); found {
		title = heading.Text()
	}

	link, ok = c.Offer(href, title)
	return link, ok, nil
}

// containerHref returns the href of the container itself when it is an
// anchor, otherwise that of its first descendant anchor.
func containerHref(container browser.Element) string {
	if container.TagName() == "a" {
		href, _ := container.Attr("href")
		return href
	}

	anchors, err := container.FindAll(scraper.Tag("a"))
	if err != nil || len(anchors) == 0 {
		return ""
	}
	href, _ := anchors[0].Attr("href")
	return href
}

// Offer validates a candidate link and records it when accepted. The href
// must be absolute or root-relative, the title must be longer than
// site.MinTitleLen characters, and the normalized URL must be in the section
// and not seen before.
func (c *LinkCollector) Offer(href, title string) (ArticleLink, bool) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= c.site.MinTitleLen {
		return ArticleLink{}, false
	}

	href = strings.TrimSpace(href)
	if !strings.Contains(href, "//") && !strings.HasPrefix(href, "/") {
		return ArticleLink{}, false
	}

	absolute, ok := NormalizeURL(c.base, href)
	if !ok {
		return ArticleLink{}, false
	}
	if !strings.Contains(absolute, c.site.SectionPath) || c.seen[absolute] {
		return ArticleLink{}, false
	}

	c.seen[absolute] = true
	return ArticleLink{URL: absolute, Title: title}, true
}

// NormalizeURL resolves raw against base. Absolute URLs are returned
// unchanged.
func NormalizeURL(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return raw, true
	}

	return base.ResolveReference(ref).String(), true
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
