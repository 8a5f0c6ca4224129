// Package session runs scraping sessions: one browser per capability set,
// each walking the listing page and then every article it found.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/discovery"
	"github.com/pevans/opinionscraper/feed"
	"github.com/pevans/opinionscraper/scraper"
)

// Runner scrapes one session. It owns its browser and closes it when Run
// returns.
type Runner struct {
	name      string
	site      scraper.Site
	browser   browser.Browser
	extractor *discovery.Extractor
	feed      *feed.Source
	logger    *log.Logger
}

// NewRunner creates a runner. feedSource may be nil to disable the feed
// fallback.
func NewRunner(name string, site scraper.Site, b browser.Browser, extractor *discovery.Extractor, feedSource *feed.Source, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		name:      name,
		site:      site,
		browser:   b,
		extractor: extractor,
		feed:      feedSource,
		logger:    logger,
	}
}

// Run visits the home page, dismisses the consent banner, collects article
// links from the section page and extracts each article in turn. A failed
// navigation ends the session early; the articles extracted so far are
// returned. The browser is closed exactly once on every path, including a
// panic inside the session.
func (r *Runner) Run(ctx context.Context) (articles []discovery.Article) {
	articles = []discovery.Article{}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Critical error during scraping", "err", rec)
		}
		if err := r.browser.Close(); err != nil {
			r.logger.Warn("failed to close browser", "err", err)
		}
		r.logger.Info("Session closed")
	}()

	if err := r.scrape(ctx, &articles); err != nil {
		r.logger.Error("session ended early", "err", err, "articles", len(articles))
	}
	return articles
}

func (r *Runner) scrape(ctx context.Context, articles *[]discovery.Article) error {
	r.logger.Info("Starting session")

	if err := r.browser.Navigate(ctx, r.site.BaseURL); err != nil {
		return fmt.Errorf("failed to load home page: %w", err)
	}
	if err := wait(ctx, r.site.HomeWait); err != nil {
		return err
	}

	if err := r.dismissConsent(ctx); err != nil {
		return err
	}

	r.logger.Info("Navigating to Opinion section...")
	if err := r.browser.Navigate(ctx, r.site.SectionURL()); err != nil {
		return fmt.Errorf("failed to load section page: %w", err)
	}
	if err := wait(ctx, r.site.SectionWait); err != nil {
		return err
	}

	links, err := r.collectLinks(ctx)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		r.logger.Error("Could not find any article links")
		return nil
	}

	for i, link := range links {
		r.logger.Info(fmt.Sprintf("Scraping article %d/%d", i+1, len(links)), "title", truncate(link.Title, 50))

		if err := r.browser.Navigate(ctx, link.URL); err != nil {
			return fmt.Errorf("failed to load article %d: %w", i+1, err)
		}
		if err := wait(ctx, r.site.ArticleWait); err != nil {
			return err
		}

		page, err := r.browser.Page(ctx)
		if err != nil {
			return fmt.Errorf("failed to read article %d: %w", i+1, err)
		}

		*articles = append(*articles, r.extractor.ExtractArticle(ctx, page, link, i+1))
	}

	return nil
}

// dismissConsent clicks the first consent button that shows up. Not finding
// one is normal; only a cancelled context is an error.
func (r *Runner) dismissConsent(ctx context.Context) error {
	for _, s := range r.site.ConsentStrategies {
		err := r.browser.Click(ctx, s, r.site.ConsentTimeout)
		if err == nil {
			r.logger.Info("Closed cookie/consent banner", "strategy", s.String())
			return wait(ctx, r.site.ConsentWait)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, browser.ErrNotInteractive) {
			r.logger.Debug("browser cannot click, skipping consent banner")
			return nil
		}
	}

	r.logger.Debug("no consent banner found")
	return nil
}

func (r *Runner) collectLinks(ctx context.Context) ([]discovery.ArticleLink, error) {
	page, err := r.browser.Page(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read section page: %w", err)
	}

	collector, err := discovery.NewLinkCollector(r.site, r.logger)
	if err != nil {
		return nil, err
	}

	links := collector.Collect(page)
	if r.feed != nil && len(links) < r.site.TargetCount {
		links = r.feed.TopUp(ctx, collector, links, r.site.TargetCount)
	}

	return links, nil
}

// wait pauses for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
