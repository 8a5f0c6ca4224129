package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/scraper"
)

// Sentinels stored in place of data that could not be extracted.
const (
	BodyNotScraped = "CONTENT NOT SCRAPED"
	NoImageFound   = "No image URL found"
)

// Article is a fully extracted article. Every field is always set; failed
// extractions hold a sentinel.
type Article struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ImagePath string `json:"image_path"`
}

// ImageStore saves a cover image and returns where it was stored, or a
// failure sentinel of its own.
type ImageStore interface {
	Save(ctx context.Context, imageURL string, index int) string
}

// Extractor deep-scrapes article pages.
type Extractor struct {
	site   scraper.Site
	base   *url.URL
	images ImageStore
	logger *log.Logger
}

// NewExtractor creates an extractor that hands cover images to images.
func NewExtractor(site scraper.Site, images ImageStore, logger *log.Logger) (*Extractor, error) {
	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if images == nil {
		return nil, fmt.Errorf("an image store is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Extractor{
		site:   site,
		base:   base,
		images: images,
		logger: logger,
	}, nil
}

// ExtractArticle extracts the title, body and cover image of the article
// loaded in page. index is the article's 1-based position in the session and
// names the saved image. Each step runs on its own; a failing step leaves a
// sentinel and never stops the others.
func (e *Extractor) ExtractArticle(ctx context.Context, page browser.Scope, link ArticleLink, index int) Article {
	article := Article{
		URL:       link.URL,
		Title:     link.Title,
		Body:      BodyNotScraped,
		ImagePath: NoImageFound,
	}

	e.step("title", func() {
		if heading, ok := ResolveFirst(page, e.site.TitleStrategies, hasText); ok {
			article.Title = heading.Text()
		}
	})

	e.step("body", func() {
		if body, ok := ResolveFirst(page, e.site.BodyStrategies, e.isFullBody); ok {
			article.Body = body.Text()
		}
	})

	e.step("image", func() {
		imageURL, ok := e.coverImageURL(page)
		if !ok {
			return
		}
		article.ImagePath = e.images.Save(ctx, imageURL, index)
	})

	return article
}

// step runs one extraction step, logging instead of propagating a panic.
func (e *Extractor) step(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction step failed", "step", name, "err", r)
		}
	}()
	fn()
}

// isFullBody rejects teaser snippets that are too short to be the article.
func (e *Extractor) isFullBody(el browser.Element) bool {
	return utf8.RuneCountInString(el.Text()) > e.site.MinBodyLen
}

// coverImageURL finds the first image with a usable src (or lazy-load
// data-src) and returns it as an absolute URL.
func (e *Extractor) coverImageURL(page browser.Scope) (string, bool) {
	img, ok := ResolveFirst(page, e.site.ImageStrategies, func(el browser.Element) bool {
		return usableImageSource(imageSource(el))
	})
	if !ok {
		return "", false
	}

	return NormalizeURL(e.base, imageSource(img))
}

// imageSource returns src, falling back to data-src when src is absent or
// empty.
func imageSource(img browser.Element) string {
	if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	src, _ := img.Attr("data-src")
	return strings.TrimSpace(src)
}

func usableImageSource(src string) bool {
	return src != "" && (strings.Contains(src, "http") || strings.HasPrefix(src, "/"))
}
