// Package browser drives the page sessions that articles are scraped from.
// Every driver exposes the same small surface: load a URL, snapshot the
// loaded document, click an element and release the underlying resources.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/pevans/opinionscraper/scraper"
)

var (
	// ErrNoPage is returned by Page before any successful navigation.
	ErrNoPage = errors.New("no page loaded")
	// ErrNotInteractive is returned by drivers that cannot click.
	ErrNotInteractive = errors.New("browser does not support interaction")
	// ErrUnsupportedBrowser is returned when a capability set names a browser
	// the selected driver cannot run.
	ErrUnsupportedBrowser = errors.New("unsupported browser")
	// ErrClosed is returned by any call made after Close.
	ErrClosed = errors.New("browser is closed")
)

// Browser is a single exclusively-owned browser session.
type Browser interface {
	// Navigate loads url and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// Page returns a snapshot of the currently loaded document.
	Page(ctx context.Context) (*Page, error)
	// Click waits up to timeout for the element matched by s to become
	// visible and clicks it.
	Click(ctx context.Context, s scraper.Strategy, timeout time.Duration) error
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Default locale preferences for every driver.
const (
	DefaultLanguage       = "es"
	DefaultAcceptLanguage = "es,es-ES"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)
