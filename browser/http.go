package browser

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pevans/opinionscraper/scraper"
)

// HTTPBrowser loads pages with plain HTTP requests and parses them with
// goquery. It runs no JavaScript and cannot click.
type HTTPBrowser struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string

	mu     sync.Mutex
	page   *Page
	closed bool
}

// HTTPOptions configures an HTTPBrowser.
type HTTPOptions struct {
	Client         *http.Client
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// NewHTTPBrowser creates an HTTPBrowser. Zero-valued options fall back to
// the package defaults.
func NewHTTPBrowser(opts HTTPOptions) *HTTPBrowser {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	acceptLanguage := opts.AcceptLanguage
	if acceptLanguage == "" {
		acceptLanguage = DefaultAcceptLanguage
	}

	return &HTTPBrowser{
		client:         client,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
	}
}

// Navigate fetches url and keeps the parsed document as the current page.
func (b *HTTPBrowser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept-Language", b.acceptLanguage)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	page, err := NewPage(resp.Request.URL.String(), resp.Body)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.page = page
	b.mu.Unlock()

	return nil
}

// Page returns the last successfully loaded page.
func (b *HTTPBrowser) Page(_ context.Context) (*Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.page == nil {
		return nil, ErrNoPage
	}

	return b.page, nil
}

// Click always fails: a static document has nothing to interact with.
func (b *HTTPBrowser) Click(_ context.Context, _ scraper.Strategy, _ time.Duration) error {
	return ErrNotInteractive
}

// Close drops the current page and idle connections.
func (b *HTTPBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.page = nil
	b.client.CloseIdleConnections()

	return nil
}
