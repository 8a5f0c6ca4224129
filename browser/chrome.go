package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/pevans/opinionscraper/scraper"
)

// ChromeBrowser drives a single Chrome tab over the DevTools protocol. The
// tab may belong to a locally launched browser or a remote one.
type ChromeBrowser struct {
	ctx             context.Context
	cancelTab       context.CancelFunc
	cancelAlloc     context.CancelFunc
	pageLoadTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// ChromeOptions configures a ChromeBrowser.
type ChromeOptions struct {
	Language        string
	AcceptLanguage  string
	UserAgent       string
	PageLoadTimeout time.Duration
	Headless        bool
}

func (o ChromeOptions) withDefaults() ChromeOptions {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.AcceptLanguage == "" {
		o.AcceptLanguage = DefaultAcceptLanguage
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.PageLoadTimeout == 0 {
		o.PageLoadTimeout = 30 * time.Second
	}
	return o
}

// NewLocalChrome launches a Chrome process on this machine.
func NewLocalChrome(ctx context.Context, opts ChromeOptions) (*ChromeBrowser, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", opts.Language),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	return newChrome(allocCtx, cancelAlloc, opts)
}

// NewRemoteChrome attaches to a browser exposing the DevTools protocol at
// wsURL. The URL is used verbatim so vendor query parameters survive.
func NewRemoteChrome(ctx context.Context, wsURL string, opts ChromeOptions) (*ChromeBrowser, error) {
	opts = opts.withDefaults()

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, wsURL, chromedp.NoModifyURL)
	return newChrome(allocCtx, cancelAlloc, opts)
}

func newChrome(allocCtx context.Context, cancelAlloc context.CancelFunc, opts ChromeOptions) (*ChromeBrowser, error) {
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	b := &ChromeBrowser{
		ctx:             tabCtx,
		cancelTab:       cancelTab,
		cancelAlloc:     cancelAlloc,
		pageLoadTimeout: opts.PageLoadTimeout,
	}

	// The first Run starts the browser, so connection failures surface here.
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": opts.AcceptLanguage}),
	)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	return b, nil
}

// run executes actions on the tab, bounded by timeout and cancelled early if
// ctx is done.
func (b *ChromeBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if b.ctx.Err() != nil {
		return ErrClosed
	}

	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the body to be ready.
func (b *ChromeBrowser) Navigate(ctx context.Context, url string) error {
	err := b.run(ctx, b.pageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Page snapshots the live DOM.
func (b *ChromeBrowser) Page(ctx context.Context) (*Page, error) {
	var location, html string

	err := b.run(ctx, b.pageLoadTimeout,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	return NewPageFromHTML(location, html)
}

// Click waits for the element matched by s to be visible and clicks it.
func (b *ChromeBrowser) Click(ctx context.Context, s scraper.Strategy, timeout time.Duration) error {
	selector, opt := queryFor(s)

	err := b.run(ctx, timeout,
		chromedp.WaitVisible(selector, opt),
		chromedp.Click(selector, opt),
	)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", s, err)
	}
	return nil
}

// Close closes the tab and releases the allocator.
func (b *ChromeBrowser) Close() error {
	b.closeOnce.Do(func() {
		if err := chromedp.Cancel(b.ctx); err != nil && !errors.Is(err, context.Canceled) {
			b.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		b.cancelTab()
		b.cancelAlloc()
	})
	return b.closeErr
}

func queryFor(s scraper.Strategy) (string, chromedp.QueryOption) {
	if s.Kind == scraper.KindXPath {
		return s.Pattern, chromedp.BySearch
	}
	selector, _ := s.CSSSelector()
	return selector, chromedp.ByQuery
}
