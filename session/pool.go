package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pevans/opinionscraper/analysis"
	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/config"
	"github.com/pevans/opinionscraper/discovery"
	"github.com/pevans/opinionscraper/feed"
	"github.com/pevans/opinionscraper/images"
	"github.com/pevans/opinionscraper/report"
	"github.com/pevans/opinionscraper/results"
	"github.com/pevans/opinionscraper/scraper"
	"golang.org/x/sync/errgroup"
)

// Options configures a parallel run.
type Options struct {
	Site        scraper.Site
	Provisioner browser.Provisioner
	Translator  analysis.Translator
	ImagesDir   string
	// Store receives every session report. Nil disables saving.
	Store *results.Store
	// HTTPClient is used for image and feed downloads. Nil uses defaults.
	HTTPClient *http.Client
	// MaxParallel caps concurrent sessions. Zero runs all at once.
	MaxParallel int
	Logger      *log.Logger
	// Out receives the human-readable reports.
	Out io.Writer
}

// Result is the outcome of one worker.
type Result struct {
	Session  string
	Articles []discovery.Article
	Report   analysis.Report
	// Err is set when the session could not start at all.
	Err error
}

// RunAll runs one session per capability set in parallel and returns when
// all of them have finished. Results are in the order of capabilities.
// Workers share nothing and a failing worker never stops the others.
func RunAll(ctx context.Context, capabilities []config.Capabilities, opts Options) []Result {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.ImagesDir == "" {
		opts.ImagesDir = images.DefaultDir
	}

	out := &lockedWriter{w: opts.Out}
	slots := make([]Result, len(capabilities))

	var g errgroup.Group
	if opts.MaxParallel > 0 {
		g.SetLimit(opts.MaxParallel)
	}

	labels := imageLabels(capabilities)

	opts.Logger.Info(fmt.Sprintf("Starting %d parallel sessions", len(capabilities)))
	for i, caps := range capabilities {
		g.Go(func() error {
			slots[i] = runWorker(ctx, caps, labels[i], opts, out)
			return nil
		})
	}
	_ = g.Wait()

	opts.Logger.Info("All sessions complete")
	return slots
}

// imageLabels names each worker's image files after its session. Sessions
// whose names would produce the same file names get their 1-based slot
// appended so concurrent workers never write to the same file.
func imageLabels(capabilities []config.Capabilities) []string {
	counts := make(map[string]int, len(capabilities))
	for _, caps := range capabilities {
		counts[images.Sanitize(caps.SessionName())]++
	}

	labels := make([]string, len(capabilities))
	for i, caps := range capabilities {
		name := caps.SessionName()
		if counts[images.Sanitize(name)] > 1 {
			name = fmt.Sprintf("%s %d", name, i+1)
		}
		labels[i] = name
	}
	return labels
}

func runWorker(ctx context.Context, caps config.Capabilities, imageLabel string, opts Options, out *lockedWriter) (result Result) {
	name := caps.SessionName()
	logger := opts.Logger.WithPrefix(name)
	result = Result{Session: name, Articles: []discovery.Article{}}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Test run failed", "err", rec)
			result.Err = fmt.Errorf("worker panicked: %v", rec)
		}
	}()

	downloader, err := images.NewDownloader(opts.ImagesDir, imageLabel, opts.HTTPClient, logger)
	if err != nil {
		logger.Error("Test run failed", "err", err)
		result.Err = err
		return result
	}

	extractor, err := discovery.NewExtractor(opts.Site, downloader, logger)
	if err != nil {
		logger.Error("Test run failed", "err", err)
		result.Err = err
		return result
	}

	var feedSource *feed.Source
	if opts.Site.FeedURL != "" {
		feedSource = feed.NewSource(opts.Site.FeedURL, opts.HTTPClient, logger)
	}

	b, err := opts.Provisioner.Open(ctx, caps)
	if err != nil {
		logger.Error("Error connecting to browser", "err", err)
		result.Err = err
		return result
	}

	result.Articles = NewRunner(name, opts.Site, b, extractor, feedSource, logger).Run(ctx)

	if opts.Translator != nil {
		result.Report = analysis.Analyze(ctx, name, result.Articles, opts.Translator, logger)

		if opts.Store != nil && len(result.Articles) > 0 {
			path, err := opts.Store.Add(result.Report)
			if err != nil {
				logger.Warn("failed to save results", "err", err)
			} else {
				logger.Info("saved results", "path", path)
			}
		}

		out.locked(func(w io.Writer) {
			report.WriteSession(w, result.Report)
			report.WriteSummary(w, name, len(result.Articles))
		})
	}

	return result
}

// lockedWriter keeps each session's report in one contiguous block.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) locked(fn func(w io.Writer)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.w)
}
