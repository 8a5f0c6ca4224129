package main

import (
	"fmt"
	"strings"

	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/config"
	"github.com/pevans/opinionscraper/images"
	"github.com/pevans/opinionscraper/results"
	"github.com/pevans/opinionscraper/scraper"
	"github.com/pevans/opinionscraper/session"
	"github.com/pevans/opinionscraper/translate"
	"github.com/spf13/cobra"
)

type runOptions struct {
	configPath  string
	imagesDir   string
	maxParallel int
	feed        bool
}

func newRunCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scraping session per configured capability set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "config.json", "path to the session config file")
	cmd.Flags().StringVar(&opts.imagesDir, "images-dir", images.DefaultDir, "directory for downloaded cover images")
	cmd.Flags().IntVar(&opts.maxParallel, "max-parallel", 0, "maximum concurrent sessions (0 runs all at once)")
	cmd.Flags().BoolVar(&opts.feed, "feed", false, "top up article links from the section RSS feed")

	return cmd
}

func runSessions(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	logger, err := newLogger(global.logLevel)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	store, err := results.NewStore(global.resultsDir)
	if err != nil {
		return err
	}

	site := scraper.DefaultSite()
	if opts.feed {
		site.FeedURL = scraper.OpinionFeedURL
	}

	out := cmd.OutOrStdout()
	banner := strings.Repeat("=", 60)
	fmt.Fprintf(out, "%s\n--- EL PAÍS SCRAPER (%s PARALLEL SESSIONS) ---\n%s\n", banner, strings.ToUpper(cfg.Driver), banner)

	session.RunAll(cmd.Context(), cfg.ParallelCapabilities, session.Options{
		Site:        site,
		Provisioner: browser.NewProvisioner(cfg, site.PageLoadTimeout),
		Translator:  translate.NewClient(cfg.RapidAPI, translate.Options{Logger: logger}),
		ImagesDir:   opts.imagesDir,
		Store:       store,
		MaxParallel: opts.maxParallel,
		Logger:      logger,
		Out:         out,
	})

	fmt.Fprintf(out, "\n%s\n--- ALL SESSIONS COMPLETE ---\n%s\n", banner, banner)
	return nil
}
