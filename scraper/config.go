package scraper

import "time"

// Site defines where a session scrapes and how each field of an article is
// located. Every lookup is an ordered fallback list: earlier strategies are
// preferred, later ones are tried only when earlier ones come up short.
type Site struct {
	BaseURL     string
	SectionPath string
	// FeedURL is an RSS feed for the section, used to top up the listing
	// page when it yields fewer than TargetCount links. Empty disables it,
	// which is the default.
	FeedURL string

	TargetCount int
	MinTitleLen int // titles must be strictly longer
	MinBodyLen  int // body text must be strictly longer

	ContainerStrategies []Strategy
	LinkTitleStrategies []Strategy
	TitleStrategies     []Strategy
	BodyStrategies      []Strategy
	ImageStrategies     []Strategy
	ConsentStrategies   []Strategy

	PageLoadTimeout time.Duration
	ConsentTimeout  time.Duration
	HomeWait        time.Duration
	SectionWait     time.Duration
	ArticleWait     time.Duration
	ConsentWait     time.Duration
}

// SectionURL returns the absolute URL of the listing page.
func (s Site) SectionURL() string {
	return s.BaseURL + s.SectionPath
}

// OpinionFeedURL is the RSS feed of the opinion section.
const OpinionFeedURL = "https://feeds.elpais.com/mrss-s/pages/ep/site/elpais.com/section/opinion/portada"

// DefaultSite returns the El País opinion section configuration.
func DefaultSite() Site {
	return Site{
		BaseURL:     "https://elpais.com",
		SectionPath: "/opinion/",

		TargetCount: 5,
		MinTitleLen: 10,
		MinBodyLen:  50,

		ContainerStrategies: []Strategy{
			CSS("article"),
			CSS(".c_a"),
			CSS("[data-dtm-region]"),
			CSS(".articulo"),
			CSS(".story"),
			CSS("h2 a"),
		},
		LinkTitleStrategies: []Strategy{
			Tag("h2"),
			Tag("h3"),
			CSS(".c_t"),
			CSS("[data-dtm-region] a"),
			Tag("a"),
		},
		TitleStrategies: []Strategy{
			Tag("h1"),
			CSS("header h1"),
			CSS(".a_t"),
			CSS(".article-header h1"),
			CSS(`[data-dtm-region="articulo_titulo"]`),
		},
		BodyStrategies: []Strategy{
			CSS("article[data-dtm-region]"),
			CSS(".article_body"),
			CSS(".a_c"),
			Tag("article"),
			CSS(".articulo-cuerpo"),
		},
		ImageStrategies: []Strategy{
			CSS("article img"),
			CSS("figure img"),
			CSS(".a_m img"),
			CSS("[data-dtm-region] img"),
			Tag("img"),
		},
		ConsentStrategies: []Strategy{
			ID("didomi-notice-agree-button"),
			XPath("//button[contains(text(), 'Aceptar')]"),
			XPath("//button[contains(text(), 'Accept')]"),
			CSS("button[class*='accept']"),
		},

		PageLoadTimeout: 30 * time.Second,
		ConsentTimeout:  2 * time.Second,
		HomeWait:        3 * time.Second,
		SectionWait:     3 * time.Second,
		ArticleWait:     2 * time.Second,
		ConsentWait:     1 * time.Second,
	}
}
