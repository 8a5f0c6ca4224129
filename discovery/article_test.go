package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore remembers what it was asked to save
type recordingStore struct {
	urls    []string
	indexes []int
	result  string
}

func (s *recordingStore) Save(ctx context.Context, imageURL string, index int) string {
	s.urls = append(s.urls, imageURL)
	s.indexes = append(s.indexes, index)
	if s.result != "" {
		return s.result
	}
	return "scraped_images/saved.jpg"
}

// panickingScope panics on every lookup
type panickingScope struct{}

func (panickingScope) FindAll(scraper.Strategy) ([]browser.Element, error) {
	panic("session lost")
}

var longBody = strings.Repeat("Una frase de opinión bastante larga. ", 5)

// Test helper: extractor over the default site with a recording store
func newTestExtractor(t *testing.T) (*Extractor, *recordingStore) {
	store := &recordingStore{}
	extractor, err := NewExtractor(scraper.DefaultSite(), store, nil)
	require.NoError(t, err)
	return extractor, store
}

var testLink = ArticleLink{
	URL:   "https://elpais.com/opinion/2024-01-01/column.html",
	Title: "Listing page title",
}

func TestExtractArticle_AllFields(t *testing.T) {
	extractor, store := newTestExtractor(t)
	page := parsePage(t, `<html><body>
		<h1>Page headline</h1>
		<article data-dtm-region="articulo_cuerpo"><p>`+longBody+`</p><img src="/img/foo.jpg"></article>
	</body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 3)

	assert.Equal(t, testLink.URL, article.URL)
	assert.Equal(t, "Page headline", article.Title)
	assert.Equal(t, strings.TrimSpace(longBody), article.Body)
	assert.Equal(t, "scraped_images/saved.jpg", article.ImagePath)
	assert.Equal(t, []string{"https://elpais.com/img/foo.jpg"}, store.urls)
	assert.Equal(t, []int{3}, store.indexes)
}

func TestExtractArticle_KeepsListingTitleWithoutHeading(t *testing.T) {
	extractor, _ := newTestExtractor(t)
	page := parsePage(t, `<html><body><article>`+longBody+`</article></body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, "Listing page title", article.Title)
}

func TestExtractArticle_EmptyHeadingFallsThrough(t *testing.T) {
	extractor, _ := newTestExtractor(t)
	page := parsePage(t, `<html><body><h1>  </h1><div class="a_t">Class headline</div></body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, "Class headline", article.Title)
}

func TestExtractArticle_ShortBodyIsNotScraped(t *testing.T) {
	extractor, _ := newTestExtractor(t)
	// exactly 50 characters is not enough
	page := parsePage(t, `<html><body><article>`+strings.Repeat("x", 50)+`</article></body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, BodyNotScraped, article.Body)
}

func TestExtractArticle_BodyFallsBackPastTeaser(t *testing.T) {
	extractor, _ := newTestExtractor(t)
	page := parsePage(t, `<html><body>
		<div class="article_body">Teaser only.</div>
		<div class="a_c">`+longBody+`</div>
	</body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, strings.TrimSpace(longBody), article.Body)
}

func TestExtractArticle_ScriptsDoNotCountAsText(t *testing.T) {
	extractor, _ := newTestExtractor(t)
	page := parsePage(t, `<html><body>
		<h1>Titular de la columna<script>window.dataLayer=[{"ev":"x"}]</script></h1>
		<article data-dtm-region="articulo_cuerpo">
			<script>var ads = {"slot":"top","sizes":[[300,250]]}; googletag.cmd.push(function(){});</script>
			<p>Texto visible.</p>
		</article>
		<div class="a_c">`+longBody+`</div>
	</body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, "Titular de la columna", article.Title)
	assert.Equal(t, strings.TrimSpace(longBody), article.Body, "a teaser padded by a script is still a teaser")
}

func TestExtractArticle_AbsoluteImageUnchanged(t *testing.T) {
	extractor, store := newTestExtractor(t)
	page := parsePage(t, `<html><body><figure><img src="https://imagenes.elpais.com/x.jpg?w=640"></figure></body></html>`)

	extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, []string{"https://imagenes.elpais.com/x.jpg?w=640"}, store.urls)
}

func TestExtractArticle_LazyImageUsesDataSrc(t *testing.T) {
	extractor, store := newTestExtractor(t)
	page := parsePage(t, `<html><body><figure><img data-src="/lazy/cover.png"></figure></body></html>`)

	extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, []string{"https://elpais.com/lazy/cover.png"}, store.urls)
}

func TestExtractArticle_UnusableImageSourceSkipped(t *testing.T) {
	extractor, store := newTestExtractor(t)
	page := parsePage(t, `<html><body>
		<article><img src="data:image/gif;base64,R0lGOD"></article>
		<figure><img src="/real/cover.jpg"></figure>
	</body></html>`)

	extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, []string{"https://elpais.com/real/cover.jpg"}, store.urls)
}

func TestExtractArticle_NoImage(t *testing.T) {
	extractor, store := newTestExtractor(t)
	page := parsePage(t, `<html><body><h1>Headline</h1></body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, NoImageFound, article.ImagePath)
	assert.Empty(t, store.urls, "nothing to download")
}

func TestExtractArticle_StoreSentinelPassedThrough(t *testing.T) {
	extractor, store := newTestExtractor(t)
	store.result = "Download failed."
	page := parsePage(t, `<html><body><img src="/img/foo.jpg"></body></html>`)

	article := extractor.ExtractArticle(context.Background(), page, testLink, 1)

	assert.Equal(t, "Download failed.", article.ImagePath)
}

func TestExtractArticle_BrokenPageKeepsSentinels(t *testing.T) {
	extractor, store := newTestExtractor(t)

	article := extractor.ExtractArticle(context.Background(), panickingScope{}, testLink, 1)

	assert.Equal(t, Article{
		URL:       testLink.URL,
		Title:     testLink.Title,
		Body:      BodyNotScraped,
		ImagePath: NoImageFound,
	}, article)
	assert.Empty(t, store.urls)
}

func TestNewExtractor_RequiresImageStore(t *testing.T) {
	_, err := NewExtractor(scraper.DefaultSite(), nil, nil)
	assert.Error(t, err)
}
