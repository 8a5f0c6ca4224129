package browser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/pevans/opinionscraper/scraper"
	"golang.org/x/net/html"
)

// Scope is anything a Strategy can be evaluated against: a whole page or a
// single element.
type Scope interface {
	FindAll(s scraper.Strategy) ([]Element, error)
}

// Page is a parsed snapshot of the document currently loaded in a browser.
type Page struct {
	URL string
	doc *goquery.Document
}

// NewPage parses an HTML document loaded from pageURL.
func NewPage(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{URL: pageURL, doc: doc}, nil
}

// NewPageFromHTML is NewPage for an in-memory document.
func NewPageFromHTML(pageURL, html string) (*Page, error) {
	return NewPage(pageURL, strings.NewReader(html))
}

// FindAll returns every element in the page matched by s, in document order.
func (p *Page) FindAll(s scraper.Strategy) ([]Element, error) {
	return findAll(p.doc.Selection, s)
}

// Element is a single node of a Page.
type Element struct {
	sel *goquery.Selection
}

// TagName returns the lower-case tag name of the element.
func (e Element) TagName() string {
	return goquery.NodeName(e.sel)
}

// Text returns the rendered text of the element with runs of whitespace
// collapsed to single spaces. Script, style, noscript and template contents
// are left out, and block-level elements are kept apart by a space.
func (e Element) Text() string {
	var b strings.Builder
	for _, node := range e.sel.Nodes {
		writeText(&b, node)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// hiddenTags never render text.
var hiddenTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// blockTags start on a new line when rendered.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if hiddenTags[n.Data] {
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// FindAll returns the descendants of e matched by s. XPath patterns should
// be relative (".//img"); an absolute "//img" searches the whole document.
func (e Element) FindAll(s scraper.Strategy) ([]Element, error) {
	return findAll(e.sel, s)
}

func findAll(root *goquery.Selection, s scraper.Strategy) ([]Element, error) {
	if s.Pattern == "" {
		return nil, fmt.Errorf("empty pattern for %s strategy", s.Kind)
	}

	if s.Kind == scraper.KindXPath {
		var elements []Element
		for _, node := range root.Nodes {
			matches, err := htmlquery.QueryAll(node, s.Pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid xpath %q: %w", s.Pattern, err)
			}
			for _, match := range matches {
				// attribute and text results are not elements
				if match.Type != html.ElementNode {
					continue
				}
				elements = append(elements, Element{sel: goquery.NewDocumentFromNode(match).Selection})
			}
		}
		return elements, nil
	}

	selector, ok := s.CSSSelector()
	if !ok {
		return nil, fmt.Errorf("unsupported strategy kind: %s", s.Kind)
	}

	found := root.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, Element{sel: sel})
	})

	return elements, nil
}
