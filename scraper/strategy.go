package scraper

import "fmt"

// Kind identifies how a Strategy pattern is interpreted.
type Kind string

const (
	// KindCSS matches elements with a CSS selector.
	KindCSS Kind = "css"
	// KindTag matches elements by tag name.
	KindTag Kind = "tag"
	// KindID matches the element with the given id attribute.
	KindID Kind = "id"
	// KindXPath matches elements with an XPath 1.0 expression.
	KindXPath Kind = "xpath"
)

// Strategy is one candidate rule for locating elements on a page. Strategies
// carry no state and are reused across lookups.
type Strategy struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// CSS returns a CSS selector strategy.
func CSS(pattern string) Strategy {
	return Strategy{Kind: KindCSS, Pattern: pattern}
}

// Tag returns a tag-name strategy.
func Tag(name string) Strategy {
	return Strategy{Kind: KindTag, Pattern: name}
}

// ID returns an element-id strategy.
func ID(id string) Strategy {
	return Strategy{Kind: KindID, Pattern: id}
}

// XPath returns an XPath strategy.
func XPath(expr string) Strategy {
	return Strategy{Kind: KindXPath, Pattern: expr}
}

// CSSSelector returns the CSS form of the strategy for the kinds that have
// one. XPath strategies report ok == false.
func (s Strategy) CSSSelector() (string, bool) {
	switch s.Kind {
	case KindCSS, KindTag:
		return s.Pattern, true
	case KindID:
		return fmt.Sprintf("[id=%q]", s.Pattern), true
	default:
		return "", false
	}
}

func (s Strategy) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Pattern)
}
