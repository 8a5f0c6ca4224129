// Package discovery finds opinion articles on a listing page and extracts
// their title, body and cover image. Every lookup runs through an ordered
// list of strategies so that markup changes degrade results instead of
// breaking them.
package discovery

import (
	"fmt"

	"github.com/pevans/opinionscraper/browser"
	"github.com/pevans/opinionscraper/scraper"
)

// ResolveMany tries each strategy in order and returns the first result with
// at least minCount elements. If no strategy reaches minCount, the longest
// non-empty result is returned (the earliest one on ties); if every strategy
// misses, the result is empty.
func ResolveMany(scope browser.Scope, strategies []scraper.Strategy, minCount int) []browser.Element {
	var best []browser.Element

	for _, s := range strategies {
		elements, err := attempt(scope, s)
		if err != nil || len(elements) == 0 {
			continue
		}
		if len(elements) >= minCount {
			return elements
		}
		if len(elements) > len(best) {
			best = elements
		}
	}

	if best == nil {
		return []browser.Element{}
	}
	return best
}

// ResolveOne returns the first element of the first strategy that matches
// anything. ok is false if every strategy misses.
func ResolveOne(scope browser.Scope, strategies []scraper.Strategy) (browser.Element, bool) {
	return ResolveFirst(scope, strategies, nil)
}

// ResolveFirst is ResolveOne with a validity check: the first element of
// each strategy's result must satisfy accept, otherwise the next strategy is
// tried. A nil accept accepts everything.
func ResolveFirst(scope browser.Scope, strategies []scraper.Strategy, accept func(browser.Element) bool) (browser.Element, bool) {
	for _, s := range strategies {
		elements, err := attempt(scope, s)
		if err != nil || len(elements) == 0 {
			continue
		}
		if accept == nil || accept(elements[0]) {
			return elements[0], true
		}
	}

	return browser.Element{}, false
}

// attempt evaluates one strategy, turning a panic inside the scope into a
// lookup miss.
func attempt(scope browser.Scope, s scraper.Strategy) (elements []browser.Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			elements = nil
			err = fmt.Errorf("lookup %s panicked: %v", s, r)
		}
	}()

	return scope.FindAll(s)
}

// hasText accepts elements with non-empty text.
func hasText(e browser.Element) bool {
	return e.Text() != ""
}
