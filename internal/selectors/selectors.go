// Package selectors holds the CSS selectors the front-end script uses to find
// the post container, title, navigation and comments of a theme.
package selectors

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Category names one region of a single-post page.
type Category string

const (
	Container      Category = "container"
	Title          Category = "title"
	PostNavigation Category = "post_navigation"
	Comments       Category = "comments"
)

var categories = []Category{Container, Title, PostNavigation, Comments}

var table = map[Category][]string{
	Container: {
		"main.site-main",
		"main#main",
		"main.post-wrap",
		"div#main",
		"div.site-content",
		"div#content",
		"div.content-container",
	},
	Title: {
		"h1.entry-title",
		"h1.post-title",
		"h1.page-title",
		"h1.title-single",
		"h1",
	},
	PostNavigation: {
		"nav.post-navigation",
		"nav.navigation-post",
		"nav.navigation",
		"div.navigation",
		"nav#nav-below",
		"#nav-single",
		"div.next-prev",
		"nav.prev-next-nav",
	},
	Comments: {
		"div#comments",
		"section#comments",
	},
}

// Categories returns every category in table order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// For returns a copy of the selector list for c, or nil for an unknown
// category.
func For(c Category) []string {
	list, ok := table[c]
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Validate compiles every selector in the table.
func Validate() error {
	for _, c := range categories {
		for _, sel := range table[c] {
			if _, err := cascadia.Compile(sel); err != nil {
				return fmt.Errorf("selector %q in %s: %w", sel, c, err)
			}
		}
	}
	return nil
}

// Detect parses a rendered single-post page and returns, per category, the
// first selector of the table that matches it. Categories without a match are
// left out.
func Detect(r io.Reader) (map[Category]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	found := make(map[Category]string, len(categories))
	for _, c := range categories {
		for _, sel := range table[c] {
			if doc.Find(sel).Length() > 0 {
				found[c] = sel
				break
			}
		}
	}
	return found, nil
}
