package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// isXPath reports whether query is an XPath expression rather than a CSS
// selector.
func isXPath(query string) bool {
	return strings.HasPrefix(query, "/") || strings.HasPrefix(query, "(")
}

// Find resolves query against doc. CSS selectors go through goquery, XPath
// expressions through htmlquery. An invalid XPath matches nothing.
func Find(doc *goquery.Document, query string) *goquery.Selection {
	if !isXPath(query) {
		return doc.Find(query)
	}
	nodes, err := htmlquery.QueryAll(doc.Get(0), query)
	if err != nil {
		return doc.FindNodes()
	}
	return doc.FindNodes(nodes...)
}
