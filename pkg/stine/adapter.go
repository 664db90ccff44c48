package stine

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Page is a single view onto the portal. Queries are CSS selectors, or XPath
// expressions when they start with "/".
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until query matches at least one element or ctx is done.
	// Pages that cannot change without a navigation report a miss at once.
	WaitFor(ctx context.Context, query string) error
	Click(ctx context.Context, query string) error
	Type(ctx context.Context, query, text string) error
	// Document returns a snapshot of the current page for querying.
	Document(ctx context.Context) (*goquery.Document, error)
	Close() error
}

// Browser hands out pages that share one authenticated session.
type Browser interface {
	// Page returns the main page. It is owned by the browser and closing it
	// is a no-op.
	Page(ctx context.Context) (Page, error)
	// NewPage opens an auxiliary page which the caller must close.
	NewPage(ctx context.Context) (Page, error)
}

// TextQuery returns an XPath query matching elements whose own text
// contains text.
func TextQuery(text string) string {
	return fmt.Sprintf("//*[contains(text(), '%s')]", text)
}
