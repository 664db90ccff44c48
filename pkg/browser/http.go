package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/mattismoel/stineplan/pkg/stine"
)

var (
	ErrNoDocument = errors.New("no page loaded")
	ErrNoMatch    = errors.New("no element matches")
)

type HTTPOptions struct {
	Timeout   time.Duration // Per request, zero keeps the colly default
	UserAgent string
}

// HTTP reads the portal with plain requests through colly. It does not run
// scripts, so WaitFor only checks the document that is already loaded. All
// pages share one cookie jar.
type HTTP struct {
	collector *colly.Collector
	main      *httpPage
}

func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetCookieJar(jar)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	}

	h := &HTTP{collector: c}
	h.main = h.newPage(true)
	return h, nil
}

func (h *HTTP) newPage(main bool) *httpPage {
	p := &httpPage{collector: h.collector.Clone(), main: main}
	p.collector.OnResponse(p.onResponse)
	return p
}

func (h *HTTP) Page(ctx context.Context) (stine.Page, error) {
	return h.main, nil
}

func (h *HTTP) NewPage(ctx context.Context) (stine.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.newPage(false), nil
}

func (h *HTTP) Close() error {
	return nil
}

type httpPage struct {
	collector *colly.Collector
	main      bool

	url  *url.URL
	doc  *goquery.Document
	form map[string]string // Typed values by input name
	err  error
}

func (p *httpPage) onResponse(r *colly.Response) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		p.err = fmt.Errorf("could not parse %s: %w", r.Request.URL, err)
		return
	}
	p.url, p.doc, p.form = r.Request.URL, doc, map[string]string{}
}

func (p *httpPage) resolve(target string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", err
	}
	if p.url != nil {
		u = p.url.ResolveReference(u)
	}
	return u.String(), nil
}

// load runs a request and waits for its response to be parsed.
func (p *httpPage) load(ctx context.Context, request func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.err = nil
	if err := request(); err != nil {
		return err
	}
	return p.err
}

func (p *httpPage) Navigate(ctx context.Context, target string) error {
	u, err := p.resolve(target)
	if err != nil {
		return err
	}
	return p.load(ctx, func() error {
		if err := p.collector.Visit(u); err != nil {
			return fmt.Errorf("could not load %s: %w", u, err)
		}
		return nil
	})
}

func (p *httpPage) find(query string) (*goquery.Selection, error) {
	if p.doc == nil {
		return nil, ErrNoDocument
	}
	sel := Find(p.doc, query)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, query)
	}
	return sel.First(), nil
}

func (p *httpPage) WaitFor(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.find(query)
	return err
}

// Click follows the link around or inside the element, or submits the form
// the element belongs to.
func (p *httpPage) Click(ctx context.Context, query string) error {
	sel, err := p.find(query)
	if err != nil {
		return err
	}
	if href, ok := sel.Closest("a[href]").Attr("href"); ok {
		return p.Navigate(ctx, href)
	}
	if href, ok := sel.Find("a[href]").Attr("href"); ok {
		return p.Navigate(ctx, href)
	}
	if form := sel.Closest("form"); form.Length() > 0 {
		return p.submit(ctx, form, sel)
	}
	return fmt.Errorf("%q is neither a link nor part of a form", query)
}

func (p *httpPage) submit(ctx context.Context, form, button *goquery.Selection) error {
	values := map[string]string{}
	form.Find("input[name], select[name], textarea[name]").Each(func(_ int, s *goquery.Selection) {
		switch strings.ToLower(s.AttrOr("type", "")) {
		case "submit", "button", "image", "reset":
			return
		}
		values[s.AttrOr("name", "")] = s.AttrOr("value", "")
	})
	for name, value := range p.form {
		values[name] = value
	}
	if name, ok := button.Attr("name"); ok {
		values[name] = button.AttrOr("value", "")
	}

	action, err := p.resolve(form.AttrOr("action", ""))
	if err != nil {
		return err
	}

	if strings.EqualFold(form.AttrOr("method", "get"), "post") {
		return p.load(ctx, func() error {
			if err := p.collector.Post(action, values); err != nil {
				return fmt.Errorf("could not submit to %s: %w", action, err)
			}
			return nil
		})
	}

	u, err := url.Parse(action)
	if err != nil {
		return err
	}
	query := u.Query()
	for name, value := range values {
		query.Set(name, value)
	}
	u.RawQuery = query.Encode()
	return p.Navigate(ctx, u.String())
}

// Type remembers text as the value of the input for the next submit.
func (p *httpPage) Type(ctx context.Context, query, text string) error {
	sel, err := p.find(query)
	if err != nil {
		return err
	}
	name := sel.AttrOr("name", sel.AttrOr("id", ""))
	if name == "" {
		return fmt.Errorf("input %q has no name", query)
	}
	p.form[name] = text
	return nil
}

func (p *httpPage) Document(ctx context.Context) (*goquery.Document, error) {
	if p.doc == nil {
		return nil, ErrNoDocument
	}
	return p.doc, nil
}

func (p *httpPage) Close() error {
	if !p.main {
		p.doc = nil
	}
	return nil
}
