package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/mattismoel/stineplan/pkg/stine"
)

type ChromeOptions struct {
	Headless bool
	ExecPath string // Chrome binary, found on PATH when empty
	Logger   *slog.Logger
}

// Chrome drives a headless Chrome through chromedp. Every page is a tab of
// the same browser and therefore shares its cookies.
type Chrome struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	main          *chromePage
}

func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	if opts.ExecPath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(opts.ExecPath))
	}

	allocatorCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			opts.Logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	// The first Run starts the browser and binds it to browserCtx.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("could not start Chrome: %w", err)
	}

	return &Chrome{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		main:          &chromePage{ctx: browserCtx, main: true},
	}, nil
}

func (c *Chrome) Page(ctx context.Context) (stine.Page, error) {
	return c.main, nil
}

func (c *Chrome) NewPage(ctx context.Context) (stine.Page, error) {
	tabCtx, cancel := chromedp.NewContext(c.ctx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("could not open tab: %w", err)
	}
	return &chromePage{ctx: tabCtx, cancel: cancel}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	err := chromedp.Cancel(c.ctx)
	c.cancelBrowser()
	c.cancelAlloc()
	return err
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	main   bool
}

func queryOption(query string) chromedp.QueryOption {
	if isXPath(query) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// run executes actions on the tab while honouring the caller's ctx.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) WaitFor(ctx context.Context, query string) error {
	return p.run(ctx, chromedp.WaitReady(query, queryOption(query)))
}

func (p *chromePage) Click(ctx context.Context, query string) error {
	return p.run(ctx, chromedp.Click(query, queryOption(query)))
}

func (p *chromePage) Type(ctx context.Context, query, text string) error {
	return p.run(ctx, chromedp.SendKeys(query, text, queryOption(query)))
}

func (p *chromePage) Document(ctx context.Context) (*goquery.Document, error) {
	var body string
	if err := p.run(ctx, chromedp.OuterHTML("html", &body, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// Close closes the tab. The main page lives as long as the browser.
func (p *chromePage) Close() error {
	if p.main || p.cancel == nil {
		return nil
	}
	p.cancel()
	return nil
}
