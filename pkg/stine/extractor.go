package stine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	DefaultBaseURL = "https://stine.uni-hamburg.de"
	DefaultTimeout = 30 * time.Second
)

const (
	loginButtonSelector  = "#logIn_btn"
	usernameSelector     = "#Username"
	passwordSelector     = "#Password"
	submitSelector       = `button[value="login"]`
	studySelector        = "li[title='Studium']"
	registrationSelector = "li[title='Anmeldung zu Veranstaltungen']"
	electivesText        = "Wahlpflichtbereich"
	courseTableSelector  = "table.tbcoursestatus"

	primaryTitleSelector = ".tbsubhead .eventTitle"
	primaryLinkSelector  = ".tbsubhead a:has(.eventTitle)"
	detailTitleSelector  = ".tbdata.dl-inner .eventTitle"
	detailLinkSelector   = ".tbdata.dl-inner a:has(.eventTitle)"

	creditsLabel       = "Credits"
	detailsText        = "Veranstaltungsdetails"
	subgroupLinkText   = "Kleingruppe anzeigen"
	datesTableSelector = "table.tb.list.rw-table.rw-all"
	dateRowsSelector   = "tr:not(.rw-hide)"

	exerciseTerm = "Übung"
)

type State int

const (
	Unauthenticated State = iota
	Authenticating
	NavigatingStudy
	NavigatingRegistration
	NavigatingElectives
	ScanningTable
	Done
	Failed
)

var stateNames = [...]string{
	"unauthenticated",
	"authenticating",
	"navigating study",
	"navigating registration",
	"navigating electives",
	"scanning table",
	"done",
	"failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// NavigationError is returned when the portal does not reach the next
// navigation marker. It always aborts the extraction.
type NavigationError struct {
	State State
	Query string
	Err   error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s: %q: %v", e.State, e.Query, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingTitle     = errors.New("no event title")
	ErrMissingShortName = errors.New("no short event title")
	ErrMissingLink      = errors.New("no detail link")
	ErrMissingCredits   = errors.New("no credits")
)

// Skip records a row of the course table that was left out of the result.
type Skip struct {
	Row     int    // Index of the row in the course table
	Subject string // Module short name, if known
	Err     error
}

type Result struct {
	Modules []Module
	Skipped []Skip
}

type Options struct {
	BaseURL string
	Timeout time.Duration // Upper bound for every wait on the portal
	Logger  *slog.Logger
}

// Extractor walks the STiNE course registration pages and collects the
// enrolled modules with all of their event dates.
type Extractor struct {
	browser Browser
	login   LoginInfo
	baseURL *url.URL
	timeout time.Duration
	logger  *slog.Logger
	state   State
}

func NewExtractor(browser Browser, login LoginInfo, opts Options) (*Extractor, error) {
	if err := login.Validate(); err != nil {
		return nil, err
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	return &Extractor{
		browser: browser,
		login:   login,
		baseURL: baseURL,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}, nil
}

// State returns the state the last extraction reached.
func (e *Extractor) State() State {
	return e.state
}

type step struct {
	state   State
	message string
	marker  string
	act     func(ctx context.Context, page Page) error
}

func click(query string) func(context.Context, Page) error {
	return func(ctx context.Context, page Page) error {
		return page.Click(ctx, query)
	}
}

func (e *Extractor) steps() []step {
	electives := TextQuery(electivesText)
	return []step{
		{Unauthenticated, "going to login", loginButtonSelector, click(loginButtonSelector)},
		{Authenticating, "logging in", usernameSelector, e.submitLogin},
		{NavigatingStudy, "going to Studium", studySelector, click(studySelector)},
		{NavigatingRegistration, "going to Anmeldungen", registrationSelector, click(registrationSelector)},
		{NavigatingElectives, "going to Wahlpflichtbereich", electives, click(electives)},
	}
}

func (e *Extractor) submitLogin(ctx context.Context, page Page) error {
	if err := page.Type(ctx, usernameSelector, e.login.Username); err != nil {
		return err
	}
	if err := page.Type(ctx, passwordSelector, e.login.Password); err != nil {
		return err
	}
	return page.Click(ctx, submitSelector)
}

// Extract logs in and returns every module found in the course table. Any
// navigation failure before the table is reached aborts the extraction.
// Problems with single rows only drop the affected rows, see Result.Skipped.
func (e *Extractor) Extract(ctx context.Context) (*Result, error) {
	e.state = Unauthenticated

	mainPage, err := e.browser.Page(ctx)
	if err != nil {
		return nil, e.fail(err)
	}
	page := e.timed(mainPage)

	e.logger.Info("going to STiNE", "url", e.baseURL.String())
	if err := page.Navigate(ctx, e.baseURL.String()); err != nil {
		return nil, e.fail(&NavigationError{State: e.state, Query: e.baseURL.String(), Err: err})
	}

	for _, s := range e.steps() {
		e.state = s.state
		e.logger.Info(s.message)
		if err := page.WaitFor(ctx, s.marker); err != nil {
			return nil, e.fail(&NavigationError{State: s.state, Query: s.marker, Err: err})
		}
		if err := s.act(ctx, page); err != nil {
			return nil, e.fail(&NavigationError{State: s.state, Query: s.marker, Err: err})
		}
	}

	e.state = ScanningTable
	if err := page.WaitFor(ctx, courseTableSelector); err != nil {
		return nil, e.fail(&NavigationError{State: e.state, Query: courseTableSelector, Err: err})
	}
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, e.fail(&NavigationError{State: e.state, Query: courseTableSelector, Err: err})
	}

	result, err := e.scanTable(ctx, doc.Find(courseTableSelector).First().Find("tr"))
	if err != nil {
		return nil, e.fail(err)
	}

	e.state = Done
	return result, nil
}

func (e *Extractor) fail(err error) error {
	e.state = Failed
	return err
}

func (e *Extractor) timed(page Page) Page {
	return &timedPage{Page: page, timeout: e.timeout}
}

// timedPage bounds every call on a page by the extractor's timeout.
type timedPage struct {
	Page
	timeout time.Duration
}

func (p *timedPage) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Page.Navigate(ctx, url)
}

func (p *timedPage) WaitFor(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Page.WaitFor(ctx, query)
}

func (p *timedPage) Click(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Page.Click(ctx, query)
}

func (p *timedPage) Type(ctx context.Context, query, text string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Page.Type(ctx, query, text)
}

func (p *timedPage) Document(ctx context.Context) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Page.Document(ctx)
}

func (e *Extractor) closePage(page Page) {
	if err := page.Close(); err != nil {
		e.logger.Warn("could not close page", "err", err)
	}
}

func (e *Extractor) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return e.baseURL.ResolveReference(ref).String(), nil
}

// open opens href in a new page and waits for marker. The returned page must
// be closed by the caller.
func (e *Extractor) open(ctx context.Context, href, marker string) (Page, error) {
	target, err := e.resolve(href)
	if err != nil {
		return nil, err
	}
	aux, err := e.browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	page := e.timed(aux)
	if err := page.Navigate(ctx, target); err != nil {
		e.closePage(page)
		return nil, err
	}
	if err := page.WaitFor(ctx, marker); err != nil {
		e.closePage(page)
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	return page, nil
}

func isPrimaryRow(row *goquery.Selection) bool {
	return strings.TrimSpace(row.Find(primaryTitleSelector).First().Text()) != ""
}

func (e *Extractor) scanTable(ctx context.Context, rows *goquery.Selection) (*Result, error) {
	var list []*goquery.Selection
	rows.Each(func(_ int, row *goquery.Selection) {
		list = append(list, row)
	})

	groups := groupRows(list, isPrimaryRow)
	if len(groups) > 0 && groups[0].Index > 0 {
		e.logger.Debug("ignoring rows before first module", "rows", groups[0].Index)
	}

	result := &Result{Modules: []Module{}}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		module, skipped, err := e.module(ctx, group)
		result.Skipped = append(result.Skipped, skipped...)
		if err != nil {
			e.logger.Warn("skipping module", "row", group.Index, "module", module.ShortName, "err", err)
			result.Skipped = append(result.Skipped, Skip{Row: group.Index, Subject: module.ShortName, Err: err})
			continue
		}
		result.Modules = append(result.Modules, module)
	}
	return result, nil
}

// module builds the module of a row group. When err is non-nil the module is
// dropped; skipped lists detail rows that were left out of a kept module.
func (e *Extractor) module(ctx context.Context, group rowGroup[*goquery.Selection]) (module Module, skipped []Skip, err error) {
	module.Name = strings.TrimSpace(group.Primary.Find(primaryTitleSelector).First().Text())
	if module.Name == "" {
		return module, nil, ErrMissingTitle
	}

	link := group.Primary.Find(primaryLinkSelector).First()
	module.ShortName = leadingText(link)
	if module.ShortName == "" {
		return module, nil, ErrMissingShortName
	}
	e.logger.Info("found module", "module", module.ShortName)

	href, ok := link.Attr("href")
	if !ok {
		return module, nil, fmt.Errorf("%w: %w", ErrMissingCredits, ErrMissingLink)
	}
	module.Credits, err = e.credits(ctx, href)
	if err != nil {
		return module, nil, fmt.Errorf("%w: %w", ErrMissingCredits, err)
	}

	module.Events = []Event{}
	for i, row := range group.Details {
		events, err := e.events(ctx, row)
		module.Events = append(module.Events, events...)
		if err != nil {
			e.logger.Warn("skipping event", "module", module.ShortName, "row", group.Index+1+i, "err", err)
			skipped = append(skipped, Skip{Row: group.Index + 1 + i, Subject: module.ShortName, Err: err})
		}
	}
	return module, skipped, nil
}

func (e *Extractor) credits(ctx context.Context, href string) (float64, error) {
	page, err := e.open(ctx, href, TextQuery(creditsLabel))
	if err != nil {
		return 0, err
	}
	defer e.closePage(page)

	doc, err := page.Document(ctx)
	if err != nil {
		return 0, err
	}
	value, ok := labelValue(doc.Selection, creditsLabel)
	if !ok {
		return 0, fmt.Errorf("no value next to %q", creditsLabel)
	}
	return ParseCredits(value)
}

func eventType(title string) EventType {
	if strings.Contains(title, exerciseTerm) {
		return Exercise
	}
	return Lecture
}

// events reads the dates of a detail row. An event split into small groups
// yields one Event per group. The returned events are valid even when err
// reports that some of the groups could not be read.
func (e *Extractor) events(ctx context.Context, row *goquery.Selection) ([]Event, error) {
	title := strings.TrimSpace(row.Find(detailTitleSelector).First().Text())
	if title == "" {
		return nil, ErrMissingTitle
	}
	href, ok := row.Find(detailLinkSelector).First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("%s: %w", title, ErrMissingLink)
	}
	typ := eventType(title)

	page, err := e.open(ctx, href, TextQuery(detailsText))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}
	defer e.closePage(page)

	doc, err := page.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}

	groups := subgroupLinks(doc.Selection)
	if len(groups) == 0 {
		dates, err := e.dates(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
		return []Event{{Type: typ, Dates: dates}}, nil
	}

	var events []Event
	var errs []error
	for _, href := range groups {
		e.logger.Info("going to Kleingruppe", "event", title)
		dates, err := e.subgroupDates(ctx, href)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: small group: %w", title, err))
			continue
		}
		events = append(events, Event{Type: typ, Dates: dates})
	}
	return events, errors.Join(errs...)
}

func subgroupLinks(doc *goquery.Selection) []string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if strings.Contains(a.Text(), subgroupLinkText) {
			hrefs = append(hrefs, a.AttrOr("href", ""))
		}
	})
	return hrefs
}

func (e *Extractor) subgroupDates(ctx context.Context, href string) ([]EventDate, error) {
	page, err := e.open(ctx, href, datesTableSelector)
	if err != nil {
		return nil, err
	}
	defer e.closePage(page)
	return e.dates(ctx, page)
}

func (e *Extractor) dates(ctx context.Context, page Page) ([]EventDate, error) {
	if err := page.WaitFor(ctx, datesTableSelector); err != nil {
		return nil, err
	}
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, err
	}
	return e.parseDates(doc.Find(datesTableSelector).First()), nil
}

// parseDates reads the visible rows of a schedule table. Rows that cannot be
// parsed are left out.
func (e *Extractor) parseDates(table *goquery.Selection) []EventDate {
	dates := []EventDate{}
	table.Find(dateRowsSelector).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		date, err := parseDateRow(cells.Eq(1).Text(), cells.Eq(2).Text(), cells.Eq(3).Text())
		if err != nil {
			e.logger.Warn("skipping date", "row", i, "err", err)
			return
		}
		dates = append(dates, date)
	})
	return dates
}

// leadingText returns the first non-blank child of the selection's first
// node, as text.
func leadingText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for n := sel.Get(0).FirstChild; n != nil; n = n.NextSibling {
		if text := strings.TrimSpace(nodeText(n)); text != "" {
			return text
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
		return goquery.NewDocumentFromNode(n).Text()
	}
	return ""
}

func ownTextContains(n *html.Node, text string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.Contains(c.Data, text) {
			return true
		}
	}
	return false
}

// labelValue finds the element labelled label and returns the text that
// follows it, looking at the label's siblings and then at its parent's.
func labelValue(sel *goquery.Selection, label string) (string, bool) {
	var value string
	var found bool
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n := s.Get(0)
		if !ownTextContains(n, label) {
			return true
		}
		for cur, depth := n, 0; cur != nil && depth < 2 && !found; cur, depth = cur.Parent, depth+1 {
			for sib := cur.NextSibling; sib != nil; sib = sib.NextSibling {
				if text := strings.TrimSpace(nodeText(sib)); text != "" {
					value, found = text, true
					break
				}
			}
		}
		return !found
	})
	return value, found
}
