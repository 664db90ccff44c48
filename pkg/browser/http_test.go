package browser_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattismoel/stineplan/pkg/browser"
	"github.com/mattismoel/stineplan/pkg/stine"
)

const sessionCookie = "cnsc"

func datesPage(rows ...string) string {
	return `<h1>Veranstaltungsdetails</h1>
<table class="tb list rw-table rw-all">
<tr><th>Nr</th><th>Datum</th><th>Von</th><th>Bis</th></tr>` + strings.Join(rows, "\n") + `</table>`
}

// newPortal serves a small STiNE look-alike. Everything behind the login
// needs the session cookie.
func newPortal(t *testing.T) *httptest.Server {
	t.Helper()

	public := map[string]string{
		"/":      `<a id="logIn_btn" href="/login">Anmelden</a>`,
		"/login": `<form method="post" action="/login"><input id="Username" name="usrname"><input id="Password" name="pass"><input type="hidden" name="APPNAME" value="CampusNet"><button name="action" value="login">Anmelden</button></form>`,
	}
	private := map[string]string{
		"/studium":   `<ul><li title="Anmeldung zu Veranstaltungen"><a href="/anmeldung">Anmeldung</a></li></ul>`,
		"/anmeldung": `<ul><li><a href="/wahl?area=2">Wahlpflichtbereich</a></li></ul>`,
		"/wahl": `<table class="tbcoursestatus">
<tr><th>Veranstaltung</th></tr>
<tr><td class="tbsubhead"><a href="/mod/abc">ABC <span class="eventTitle">Algorithmen</span></a></td></tr>
<tr><td class="tbdata dl-inner"><a href="/ev/abc-vl"><span class="eventTitle">Vorlesung Algorithmen</span></a></td></tr>
<tr><td class="tbdata dl-inner"><a href="/ev/abc-ue"><span class="eventTitle">Übung Algorithmen</span></a></td></tr>
</table>`,
		"/mod/abc": `<table><tr><td>Credits:</td><td>6,0</td></tr></table>`,
		"/ev/abc-vl": datesPage(
			`<tr><td>1</td><td>Mo, 16. Okt. 2023</td><td>08:15</td><td>09:45</td></tr>`,
			`<tr><td>2</td><td>Mo, 23. Okt. 2023</td><td>08:15</td><td>09:45</td></tr>`,
		),
		"/ev/abc-ue": `<h1>Veranstaltungsdetails</h1><a href="/grp/1">Kleingruppe anzeigen</a>`,
		"/grp/1": datesPage(
			`<tr><td>1</td><td>Mi, 18. Okt. 2023</td><td>14:00</td><td>15:30</td></tr>`,
		),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" && r.Method == http.MethodPost {
			if r.FormValue("usrname") != "baa1234" || r.FormValue("pass") != "secret" ||
				r.FormValue("APPNAME") != "CampusNet" || r.FormValue("action") != "login" {
				fmt.Fprint(w, `<p>Benutzername oder Passwort falsch</p>`)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "ok", Path: "/"})
			fmt.Fprint(w, `<ul><li title="Studium"><a href="/studium">Studium</a></li></ul>`)
			return
		}
		if body, ok := public[r.URL.Path]; ok {
			fmt.Fprint(w, body)
			return
		}
		body, ok := private[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie(sessionCookie); err != nil || c.Value != "ok" {
			http.Error(w, "Zugriff verweigert", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func extract(t *testing.T, baseURL string, login stine.LoginInfo) (*stine.Extractor, *stine.Result, error) {
	t.Helper()

	b, err := browser.NewHTTP(browser.HTTPOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	e, err := stine.NewExtractor(b, login, stine.Options{
		BaseURL: baseURL,
		Timeout: time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	result, err := e.Extract(context.Background())
	return e, result, err
}

func TestHTTPExtract(t *testing.T) {
	srv := newPortal(t)

	e, result, err := extract(t, srv.URL, stine.LoginInfo{Username: "baa1234", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, stine.Done, e.State())
	assert.Empty(t, result.Skipped)

	require.Len(t, result.Modules, 1)
	abc := result.Modules[0]
	assert.Equal(t, "ABC", abc.ShortName)
	assert.Equal(t, "Algorithmen", abc.Name)
	assert.Equal(t, 6.0, abc.Credits)

	require.Len(t, abc.Events, 2)
	assert.Equal(t, stine.Lecture, abc.Events[0].Type)
	require.Len(t, abc.Events[0].Dates, 2)
	assert.Equal(t, 495, abc.Events[0].Dates[0].Start)
	assert.Equal(t, 90, abc.Events[0].Dates[0].Duration)

	assert.Equal(t, stine.Exercise, abc.Events[1].Type)
	require.Len(t, abc.Events[1].Dates, 1)
	assert.Equal(t, 840, abc.Events[1].Dates[0].Start)
}

func TestHTTPExtractWrongPassword(t *testing.T) {
	srv := newPortal(t)

	e, result, err := extract(t, srv.URL, stine.LoginInfo{Username: "baa1234", Password: "wrong"})
	assert.Nil(t, result)
	assert.Equal(t, stine.Failed, e.State())

	var navErr *stine.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, stine.NavigatingStudy, navErr.State)
	assert.ErrorIs(t, err, browser.ErrNoMatch)
}

func TestHTTPPageNotFound(t *testing.T) {
	srv := newPortal(t)

	b, err := browser.NewHTTP(browser.HTTPOptions{})
	require.NoError(t, err)
	page, err := b.NewPage(context.Background())
	require.NoError(t, err)
	defer page.Close()

	assert.Error(t, page.Navigate(context.Background(), srv.URL+"/missing"))

	_, err = page.Document(context.Background())
	assert.ErrorIs(t, err, browser.ErrNoDocument)
}

func TestHTTPCancelled(t *testing.T) {
	srv := newPortal(t)

	b, err := browser.NewHTTP(browser.HTTPOptions{})
	require.NoError(t, err)
	page, err := b.Page(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, page.Navigate(ctx, srv.URL), context.Canceled)
}
