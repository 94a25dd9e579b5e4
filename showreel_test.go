package showreel

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/showreel/auth"
	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/docstore"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse battery"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	cfg := SiteConfig{
		Name:             "Showreel",
		URL:              "https://example.com",
		DatabaseURL:      filepath.Join(t.TempDir(), "site.db"),
		SessionSecret:    "test-session-secret-0123456789abcdef",
		LoginMaxAttempts: 3,
	}
	opts = append([]Option{
		WithStaticDir(t.TempDir()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	a := New(cfg, opts...)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { a.Close() })
	return a
}

type testClient struct {
	t    *testing.T
	srv  *httptest.Server
	http *http.Client
}

func newTestClient(t *testing.T, a *App) *testClient {
	t.Helper()
	srv := httptest.NewServer(a.Echo)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:   t,
		srv: srv,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) get(path string) *http.Response {
	c.t.Helper()
	res, err := c.http.Get(c.srv.URL + path)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { res.Body.Close() })
	return res
}

// csrf returns the token echoed back in forms, fetching a page to obtain
// the cookie when the jar has none yet.
func (c *testClient) csrf() string {
	c.t.Helper()
	u, _ := url.Parse(c.srv.URL)
	for i := 0; i < 2; i++ {
		for _, ck := range c.http.Jar.Cookies(u) {
			if ck.Name == "_csrf" {
				return ck.Value
			}
		}
		c.get("/login/")
	}
	c.t.Fatal("no csrf cookie")
	return ""
}

func (c *testClient) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", c.csrf())
	res, err := c.http.PostForm(c.srv.URL+path, form)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { res.Body.Close() })
	return res
}

func (c *testClient) login(a *App) {
	c.t.Helper()
	require.NoError(c.t, a.Auth.(*auth.LocalProvider).AddUser(context.Background(), testEmail, testPassword))
	res := c.post("/login/", url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(c.t, http.StatusSeeOther, res.StatusCode)
	require.Equal(c.t, "/admin/", res.Header.Get("Location"))
}

func body(t *testing.T, res *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func list(t *testing.T, a *App, collection string) []docstore.Document {
	t.Helper()
	docs, err := a.Hub.List(context.Background(), collection)
	require.NoError(t, err)
	return docs
}

func TestHomeCountsVisitorOnce(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	res := c.get("/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	out := body(t, res)
	require.Contains(t, out, `data-section="hero"`)
	require.Contains(t, out, `data-live="/live/?lang=uz"`)
	require.Contains(t, out, `"@type":"Person"`)

	c.get("/")
	require.Equal(t, int64(1), content.Visitors(list(t, a, content.CollectionStats)))

	// a new browser counts again
	newTestClient(t, a).get("/")
	require.Equal(t, int64(2), content.Visitors(list(t, a, content.CollectionStats)))
}

func TestLanguageSwitch(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	res := c.get("/lang/ru/")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/", res.Header.Get("Location"))
	require.Contains(t, body(t, c.get("/")), `<html lang="ru"`)

	// the query parameter wins over the cookie
	require.Contains(t, body(t, c.get("/?lang=en")), `<html lang="en"`)

	require.Equal(t, http.StatusNotFound, c.get("/lang/de/").StatusCode)
}

func TestThemeToggle(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	require.Contains(t, body(t, c.get("/")), `class="dark"`)
	require.Equal(t, http.StatusSeeOther, c.get("/theme/").StatusCode)
	require.NotContains(t, body(t, c.get("/")), `<html lang="uz" class="dark"`)
}

func TestAdminRequiresSession(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	for _, path := range []string{"/admin/", "/admin/?tab=faq", "/admin/live/"} {
		res := c.get(path)
		require.Equal(t, http.StatusSeeOther, res.StatusCode, path)
		require.Equal(t, "/login/", res.Header.Get("Location"), path)
	}

	res := c.post("/admin/faq/", url.Values{"q": {"x"}, "a": {"y"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Empty(t, list(t, a, content.CollectionFAQ))
}

func TestLoginFailuresAreGenericAndLimited(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	require.NoError(t, a.Auth.(*auth.LocalProvider).AddUser(context.Background(), testEmail, testPassword))

	wrong := c.post("/login/", url.Values{"email": {testEmail}, "password": {"nope-nope-nope"}})
	require.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	unknown := c.post("/login/", url.Values{"email": {"who@example.com"}, "password": {testPassword}})
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	require.Contains(t, body(t, wrong), loginFailed)
	require.Contains(t, body(t, unknown), loginFailed)

	c.post("/login/", url.Values{"email": {testEmail}, "password": {"still-wrong"}})
	res := c.post("/login/", url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
}

func TestLogoutClearsSession(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)
	require.Equal(t, http.StatusOK, c.get("/admin/").StatusCode)

	res := c.post("/logout/", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/login/", res.Header.Get("Location"))
	require.Equal(t, http.StatusSeeOther, c.get("/admin/").StatusCode)
}

func TestAdminItemLifecycle(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)

	res := c.post("/admin/faq/", url.Values{"q": {"Do you fly drones?"}, "a": {"Yes, licensed."}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, adminURL("faq", "msg", "Savol qo'shildi"), res.Header.Get("Location"))

	docs := list(t, a, content.CollectionFAQ)
	require.Len(t, docs, 1)
	id := docs[0].ID

	res = c.post("/admin/faq/"+id+"/", url.Values{"q": {"Do you fly drones?"}, "a": {"Yes, DJI Mavic 3."}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, adminURL("faq", "msg", "Savol yangilandi"), res.Header.Get("Location"))
	require.Equal(t, "Yes, DJI Mavic 3.", content.FAQ(list(t, a, content.CollectionFAQ))[0].A)

	page := body(t, c.get("/admin/?tab=faq&edit="+id))
	require.Contains(t, page, `action="/admin/faq/`+id+`/"`)

	// deleting needs the confirmation step
	res = c.post("/admin/faq/"+id+"/delete/", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/admin/faq/"+id+"/delete/", res.Header.Get("Location"))
	require.Len(t, list(t, a, content.CollectionFAQ), 1)

	confirm := c.get("/admin/faq/" + id + "/delete/")
	require.Equal(t, http.StatusOK, confirm.StatusCode)
	require.Contains(t, body(t, confirm), "Do you fly drones?")

	res = c.post("/admin/faq/"+id+"/delete/", url.Values{"confirm": {"yes"}})
	require.Equal(t, adminURL("faq", "msg", msgDeleted), res.Header.Get("Location"))
	require.Empty(t, list(t, a, content.CollectionFAQ))
}

func TestAdminValidationKeepsForm(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)

	res := c.post("/admin/projects/", url.Values{
		"title":       {""},
		"category":    {"Reels"},
		"description": {"half typed"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	out := body(t, res)
	require.Contains(t, out, "half typed")
	require.Contains(t, out, msgFailed)
	require.Empty(t, list(t, a, content.CollectionProjects))

	res = c.post("/admin/projects/", url.Values{"title": {"Film"}, "category": {"Cinema"}})
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	require.Equal(t, http.StatusNotFound, c.post("/admin/admins/", url.Values{"email": {"x"}}).StatusCode)
}

func TestAdminUpdateMissingItem(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)

	res := c.post("/admin/faq/missing/", url.Values{"q": {"q"}, "a": {"a"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, adminURL("faq", "err", msgFailed), res.Header.Get("Location"))
	require.Empty(t, list(t, a, content.CollectionFAQ))
}

func TestBookingSubmitAndToggle(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	res := c.post("/booking/", url.Values{"name": {"Aziz"}, "phone": {"+998901112233"}, "type": {"Tadbir"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/?booked=1#contact", res.Header.Get("Location"))

	bookings := content.Bookings(list(t, a, content.CollectionBookings))
	require.Len(t, bookings, 1)
	require.Equal(t, content.BookingNew, bookings[0].Status)
	require.WithinDuration(t, time.Now(), bookings[0].CreatedAt, time.Minute)

	res = c.post("/booking/", url.Values{"name": {"Aziz"}})
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	require.Contains(t, body(t, res), `role="alertdialog"`)
	require.Len(t, list(t, a, content.CollectionBookings), 1)

	c.login(a)
	res = c.post("/admin/bookings/"+bookings[0].ID+"/toggle/", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, content.BookingCompleted, content.Bookings(list(t, a, content.CollectionBookings))[0].Status)
}

func TestSaveSiteContent(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)

	res := c.post("/admin/content/en/", url.Values{
		"heroTitle":   {"HELLO THERE"},
		"clients":     {"Acme, , Globex"},
		"stat0.val":   {"7+"},
		"stat0.label": {"Years"},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	doc, err := a.Hub.Get(context.Background(), content.CollectionSiteContent, "en")
	require.NoError(t, err)
	sc := content.SiteContentDoc(&doc)
	require.Equal(t, []string{"Acme", "Globex"}, sc.Clients)
	require.Equal(t, []content.Stat{{Value: "7+", Label: "Years"}}, sc.AboutStats)

	out := body(t, c.get("/?lang=en"))
	require.Contains(t, out, "HELLO THERE")
	// blank fields fall back to the English defaults
	require.Contains(t, out, content.Defaults(content.English).UITexts.FooterText)

	require.Equal(t, http.StatusNotFound, c.post("/admin/content/de/", nil).StatusCode)
}

func TestImageUpload(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "Wedding Shot.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.srv.URL+"/admin/upload/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-CSRF-Token", c.csrf())
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got uploadResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.True(t, got.Success)
	require.True(t, strings.HasPrefix(got.URL, "/public/uploads/"), got.URL)

	_, err = os.Stat(filepath.Join(a.staticDir, "uploads", strings.TrimPrefix(got.URL, "/public/uploads/")))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, c.get(got.URL).StatusCode)
}

func TestSitemapAndRobots(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	out := body(t, c.get("/sitemap.xml"))
	require.Contains(t, out, "<loc>https://example.com/</loc>")
	require.Contains(t, out, "<loc>https://example.com/?lang=ru</loc>")
	require.Contains(t, out, "<loc>https://example.com/?lang=en</loc>")

	require.Contains(t, body(t, c.get("/robots.txt")), "Sitemap: https://example.com/sitemap.xml")
	require.Equal(t, http.StatusOK, c.get("/favicon.svg").StatusCode)
	require.Equal(t, http.StatusOK, c.get("/public/live.js").StatusCode)
}

func TestNotFoundPage(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	res := c.get("/no/such/page/")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Contains(t, body(t, res), "404")
}

// readEvents forwards the data lines of a server-sent event stream.
func readEvents(r io.Reader) <-chan string {
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
		for sc.Scan() {
			if data, ok := strings.CutPrefix(sc.Text(), "data: "); ok {
				ch <- data
			}
		}
	}()
	return ch
}

func waitEvent(t *testing.T, events <-chan string, section, contains string) sectionEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case data, ok := <-events:
			require.True(t, ok, "stream closed before %s event", section)
			var ev sectionEvent
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			if ev.Section == section && strings.Contains(ev.HTML, contains) {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event containing %q", section, contains)
			return sectionEvent{}
		}
	}
}

func TestLiveStreamPushesChangedSections(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.srv.URL+"/live/?lang=en", nil)
	require.NoError(t, err)
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	events := readEvents(res.Body)

	_, err = a.Editor.SaveFAQ(context.Background(), content.FAQItem{Q: "Do you travel?", A: "Anywhere."})
	require.NoError(t, err)
	ev := waitEvent(t, events, "faq", "Do you travel?")
	require.Contains(t, ev.HTML, `data-section="faq"`)

	require.NoError(t, a.Editor.SaveSiteContent(context.Background(), content.English, content.SiteContent{HeroTitle: "LIVE TITLE"}))
	waitEvent(t, events, "hero", "LIVE TITLE")

	// other languages do not reach this stream's hero
	require.NoError(t, a.Editor.SaveSiteContent(context.Background(), content.Russian, content.SiteContent{HeroTitle: "ЖИВОЙ"}))
	_, err = a.Editor.SaveFAQ(context.Background(), content.FAQItem{Q: "Marker?", A: "Yes."})
	require.NoError(t, err)
	deadline := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case data := <-events:
			var ev sectionEvent
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			require.NotContains(t, ev.HTML, "ЖИВОЙ")
			done = ev.Section == "faq" && strings.Contains(ev.HTML, "Marker?")
		case <-deadline:
			t.Fatal("no faq event for the marker question")
		}
	}

	cancel()
	require.Eventually(t, func() bool {
		return a.Hub.Subscribers(content.CollectionFAQ) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAdminLiveStreamPushesBookings(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	c.login(a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.srv.URL+"/admin/live/?tab=bookings", nil)
	require.NoError(t, err)
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	events := readEvents(res.Body)

	_, err = a.Editor.SubmitBooking(context.Background(), content.Booking{Name: "Malika", Phone: "+998935554433"})
	require.NoError(t, err)
	ev := waitEvent(t, events, "list", "Malika")
	require.Contains(t, ev.HTML, "/toggle/")

	require.NoError(t, a.Editor.CountVisitor(context.Background()))
	waitEvent(t, events, "visitors", "; 1</span>")
}

func TestLiveStreamSwitchesLanguageInPlace(t *testing.T) {
	a := newTestApp(t)
	c := newTestClient(t, a)
	require.NoError(t, a.Editor.SaveSiteContent(context.Background(), content.Russian, content.SiteContent{HeroTitle: "ЖИВОЙ"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.srv.URL+"/live/?lang=en", nil)
	require.NoError(t, err)
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	events := readEvents(res.Body)

	var opened streamEvent
	select {
	case data := <-events:
		require.NoError(t, json.Unmarshal([]byte(data), &opened))
	case <-time.After(5 * time.Second):
		t.Fatal("no stream event")
	}
	require.NotEmpty(t, opened.ID)

	sw := c.get("/lang/ru/?stream=" + opened.ID)
	require.Equal(t, http.StatusNoContent, sw.StatusCode)
	waitEvent(t, events, "hero", "ЖИВОЙ")

	// an unknown stream falls back to the reload
	require.Equal(t, http.StatusSeeOther, c.get("/lang/ru/?stream=gone").StatusCode)
}

func TestShutdownEndsLiveStreams(t *testing.T) {
	a := newTestApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a.Echo.Listener = ln
	served := make(chan error, 1)
	go func() { served <- a.Echo.Start("") }()

	res, err := http.Get("http://" + ln.Addr().String() + "/live/")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, a.Shutdown(ctx))
	require.Less(t, time.Since(start), 3*time.Second)
	require.ErrorIs(t, <-served, http.ErrServerClosed)
}
