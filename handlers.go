package showreel

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/views"
)

// bookingFailed is the blocking alert shown when a booking cannot be saved.
const bookingFailed = "Xatolik yuz berdi. Iltimos qaytadan urinib ko'ring."

func (a *App) handleHome(c echo.Context) error {
	lang := requestLanguage(c)
	a.countVisitor(c)

	d, err := a.homeData(c, lang)
	if err != nil {
		return err
	}
	d.Booked = c.QueryParam("booked") == "1"
	return Render(c, a.Views.Home(d, a.homeMeta(d)))
}

func (a *App) homeData(c echo.Context, lang content.Language) (views.HomeData, error) {
	st, err := content.Load(c.Request().Context(), a.Hub, lang, content.ViewOptions{})
	if err != nil {
		return views.HomeData{}, err
	}
	category := c.QueryParam("category")
	if !content.ValidCategory(category) {
		category = ""
	}
	return views.HomeData{
		Site:     a.siteMeta(),
		State:    st,
		Category: category,
		CSRF:     CsrfToken(c),
		Dark:     isDark(c),
	}, nil
}

func (a *App) homeMeta(d views.HomeData) views.PageMeta {
	sc := d.State.Content
	live := url.Values{}
	live.Set("lang", string(d.State.Lang))
	if d.Category != "" {
		live.Set("category", d.Category)
	}
	return views.PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         views.BuildURL(a.Config.URL),
		Image:       sc.HeroImage,
		Lang:        d.State.Lang,
		GAID:        sc.GAID,
		JSONLD:      views.PersonJsonLD(d.Site, sc),
		LiveURL:     "/live/?" + live.Encode(),
		Dark:        d.Dark,
	}
}

// countVisitor counts a browser once; the visited cookie remembers it.
func (a *App) countVisitor(c echo.Context) {
	if _, err := c.Cookie(visitedCookie); err == nil {
		return
	}
	if err := a.Editor.CountVisitor(c.Request().Context()); err != nil {
		a.Logger.Warn("count visitor failed", "error", err)
		return
	}
	a.setPreference(c, visitedCookie, "1")
}

func (a *App) handleLanguage(c echo.Context) error {
	lang, ok := knownLanguage(c.Param("code"))
	if !ok {
		return echo.ErrNotFound
	}
	a.setPreference(c, langCookie, string(lang))
	// An open page switches its live stream in place instead of reloading.
	if id := c.QueryParam("stream"); id != "" {
		if view, ok := a.live.get(id); ok {
			view.SetLanguage(lang)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleTheme(c echo.Context) error {
	next := themeLight
	if !isDark(c) {
		next = themeDark
	}
	a.setPreference(c, themeCookie, next)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleBooking(c echo.Context) error {
	key := "booking:" + c.RealIP()
	done, err := a.Editor.Begin(key)
	if err != nil {
		return c.String(http.StatusConflict, "Submission already in progress")
	}
	defer done()

	v := formValues(c, "name", "phone", "type")
	_, err = a.Editor.SubmitBooking(c.Request().Context(), content.Booking{
		Name:  v["name"],
		Phone: v["phone"],
		Type:  v["type"],
	})
	if err == nil {
		return c.Redirect(http.StatusSeeOther, "/?booked=1#contact")
	}

	code := http.StatusUnprocessableEntity
	if !errors.Is(err, content.ErrInvalidInput) {
		a.Logger.Error("booking failed", "error", err)
		code = http.StatusInternalServerError
	}
	d, lerr := a.homeData(c, requestLanguage(c))
	if lerr != nil {
		return lerr
	}
	d.Alert = bookingFailed
	return RenderStatus(c, code, a.Views.Home(d, a.homeMeta(d)))
}

func (a *App) handleFavicon(c echo.Context) error {
	return a.serveAsset(c, "favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	if _, err := os.Stat(filepath.Join(a.staticDir, "robots.txt")); err == nil {
		return c.File(filepath.Join(a.staticDir, "robots.txt"))
	}
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nDisallow: /login/\nSitemap: "+strings.TrimRight(a.Config.URL, "/")+"/sitemap.xml\n")
}

// serveAsset serves name from the static dir, falling back to the embedded copy.
func (a *App) serveAsset(c echo.Context, name string) error {
	if _, err := os.Stat(filepath.Join(a.staticDir, name)); err == nil {
		return c.File(filepath.Join(a.staticDir, name))
	}
	return echo.StaticFileHandler("embedded/"+name, EmbeddedAssets)(c)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
