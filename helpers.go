package showreel

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/views"
)

const (
	langCookie    = "lang"
	themeCookie   = "theme"
	visitedCookie = "visited"

	themeLight = "light"
	themeDark  = "dark"

	preferenceMaxAge = 365 * 24 * time.Hour
)

func (a *App) siteMeta() views.SiteMeta {
	return views.SiteMeta{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// requestLanguage picks the page language from ?lang=, then the language
// cookie, then the default.
func requestLanguage(c echo.Context) content.Language {
	if code := c.QueryParam("lang"); code != "" {
		return content.ParseLanguage(code)
	}
	if ck, err := c.Cookie(langCookie); err == nil {
		return content.ParseLanguage(ck.Value)
	}
	return content.DefaultLanguage
}

// isDark reports the theme preference; dark unless the visitor chose light.
func isDark(c echo.Context) bool {
	ck, err := c.Cookie(themeCookie)
	return err != nil || ck.Value != themeLight
}

func (a *App) setPreference(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(preferenceMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	})
}

// knownLanguage reports whether code names one of content.Languages exactly.
func knownLanguage(code string) (content.Language, bool) {
	for _, l := range content.Languages {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}

// formValues collects the trimmed values of the named fields.
func formValues(c echo.Context, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = strings.TrimSpace(c.FormValue(n))
	}
	return out
}

// adminURL builds a dashboard link for tab with extra query parameters.
func adminURL(tab string, kv ...string) string {
	q := url.Values{}
	q.Set("tab", tab)
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return "/admin/?" + q.Encode()
}
