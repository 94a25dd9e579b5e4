package showreel

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	docs, err := a.Hub.List(c.Request().Context(), content.CollectionSiteContent)
	if err != nil {
		return err
	}
	modified := make(map[string]time.Time, len(docs))
	for _, d := range docs {
		modified[d.ID] = d.UpdatedAt
	}
	return a.renderSitemap(c, modified)
}

// renderSitemap lists the page once per language, dated by the last edit of
// that language's content.
func (a *App) renderSitemap(c echo.Context, modified map[string]time.Time) error {
	base := strings.TrimRight(a.Config.URL, "/")
	var urls []sitemapURL
	for _, lang := range content.Languages {
		u := sitemapURL{Loc: base + "/?lang=" + string(lang)}
		if lang == content.DefaultLanguage {
			u.Loc = base + "/"
		}
		if t, ok := modified[string(lang)]; ok && !t.IsZero() {
			u.LastMod = t.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
