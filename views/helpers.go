package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/showreel/content"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PersonJsonLD produces a Schema.org Person block describing the
// videographer behind the site.
func PersonJsonLD(site SiteMeta, sc content.SiteContent) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Person",
		"name":        site.Author,
		"jobTitle":    "Videographer",
		"url":         BuildURL(site.URL),
		"description": sc.HeroSubtitle,
	}
	if site.Author == "" {
		data["name"] = site.Name
	}
	var sameAs []string
	for _, link := range []string{sc.SocialLinks.Instagram, sc.SocialLinks.Telegram} {
		if strings.HasPrefix(link, "http") {
			sameAs = append(sameAs, link)
		}
	}
	if len(sameAs) > 0 {
		data["sameAs"] = sameAs
	}
	if sc.SocialLinks.Phone != "" {
		data["telephone"] = sc.SocialLinks.Phone
	}
	if sc.HeroImage != "" {
		data["image"] = sc.HeroImage
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// PhoneHref turns a display phone number into a tel: link.
func PhoneHref(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return "tel:" + b.String()
}

// FormatDate renders a booking timestamp for the admin tables.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02.01.2006 15:04")
}

// FormatViews renders an estimate in millions the way the dashboard shows it.
func FormatViews(millions float64) string {
	return strconv.FormatFloat(millions, 'f', 1, 64) + "M+"
}

// Initial returns the first letter of name for avatar placeholders.
func Initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// LangURL is the link that switches the public page to lang.
func LangURL(lang content.Language) string {
	return "/lang/" + url.PathEscape(string(lang)) + "/"
}

// CategoryURL is the portfolio filter link for category.
func CategoryURL(category string) string {
	if category == "" {
		return "/#portfolio"
	}
	return "/?category=" + url.QueryEscape(category) + "#portfolio"
}

func filterProjects(projects []content.Project, category string) []content.Project {
	if category == "" {
		return projects
	}
	var out []content.Project
	for _, p := range projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
