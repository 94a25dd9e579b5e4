package views

import "github.com/eringen/showreel/content"

// SiteMeta holds site-wide settings passed to every page so nothing is
// hardcoded in templates.
type SiteMeta struct {
	Name        string // shown in <title> and the admin header
	URL         string // canonical base URL
	Description string
	Author      string // the videographer, used for Person JSON-LD
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	Image       string
	Lang        content.Language
	GAID        string // Google Analytics id; no script when empty
	JSONLD      string
	LiveURL     string // SSE endpoint the page listens on; none when empty
	Dark        bool
	NoIndex     bool
}

// HomeData is everything the public page renders.
type HomeData struct {
	Site     SiteMeta
	State    content.State
	Category string // active portfolio filter, empty for all
	CSRF     string
	Booked   bool   // booking submitted successfully
	Alert    string // blocking booking error
	Dark     bool
}

// Form is a submitted admin form kept for re-rendering after a failed save.
type Form struct {
	Collection string
	ID         string
	Values     map[string]string
}

// Value returns the submitted value of field.
func (f *Form) Value(field string) string {
	if f == nil {
		return ""
	}
	return f.Values[field]
}

// AdminData is everything the admin dashboard renders.
type AdminData struct {
	Site        SiteMeta
	State       content.State
	Tab         string
	ContentLang content.Language
	Email       string
	CSRF        string
	Msg         string
	Err         string
	// Form is set when a save failed and the form must show what was typed.
	Form *Form
	// EditID selects the item whose edit form is open on the active tab.
	EditID string
}

// LoginData is the login page state.
type LoginData struct {
	Site  SiteMeta
	CSRF  string
	Email string
	Error string
}

// ConfirmData drives the delete confirmation page.
type ConfirmData struct {
	Site       SiteMeta
	Collection string
	ID         string
	Label      string
	CSRF       string
}

// Admin tab names.
const (
	TabDashboard = "dashboard"
	TabContent   = "content"
)

// AdminTabs lists dashboard tabs in display order with their labels.
var AdminTabs = []struct{ ID, Label string }{
	{TabDashboard, "Dashboard"},
	{content.CollectionProjects, "Loyihalar"},
	{content.CollectionBookings, "Buyurtmalar"},
	{TabContent, "Kontent"},
	{content.CollectionServices, "Xizmatlar"},
	{content.CollectionTestimonials, "Fikrlar"},
	{content.CollectionFAQ, "FAQ"},
	{content.CollectionProcess, "Jarayon"},
	{content.CollectionEquipment, "Texnika"},
}

// ValidTab reports whether tab is one of AdminTabs.
func ValidTab(tab string) bool {
	for _, t := range AdminTabs {
		if t.ID == tab {
			return true
		}
	}
	return false
}
