package views

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/richtext"
)

//go:generate templ generate

// Public page sections, in page order. Each renders inside an element
// carrying data-section so the live stream can swap it.
const (
	SectionNav          = "nav"
	SectionHero         = "hero"
	SectionAbout        = "about"
	SectionClients      = "clients"
	SectionPortfolio    = "portfolio"
	SectionServices     = "services"
	SectionProcess      = "process"
	SectionEquipment    = "equipment"
	SectionTestimonials = "testimonials"
	SectionFAQ          = "faq"
	SectionContact      = "contact"
	SectionFooter       = "footer"
)

// HomeSections lists the public sections in page order.
var HomeSections = []string{
	SectionNav, SectionHero, SectionAbout, SectionClients, SectionPortfolio, SectionServices,
	SectionProcess, SectionEquipment, SectionTestimonials, SectionFAQ, SectionContact, SectionFooter,
}

// SectionsFor returns the public sections that display collection. Site
// content feeds every section title, so it refreshes them all.
func SectionsFor(collection string) []string {
	switch collection {
	case content.CollectionSiteContent:
		return HomeSections
	case content.CollectionProjects:
		return []string{SectionPortfolio}
	case content.CollectionServices:
		return []string{SectionServices}
	case content.CollectionProcess:
		return []string{SectionProcess}
	case content.CollectionEquipment:
		return []string{SectionEquipment}
	case content.CollectionTestimonials:
		return []string{SectionTestimonials}
	case content.CollectionFAQ:
		return []string{SectionFAQ}
	}
	return nil
}

// Admin live sections.
const (
	AdminSectionDashboard = "dashboard"
	AdminSectionList      = "list"
	AdminSectionVisitors  = "visitors"
)

// AdminSectionsFor returns the admin sections to refresh on tab when
// collection changes. Forms are never refreshed so typing is not lost.
func AdminSectionsFor(tab, collection string) []string {
	var out []string
	if collection == content.CollectionStats {
		out = append(out, AdminSectionVisitors)
	}
	switch {
	case tab == TabDashboard:
		switch collection {
		case content.CollectionProjects, content.CollectionBookings, content.CollectionStats:
			out = append(out, AdminSectionDashboard)
		}
	case tab == collection:
		out = append(out, AdminSectionList)
	}
	return out
}

type navLink struct {
	ID, Label string
}

func navLinks(t content.SectionTitles) []navLink {
	return []navLink{
		{SectionAbout, t.About},
		{SectionPortfolio, t.Portfolio},
		{SectionServices, t.Services},
		{SectionProcess, t.Process},
		{SectionFAQ, t.FAQ},
		{SectionContact, t.Contact},
	}
}

// safeURL drops links with a scheme other than http, https, mailto or tel.
func safeURL(raw string) templ.SafeURL {
	return templ.SafeURL(richtext.CleanURL(raw))
}

// analyticsID keeps only the characters valid in an analytics id.
func analyticsID(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' || c == '_' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			out = append(out, c)
		}
	}
	return string(out)
}

func gtagURL(id string) string {
	return "https://www.googletagmanager.com/gtag/js?id=" + analyticsID(id)
}

func loginMeta(d LoginData) PageMeta {
	return PageMeta{Title: "Login | " + d.Site.Name, NoIndex: true, Dark: true}
}

func adminMeta(d AdminData) PageMeta {
	return PageMeta{
		Title:   "Admin | " + d.Site.Name,
		NoIndex: true,
		Dark:    true,
		LiveURL: "/admin/live/?tab=" + d.Tab,
	}
}

func confirmMeta(d ConfirmData) PageMeta {
	return PageMeta{Title: "O'chirish | " + d.Site.Name, NoIndex: true, Dark: true}
}

func recentBookings(bookings []content.Booking) []content.Booking {
	if len(bookings) > 5 {
		return bookings[:5]
	}
	return bookings
}

// listItem is the summary line of a document on its tab.
type listItem struct {
	ID, Title, Subtitle, Image string
}

func listItems(collection string, st content.State) []listItem {
	var out []listItem
	switch collection {
	case content.CollectionProjects:
		for _, x := range st.Projects {
			out = append(out, listItem{x.ID, x.Title, x.Category, x.Image})
		}
	case content.CollectionServices:
		for _, x := range st.Services {
			out = append(out, listItem{x.ID, x.Title, x.Price, x.Image})
		}
	case content.CollectionTestimonials:
		for _, x := range st.Testimonials {
			out = append(out, listItem{x.ID, x.Name, x.Role, x.Image})
		}
	case content.CollectionFAQ:
		for _, x := range st.FAQ {
			out = append(out, listItem{x.ID, x.Q, "", ""})
		}
	case content.CollectionProcess:
		for _, x := range st.Process {
			out = append(out, listItem{x.ID, x.Step + ". " + x.Title, "", x.Image})
		}
	case content.CollectionEquipment:
		for _, x := range st.Equipment {
			out = append(out, listItem{x.ID, x.Title, strings.Join(x.Items, ", "), x.Image})
		}
	}
	return out
}

// ItemValues returns the form values of an existing document, or false when
// the document is not in the state.
func ItemValues(collection, id string, st content.State) (map[string]string, bool) {
	switch collection {
	case content.CollectionProjects:
		for _, x := range st.Projects {
			if x.ID == id {
				return map[string]string{"title": x.Title, "category": x.Category, "description": x.Description,
					"stats": x.Stats, "image": x.Image, "videoUrl": x.VideoURL}, true
			}
		}
	case content.CollectionServices:
		for _, x := range st.Services {
			if x.ID == id {
				return map[string]string{"title": x.Title, "desc": x.Desc, "price": x.Price, "icon": x.Icon, "image": x.Image}, true
			}
		}
	case content.CollectionTestimonials:
		for _, x := range st.Testimonials {
			if x.ID == id {
				return map[string]string{"name": x.Name, "role": x.Role, "text": x.Text, "image": x.Image}, true
			}
		}
	case content.CollectionFAQ:
		for _, x := range st.FAQ {
			if x.ID == id {
				return map[string]string{"q": x.Q, "a": x.A}, true
			}
		}
	case content.CollectionProcess:
		for _, x := range st.Process {
			if x.ID == id {
				return map[string]string{"step": x.Step, "title": x.Title, "desc": x.Desc, "image": x.Image}, true
			}
		}
	case content.CollectionEquipment:
		for _, x := range st.Equipment {
			if x.ID == id {
				return map[string]string{"title": x.Title, "icon": x.Icon, "items": strings.Join(x.Items, ", "), "image": x.Image}, true
			}
		}
	}
	return nil, false
}

// ItemLabel names a document for the delete confirmation page.
func ItemLabel(collection, id string, st content.State) string {
	for _, it := range listItems(collection, st) {
		if it.ID == id {
			return it.Title
		}
	}
	return id
}

// editForm is the add or edit form of the active tab.
type editForm struct {
	Tab     string
	ID      string
	Action  string
	Heading string
	Values  map[string]string
}

func (f editForm) Get(field string) string {
	return f.Values[field]
}

// newEditForm prefers values from a failed submission, then the document
// being edited. An unknown edit id falls back to an empty add form.
func newEditForm(d AdminData) editForm {
	f := editForm{Tab: d.Tab, ID: d.EditID}
	switch {
	case d.Form != nil && d.Form.Collection == d.Tab:
		f.ID = d.Form.ID
		f.Values = d.Form.Values
	case f.ID != "":
		v, ok := ItemValues(d.Tab, f.ID, d.State)
		if !ok {
			f.ID = ""
		}
		f.Values = v
	}
	f.Action = "/admin/" + d.Tab + "/"
	f.Heading = "Yangi qo'shish"
	if f.ID != "" {
		f.Action += f.ID + "/"
		f.Heading = "Tahrirlash"
	}
	return f
}

// ContentValues flattens site content into form values.
func ContentValues(sc content.SiteContent) map[string]string {
	v := map[string]string{
		"heroTitle":       sc.HeroTitle,
		"heroSubtitle":    sc.HeroSubtitle,
		"heroImage":       sc.HeroImage,
		"aboutText":       sc.AboutText,
		"instagram":       sc.SocialLinks.Instagram,
		"telegram":        sc.SocialLinks.Telegram,
		"phone":           sc.SocialLinks.Phone,
		"gaId":            sc.GAID,
		"clients":         strings.Join(sc.Clients, ", "),
		"t.about":         sc.SectionTitles.About,
		"t.portfolio":     sc.SectionTitles.Portfolio,
		"t.services":      sc.SectionTitles.Services,
		"t.process":       sc.SectionTitles.Process,
		"t.testimonials":  sc.SectionTitles.Testimonials,
		"t.faq":           sc.SectionTitles.FAQ,
		"t.contact":       sc.SectionTitles.Contact,
		"t.equipment":     sc.SectionTitles.Equipment,
		"ui.orderBtn":     sc.UITexts.OrderBtn,
		"ui.viewWorksBtn": sc.UITexts.ViewWorksBtn,
		"ui.contactBtn":   sc.UITexts.ContactBtn,
		"ui.sendBtn":      sc.UITexts.SendBtn,
		"ui.footerText":   sc.UITexts.FooterText,
		"ui.contactTitle": sc.UITexts.ContactTitle,
		"ui.contactSub":   sc.UITexts.ContactSubtitle,
		"ui.noProjects":   sc.UITexts.NoProjectsTitle,
		"ui.noProjectsD":  sc.UITexts.NoProjectsDesc,
	}
	for i := 0; i < StatSlots; i++ {
		if i < len(sc.AboutStats) {
			v["stat"+strconv.Itoa(i)+".val"] = sc.AboutStats[i].Value
			v["stat"+strconv.Itoa(i)+".label"] = sc.AboutStats[i].Label
		}
	}
	return v
}

// StatSlots is the number of about stats editable in the content form.
const StatSlots = 4

// contentValues prefers a failed submission over the stored content.
func contentValues(d AdminData) map[string]string {
	if d.Form != nil && d.Form.Collection == content.CollectionSiteContent {
		return d.Form.Values
	}
	return ContentValues(d.State.Content)
}

var (
	titleKeys = []string{"about", "portfolio", "services", "process", "testimonials", "faq", "contact", "equipment"}
	uiKeys    = []string{"orderBtn", "viewWorksBtn", "contactBtn", "sendBtn", "footerText", "contactSub", "noProjects", "noProjectsD"}
)

func statSlots() []string {
	out := make([]string, StatSlots)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func slotLabel(prefix, slot string) string {
	n, _ := strconv.Atoi(slot)
	return prefix + " " + strconv.Itoa(n+1)
}
