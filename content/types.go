// Package content holds the portfolio's entity types, the per-language
// default copy, the resolver that merges stored content with those defaults,
// and the view and editor that bind the site and admin console to the store.
package content

import "time"

// Collection names in the document store.
const (
	CollectionProjects     = "projects"
	CollectionServices     = "services"
	CollectionTestimonials = "testimonials"
	CollectionFAQ          = "faq"
	CollectionProcess      = "process"
	CollectionEquipment    = "equipment"
	CollectionSiteContent  = "site_content"
	CollectionBookings     = "bookings"
	CollectionStats        = "stats"
)

// VisitorsDoc is the id of the visitor counter inside CollectionStats.
const VisitorsDoc = "visitors"

// Booking statuses.
const (
	BookingNew       = "new"
	BookingCompleted = "completed"
)

// Stat is one value/label pair shown in the about section.
type Stat struct {
	Value string `json:"val" yaml:"val"`
	Label string `json:"label" yaml:"label"`
}

// SocialLinks are the contact URLs shown in the contact section and footer.
type SocialLinks struct {
	Instagram string `json:"instagram" yaml:"instagram"`
	Telegram  string `json:"telegram" yaml:"telegram"`
	Phone     string `json:"phone" yaml:"phone"`
}

// SectionTitles holds one heading per page section.
type SectionTitles struct {
	About        string `json:"about" yaml:"about"`
	Portfolio    string `json:"portfolio" yaml:"portfolio"`
	Services     string `json:"services" yaml:"services"`
	Process      string `json:"process" yaml:"process"`
	Testimonials string `json:"testimonials" yaml:"testimonials"`
	FAQ          string `json:"faq" yaml:"faq"`
	Contact      string `json:"contact" yaml:"contact"`
	Equipment    string `json:"equipment" yaml:"equipment"`
}

// UITexts holds button and label strings.
type UITexts struct {
	OrderBtn        string `json:"orderBtn" yaml:"orderBtn"`
	ViewWorksBtn    string `json:"viewWorksBtn" yaml:"viewWorksBtn"`
	ContactBtn      string `json:"contactBtn" yaml:"contactBtn"`
	SendBtn         string `json:"sendBtn" yaml:"sendBtn"`
	FooterText      string `json:"footerText" yaml:"footerText"`
	ContactTitle    string `json:"contactTitle" yaml:"contactTitle"`
	ContactSubtitle string `json:"contactSubtitle" yaml:"contactSubtitle"`
	NoProjectsTitle string `json:"noProjectsTitle" yaml:"noProjectsTitle"`
	NoProjectsDesc  string `json:"noProjectsDesc" yaml:"noProjectsDesc"`
}

// SiteContent is the singleton page copy for one language, stored in
// CollectionSiteContent under the language code.
type SiteContent struct {
	HeroTitle     string        `json:"heroTitle" yaml:"heroTitle"`
	HeroSubtitle  string        `json:"heroSubtitle" yaml:"heroSubtitle"`
	HeroImage     string        `json:"heroImage,omitempty" yaml:"heroImage"`
	AboutText     string        `json:"aboutText" yaml:"aboutText"`
	AboutStats    []Stat        `json:"aboutStats" yaml:"aboutStats"`
	SocialLinks   SocialLinks   `json:"socialLinks" yaml:"socialLinks"`
	SectionTitles SectionTitles `json:"sectionTitles" yaml:"sectionTitles"`
	UITexts       UITexts       `json:"uiTexts" yaml:"uiTexts"`
	GAID          string        `json:"gaId,omitempty" yaml:"gaId"`
	Clients       []string      `json:"clients,omitempty" yaml:"clients"`
}

// Project is one portfolio entry.
type Project struct {
	ID          string `json:"-" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Stats       string `json:"stats" yaml:"stats"`
	Image       string `json:"image" yaml:"image"`
	VideoURL    string `json:"videoUrl" yaml:"videoUrl"`
}

// Service is one offered service with its price.
type Service struct {
	ID    string `json:"-" yaml:"-"`
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
	Price string `json:"price" yaml:"price"`
	Icon  string `json:"icon" yaml:"icon"`
	Image string `json:"image" yaml:"image"`
}

// ProcessStep is one step of the work process, ordered by Step.
type ProcessStep struct {
	ID    string `json:"-" yaml:"-"`
	Step  string `json:"step" yaml:"step"`
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
	Image string `json:"image" yaml:"image"`
}

// Testimonial is a client quote.
type Testimonial struct {
	ID    string `json:"-" yaml:"-"`
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
	Text  string `json:"text" yaml:"text"`
	Image string `json:"image" yaml:"image"`
}

// FAQItem is a question and its answer.
type FAQItem struct {
	ID string `json:"-" yaml:"-"`
	Q  string `json:"q" yaml:"q"`
	A  string `json:"a" yaml:"a"`
}

// EquipmentItem is a category of gear with the items in it.
type EquipmentItem struct {
	ID    string   `json:"-" yaml:"-"`
	Title string   `json:"title" yaml:"title"`
	Icon  string   `json:"icon" yaml:"icon"`
	Items []string `json:"items" yaml:"items"`
	Image string   `json:"image" yaml:"image"`
}

// Booking is a lead submitted through the public booking form.
type Booking struct {
	ID        string    `json:"-" yaml:"-"`
	Name      string    `json:"name" yaml:"name"`
	Phone     string    `json:"phone" yaml:"phone"`
	Type      string    `json:"type" yaml:"type"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Status    string    `json:"status" yaml:"status"`
}

// Completed reports whether the booking has been handled.
func (b Booking) Completed() bool {
	return b.Status == BookingCompleted
}

// VisitorStat is the site-wide visitor counter.
type VisitorStat struct {
	Count int64 `json:"count" yaml:"count"`
}

// Categories is the fixed set of project categories.
var Categories = []string{"Tijorat", "Reels", "Tadbir", "Mahsulot"}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// BookingTypes are the project types a visitor can request.
var BookingTypes = []string{"Reels / TikTok", "Tijorat reklama", "Tadbir", "Mahsulot"}
