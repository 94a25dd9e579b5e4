package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/showreel/content"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func loadedState(lang content.Language) content.State {
	st := content.State{
		Lang:    lang,
		Content: content.Resolve(lang, nil),
		Loaded:  map[string]bool{},
	}
	for _, c := range []string{content.CollectionProjects, content.CollectionServices, content.CollectionProcess,
		content.CollectionEquipment, content.CollectionTestimonials, content.CollectionFAQ, content.CollectionSiteContent} {
		st.Loaded[c] = true
	}
	return st
}

func TestHomeRendersEverySection(t *testing.T) {
	d := HomeData{Site: SiteMeta{Name: "Showreel"}, State: loadedState(content.English), CSRF: "tok"}
	out := renderString(t, Home(d, PageMeta{Title: "Showreel", Lang: content.English}))
	for _, name := range HomeSections {
		if !strings.Contains(out, `data-section="`+name+`"`) {
			t.Errorf("missing section %q", name)
		}
	}
	if !strings.Contains(out, "TOHIRJON<br/>BOLTAYEV") {
		t.Error("hero title line break not rendered")
	}
	if !strings.Contains(out, `name="_csrf" value="tok"`) {
		t.Error("booking form missing csrf token")
	}
	if strings.Contains(out, "googletagmanager") {
		t.Error("analytics script rendered without an id")
	}
}

func TestHomeAnalyticsOnlyWithID(t *testing.T) {
	d := HomeData{State: loadedState(content.Uzbek)}
	out := renderString(t, Home(d, PageMeta{Title: "x", GAID: "G-ABC123'<"}))
	if !strings.Contains(out, "gtag('config', 'G-ABC123')") {
		t.Errorf("analytics config not rendered safely: %s", out)
	}
}

func TestPortfolioFilterAndEmptyState(t *testing.T) {
	st := loadedState(content.English)
	st.Projects = []content.Project{
		{ID: "1", Title: "Launch film", Category: "Tijorat"},
		{ID: "2", Title: "Daily reel", Category: "Reels"},
	}
	out := renderString(t, Section(SectionPortfolio, HomeData{State: st, Category: "Reels"}))
	if strings.Contains(out, "Launch film") || !strings.Contains(out, "Daily reel") {
		t.Errorf("filter not applied: %s", out)
	}

	out = renderString(t, Section(SectionPortfolio, HomeData{State: st, Category: "Tadbir"}))
	if !strings.Contains(out, st.Content.UITexts.NoProjectsTitle) {
		t.Error("empty category message missing")
	}

	st.Loaded[content.CollectionProjects] = false
	out = renderString(t, Section(SectionPortfolio, HomeData{State: st}))
	if !strings.Contains(out, `aria-busy="true"`) {
		t.Error("unloaded projects should render a placeholder")
	}
}

func TestSectionEscapesContent(t *testing.T) {
	st := loadedState(content.English)
	st.FAQ = []content.FAQItem{{Q: "<script>alert(1)</script>", A: "fine"}}
	out := renderString(t, Section(SectionFAQ, HomeData{State: st}))
	if strings.Contains(out, "<script>") {
		t.Errorf("unescaped content: %s", out)
	}
}

func TestProjectCardDropsUnsafeVideoLink(t *testing.T) {
	st := loadedState(content.English)
	st.Projects = []content.Project{
		{ID: "1", Title: "Safe", Category: "Reels", VideoURL: "https://youtu.be/x"},
		{ID: "2", Title: "Unsafe", Category: "Reels", VideoURL: "javascript:alert(1)"},
	}
	out := renderString(t, Section(SectionPortfolio, HomeData{State: st}))
	if !strings.Contains(out, `href="https://youtu.be/x"`) {
		t.Errorf("safe video link missing: %s", out)
	}
	if strings.Contains(out, "javascript:") {
		t.Errorf("unsafe video link rendered: %s", out)
	}
}

func TestNavMarksLanguageLinks(t *testing.T) {
	out := renderString(t, Section(SectionNav, HomeData{State: loadedState(content.Russian)}))
	for _, lang := range content.Languages {
		if !strings.Contains(out, `data-lang="`+string(lang)+`"`) {
			t.Errorf("language link %s missing data-lang", lang)
		}
	}
	if !strings.Contains(out, `data-lang="ru" class="active" aria-current="true"`) {
		t.Errorf("current language not marked: %s", out)
	}
}

func TestSectionsFor(t *testing.T) {
	if got := SectionsFor(content.CollectionSiteContent); len(got) != len(HomeSections) {
		t.Errorf("site content should refresh all sections, got %v", got)
	}
	if got := SectionsFor(content.CollectionProcess); len(got) != 1 || got[0] != SectionProcess {
		t.Errorf("SectionsFor(process) = %v", got)
	}
	if got := SectionsFor(content.CollectionBookings); got != nil {
		t.Errorf("bookings are not public, got %v", got)
	}
}

func TestAdminFormKeepsSubmittedValues(t *testing.T) {
	d := AdminData{
		Tab:   content.CollectionProjects,
		State: loadedState(content.Uzbek),
		Err:   "invalid input: title is required",
		Form: &Form{
			Collection: content.CollectionProjects,
			Values:     map[string]string{"title": "", "description": "half typed", "category": "Reels"},
		},
	}
	out := renderString(t, Admin(d))
	if !strings.Contains(out, "half typed") {
		t.Error("submitted description lost")
	}
	if !strings.Contains(out, `<option value="Reels" selected>`) {
		t.Error("submitted category not selected")
	}
	if !strings.Contains(out, `class="toast error"`) {
		t.Error("error toast missing")
	}
}

func TestAdminEditFormPrefilled(t *testing.T) {
	st := loadedState(content.Uzbek)
	st.Equipment = []content.EquipmentItem{{ID: "e1", Title: "Camera", Items: []string{"Sony A7S III", "DJI Ronin"}}}
	d := AdminData{Tab: content.CollectionEquipment, State: st, EditID: "e1"}
	out := renderString(t, Admin(d))
	if !strings.Contains(out, `action="/admin/equipment/e1/"`) {
		t.Error("edit form should post to the item")
	}
	if !strings.Contains(out, `value="Sony A7S III, DJI Ronin"`) {
		t.Error("items not joined into the text field")
	}
	if !strings.Contains(out, `href="/admin/equipment/e1/delete/"`) {
		t.Error("delete link missing")
	}
}

func TestAdminDashboard(t *testing.T) {
	st := loadedState(content.Uzbek)
	st.Visitors = 42
	st.Projects = []content.Project{{Stats: "1.5M"}}
	st.Bookings = []content.Booking{{ID: "b", Name: "aziz", CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)}}
	out := renderString(t, AdminSection(AdminSectionDashboard, AdminData{Tab: TabDashboard, State: st}))
	for _, want := range []string{">42<", "1.5M+", ">A<", "aziz"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestAdminSectionsFor(t *testing.T) {
	got := AdminSectionsFor(TabDashboard, content.CollectionStats)
	if len(got) != 2 || got[0] != AdminSectionVisitors || got[1] != AdminSectionDashboard {
		t.Errorf("AdminSectionsFor(dashboard, stats) = %v", got)
	}
	if got := AdminSectionsFor(content.CollectionFAQ, content.CollectionFAQ); len(got) != 1 || got[0] != AdminSectionList {
		t.Errorf("AdminSectionsFor(faq, faq) = %v", got)
	}
	if got := AdminSectionsFor(TabContent, content.CollectionSiteContent); len(got) != 0 {
		t.Errorf("content form must not refresh, got %v", got)
	}
}

func TestContentValuesRoundTripKeys(t *testing.T) {
	v := ContentValues(content.Defaults(content.Russian))
	if v["stat0.val"] != "3+" || v["t.faq"] != "FAQ" {
		t.Errorf("unexpected values: %v", v)
	}
}

func TestLoginShowsGenericError(t *testing.T) {
	out := renderString(t, Login(LoginData{Error: "Invalid email or password", Email: "a@b.c"}))
	if !strings.Contains(out, "Invalid email or password") || !strings.Contains(out, `value="a@b.c"`) {
		t.Errorf("login page: %s", out)
	}
}

func TestPersonJsonLD(t *testing.T) {
	out := PersonJsonLD(SiteMeta{Name: "Showreel", URL: "https://example.com", Author: "Tohirjon Boltayev"}, content.Defaults(content.English))
	for _, want := range []string{`"@type":"Person"`, `"name":"Tohirjon Boltayev"`, `"url":"https://example.com"`, `"telephone":"+998901234567"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON-LD missing %s: %s", want, out)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"lang", "ru"}, "https://example.com/lang/ru/"},
		{"https://example.com/", []string{"admin"}, "https://example.com/admin/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestPhoneHref(t *testing.T) {
	if got := PhoneHref("+998 (90) 123-45-67"); got != "tel:+998901234567" {
		t.Errorf("PhoneHref = %q", got)
	}
}
