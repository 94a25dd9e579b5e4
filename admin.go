package showreel

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/docstore"
	"github.com/eringen/showreel/views"
)

// Toast messages.
const (
	msgDeleted = "Muvaffaqiyatli o'chirildi"
	msgFailed  = "Xatolik yuz berdi"
	msgBusy    = "Saqlanmoqda, kuting"
)

// itemLabels names each editable collection in toasts.
var itemLabels = map[string]string{
	content.CollectionProjects:     "Loyiha",
	content.CollectionServices:     "Xizmat",
	content.CollectionTestimonials: "Fikr",
	content.CollectionFAQ:          "Savol",
	content.CollectionProcess:      "Jarayon bosqichi",
	content.CollectionEquipment:    "Texnika",
}

// itemFields lists the form fields of each editable collection.
var itemFields = map[string][]string{
	content.CollectionProjects:     {"title", "category", "description", "stats", "image", "videoUrl"},
	content.CollectionServices:     {"title", "desc", "price", "icon", "image"},
	content.CollectionTestimonials: {"name", "role", "text", "image"},
	content.CollectionFAQ:          {"q", "a"},
	content.CollectionProcess:      {"step", "title", "desc", "image"},
	content.CollectionEquipment:    {"title", "icon", "items", "image"},
}

func deletable(collection string) bool {
	_, ok := itemFields[collection]
	return ok || collection == content.CollectionBookings
}

func (a *App) handleAdmin(c echo.Context) error {
	tab := c.QueryParam("tab")
	if !views.ValidTab(tab) {
		tab = views.TabDashboard
	}
	d, err := a.adminData(c, tab, content.ParseLanguage(c.QueryParam("lang")))
	if err != nil {
		return err
	}
	d.Msg = c.QueryParam("msg")
	d.Err = c.QueryParam("err")
	d.EditID = c.QueryParam("edit")
	return Render(c, a.Views.Admin(d))
}

func (a *App) adminData(c echo.Context, tab string, lang content.Language) (views.AdminData, error) {
	st, err := content.Load(c.Request().Context(), a.Hub, lang, content.ViewOptions{Admin: true})
	if err != nil {
		return views.AdminData{}, err
	}
	return views.AdminData{
		Site:        a.siteMeta(),
		State:       st,
		Tab:         tab,
		ContentLang: lang,
		Email:       SessionEmail(c),
		CSRF:        CsrfToken(c),
	}, nil
}

// formFailed re-renders the tab with the submitted values kept in the form.
func (a *App) formFailed(c echo.Context, code int, tab string, lang content.Language, form *views.Form) error {
	d, err := a.adminData(c, tab, lang)
	if err != nil {
		return err
	}
	d.Err = msgFailed
	d.Form = form
	return RenderStatus(c, code, a.Views.Admin(d))
}

// begin guards one form against double submission by the same admin.
func (a *App) begin(c echo.Context, form string) (func(), bool) {
	done, err := a.Editor.Begin(SessionEmail(c) + "|" + form)
	if err != nil {
		return nil, false
	}
	return done, true
}

func (a *App) handleAdminSave(c echo.Context) error {
	collection := c.Param("collection")
	fields, ok := itemFields[collection]
	if !ok {
		return echo.ErrNotFound
	}
	id := c.Param("id")
	done, ok := a.begin(c, collection+"/"+id)
	if !ok {
		return c.Redirect(http.StatusSeeOther, adminURL(collection, "err", msgBusy))
	}
	defer done()

	values := formValues(c, fields...)
	if _, err := a.saveItem(c, collection, id, values); err != nil {
		code := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, content.ErrInvalidInput):
		case errors.Is(err, docstore.ErrNotFound):
			return c.Redirect(http.StatusSeeOther, adminURL(collection, "err", msgFailed))
		default:
			a.Logger.Error("save failed", "collection", collection, "id", id, "error", err)
			code = http.StatusInternalServerError
		}
		return a.formFailed(c, code, collection, content.DefaultLanguage, &views.Form{
			Collection: collection,
			ID:         id,
			Values:     values,
		})
	}

	msg := itemLabels[collection] + " qo'shildi"
	if id != "" {
		msg = itemLabels[collection] + " yangilandi"
	}
	return c.Redirect(http.StatusSeeOther, adminURL(collection, "msg", msg))
}

// saveItem maps submitted form values onto the collection's entity.
func (a *App) saveItem(c echo.Context, collection, id string, v map[string]string) (string, error) {
	ctx := c.Request().Context()
	switch collection {
	case content.CollectionProjects:
		return a.Editor.SaveProject(ctx, content.Project{
			ID: id, Title: v["title"], Category: v["category"], Description: v["description"],
			Stats: v["stats"], Image: v["image"], VideoURL: v["videoUrl"],
		})
	case content.CollectionServices:
		return a.Editor.SaveService(ctx, content.Service{
			ID: id, Title: v["title"], Desc: v["desc"], Price: v["price"], Icon: v["icon"], Image: v["image"],
		})
	case content.CollectionTestimonials:
		return a.Editor.SaveTestimonial(ctx, content.Testimonial{
			ID: id, Name: v["name"], Role: v["role"], Text: v["text"], Image: v["image"],
		})
	case content.CollectionFAQ:
		return a.Editor.SaveFAQ(ctx, content.FAQItem{ID: id, Q: v["q"], A: v["a"]})
	case content.CollectionProcess:
		return a.Editor.SaveProcessStep(ctx, content.ProcessStep{
			ID: id, Step: v["step"], Title: v["title"], Desc: v["desc"], Image: v["image"],
		})
	case content.CollectionEquipment:
		return a.Editor.SaveEquipment(ctx, content.EquipmentItem{
			ID: id, Title: v["title"], Icon: v["icon"], Image: v["image"],
		}, v["items"])
	}
	return "", echo.ErrNotFound
}

func (a *App) handleAdminConfirmDelete(c echo.Context) error {
	collection, id := c.Param("collection"), c.Param("id")
	if !deletable(collection) {
		return echo.ErrNotFound
	}
	st, err := content.Load(c.Request().Context(), a.Hub, content.DefaultLanguage, content.ViewOptions{Admin: true})
	if err != nil {
		return err
	}
	return Render(c, a.Views.ConfirmDelete(views.ConfirmData{
		Site:       a.siteMeta(),
		Collection: collection,
		ID:         id,
		Label:      views.ItemLabel(collection, id, st),
		CSRF:       CsrfToken(c),
	}))
}

func (a *App) handleAdminDelete(c echo.Context) error {
	collection, id := c.Param("collection"), c.Param("id")
	if !deletable(collection) {
		return echo.ErrNotFound
	}
	err := a.Editor.Delete(c.Request().Context(), collection, id, c.FormValue("confirm") == "yes")
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, adminURL(collection, "msg", msgDeleted))
	case errors.Is(err, content.ErrConfirmationRequired):
		return c.Redirect(http.StatusSeeOther, "/admin/"+collection+"/"+id+"/delete/")
	default:
		a.Logger.Error("delete failed", "collection", collection, "id", id, "error", err)
		return c.Redirect(http.StatusSeeOther, adminURL(collection, "err", msgFailed))
	}
}

func (a *App) handleToggleBooking(c echo.Context) error {
	id := c.Param("id")
	status, err := a.Editor.ToggleBooking(c.Request().Context(), id)
	if err != nil {
		a.Logger.Error("toggle booking failed", "id", id, "error", err)
		return c.Redirect(http.StatusSeeOther, adminURL(content.CollectionBookings, "err", msgFailed))
	}
	msg := "Buyurtma yangilandi"
	if status == content.BookingCompleted {
		msg = "Buyurtma bajarildi"
	}
	return c.Redirect(http.StatusSeeOther, adminURL(content.CollectionBookings, "msg", msg))
}

func (a *App) handleSaveContent(c echo.Context) error {
	lang, ok := knownLanguage(c.Param("lang"))
	if !ok {
		return echo.ErrNotFound
	}
	done, ok := a.begin(c, "content/"+string(lang))
	if !ok {
		return c.Redirect(http.StatusSeeOther, adminURL(views.TabContent, "lang", string(lang), "err", msgBusy))
	}
	defer done()

	values := formValues(c, contentFields()...)
	if err := a.Editor.SaveSiteContent(c.Request().Context(), lang, siteContentFromForm(values)); err != nil {
		a.Logger.Error("save site content failed", "lang", string(lang), "error", err)
		return a.formFailed(c, http.StatusInternalServerError, views.TabContent, lang, &views.Form{
			Collection: content.CollectionSiteContent,
			ID:         string(lang),
			Values:     values,
		})
	}
	return c.Redirect(http.StatusSeeOther, adminURL(views.TabContent, "lang", string(lang), "msg", "Kontent yangilandi"))
}

// contentFields lists every form field of the site content editor.
func contentFields() []string {
	names := make([]string, 0, 32)
	for k := range views.ContentValues(content.SiteContent{}) {
		names = append(names, k)
	}
	for i := 0; i < views.StatSlots; i++ {
		n := strconv.Itoa(i)
		names = append(names, "stat"+n+".val", "stat"+n+".label")
	}
	return names
}

func siteContentFromForm(v map[string]string) content.SiteContent {
	sc := content.SiteContent{
		HeroTitle:    v["heroTitle"],
		HeroSubtitle: v["heroSubtitle"],
		HeroImage:    v["heroImage"],
		AboutText:    v["aboutText"],
		SocialLinks: content.SocialLinks{
			Instagram: v["instagram"],
			Telegram:  v["telegram"],
			Phone:     v["phone"],
		},
		SectionTitles: content.SectionTitles{
			About:        v["t.about"],
			Portfolio:    v["t.portfolio"],
			Services:     v["t.services"],
			Process:      v["t.process"],
			Testimonials: v["t.testimonials"],
			FAQ:          v["t.faq"],
			Contact:      v["t.contact"],
			Equipment:    v["t.equipment"],
		},
		UITexts: content.UITexts{
			OrderBtn:        v["ui.orderBtn"],
			ViewWorksBtn:    v["ui.viewWorksBtn"],
			ContactBtn:      v["ui.contactBtn"],
			SendBtn:         v["ui.sendBtn"],
			FooterText:      v["ui.footerText"],
			ContactTitle:    v["ui.contactTitle"],
			ContactSubtitle: v["ui.contactSub"],
			NoProjectsTitle: v["ui.noProjects"],
			NoProjectsDesc:  v["ui.noProjectsD"],
		},
		GAID:    v["gaId"],
		Clients: content.SplitItems(v["clients"]),
	}
	for i := 0; i < views.StatSlots; i++ {
		n := strconv.Itoa(i)
		val, label := v["stat"+n+".val"], v["stat"+n+".label"]
		if val == "" && label == "" {
			continue
		}
		sc.AboutStats = append(sc.AboutStats, content.Stat{Value: val, Label: label})
	}
	return sc
}
