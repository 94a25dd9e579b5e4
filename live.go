package showreel

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/views"
)

// liveKeepAlive is how often an idle stream sends a comment line so proxies
// keep the connection open.
const liveKeepAlive = 25 * time.Second

// sectionEvent is the payload of one "section" server-sent event.
type sectionEvent struct {
	Section string `json:"section"`
	HTML    string `json:"html"`
}

// streamEvent is the payload of the "stream" event that opens a public
// stream. The id lets the page switch the stream's language in place.
type streamEvent struct {
	ID string `json:"id"`
}

// liveStreams indexes the views of open public streams by stream id.
type liveStreams struct {
	mu    sync.Mutex
	views map[string]*content.View
}

func newLiveStreams() *liveStreams {
	return &liveStreams{views: make(map[string]*content.View)}
}

// add registers v under a fresh id. The returned func removes it.
func (s *liveStreams) add(v *content.View) (string, func()) {
	id := uuid.NewString()
	s.mu.Lock()
	s.views[id] = v
	s.mu.Unlock()
	return id, func() {
		s.mu.Lock()
		delete(s.views, id)
		s.mu.Unlock()
	}
}

func (s *liveStreams) get(id string) (*content.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	return v, ok
}

// pendingSections collects sections to re-render. Marks made while a batch
// is being written collapse into the next batch.
type pendingSections struct {
	mu    sync.Mutex
	names map[string]struct{}
	wake  chan struct{}
}

func newPendingSections() *pendingSections {
	return &pendingSections{
		names: make(map[string]struct{}),
		wake:  make(chan struct{}, 1),
	}
}

func (p *pendingSections) mark(sections []string) {
	if len(sections) == 0 {
		return
	}
	p.mu.Lock()
	for _, s := range sections {
		p.names[s] = struct{}{}
	}
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// take returns the marked sections in order and clears them.
func (p *pendingSections) take(order []string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, s := range order {
		if _, ok := p.names[s]; ok {
			out = append(out, s)
		}
	}
	clear(p.names)
	return out
}

func (a *App) handleLive(c echo.Context) error {
	lang := requestLanguage(c)
	category := c.QueryParam("category")
	if !content.ValidCategory(category) {
		category = ""
	}
	base := views.HomeData{
		Site:     a.siteMeta(),
		Category: category,
		CSRF:     CsrfToken(c),
		Dark:     isDark(c),
	}

	pending := newPendingSections()
	view := content.NewView(a.Hub, lang, content.ViewOptions{}, func(collection string, _ content.State) {
		pending.mark(views.SectionsFor(collection))
	})
	defer view.Close()
	id, remove := a.live.add(view)
	defer remove()

	return a.stream(c, id, pending, views.HomeSections, func(name string) templ.Component {
		d := base
		d.State = view.State()
		return a.Views.HomeSection(name, d)
	})
}

func (a *App) handleAdminLive(c echo.Context) error {
	tab := c.QueryParam("tab")
	if !views.ValidTab(tab) {
		tab = views.TabDashboard
	}
	base := views.AdminData{
		Site:  a.siteMeta(),
		Tab:   tab,
		Email: SessionEmail(c),
		CSRF:  CsrfToken(c),
	}

	pending := newPendingSections()
	view := content.NewView(a.Hub, content.DefaultLanguage, content.ViewOptions{Admin: true}, func(collection string, _ content.State) {
		pending.mark(views.AdminSectionsFor(tab, collection))
	})
	defer view.Close()

	order := []string{views.AdminSectionVisitors, views.AdminSectionDashboard, views.AdminSectionList}
	return a.stream(c, "", pending, order, func(name string) templ.Component {
		d := base
		d.State = view.State()
		return a.Views.AdminSection(name, d)
	})
}

// stream writes server-sent events until the client goes away or the server
// shuts down. A non-empty id is announced first in a "stream" event. Each
// batch of marked sections is rendered from the view's latest state.
func (a *App) stream(c echo.Context, id string, pending *pendingSections, order []string, render func(name string) templ.Component) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	if id != "" {
		data, err := json.Marshal(streamEvent{ID: id})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: stream\ndata: %s\n\n", data); err != nil {
			return nil
		}
	}
	res.Flush()

	ctx := c.Request().Context()
	ticker := time.NewTicker(liveKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.shutdown:
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case <-pending.wake:
			for _, name := range pending.take(order) {
				html, err := RenderString(ctx, render(name))
				if err != nil {
					a.Logger.Warn("render live section failed", "section", name, "error", err)
					continue
				}
				data, err := json.Marshal(sectionEvent{Section: name, HTML: html})
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(res, "event: section\ndata: %s\n\n", data); err != nil {
					return nil
				}
			}
			res.Flush()
		}
	}
}
