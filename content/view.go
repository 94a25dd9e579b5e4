package content

import (
	"sync"

	"github.com/eringen/showreel/docstore"
)

// Subscriber is the live side of the document store.
type Subscriber interface {
	Subscribe(collection string, fn func([]docstore.Document)) (cancel func())
	SubscribeDoc(collection, id string, fn func(*docstore.Document)) (cancel func())
}

// State is the render state of one view. Each collection field is replaced
// wholesale on every snapshot; Loaded records which collections have
// delivered at least once.
type State struct {
	Lang         Language
	Content      SiteContent
	Projects     []Project
	Services     []Service
	Testimonials []Testimonial
	FAQ          []FAQItem
	Process      []ProcessStep
	Equipment    []EquipmentItem
	Bookings     []Booking
	Visitors     int64
	Loaded       map[string]bool
}

// IsLoaded reports whether collection has delivered a snapshot.
func (s State) IsLoaded(collection string) bool {
	return s.Loaded[collection]
}

// ViewOptions selects what a view subscribes to.
type ViewOptions struct {
	// Admin adds the bookings and stats collections.
	Admin bool
}

// View owns the subscriptions of one mounted page. It opens one subscription
// per collection on creation and releases all of them on Close. The content
// subscription is keyed by language and is swapped by SetLanguage.
//
// onUpdate is called after every applied snapshot with the name of the
// collection that changed and a copy of the state. Snapshots from different
// collections arrive in any order.
type View struct {
	sub      Subscriber
	onUpdate func(collection string, st State)

	mu            sync.Mutex
	state         State
	closed        bool
	cancels       []func()
	cancelContent func()
}

// NewView subscribes to every collection of interest for lang.
func NewView(sub Subscriber, lang Language, opts ViewOptions, onUpdate func(collection string, st State)) *View {
	v := &View{
		sub:      sub,
		onUpdate: onUpdate,
		state: State{
			Lang:    lang,
			Content: Resolve(lang, nil),
			Loaded:  make(map[string]bool),
		},
	}

	v.watch(CollectionProjects, func(st *State, docs []docstore.Document) { st.Projects = Projects(docs) })
	v.watch(CollectionServices, func(st *State, docs []docstore.Document) { st.Services = Services(docs) })
	v.watch(CollectionTestimonials, func(st *State, docs []docstore.Document) { st.Testimonials = Testimonials(docs) })
	v.watch(CollectionFAQ, func(st *State, docs []docstore.Document) { st.FAQ = FAQ(docs) })
	v.watch(CollectionProcess, func(st *State, docs []docstore.Document) { st.Process = ProcessSteps(docs) })
	v.watch(CollectionEquipment, func(st *State, docs []docstore.Document) { st.Equipment = Equipment(docs) })
	if opts.Admin {
		v.watch(CollectionBookings, func(st *State, docs []docstore.Document) { st.Bookings = Bookings(docs) })
		v.watch(CollectionStats, func(st *State, docs []docstore.Document) { st.Visitors = Visitors(docs) })
	}

	v.setContentCancel(lang, v.subscribeContent(lang))
	return v
}

func (v *View) watch(collection string, apply func(*State, []docstore.Document)) {
	cancel := v.sub.Subscribe(collection, func(docs []docstore.Document) {
		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			return
		}
		apply(&v.state, docs)
		v.state.Loaded[collection] = true
		st := v.copyState()
		v.mu.Unlock()
		v.notify(collection, st)
	})
	v.keep(cancel)
}

// keep records cancel, or runs it at once when the view is already closed.
func (v *View) keep(cancel func()) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		cancel()
		return
	}
	v.cancels = append(v.cancels, cancel)
	v.mu.Unlock()
}

func (v *View) subscribeContent(lang Language) func() {
	return v.sub.SubscribeDoc(CollectionSiteContent, string(lang), func(doc *docstore.Document) {
		v.mu.Lock()
		// a late delivery for a language the view has switched away from
		if v.closed || v.state.Lang != lang {
			v.mu.Unlock()
			return
		}
		v.state.Content = Resolve(lang, SiteContentDoc(doc))
		v.state.Loaded[CollectionSiteContent] = true
		st := v.copyState()
		v.mu.Unlock()
		v.notify(CollectionSiteContent, st)
	})
}

// setContentCancel installs the cancel func of the subscription for lang,
// unless the view has since closed or moved to another language.
func (v *View) setContentCancel(lang Language, cancel func()) {
	v.mu.Lock()
	if v.closed || v.state.Lang != lang {
		v.mu.Unlock()
		cancel()
		return
	}
	v.cancelContent = cancel
	v.mu.Unlock()
}

// SetLanguage switches the view to lang, releasing the content subscription
// of the previous language. The displayed content falls back to lang's
// defaults until the new subscription delivers.
func (v *View) SetLanguage(lang Language) {
	v.mu.Lock()
	if v.closed || v.state.Lang == lang {
		v.mu.Unlock()
		return
	}
	previous := v.cancelContent
	v.cancelContent = nil
	v.state.Lang = lang
	v.state.Content = Resolve(lang, nil)
	v.state.Loaded[CollectionSiteContent] = false
	st := v.copyState()
	v.mu.Unlock()

	if previous != nil {
		previous()
	}
	v.setContentCancel(lang, v.subscribeContent(lang))
	v.notify(CollectionSiteContent, st)
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyState()
}

// Close releases every subscription of the view. It is safe to call more
// than once; no snapshot reaches the state after Close returns.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	cancels := append(v.cancels, v.cancelContent)
	v.cancels = nil
	v.cancelContent = nil
	v.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
}

func (v *View) notify(collection string, st State) {
	if v.onUpdate != nil {
		v.onUpdate(collection, st)
	}
}

func (v *View) copyState() State {
	st := v.state
	st.Loaded = make(map[string]bool, len(v.state.Loaded))
	for k, val := range v.state.Loaded {
		st.Loaded[k] = val
	}
	return st
}
