package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/showreel/docstore"
)

// Lister is the read side of the document store.
type Lister interface {
	List(ctx context.Context, collection string) ([]docstore.Document, error)
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
}

// Load reads a one-off State for rendering a full page. It fills the same
// fields a View would after every subscription has delivered once.
func Load(ctx context.Context, docs Lister, lang Language, opts ViewOptions) (State, error) {
	st := State{Lang: lang, Loaded: make(map[string]bool)}

	type loader struct {
		name  string
		apply func([]docstore.Document)
	}
	collections := []loader{
		{CollectionProjects, func(d []docstore.Document) { st.Projects = Projects(d) }},
		{CollectionServices, func(d []docstore.Document) { st.Services = Services(d) }},
		{CollectionTestimonials, func(d []docstore.Document) { st.Testimonials = Testimonials(d) }},
		{CollectionFAQ, func(d []docstore.Document) { st.FAQ = FAQ(d) }},
		{CollectionProcess, func(d []docstore.Document) { st.Process = ProcessSteps(d) }},
		{CollectionEquipment, func(d []docstore.Document) { st.Equipment = Equipment(d) }},
	}
	if opts.Admin {
		collections = append(collections,
			loader{CollectionBookings, func(d []docstore.Document) { st.Bookings = Bookings(d) }},
			loader{CollectionStats, func(d []docstore.Document) { st.Visitors = Visitors(d) }},
		)
	}
	for _, c := range collections {
		list, err := docs.List(ctx, c.name)
		if err != nil {
			return st, fmt.Errorf("load %s: %w", c.name, err)
		}
		c.apply(list)
		st.Loaded[c.name] = true
	}

	doc, err := docs.Get(ctx, CollectionSiteContent, string(lang))
	switch {
	case err == nil:
		st.Content = Resolve(lang, SiteContentDoc(&doc))
	case errors.Is(err, docstore.ErrNotFound):
		st.Content = Resolve(lang, nil)
	default:
		st.Content = Resolve(lang, nil)
		return st, fmt.Errorf("load site content %s: %w", lang, err)
	}
	st.Loaded[CollectionSiteContent] = true
	return st, nil
}
