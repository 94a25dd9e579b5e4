package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/showreel/docstore"
)

// countingDocs records the writes an editor makes.
type countingDocs struct {
	mu         sync.Mutex
	increments int
	sets       int
	creates    int
	deletes    int
	missing    bool
}

func (d *countingDocs) Get(context.Context, string, string) (docstore.Document, error) {
	return docstore.Document{}, docstore.ErrNotFound
}

func (d *countingDocs) Add(context.Context, string, map[string]any) (string, error) {
	return "id", nil
}

func (d *countingDocs) Set(context.Context, string, string, map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sets++
	d.missing = false
	return nil
}

func (d *countingDocs) Create(context.Context, string, string, map[string]any) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.creates++
	created := d.missing
	d.missing = false
	return created, nil
}

func (d *countingDocs) Update(context.Context, string, string, map[string]any) error {
	return nil
}

func (d *countingDocs) Delete(context.Context, string, string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deletes++
	return nil
}

func (d *countingDocs) Increment(context.Context, string, string, string, int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.missing {
		return docstore.ErrNotFound
	}
	d.increments++
	return nil
}

func TestCreateThenRead(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	id, err := ed.SaveProject(ctx, Project{
		Title:       "Brand film",
		Category:    "Tijorat",
		Description: "Launch video",
		Stats:       "1.2M views",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	docs, err := h.List(ctx, CollectionProjects)
	require.NoError(t, err)
	projects := Projects(docs)
	require.Len(t, projects, 1)
	require.Equal(t, id, projects[0].ID)
	require.Equal(t, "Brand film", projects[0].Title)
	require.Equal(t, "Launch video", projects[0].Description)

	_, err = ed.SaveProject(ctx, Project{ID: id, Title: "Brand film v2", Category: "Reels"})
	require.NoError(t, err)
	doc, err := h.Get(ctx, CollectionProjects, id)
	require.NoError(t, err)
	require.Equal(t, "Brand film v2", doc.Fields["title"])
	require.Equal(t, "Reels", doc.Fields["category"])
	require.NotContains(t, doc.Fields, "id")
}

func TestEditClearsOptionalFields(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	id, err := ed.SaveProject(ctx, Project{Title: "Teaser", Category: "Reels", VideoURL: "https://youtu.be/x"})
	require.NoError(t, err)
	_, err = ed.SaveProject(ctx, Project{ID: id, Title: "Teaser", Category: "Reels", VideoURL: ""})
	require.NoError(t, err)

	docs, err := h.List(ctx, CollectionProjects)
	require.NoError(t, err)
	projects := Projects(docs)
	require.Len(t, projects, 1)
	require.Empty(t, projects[0].VideoURL)

	sid, err := ed.SaveService(ctx, Service{Title: "Reels", Price: "300$", Image: "/img.jpg"})
	require.NoError(t, err)
	_, err = ed.SaveService(ctx, Service{ID: sid, Title: "Reels", Price: "300$"})
	require.NoError(t, err)

	doc, err := h.Get(ctx, CollectionServices, sid)
	require.NoError(t, err)
	require.Equal(t, "", doc.Fields["image"])
	require.Empty(t, Services([]docstore.Document{doc})[0].Image)
}

func TestSaveProjectValidation(t *testing.T) {
	ed := NewEditor(&countingDocs{}, nil)
	ctx := context.Background()

	_, err := ed.SaveProject(ctx, Project{Title: "", Category: "Reels"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ed.SaveProject(ctx, Project{Title: "Wedding", Category: "Wedding"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveEquipmentSplitsItems(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	id, err := ed.SaveEquipment(ctx, EquipmentItem{Title: "Camera", Icon: "camera"}, "Sony A7S III, DJI Ronin, , ")
	require.NoError(t, err)

	doc, err := h.Get(ctx, CollectionEquipment, id)
	require.NoError(t, err)
	items := Equipment([]docstore.Document{doc})
	require.Len(t, items, 1)
	require.Equal(t, []string{"Sony A7S III", "DJI Ronin"}, items[0].Items)

	_, err = ed.SaveEquipment(ctx, EquipmentItem{Title: "Audio"}, " , ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	docs := &countingDocs{}
	ed := NewEditor(docs, nil)
	ctx := context.Background()

	err := ed.Delete(ctx, CollectionFAQ, "abc", false)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	require.Zero(t, docs.deletes)

	require.NoError(t, ed.Delete(ctx, CollectionFAQ, "abc", true))
	require.Equal(t, 1, docs.deletes)
}

func TestDeleteRemovesDocument(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	id, err := ed.SaveFAQ(ctx, FAQItem{Q: "Price?", A: "From 500$"})
	require.NoError(t, err)
	require.NoError(t, ed.Delete(ctx, CollectionFAQ, id, true))

	_, err = h.Get(ctx, CollectionFAQ, id)
	require.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestCountVisitorIncrementsOncePerCall(t *testing.T) {
	docs := &countingDocs{}
	ed := NewEditor(docs, nil)
	ctx := context.Background()

	// several views mounting does not count; only the explicit call does
	h := newTestHub(t)
	for i := 0; i < 3; i++ {
		v := NewView(h, English, ViewOptions{}, nil)
		defer v.Close()
	}
	require.NoError(t, ed.CountVisitor(ctx))
	require.Equal(t, 1, docs.increments)
	require.Zero(t, docs.sets)
}

func TestCountVisitorCreatesCounter(t *testing.T) {
	docs := &countingDocs{missing: true}
	ed := NewEditor(docs, nil)

	require.NoError(t, ed.CountVisitor(context.Background()))
	require.Equal(t, 1, docs.creates)
	require.Equal(t, 1, docs.increments)
	require.Zero(t, docs.sets)
}

func TestCountVisitorConcurrentFirstVisits(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	const visits = 8
	var wg sync.WaitGroup
	errs := make(chan error, visits)
	for i := 0; i < visits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ed.CountVisitor(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	docs, err := h.List(ctx, CollectionStats)
	require.NoError(t, err)
	require.Equal(t, int64(visits), Visitors(docs))
}

func TestCountVisitorAgainstStore(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, ed.CountVisitor(ctx))
	}
	docs, err := h.List(ctx, CollectionStats)
	require.NoError(t, err)
	require.Equal(t, int64(3), Visitors(docs))
}

func TestToggleBooking(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)
	ed.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	id, err := ed.SubmitBooking(ctx, Booking{Name: "Dilnoza", Phone: "+998907654321", Status: BookingCompleted})
	require.NoError(t, err)

	doc, err := h.Get(ctx, CollectionBookings, id)
	require.NoError(t, err)
	b := Bookings([]docstore.Document{doc})[0]
	require.Equal(t, BookingNew, b.Status)
	require.Equal(t, BookingTypes[0], b.Type)
	require.True(t, b.CreatedAt.Equal(ed.now()))

	status, err := ed.ToggleBooking(ctx, id)
	require.NoError(t, err)
	require.Equal(t, BookingCompleted, status)

	status, err = ed.ToggleBooking(ctx, id)
	require.NoError(t, err)
	require.Equal(t, BookingNew, status)

	_, err = ed.ToggleBooking(ctx, "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSubmitBookingRequiresNameAndPhone(t *testing.T) {
	ed := NewEditor(&countingDocs{}, nil)
	_, err := ed.SubmitBooking(context.Background(), Booking{Name: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveSiteContent(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	sc := Defaults(Russian)
	sc.HeroTitle = "НОВЫЙ"
	sc.Clients = []string{"Acme", " "}
	require.NoError(t, ed.SaveSiteContent(ctx, Russian, sc))

	doc, err := h.Get(ctx, CollectionSiteContent, "ru")
	require.NoError(t, err)
	got := Resolve(Russian, SiteContentDoc(&doc))
	require.Equal(t, "НОВЫЙ", got.HeroTitle)
	require.Equal(t, []string{"Acme"}, got.Clients)

	require.ErrorIs(t, ed.SaveSiteContent(ctx, Language("de"), sc), ErrInvalidInput)
}

func TestBeginRejectsConcurrentSubmit(t *testing.T) {
	ed := NewEditor(&countingDocs{}, nil)

	done, err := ed.Begin("session-1:projects")
	require.NoError(t, err)

	_, err = ed.Begin("session-1:projects")
	require.ErrorIs(t, err, ErrSubmitInFlight)

	other, err := ed.Begin("session-2:projects")
	require.NoError(t, err)
	other()

	done()
	done()
	again, err := ed.Begin("session-1:projects")
	require.NoError(t, err)
	again()
}
