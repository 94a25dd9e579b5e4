package content

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/showreel/docstore"
)

func newTestHub(t *testing.T) *docstore.Hub {
	t.Helper()
	s, err := docstore.Open(filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	h := docstore.NewHub(s, nil)
	t.Cleanup(func() {
		h.Close()
		s.Close()
	})
	return h
}

// updates returns a callback that forwards view states to a channel.
func updates() (chan State, func(string, State)) {
	ch := make(chan State, 64)
	return ch, func(_ string, st State) { ch <- st }
}

func waitState(t *testing.T, ch <-chan State, pred func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for view state")
			return State{}
		}
	}
}

func TestViewLoadsEveryCollection(t *testing.T) {
	h := newTestHub(t)
	ch, onUpdate := updates()
	v := NewView(h, English, ViewOptions{}, onUpdate)
	defer v.Close()

	st := waitState(t, ch, func(st State) bool {
		for _, c := range []string{CollectionProjects, CollectionServices, CollectionTestimonials,
			CollectionFAQ, CollectionProcess, CollectionEquipment, CollectionSiteContent} {
			if !st.IsLoaded(c) {
				return false
			}
		}
		return true
	})
	require.Equal(t, Defaults(English).HeroTitle, st.Content.HeroTitle)
	require.False(t, st.IsLoaded(CollectionBookings))
}

func TestViewReplacesCollectionOnWrite(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ch, onUpdate := updates()
	v := NewView(h, Uzbek, ViewOptions{}, onUpdate)
	defer v.Close()

	_, err := h.Add(ctx, CollectionProcess, map[string]any{"step": "03", "title": "Edit"})
	require.NoError(t, err)
	_, err = h.Add(ctx, CollectionProcess, map[string]any{"step": "01", "title": "Brief"})
	require.NoError(t, err)
	_, err = h.Add(ctx, CollectionProcess, map[string]any{"step": "02", "title": "Shoot"})
	require.NoError(t, err)

	st := waitState(t, ch, func(st State) bool { return len(st.Process) == 3 })
	require.Equal(t, "01", st.Process[0].Step)
	require.Equal(t, "02", st.Process[1].Step)
	require.Equal(t, "03", st.Process[2].Step)
	require.NotEmpty(t, st.Process[0].ID)
}

func TestViewSetLanguageSwapsContentSubscription(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	require.NoError(t, h.Set(ctx, CollectionSiteContent, string(Russian), map[string]any{"heroTitle": "ПРИВЕТ"}))

	ch, onUpdate := updates()
	v := NewView(h, Uzbek, ViewOptions{}, onUpdate)
	defer v.Close()
	require.Equal(t, 1, h.Subscribers(CollectionSiteContent))

	v.SetLanguage(Russian)
	require.Equal(t, 1, h.Subscribers(CollectionSiteContent))

	st := waitState(t, ch, func(st State) bool {
		return st.Lang == Russian && st.IsLoaded(CollectionSiteContent)
	})
	require.Equal(t, "ПРИВЕТ", st.Content.HeroTitle)
	require.Equal(t, Defaults(Russian).HeroSubtitle, st.Content.HeroSubtitle)

	// a later write to the old language never reaches the view
	require.NoError(t, h.Set(ctx, CollectionSiteContent, string(Uzbek), map[string]any{"heroTitle": "SALOM"}))
	require.NoError(t, h.Set(ctx, CollectionSiteContent, string(Russian), map[string]any{"heroTitle": "СНОВА"}))
	st = waitState(t, ch, func(st State) bool { return st.Content.HeroTitle == "СНОВА" })
	require.Equal(t, Russian, v.State().Lang)
	require.NotEqual(t, "SALOM", v.State().Content.HeroTitle)
}

func TestViewCloseReleasesSubscriptions(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ch, onUpdate := updates()
	v := NewView(h, English, ViewOptions{Admin: true}, onUpdate)

	require.Equal(t, 1, h.Subscribers(CollectionBookings))
	require.Equal(t, 1, h.Subscribers(CollectionStats))
	require.Equal(t, 1, h.Subscribers(CollectionSiteContent))

	v.Close()
	v.Close()

	for _, c := range []string{CollectionProjects, CollectionServices, CollectionTestimonials, CollectionFAQ,
		CollectionProcess, CollectionEquipment, CollectionSiteContent, CollectionBookings, CollectionStats} {
		require.Zero(t, h.Subscribers(c), c)
	}

	before := v.State()
	_, err := h.Add(ctx, CollectionProjects, map[string]any{"title": "Late", "category": "Reels"})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, len(before.Projects), len(v.State().Projects))

	// drain whatever was delivered before Close
	for len(ch) > 0 {
		<-ch
	}
}

func TestViewAdminSeesBookingsAndVisitors(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)
	ch, onUpdate := updates()
	v := NewView(h, English, ViewOptions{Admin: true}, onUpdate)
	defer v.Close()

	_, err := ed.SubmitBooking(ctx, Booking{Name: "Aziz", Phone: "+998901112233", Type: "Tadbir"})
	require.NoError(t, err)
	require.NoError(t, ed.CountVisitor(ctx))
	require.NoError(t, ed.CountVisitor(ctx))

	st := waitState(t, ch, func(st State) bool { return len(st.Bookings) == 1 && st.Visitors == 2 })
	require.Equal(t, BookingNew, st.Bookings[0].Status)
}

func TestLoadMatchesStore(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	ed := NewEditor(h, nil)

	_, err := ed.SaveProcessStep(ctx, ProcessStep{Step: "02", Title: "Shoot"})
	require.NoError(t, err)
	_, err = ed.SaveProcessStep(ctx, ProcessStep{Step: "01", Title: "Brief"})
	require.NoError(t, err)
	_, err = ed.SubmitBooking(ctx, Booking{Name: "Aziz", Phone: "+998901112233"})
	require.NoError(t, err)
	require.NoError(t, h.Set(ctx, CollectionSiteContent, "en", map[string]any{"heroTitle": "HELLO"}))

	st, err := Load(ctx, h, English, ViewOptions{})
	require.NoError(t, err)
	require.Equal(t, "HELLO", st.Content.HeroTitle)
	require.Equal(t, Defaults(English).AboutText, st.Content.AboutText)
	require.Len(t, st.Process, 2)
	require.Equal(t, "01", st.Process[0].Step)
	require.Empty(t, st.Bookings)
	require.False(t, st.IsLoaded(CollectionBookings))

	st, err = Load(ctx, h, Russian, ViewOptions{Admin: true})
	require.NoError(t, err)
	require.Equal(t, Defaults(Russian).HeroTitle, st.Content.HeroTitle)
	require.Len(t, st.Bookings, 1)
	require.True(t, st.IsLoaded(CollectionStats))
}
