package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	h := NewHub(setupTestStore(t), nil, opts...)
	t.Cleanup(h.Close)
	return h
}

// collect subscribes to collection and forwards every snapshot to a channel.
func collect(t *testing.T, h *Hub, collection string) (<-chan []Document, func()) {
	t.Helper()
	ch := make(chan []Document, 16)
	cancel := h.Subscribe(collection, func(docs []Document) {
		ch <- docs
	})
	return ch, cancel
}

func next(t *testing.T, ch <-chan []Document) []Document {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// waitFor drains snapshots until pred holds for one of them.
func waitFor(t *testing.T, ch <-chan []Document, pred func([]Document) bool) []Document {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case docs := <-ch:
			if pred(docs) {
				return docs
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
			return nil
		}
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	_, err := h.Add(ctx, "faq", map[string]any{"q": "How long?"})
	require.NoError(t, err)

	ch, cancel := collect(t, h, "faq")
	defer cancel()

	docs := next(t, ch)
	require.Len(t, docs, 1)
	require.Equal(t, "How long?", docs[0].Fields["q"])
}

func TestSubscribeReceivesFullSnapshotAfterWrite(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	ch, cancel := collect(t, h, "services")
	defer cancel()
	require.Empty(t, next(t, ch))

	_, err := h.Add(ctx, "services", map[string]any{"title": "Reels"})
	require.NoError(t, err)
	_, err = h.Add(ctx, "services", map[string]any{"title": "Ads"})
	require.NoError(t, err)

	docs := waitFor(t, ch, func(d []Document) bool { return len(d) == 2 })
	require.Equal(t, "Reels", docs[0].Fields["title"])
	require.Equal(t, "Ads", docs[1].Fields["title"])
}

func TestDeleteDisappearsFromSnapshot(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	id, err := h.Add(ctx, "projects", map[string]any{"title": "Gone soon"})
	require.NoError(t, err)

	ch, cancel := collect(t, h, "projects")
	defer cancel()
	require.Len(t, next(t, ch), 1)

	require.NoError(t, h.Delete(ctx, "projects", id))
	waitFor(t, ch, func(d []Document) bool { return len(d) == 0 })
}

func TestSubscriptionsAreIndependentPerCollection(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	faq, cancelFAQ := collect(t, h, "faq")
	defer cancelFAQ()
	next(t, faq)

	_, err := h.Add(ctx, "services", map[string]any{"title": "Reels"})
	require.NoError(t, err)

	select {
	case docs := <-faq:
		t.Fatalf("faq subscriber should not be notified of services writes, got %v", docs)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	ch, cancel := collect(t, h, "faq")
	next(t, ch)
	require.Equal(t, 1, h.Subscribers("faq"))

	cancel()
	require.Equal(t, 0, h.Subscribers("faq"))

	_, err := h.Add(ctx, "faq", map[string]any{"q": "late"})
	require.NoError(t, err)

	select {
	case docs := <-ch:
		t.Fatalf("cancelled subscriber received %v", docs)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeDoc(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	got := make(chan *Document, 16)
	cancel := h.SubscribeDoc("site_content", "ru", func(doc *Document) {
		got <- doc
	})
	defer cancel()

	select {
	case doc := <-got:
		require.Nil(t, doc)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial document")
	}

	require.NoError(t, h.Set(ctx, "site_content", "en", map[string]any{"heroTitle": "EN"}))
	require.NoError(t, h.Set(ctx, "site_content", "ru", map[string]any{"heroTitle": "RU"}))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case doc := <-got:
			if doc != nil {
				require.Equal(t, "RU", doc.Fields["heroTitle"])
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for ru document")
		}
	}
}

func TestIncrementNotifies(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	require.NoError(t, h.Set(ctx, "stats", "visitors", map[string]any{"count": 1}))
	ch, cancel := collect(t, h, "stats")
	defer cancel()
	next(t, ch)

	require.NoError(t, h.Increment(ctx, "stats", "visitors", "count", 1))
	waitFor(t, ch, func(d []Document) bool {
		return len(d) == 1 && d[0].Fields["count"] == float64(2)
	})
}

func TestListServesFromCacheUntilInvalidated(t *testing.T) {
	h := newTestHub(t, WithCacheTTL(time.Hour))
	ctx := context.Background()

	_, err := h.Add(ctx, "faq", map[string]any{"q": "cached"})
	require.NoError(t, err)
	docs, err := h.List(ctx, "faq")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// written behind the hub's back: not visible until a refresh
	_, err = h.store.Add(ctx, "faq", map[string]any{"q": "direct"})
	require.NoError(t, err)
	docs, err = h.List(ctx, "faq")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	h.Refresh("faq")
	docs, err = h.List(ctx, "faq")
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestRedisNotifierFansOutBetweenHubs(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pubA, err := NewRedisNotifier("redis://"+mr.Addr(), "", nil)
	require.NoError(t, err)
	defer pubA.Close()
	pubB, err := NewRedisNotifier("redis://"+mr.Addr(), "", nil)
	require.NoError(t, err)
	defer pubB.Close()

	store := setupTestStore(t)
	hubA := NewHub(store, nil, WithNotifier(pubA), WithCacheTTL(time.Hour))
	defer hubA.Close()
	hubB := NewHub(store, nil, WithNotifier(pubB), WithCacheTTL(time.Hour))
	defer hubB.Close()

	stop, err := pubB.Listen(ctx, hubB.Refresh)
	require.NoError(t, err)
	defer stop()

	ch, cancel := collect(t, hubB, "projects")
	defer cancel()
	require.Empty(t, next(t, ch))

	_, err = hubA.Add(ctx, "projects", map[string]any{"title": "From A"})
	require.NoError(t, err)

	docs := waitFor(t, ch, func(d []Document) bool { return len(d) == 1 })
	require.Equal(t, "From A", docs[0].Fields["title"])
}

func TestRedisNotifierIgnoresOwnMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	n, err := NewRedisNotifier("redis://"+mr.Addr(), "test:changes", nil)
	require.NoError(t, err)
	defer n.Close()

	seen := make(chan string, 4)
	stop, err := n.Listen(ctx, func(c string) { seen <- c })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, n.Publish(ctx, "faq"))
	mr.Publish("test:changes", "other-instance|services")

	select {
	case c := <-seen:
		require.Equal(t, "services", c)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for foreign notification")
	}
	select {
	case c := <-seen:
		t.Fatalf("unexpected notification for %q", c)
	case <-time.After(100 * time.Millisecond):
	}
}
