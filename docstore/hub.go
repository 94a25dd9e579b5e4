package docstore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notifier carries change notifications to other server instances sharing
// the same database.
type Notifier interface {
	Publish(ctx context.Context, collection string) error
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithCacheTTL sets how long a collection snapshot may be served from memory
// without a change notification (default 5 minutes).
func WithCacheTTL(ttl time.Duration) HubOption {
	return func(h *Hub) {
		h.cache.ttl = ttl
	}
}

// WithNotifier publishes every local write through n.
func WithNotifier(n Notifier) HubOption {
	return func(h *Hub) {
		h.notifier = n
	}
}

// Hub fronts a Store with live subscriptions. Every write through the hub
// pushes the full current snapshot of the written collection to each of its
// subscribers. Snapshots are shared between subscribers and must be treated
// as read-only.
type Hub struct {
	store    *Store
	cache    *snapshotCache
	logger   *slog.Logger
	notifier Notifier

	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

// NewHub creates a Hub over store.
func NewHub(store *Store, logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		store:  store,
		cache:  newSnapshotCache(store, 5*time.Minute),
		logger: logger,
		subs:   make(map[string]map[*subscription]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// List returns the current snapshot of collection.
func (h *Hub) List(ctx context.Context, collection string) ([]Document, error) {
	return h.cache.Snapshot(ctx, collection)
}

// Get reads a single document straight from the store.
func (h *Hub) Get(ctx context.Context, collection, id string) (Document, error) {
	return h.store.Get(ctx, collection, id)
}

// Add inserts a document and notifies subscribers.
func (h *Hub) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := h.store.Add(ctx, collection, fields)
	if err != nil {
		return "", err
	}
	h.changed(ctx, collection)
	return id, nil
}

// Set creates or replaces a document and notifies subscribers.
func (h *Hub) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := h.store.Set(ctx, collection, id, fields); err != nil {
		return err
	}
	h.changed(ctx, collection)
	return nil
}

// Create inserts a document under id when none exists yet. Subscribers are
// only notified when a document was written.
func (h *Hub) Create(ctx context.Context, collection, id string, fields map[string]any) (bool, error) {
	created, err := h.store.Create(ctx, collection, id, fields)
	if err != nil || !created {
		return created, err
	}
	h.changed(ctx, collection)
	return true, nil
}

// Update merges fields into an existing document and notifies subscribers.
func (h *Hub) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := h.store.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	h.changed(ctx, collection)
	return nil
}

// Delete removes a document and notifies subscribers.
func (h *Hub) Delete(ctx context.Context, collection, id string) error {
	if err := h.store.Delete(ctx, collection, id); err != nil {
		return err
	}
	h.changed(ctx, collection)
	return nil
}

// Increment adds delta to a numeric field and notifies subscribers.
func (h *Hub) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if err := h.store.Increment(ctx, collection, id, field, delta); err != nil {
		return err
	}
	h.changed(ctx, collection)
	return nil
}

func (h *Hub) changed(ctx context.Context, collection string) {
	h.Refresh(collection)
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Publish(ctx, collection); err != nil {
		h.logger.Warn("publish change notification failed", "collection", collection, "error", err)
	}
}

// Refresh drops the cached snapshot of collection and pushes a fresh one to
// every subscriber. It is called after local writes and for notifications
// arriving from other instances.
func (h *Hub) Refresh(collection string) {
	h.cache.Invalidate(collection)
	h.mu.Lock()
	for s := range h.subs[collection] {
		s.notify()
	}
	h.mu.Unlock()
}

// Subscribe registers fn to receive the full snapshot of collection now and
// after every change. The returned cancel func releases the subscription;
// fn is never called after cancel returns unless a delivery was already in
// progress.
func (h *Hub) Subscribe(collection string, fn func([]Document)) (cancel func()) {
	s := &subscription{
		collection: collection,
		deliver:    fn,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	h.mu.Lock()
	set, ok := h.subs[collection]
	if !ok {
		set = make(map[*subscription]struct{})
		h.subs[collection] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	s.notify()
	go h.run(s)

	return func() {
		h.mu.Lock()
		delete(h.subs[collection], s)
		if len(h.subs[collection]) == 0 {
			delete(h.subs, collection)
		}
		h.mu.Unlock()
		s.stop()
	}
}

// SubscribeDoc is Subscribe narrowed to one document. fn receives nil while
// the document does not exist.
func (h *Hub) SubscribeDoc(collection, id string, fn func(*Document)) (cancel func()) {
	return h.Subscribe(collection, func(docs []Document) {
		for i := range docs {
			if docs[i].ID == id {
				fn(&docs[i])
				return
			}
		}
		fn(nil)
	})
}

// Subscribers returns the number of live subscriptions on collection.
func (h *Hub) Subscribers(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

// Close releases every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for collection, set := range h.subs {
		for s := range set {
			s.stop()
		}
		delete(h.subs, collection)
	}
}

func (h *Hub) run(s *subscription) {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		docs, err := h.cache.Snapshot(context.Background(), s.collection)
		if err != nil {
			// the next change notification retries the read
			h.logger.Warn("load snapshot failed", "collection", s.collection, "error", err)
			continue
		}
		select {
		case <-s.done:
			return
		default:
		}
		s.deliver(docs)
	}
}

// subscription delivers snapshots one at a time. wake has capacity one, so
// notifications arriving during a delivery collapse into a single reload and
// the subscriber always sees the latest snapshot.
type subscription struct {
	collection string
	deliver    func([]Document)
	wake       chan struct{}
	done       chan struct{}
	once       sync.Once
}

func (s *subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}
