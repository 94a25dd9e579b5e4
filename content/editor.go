package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eringen/showreel/docstore"
)

var (
	// ErrInvalidInput wraps every validation failure of a form submission.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfirmationRequired is returned by Delete when the caller has not
	// confirmed the deletion.
	ErrConfirmationRequired = errors.New("deletion not confirmed")
	// ErrSubmitInFlight is returned by Begin while the same form is already
	// being submitted.
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// Documents is the write side of the document store.
type Documents interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Create(ctx context.Context, collection, id string, fields map[string]any) (bool, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Increment(ctx context.Context, collection, id, field string, delta int64) error
}

// Editor is the only path through which content is written. Every write goes
// straight to the store; subscribers see the result through their own
// subscriptions.
type Editor struct {
	docs   Documents
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewEditor returns an editor writing to docs.
func NewEditor(docs Documents, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		docs:     docs,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Begin marks the submission identified by key as running. The returned done
// func releases it. A second Begin with the same key before done fails with
// ErrSubmitInFlight.
func (e *Editor) Begin(key string) (done func(), err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[key]; busy {
		return nil, ErrSubmitInFlight
	}
	e.inflight[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.inflight, key)
			e.mu.Unlock()
		})
	}, nil
}

// Create adds a document to collection and returns its id.
func (e *Editor) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := e.docs.Add(ctx, collection, withoutID(fields))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	e.logger.Info("document created", "collection", collection, "id", id)
	return id, nil
}

// Update overwrites the given fields of an existing document.
func (e *Editor) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := e.docs.Update(ctx, collection, id, withoutID(fields)); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	e.logger.Info("document updated", "collection", collection, "id", id)
	return nil
}

// Delete removes a document. Without confirmation the store is not touched.
func (e *Editor) Delete(ctx context.Context, collection, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := e.docs.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	e.logger.Info("document deleted", "collection", collection, "id", id)
	return nil
}

// save creates v when id is empty and updates the existing document otherwise.
func (e *Editor) save(ctx context.Context, collection, id string, v any) (string, error) {
	fields, err := toFields(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", collection, err)
	}
	if id == "" {
		return e.Create(ctx, collection, fields)
	}
	return id, e.Update(ctx, collection, id, fields)
}

// SaveProject validates and stores a project.
func (e *Editor) SaveProject(ctx context.Context, p Project) (string, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if err := required(map[string]string{"title": p.Title, "category": p.Category}); err != nil {
		return "", err
	}
	if !ValidCategory(p.Category) {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, p.Category)
	}
	return e.save(ctx, CollectionProjects, p.ID, p)
}

// SaveService validates and stores a service.
func (e *Editor) SaveService(ctx context.Context, s Service) (string, error) {
	s.Title = strings.TrimSpace(s.Title)
	s.Price = strings.TrimSpace(s.Price)
	if err := required(map[string]string{"title": s.Title, "price": s.Price}); err != nil {
		return "", err
	}
	return e.save(ctx, CollectionServices, s.ID, s)
}

// SaveTestimonial validates and stores a testimonial.
func (e *Editor) SaveTestimonial(ctx context.Context, t Testimonial) (string, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Text = strings.TrimSpace(t.Text)
	if err := required(map[string]string{"name": t.Name, "text": t.Text}); err != nil {
		return "", err
	}
	return e.save(ctx, CollectionTestimonials, t.ID, t)
}

// SaveFAQ validates and stores a question and answer.
func (e *Editor) SaveFAQ(ctx context.Context, f FAQItem) (string, error) {
	f.Q = strings.TrimSpace(f.Q)
	f.A = strings.TrimSpace(f.A)
	if err := required(map[string]string{"question": f.Q, "answer": f.A}); err != nil {
		return "", err
	}
	return e.save(ctx, CollectionFAQ, f.ID, f)
}

// SaveProcessStep validates and stores a process step.
func (e *Editor) SaveProcessStep(ctx context.Context, p ProcessStep) (string, error) {
	p.Step = strings.TrimSpace(p.Step)
	p.Title = strings.TrimSpace(p.Title)
	if err := required(map[string]string{"step": p.Step, "title": p.Title}); err != nil {
		return "", err
	}
	return e.save(ctx, CollectionProcess, p.ID, p)
}

// SaveEquipment stores an equipment category. itemsText is the comma
// delimited list as typed by the author.
func (e *Editor) SaveEquipment(ctx context.Context, item EquipmentItem, itemsText string) (string, error) {
	item.Title = strings.TrimSpace(item.Title)
	item.Items = SplitItems(itemsText)
	if err := required(map[string]string{"title": item.Title}); err != nil {
		return "", err
	}
	if len(item.Items) == 0 {
		return "", fmt.Errorf("%w: items is required", ErrInvalidInput)
	}
	return e.save(ctx, CollectionEquipment, item.ID, item)
}

// SaveSiteContent replaces the page copy of lang.
func (e *Editor) SaveSiteContent(ctx context.Context, lang Language, sc SiteContent) error {
	if _, ok := languageLabels[lang]; !ok {
		return fmt.Errorf("%w: unknown language %q", ErrInvalidInput, lang)
	}
	sc.Clients = FilterEmpty(sc.Clients)
	fields, err := toFields(sc)
	if err != nil {
		return fmt.Errorf("encode site content: %w", err)
	}
	if err := e.docs.Set(ctx, CollectionSiteContent, string(lang), fields); err != nil {
		return fmt.Errorf("save site content %s: %w", lang, err)
	}
	e.logger.Info("site content saved", "lang", string(lang))
	return nil
}

// ToggleBooking flips a booking between new and completed and returns the
// new status.
func (e *Editor) ToggleBooking(ctx context.Context, id string) (string, error) {
	doc, err := e.docs.Get(ctx, CollectionBookings, id)
	if err != nil {
		return "", fmt.Errorf("toggle booking %s: %w", id, err)
	}
	status := BookingCompleted
	if s, _ := doc.Fields["status"].(string); s == BookingCompleted {
		status = BookingNew
	}
	if err := e.Update(ctx, CollectionBookings, id, map[string]any{"status": status}); err != nil {
		return "", err
	}
	return status, nil
}

// SubmitBooking records a booking request from the public form.
func (e *Editor) SubmitBooking(ctx context.Context, b Booking) (string, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Type = strings.TrimSpace(b.Type)
	if err := required(map[string]string{"name": b.Name, "phone": b.Phone}); err != nil {
		return "", err
	}
	if b.Type == "" {
		b.Type = BookingTypes[0]
	}
	b.ID = ""
	b.CreatedAt = e.now().UTC()
	b.Status = BookingNew
	return e.save(ctx, CollectionBookings, "", b)
}

// CountVisitor adds one to the site-wide visitor counter, creating the
// counter on first use. Concurrent first visits race only on the insert,
// which keeps the first row, so no increment is lost.
func (e *Editor) CountVisitor(ctx context.Context) error {
	err := e.docs.Increment(ctx, CollectionStats, VisitorsDoc, "count", 1)
	if errors.Is(err, docstore.ErrNotFound) {
		if _, err = e.docs.Create(ctx, CollectionStats, VisitorsDoc, map[string]any{"count": 0}); err == nil {
			err = e.docs.Increment(ctx, CollectionStats, VisitorsDoc, "count", 1)
		}
	}
	if err != nil {
		return fmt.Errorf("count visitor: %w", err)
	}
	return nil
}

// required fails with ErrInvalidInput naming every blank field, in a
// stable order.
func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s is required", ErrInvalidInput, strings.Join(missing, ", "))
}

func withoutID(fields map[string]any) map[string]any {
	if _, ok := fields["id"]; !ok {
		return fields
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}
