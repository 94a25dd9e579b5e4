package content

import (
	"encoding/json"
	"fmt"

	"github.com/eringen/showreel/docstore"
)

// decodeDoc converts a stored document into T, setting the id through setID.
func decodeDoc[T any](doc docstore.Document, setID func(*T, string)) (T, error) {
	var v T
	b, err := json.Marshal(doc.Fields)
	if err != nil {
		return v, fmt.Errorf("encode %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	if setID != nil {
		setID(&v, doc.ID)
	}
	return v, nil
}

// decodeAll decodes a snapshot, skipping documents that do not fit T.
func decodeAll[T any](docs []docstore.Document, setID func(*T, string)) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decodeDoc(d, setID)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// toFields converts a typed value into document fields. Id fields are
// tagged json:"-" and never persisted.
func toFields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Projects decodes a projects snapshot.
func Projects(docs []docstore.Document) []Project {
	return decodeAll(docs, func(p *Project, id string) { p.ID = id })
}

// Services decodes a services snapshot.
func Services(docs []docstore.Document) []Service {
	return decodeAll(docs, func(s *Service, id string) { s.ID = id })
}

// Testimonials decodes a testimonials snapshot.
func Testimonials(docs []docstore.Document) []Testimonial {
	return decodeAll(docs, func(t *Testimonial, id string) { t.ID = id })
}

// FAQ decodes a faq snapshot.
func FAQ(docs []docstore.Document) []FAQItem {
	return decodeAll(docs, func(f *FAQItem, id string) { f.ID = id })
}

// ProcessSteps decodes a process snapshot, ordered by step label.
func ProcessSteps(docs []docstore.Document) []ProcessStep {
	steps := decodeAll(docs, func(p *ProcessStep, id string) { p.ID = id })
	SortProcessSteps(steps)
	return steps
}

// Equipment decodes an equipment snapshot.
func Equipment(docs []docstore.Document) []EquipmentItem {
	return decodeAll(docs, func(e *EquipmentItem, id string) { e.ID = id })
}

// Bookings decodes a bookings snapshot, newest first.
func Bookings(docs []docstore.Document) []Booking {
	bookings := decodeAll(docs, func(b *Booking, id string) { b.ID = id })
	SortBookings(bookings)
	return bookings
}

// SiteContentDoc decodes a site_content document; nil stays nil.
func SiteContentDoc(doc *docstore.Document) *SiteContent {
	if doc == nil {
		return nil
	}
	sc, err := decodeDoc[SiteContent](*doc, nil)
	if err != nil {
		return nil
	}
	return &sc
}

// Visitors reads the visitor count from a stats snapshot.
func Visitors(docs []docstore.Document) int64 {
	for _, d := range docs {
		if d.ID != VisitorsDoc {
			continue
		}
		v, err := decodeDoc[VisitorStat](d, nil)
		if err != nil {
			// counts written by the store's JSON increment may be floats
			if f, ok := d.Fields["count"].(float64); ok {
				return int64(f)
			}
			return 0
		}
		return v.Count
	}
	return 0
}
