package content

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Resolve produces display-ready content for lang. A nil doc yields the
// compiled-in defaults. A stored doc is merged field by field: any blank
// string, empty stat list or empty client list falls back to the default, so
// every rendered field is non-empty. GAID stays optional.
func Resolve(lang Language, doc *SiteContent) SiteContent {
	def := Defaults(lang)
	if doc == nil {
		return def
	}
	out := *doc

	fill(&out.HeroTitle, def.HeroTitle)
	fill(&out.HeroSubtitle, def.HeroSubtitle)
	fill(&out.AboutText, def.AboutText)
	out.HeroImage = strings.TrimSpace(out.HeroImage)
	out.GAID = strings.TrimSpace(out.GAID)

	out.AboutStats = resolveStats(doc.AboutStats, def.AboutStats)

	out.Clients = FilterEmpty(doc.Clients)
	if len(out.Clients) == 0 {
		out.Clients = def.Clients
	}

	fill(&out.SocialLinks.Instagram, def.SocialLinks.Instagram)
	fill(&out.SocialLinks.Telegram, def.SocialLinks.Telegram)
	fill(&out.SocialLinks.Phone, def.SocialLinks.Phone)

	t, dt := &out.SectionTitles, def.SectionTitles
	fill(&t.About, dt.About)
	fill(&t.Portfolio, dt.Portfolio)
	fill(&t.Services, dt.Services)
	fill(&t.Process, dt.Process)
	fill(&t.Testimonials, dt.Testimonials)
	fill(&t.FAQ, dt.FAQ)
	fill(&t.Contact, dt.Contact)
	fill(&t.Equipment, dt.Equipment)

	u, du := &out.UITexts, def.UITexts
	fill(&u.OrderBtn, du.OrderBtn)
	fill(&u.ViewWorksBtn, du.ViewWorksBtn)
	fill(&u.ContactBtn, du.ContactBtn)
	fill(&u.SendBtn, du.SendBtn)
	fill(&u.FooterText, du.FooterText)
	fill(&u.ContactTitle, du.ContactTitle)
	fill(&u.ContactSubtitle, du.ContactSubtitle)
	fill(&u.NoProjectsTitle, du.NoProjectsTitle)
	fill(&u.NoProjectsDesc, du.NoProjectsDesc)

	return out
}

func fill(dst *string, fallback string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = fallback
	}
}

// resolveStats fills blank halves of a stat from the default at the same
// position and drops stats that cannot be completed.
func resolveStats(stats, def []Stat) []Stat {
	if len(stats) == 0 {
		return append([]Stat(nil), def...)
	}
	out := make([]Stat, 0, len(stats))
	for i, s := range stats {
		if i < len(def) {
			fill(&s.Value, def[i].Value)
			fill(&s.Label, def[i].Label)
		}
		if strings.TrimSpace(s.Value) == "" || strings.TrimSpace(s.Label) == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return append([]Stat(nil), def...)
	}
	return out
}

// SplitItems splits comma-delimited text into trimmed, non-empty entries.
func SplitItems(text string) []string {
	return FilterEmpty(strings.Split(text, ","))
}

// FilterEmpty trims each value and drops the empty ones.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SortProcessSteps orders steps ascending by their step label. Digit runs
// compare numerically so "2" sorts before "10"; "01" and "1" tie and keep
// their relative order.
func SortProcessSteps(steps []ProcessStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		return naturalLess(steps[i].Step, steps[j].Step)
	})
}

// SortBookings orders bookings newest first.
func SortBookings(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

func naturalLess(a, b string) bool {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ar[i] != br[j] {
			return ar[i] < br[j]
		}
		i++
		j++
	}
	return len(ar)-i < len(br)-j
}

var reMillions = regexp.MustCompile(`(\d+(?:\.\d+)?)M`)

// EstimatedViews sums the "<n>M" figures found in project stats, in millions.
func EstimatedViews(projects []Project) float64 {
	var total float64
	for _, p := range projects {
		m := reMillions.FindStringSubmatch(p.Stats)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += v
		}
	}
	return total
}
