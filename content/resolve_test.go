package content

import (
	"reflect"
	"testing"
)

// emptyStrings returns the paths of blank string fields in v, descending
// into structs and slices.
func emptyStrings(v reflect.Value, path string) []string {
	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return []string{path}
		}
	case reflect.Struct:
		var out []string
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if f.Name == "GAID" || f.Name == "HeroImage" {
				continue
			}
			out = append(out, emptyStrings(v.Field(i), path+"."+f.Name)...)
		}
		return out
	case reflect.Slice:
		if v.Len() == 0 {
			return []string{path + "[]"}
		}
		var out []string
		for i := 0; i < v.Len(); i++ {
			out = append(out, emptyStrings(v.Index(i), path)...)
		}
		return out
	}
	return nil
}

func TestResolveDefaultsAreComplete(t *testing.T) {
	for _, lang := range Languages {
		got := Resolve(lang, nil)
		if blank := emptyStrings(reflect.ValueOf(got), string(lang)); len(blank) > 0 {
			t.Errorf("Resolve(%s, nil) has blank fields: %v", lang, blank)
		}
	}
}

func TestResolveDefaultsDifferPerLanguage(t *testing.T) {
	uz := Resolve(Uzbek, nil)
	ru := Resolve(Russian, nil)
	en := Resolve(English, nil)
	if uz.SectionTitles.About == ru.SectionTitles.About || ru.SectionTitles.About == en.SectionTitles.About {
		t.Errorf("expected distinct about titles, got %q %q %q",
			uz.SectionTitles.About, ru.SectionTitles.About, en.SectionTitles.About)
	}
}

func TestResolveFillsPartialDocument(t *testing.T) {
	doc := &SiteContent{
		HeroTitle:  "CUSTOM",
		AboutStats: []Stat{{Value: "10+", Label: ""}},
		SectionTitles: SectionTitles{
			Portfolio: "Works",
		},
		GAID: "  ",
	}
	got := Resolve(English, doc)

	if got.HeroTitle != "CUSTOM" {
		t.Errorf("HeroTitle = %q, want CUSTOM", got.HeroTitle)
	}
	def := Defaults(English)
	if got.HeroSubtitle != def.HeroSubtitle {
		t.Errorf("HeroSubtitle = %q, want default", got.HeroSubtitle)
	}
	if got.SectionTitles.Portfolio != "Works" {
		t.Errorf("Portfolio = %q, want Works", got.SectionTitles.Portfolio)
	}
	if got.SectionTitles.FAQ != def.SectionTitles.FAQ {
		t.Errorf("FAQ = %q, want default", got.SectionTitles.FAQ)
	}
	if len(got.AboutStats) != 1 || got.AboutStats[0].Value != "10+" || got.AboutStats[0].Label != def.AboutStats[0].Label {
		t.Errorf("AboutStats = %+v", got.AboutStats)
	}
	if got.GAID != "" {
		t.Errorf("GAID = %q, want empty", got.GAID)
	}
	if blank := emptyStrings(reflect.ValueOf(got), "en"); len(blank) > 0 {
		t.Errorf("blank fields after resolve: %v", blank)
	}
}

func TestResolveDoesNotAliasDefaults(t *testing.T) {
	got := Resolve(Uzbek, nil)
	got.Clients[0] = "changed"
	got.AboutStats[0].Value = "changed"

	again := Resolve(Uzbek, nil)
	if again.Clients[0] == "changed" || again.AboutStats[0].Value == "changed" {
		t.Error("defaults were mutated through a resolved value")
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"uz", Uzbek},
		{"RU", Russian},
		{" en ", English},
		{"de", DefaultLanguage},
		{"", DefaultLanguage},
	}
	for _, tt := range tests {
		if got := ParseLanguage(tt.in); got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitItems(t *testing.T) {
	got := SplitItems("Sony A7S III, DJI Ronin, , ")
	want := []string{"Sony A7S III", "DJI Ronin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitItems = %q, want %q", got, want)
	}
	if got := SplitItems(" , ,"); len(got) != 0 {
		t.Errorf("SplitItems of blanks = %q, want empty", got)
	}
}

func TestSortProcessSteps(t *testing.T) {
	steps := []ProcessStep{{Step: "03"}, {Step: "01"}, {Step: "02"}}
	SortProcessSteps(steps)
	var got []string
	for _, s := range steps {
		got = append(got, s.Step)
	}
	if want := []string{"01", "02", "03"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortProcessStepsNumeric(t *testing.T) {
	steps := []ProcessStep{{Step: "10"}, {Step: "2"}, {Step: "1"}}
	SortProcessSteps(steps)
	var got []string
	for _, s := range steps {
		got = append(got, s.Step)
	}
	if want := []string{"1", "2", "10"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	if ValidCategory("Wedding") {
		t.Error("ValidCategory(Wedding) = true")
	}
}

func TestEstimatedViews(t *testing.T) {
	projects := []Project{{Stats: "1.2M views"}, {Stats: "500K views"}, {Stats: "3M"}, {Stats: ""}}
	if got := EstimatedViews(projects); got < 4.19 || got > 4.21 {
		t.Errorf("EstimatedViews = %v, want 4.2", got)
	}
}
