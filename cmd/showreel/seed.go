package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/showreel/content"
)

// seedFile is the YAML layout accepted by the seed command. Site content is
// keyed by language code; every other collection is a list.
type seedFile struct {
	SiteContent  map[string]content.SiteContent `yaml:"site_content"`
	Projects     []content.Project              `yaml:"projects"`
	Services     []content.Service              `yaml:"services"`
	Testimonials []content.Testimonial          `yaml:"testimonials"`
	FAQ          []content.FAQItem              `yaml:"faq"`
	Process      []content.ProcessStep          `yaml:"process"`
	Equipment    []content.EquipmentItem        `yaml:"equipment"`
}

// collections lists the list collections present in the file.
func (s seedFile) collections() []string {
	var out []string
	add := func(name string, n int) {
		if n > 0 {
			out = append(out, name)
		}
	}
	add(content.CollectionProjects, len(s.Projects))
	add(content.CollectionServices, len(s.Services))
	add(content.CollectionTestimonials, len(s.Testimonials))
	add(content.CollectionFAQ, len(s.FAQ))
	add(content.CollectionProcess, len(s.Process))
	add(content.CollectionEquipment, len(s.Equipment))
	return out
}

func loadSeed(r io.Reader) (seedFile, error) {
	var s seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return seedFile{}, fmt.Errorf("decode seed: %w", err)
	}
	for code := range s.SiteContent {
		if content.ParseLanguage(code) != content.Language(code) {
			return seedFile{}, fmt.Errorf("decode seed: unknown language %q", code)
		}
	}
	return s, nil
}

// seedStore is what applySeed needs from the hub.
type seedStore interface {
	content.Lister
	content.Documents
}

// applySeed writes s through the editor and returns the number of documents
// written. With reset, the seeded list collections are emptied first.
func applySeed(ctx context.Context, docs seedStore, ed *content.Editor, s seedFile, reset bool) (int, error) {
	if reset {
		for _, collection := range s.collections() {
			existing, err := docs.List(ctx, collection)
			if err != nil {
				return 0, err
			}
			for _, d := range existing {
				if err := ed.Delete(ctx, collection, d.ID, true); err != nil {
					return 0, err
				}
			}
		}
	}

	n := 0
	for code, sc := range s.SiteContent {
		if err := ed.SaveSiteContent(ctx, content.Language(code), sc); err != nil {
			return n, fmt.Errorf("seed site content %s: %w", code, err)
		}
		n++
	}
	for _, x := range s.Projects {
		x.ID = ""
		if _, err := ed.SaveProject(ctx, x); err != nil {
			return n, fmt.Errorf("seed project %q: %w", x.Title, err)
		}
		n++
	}
	for _, x := range s.Services {
		x.ID = ""
		if _, err := ed.SaveService(ctx, x); err != nil {
			return n, fmt.Errorf("seed service %q: %w", x.Title, err)
		}
		n++
	}
	for _, x := range s.Testimonials {
		x.ID = ""
		if _, err := ed.SaveTestimonial(ctx, x); err != nil {
			return n, fmt.Errorf("seed testimonial %q: %w", x.Name, err)
		}
		n++
	}
	for _, x := range s.FAQ {
		x.ID = ""
		if _, err := ed.SaveFAQ(ctx, x); err != nil {
			return n, fmt.Errorf("seed faq %q: %w", x.Q, err)
		}
		n++
	}
	for _, x := range s.Process {
		x.ID = ""
		if _, err := ed.SaveProcessStep(ctx, x); err != nil {
			return n, fmt.Errorf("seed process step %q: %w", x.Step, err)
		}
		n++
	}
	for _, x := range s.Equipment {
		x.ID = ""
		if _, err := ed.SaveEquipment(ctx, x, strings.Join(x.Items, ", ")); err != nil {
			return n, fmt.Errorf("seed equipment %q: %w", x.Title, err)
		}
		n++
	}
	return n, nil
}

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load portfolio content from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		s, err := loadSeed(f)
		if err != nil {
			return err
		}

		hub, ed, closeFn, err := openHub()
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := applySeed(cmd.Context(), hub, ed, s, seedReset)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "delete existing documents of the seeded collections first")
}
