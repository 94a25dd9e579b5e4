package richtext

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFormatInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"text *italic* more", "text <em>italic</em> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"<script>", "&lt;script&gt;"},
		{"[site](/about)", `<a href="/about">site</a>`},
		{"[ig](https://instagram.com)", `<a href="https://instagram.com" target="_blank" rel="noopener noreferrer">ig</a>`},
	}
	for _, tt := range tests {
		if got := FormatInline(tt.input); got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineDropsUnsafeLinks(t *testing.T) {
	got := FormatInline("[click](javascript:alert(1))")
	if strings.Contains(got, "href") {
		t.Errorf("unsafe link rendered: %q", got)
	}
}

func TestFormatInlineLeavesHrefUntouched(t *testing.T) {
	got := FormatInline("[a](https://example.com/some*path*here)")
	if strings.Contains(got, "<em>") {
		t.Errorf("formatting leaked into href: %q", got)
	}
}

func TestRenderParagraphsAndBreaks(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, "first line\nsecond line\n\nnext paragraph")
	want := "<p>first line<br/>second line</p><p>next paragraph</p>"
	if got := buf.String(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, "Includes:\n- Shooting\n- **Editing**\nafter")
	want := "<p>Includes:</p><ul><li>Shooting</li><li><strong>Editing</strong></li></ul><p>after</p>"
	if got := buf.String(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, "  \n\n")
	if buf.Len() != 0 {
		t.Errorf("Render of blank input = %q", buf.String())
	}
}

func TestLines(t *testing.T) {
	var buf bytes.Buffer
	if err := Lines("TOHIRJON\nBOLTAYEV & <co>").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	want := "TOHIRJON<br/>BOLTAYEV &amp; &lt;co&gt;"
	if got := buf.String(); got != want {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}

func TestTextComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Text("hello *world*").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<p>hello <em>world</em></p>" {
		t.Errorf("Text = %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://t.me/x", "https://t.me/x"},
		{"tel:+998901234567", "tel:+998901234567"},
		{"/public/uploads/a.jpg", "/public/uploads/a.jpg"},
		{"javascript:alert(1)", ""},
		{"example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.in); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
