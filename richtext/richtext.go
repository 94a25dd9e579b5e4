// Package richtext renders the lightly formatted text authors type into admin
// forms: paragraphs, line breaks, "- " lists, bold, italic and links.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*]+)\*`)
	reLink   = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// Text returns a component rendering s as HTML blocks.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, s)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Lines returns a component rendering s escaped, with newlines as <br/>.
// It is used for headings where authors break lines by hand.
func Lines(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, LinesHTML(s))
		return err
	})
}

// LinesHTML is the string form of Lines.
func LinesHTML(s string) string {
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, p := range parts {
		parts[i] = html.EscapeString(p)
	}
	return strings.Join(parts, "<br/>")
}

// Render writes the HTML form of s to buf. Blank lines separate paragraphs;
// single newlines inside a paragraph become <br/>.
func Render(buf *bytes.Buffer, s string) {
	inPara := false
	inList := false

	flushPara := func() {
		if inPara {
			buf.WriteString("</p>")
			inPara = false
		}
	}
	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}

	for _, raw := range strings.Split(s, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushPara()
			flushList()
		case strings.HasPrefix(trimmed, "- "):
			if !inList {
				flushPara()
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatInline(strings.TrimSpace(trimmed[2:])))
			buf.WriteString("</li>")
		default:
			if !inPara {
				flushList()
				buf.WriteString("<p>")
				inPara = true
			} else {
				buf.WriteString("<br/>")
			}
			buf.WriteString(FormatInline(trimmed))
		}
	}
	flushPara()
	flushList()
}

// FormatInline escapes s and applies bold, italic and link formatting.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "#") {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	return applyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
}

// applyOutsideTags runs fn on the text between HTML tags only, so formatting
// never rewrites attribute values.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// SafeURL returns raw escaped for an HTML attribute, or "" when its scheme is
// not one of http, https, mailto or tel. Relative paths and fragments pass.
func SafeURL(raw string) string {
	return html.EscapeString(CleanURL(raw))
}

// CleanURL is SafeURL without the attribute escaping, for callers that
// escape on output.
func CleanURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return val
	default:
		return ""
	}
}
