package portabletext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Component returns a templ.Component that renders blocks as HTML.
func Component(blocks Blocks) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of blocks to buf. Consecutive list
// items are grouped into <ul>/<ol> elements, nested by Level.
func Render(buf *bytes.Buffer, blocks Blocks) {
	imageCount := 0
	// lists holds the kind (ordered or not) of every open list, outermost first.
	// Each open list has exactly one open <li>.
	var lists []bool

	closeLists := func(depth int) {
		for len(lists) > depth {
			buf.WriteString("</li>")
			buf.WriteString(listClose(lists[len(lists)-1]))
			lists = lists[:len(lists)-1]
		}
	}

	for _, b := range blocks {
		switch v := b.(type) {
		case ListItem:
			level := v.Level
			if level < 1 {
				level = 1
			}
			closeLists(level)
			if len(lists) == level {
				if lists[level-1] != v.Ordered {
					closeLists(level - 1)
				} else {
					buf.WriteString("</li>")
				}
			}
			for len(lists) < level {
				buf.WriteString(listOpen(v.Ordered))
				lists = append(lists, v.Ordered)
				if len(lists) < level {
					buf.WriteString("<li>")
				}
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatSpans(v.Spans))
		case Paragraph:
			closeLists(0)
			text := FormatSpans(v.Spans)
			if strings.TrimSpace(text) == "" {
				continue
			}
			buf.WriteString("<p>")
			buf.WriteString(text)
			buf.WriteString("</p>")
		case Heading:
			closeLists(0)
			level := v.Level
			if level < 1 || level > 6 {
				level = 2
			}
			tag := "h" + strconv.Itoa(level)
			buf.WriteString("<" + tag + ">")
			buf.WriteString(FormatSpans(v.Spans))
			buf.WriteString("</" + tag + ">")
		case Image:
			closeLists(0)
			src := SafeURL(v.URL)
			if src == "" {
				continue
			}
			imageCount++
			loadAttr := `loading="lazy"`
			if imageCount == 1 {
				loadAttr = `fetchpriority="high"`
			}
			buf.WriteString("<figure>")
			buf.WriteString(`<img ` + loadAttr + ` alt="` + html.EscapeString(v.Alt) + `" src="` + src + `" decoding="async"/>`)
			if v.Caption != "" {
				buf.WriteString("<figcaption>" + html.EscapeString(v.Caption) + "</figcaption>")
			}
			buf.WriteString("</figure>")
		}
	}
	closeLists(0)
}

func listOpen(ordered bool) string {
	if ordered {
		return "<ol>"
	}
	return "<ul>"
}

func listClose(ordered bool) string {
	if ordered {
		return "</ol>"
	}
	return "</ul>"
}

var markTags = map[string]string{
	MarkStrong:    "strong",
	MarkEm:        "em",
	MarkCode:      "code",
	MarkUnderline: "u",
	MarkStrike:    "s",
}

// FormatSpans renders spans as escaped inline HTML. Unknown marks are ignored.
func FormatSpans(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		text := html.EscapeString(s.Text)
		for _, m := range s.Marks {
			if tag, ok := markTags[m]; ok {
				text = "<" + tag + ">" + text + "</" + tag + ">"
			}
		}
		if s.Href != "" {
			if href := SafeURL(s.Href); href != "" {
				attrs := `class="underline decoration-2 underline-offset-4"`
				if isExternal(s.Href) {
					attrs += ` target="_blank" rel="noopener noreferrer"`
				}
				text = `<a href="` + href + `" ` + attrs + `>` + text + `</a>`
			}
		}
		b.WriteString(text)
	}
	return b.String()
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
