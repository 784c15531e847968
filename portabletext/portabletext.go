// Package portabletext models CMS rich text as a sequence of typed blocks and
// renders it to HTML as a templ component.
package portabletext

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Block is one unit of rich text. Concrete types are Paragraph, Heading,
// ListItem and Image.
type Block interface {
	block()
}

// Span is a run of text with decorator marks. Href is set when the span is
// annotated with a link.
type Span struct {
	Text  string
	Marks []string
	Href  string
}

// Decorator marks understood by the renderer.
const (
	MarkStrong    = "strong"
	MarkEm        = "em"
	MarkCode      = "code"
	MarkUnderline = "underline"
	MarkStrike    = "strike-through"
)

type Paragraph struct {
	Spans []Span
}

type Heading struct {
	Level int // 1-6
	Spans []Span
}

type ListItem struct {
	Ordered bool
	Level   int // nesting depth, starting at 1
	Spans   []Span
}

type Image struct {
	URL     string
	Alt     string
	Caption string
}

func (Paragraph) block() {}
func (Heading) block()   {}
func (ListItem) block()  {}
func (Image) block()     {}

// Blocks is an ordered rich-text body.
type Blocks []Block

// PlainText joins the text of every textual block with single spaces.
func (bs Blocks) PlainText() string {
	var parts []string
	for _, b := range bs {
		var spans []Span
		switch v := b.(type) {
		case Paragraph:
			spans = v.Spans
		case Heading:
			spans = v.Spans
		case ListItem:
			spans = v.Spans
		}
		if t := strings.TrimSpace(spansText(spans)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func spansText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

type wireSpan struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

type wireMarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

type wireAsset struct {
	URL string `json:"url,omitempty"`
}

type wireBlock struct {
	Type     string        `json:"_type"`
	Style    string        `json:"style,omitempty"`
	ListItem string        `json:"listItem,omitempty"`
	Level    int           `json:"level,omitempty"`
	Children []wireSpan    `json:"children,omitempty"`
	MarkDefs []wireMarkDef `json:"markDefs,omitempty"`
	URL      string        `json:"url,omitempty"`
	Alt      string        `json:"alt,omitempty"`
	Caption  string        `json:"caption,omitempty"`
	Asset    *wireAsset    `json:"asset,omitempty"`
}

// UnmarshalJSON decodes a Portable Text array. Blocks of unknown type or
// unexpected shape are dropped; a value that is not an array decodes as empty.
func (bs *Blocks) UnmarshalJSON(data []byte) error {
	*bs = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(Blocks, 0, len(raw))
	for _, r := range raw {
		var w wireBlock
		if err := json.Unmarshal(r, &w); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				continue
			}
		}
		if b, ok := w.toBlock(); ok {
			out = append(out, b)
		}
	}
	if len(out) > 0 {
		*bs = out
	}
	return nil
}

func (w wireBlock) toBlock() (Block, bool) {
	switch w.Type {
	case "block":
		spans := w.spans()
		if w.ListItem != "" {
			level := w.Level
			if level < 1 {
				level = 1
			}
			return ListItem{Ordered: w.ListItem == "number", Level: level, Spans: spans}, true
		}
		if level := headingLevel(w.Style); level > 0 {
			return Heading{Level: level, Spans: spans}, true
		}
		return Paragraph{Spans: spans}, true
	case "image":
		url := w.URL
		if url == "" && w.Asset != nil {
			url = w.Asset.URL
		}
		if url == "" {
			return nil, false
		}
		return Image{URL: url, Alt: w.Alt, Caption: w.Caption}, true
	}
	return nil, false
}

func (w wireBlock) spans() []Span {
	links := make(map[string]string, len(w.MarkDefs))
	for _, d := range w.MarkDefs {
		if d.Type == "link" && d.Href != "" {
			links[d.Key] = d.Href
		}
	}
	spans := make([]Span, 0, len(w.Children))
	for _, c := range w.Children {
		if c.Type != "" && c.Type != "span" {
			continue
		}
		s := Span{Text: c.Text}
		for _, m := range c.Marks {
			if href, ok := links[m]; ok {
				s.Href = href
				continue
			}
			s.Marks = append(s.Marks, m)
		}
		spans = append(spans, s)
	}
	return spans
}

func headingLevel(style string) int {
	if len(style) == 2 && style[0] == 'h' && style[1] >= '1' && style[1] <= '6' {
		return int(style[1] - '0')
	}
	return 0
}

// MarshalJSON encodes the blocks in Portable Text form so they round-trip
// through UnmarshalJSON.
func (bs Blocks) MarshalJSON() ([]byte, error) {
	out := make([]wireBlock, 0, len(bs))
	for _, b := range bs {
		switch v := b.(type) {
		case Paragraph:
			out = append(out, textBlock("normal", "", 0, v.Spans))
		case Heading:
			out = append(out, textBlock("h"+strconv.Itoa(v.Level), "", 0, v.Spans))
		case ListItem:
			kind := "bullet"
			if v.Ordered {
				kind = "number"
			}
			out = append(out, textBlock("normal", kind, v.Level, v.Spans))
		case Image:
			out = append(out, wireBlock{Type: "image", URL: v.URL, Alt: v.Alt, Caption: v.Caption})
		}
	}
	return json.Marshal(out)
}

func textBlock(style, listItem string, level int, spans []Span) wireBlock {
	w := wireBlock{Type: "block", Style: style, ListItem: listItem, Level: level}
	w.Children = make([]wireSpan, 0, len(spans))
	for _, s := range spans {
		marks := append([]string(nil), s.Marks...)
		if s.Href != "" {
			key := "link" + strconv.Itoa(len(w.MarkDefs))
			w.MarkDefs = append(w.MarkDefs, wireMarkDef{Key: key, Type: "link", Href: s.Href})
			marks = append(marks, key)
		}
		w.Children = append(w.Children, wireSpan{Type: "span", Text: s.Text, Marks: marks})
	}
	return w
}
