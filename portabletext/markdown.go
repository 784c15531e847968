package portabletext

import (
	"regexp"
	"strings"
)

var (
	reOrderedList = regexp.MustCompile(`^(\d+)\.\s`)
	reImageLine   = regexp.MustCompile(`^!\[(.*?)\]\((.*?)\)$`)
	// **bold**, *italic*, `code`, [text](url)
	reInline = regexp.MustCompile("\\*\\*(.+?)\\*\\*|\\*([^*]+)\\*|`([^`]+)`|\\[(.*?)\\]\\((.*?)\\)")
)

// FromMarkdown converts a small Markdown subset into blocks: #-###### headings,
// "- " and "1. " list items (two leading spaces per nesting level), standalone
// ![alt](url) images and paragraphs separated by blank lines. Inline **bold**,
// *italic*, `code` and [links](url) become span marks.
func FromMarkdown(md string) Blocks {
	var blocks Blocks
	var para []string

	flushPara := func() {
		if len(para) > 0 {
			blocks = append(blocks, Paragraph{Spans: ParseInline(strings.Join(para, " "))})
			para = nil
		}
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushPara()
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		level := indent/2 + 1

		switch {
		case strings.HasPrefix(trimmed, "#"):
			hashes := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			if hashes > 6 || len(trimmed) == hashes || trimmed[hashes] != ' ' {
				para = append(para, trimmed)
				continue
			}
			flushPara()
			blocks = append(blocks, Heading{Level: hashes, Spans: ParseInline(strings.TrimSpace(trimmed[hashes:]))})
		case strings.HasPrefix(trimmed, "- "):
			flushPara()
			blocks = append(blocks, ListItem{Level: level, Spans: ParseInline(strings.TrimSpace(trimmed[2:]))})
		case reOrderedList.MatchString(trimmed):
			flushPara()
			content := reOrderedList.ReplaceAllString(trimmed, "")
			blocks = append(blocks, ListItem{Ordered: true, Level: level, Spans: ParseInline(strings.TrimSpace(content))})
		case reImageLine.MatchString(trimmed):
			flushPara()
			m := reImageLine.FindStringSubmatch(trimmed)
			blocks = append(blocks, Image{Alt: m[1], URL: m[2]})
		default:
			para = append(para, trimmed)
		}
	}
	flushPara()
	return blocks
}

// ParseInline splits s into spans, turning Markdown inline syntax into marks.
// Markup does not nest.
func ParseInline(s string) []Span {
	var spans []Span
	last := 0
	for _, loc := range reInline.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Text: s[last:loc[0]]})
		}
		switch {
		case loc[2] >= 0:
			spans = append(spans, Span{Text: s[loc[2]:loc[3]], Marks: []string{MarkStrong}})
		case loc[4] >= 0:
			spans = append(spans, Span{Text: s[loc[4]:loc[5]], Marks: []string{MarkEm}})
		case loc[6] >= 0:
			spans = append(spans, Span{Text: s[loc[6]:loc[7]], Marks: []string{MarkCode}})
		case loc[8] >= 0:
			spans = append(spans, Span{Text: s[loc[8]:loc[9]], Href: s[loc[10]:loc[11]]})
		}
		last = loc[1]
	}
	if last < len(s) {
		spans = append(spans, Span{Text: s[last:]})
	}
	return spans
}
