package views

import (
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JohnnyAddis/underserved-sports-mvp/site"
)

// PathEscape wraps url.PathEscape for building hrefs from slugs.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// FormatDate formats t as "Jan 2, 2006", or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Plural returns "1 article" / "3 articles".
func Plural(n int, noun string) string {
	s := strconv.Itoa(n) + " " + noun
	if n != 1 {
		s += "s"
	}
	return s
}

func articleHref(slug string) string { return "/news/" + PathEscape(slug) }
func leagueHref(slug string) string  { return "/leagues/" + PathEscape(slug) }
func aboutHref(slug string) string   { return "/leagues/" + PathEscape(slug) + "/about" }

func pageTitle(cfg SiteConfig, m site.Metadata) string {
	if m.Title == "" {
		return cfg.Name
	}
	return m.Title + " | " + cfg.Name
}

// jsonLD embeds a structured data document. The document comes from
// encoding/json, which escapes <, > and &.
func jsonLD(doc string) templ.Component {
	return templ.Raw(`<script type="application/ld+json">` + doc + `</script>`)
}

func errorFrame(title string) site.Frame {
	return site.Frame{Meta: site.Metadata{Title: title, Robots: site.RobotsFor(true)}}
}
