package site

import (
	"strings"
	"time"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

// Robots is the robots directive of a page.
type Robots struct {
	Index  bool
	Follow bool
}

// String formats r for a robots meta tag.
func (r Robots) String() string {
	index, follow := "index", "follow"
	if !r.Index {
		index = "noindex"
	}
	if !r.Follow {
		follow = "nofollow"
	}
	return index + ", " + follow
}

type OpenGraph struct {
	Type          string
	Title         string
	Description   string
	URL           string
	SiteName      string
	Image         string
	ImageAlt      string
	PublishedTime time.Time
	ModifiedTime  time.Time
	Authors       []string
}

type TwitterCard struct {
	Card        string
	Title       string
	Description string
	Image       string
}

// Metadata is everything a page puts in its <head>.
type Metadata struct {
	Title       string
	Description string
	Canonical   string
	Robots      Robots
	OpenGraph   OpenGraph
	Twitter     TwitterCard
	JSONLD      []string
}

// Canonical joins base and path into an absolute URL with exactly one slash
// between them, no repeated slashes in the path and no trailing slash except
// for the site root.
func Canonical(base, path string) string {
	base = strings.TrimRight(base, "/")
	var b strings.Builder
	b.WriteByte('/')
	prev := true
	for _, r := range path {
		if r == '/' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	p := b.String()
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return base + p
}

// OGImage requests the 1200x630 social preview rendition of an image URL.
func OGImage(url string) string {
	if url == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "w=1200&h=630&fit=crop&auto=format"
}

// RobotsFor returns the directive for a document's noindex flag. Links stay
// followable either way.
func RobotsFor(noindex bool) Robots {
	return Robots{Index: !noindex, Follow: true}
}

// firstNonBlank returns the first value that is not blank after trimming.
func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Title picks the page title: the SEO override, then the document's own
// title, then fallback.
func Title(metaTitle, title, fallback string) string {
	return firstNonBlank(metaTitle, title, fallback)
}

// Description picks the page description: the SEO override, then the
// document's summary, then fallback.
func Description(metaDescription, summary, fallback string) string {
	return firstNonBlank(metaDescription, summary, fallback)
}

// ImageAlt returns the image's own alt text, else the page title.
func ImageAlt(alt, title string) string {
	return firstNonBlank(alt, title)
}

// seoInput is the assembled view of a page that metadata is derived from.
type seoInput struct {
	title       string
	description string
	path        string
	ogType      string
	image       *Image
	noindex     bool
	published   time.Time
	modified    time.Time
	authors     []string
}

// absoluteURL resolves a site-relative path such as a mirrored /media/ image
// against base. Other URLs are returned unchanged.
func absoluteURL(base, u string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return Canonical(base, u)
	}
	return u
}

func (s *Service) metadata(in seoInput) Metadata {
	canonical := Canonical(s.cfg.URL, in.path)
	m := Metadata{
		Title:       in.title,
		Description: in.description,
		Canonical:   canonical,
		Robots:      RobotsFor(in.noindex || s.preview),
		OpenGraph: OpenGraph{
			Type:        "website",
			Title:       in.title,
			Description: in.description,
			URL:         canonical,
			SiteName:    s.cfg.Name,
		},
		Twitter: TwitterCard{
			Card:        "summary",
			Title:       in.title,
			Description: in.description,
		},
	}
	if in.image != nil && in.image.URL != "" {
		m.OpenGraph.Image = OGImage(absoluteURL(s.cfg.URL, in.image.URL))
		m.OpenGraph.ImageAlt = ImageAlt(in.image.Alt, in.title)
		m.Twitter.Card = "summary_large_image"
		m.Twitter.Image = m.OpenGraph.Image
	}
	if in.ogType == "article" {
		m.OpenGraph.Type = "article"
		m.OpenGraph.PublishedTime = in.published
		m.OpenGraph.ModifiedTime = in.modified
		m.OpenGraph.Authors = in.authors
	}
	return m
}

// displayImage converts a stored image into a display image, filling the alt
// text from title.
func displayImage(img *content.SeoImage, title string) *Image {
	if img == nil || strings.TrimSpace(img.URL) == "" {
		return nil
	}
	return &Image{
		URL:     img.URL,
		Alt:     ImageAlt(img.Alt, title),
		Caption: img.Caption,
		Credit:  img.Credit,
	}
}
