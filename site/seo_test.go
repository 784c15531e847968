package site

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

func TestTitlePrecedence(t *testing.T) {
	tests := []struct {
		metaTitle, title, fallback, want string
	}{
		{"X", "Y", "Article", "X"},
		{"", "Y", "Article", "Y"},
		{"   ", "Y", "Article", "Y"},
		{"", "", "Article", "Article"},
		{"", "", "League", "League"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Title(tt.metaTitle, tt.title, tt.fallback), "Title(%q, %q, %q)", tt.metaTitle, tt.title, tt.fallback)
	}
}

func TestDescriptionPrecedence(t *testing.T) {
	assert.Equal(t, "meta", Description("meta", "excerpt", "generic"))
	assert.Equal(t, "excerpt", Description("", "excerpt", "generic"))
	assert.Equal(t, "generic", Description("", "", "generic"))
}

func TestImageAlt(t *testing.T) {
	assert.Equal(t, "alt", ImageAlt(" alt ", "title"))
	assert.Equal(t, "title", ImageAlt("", "title"))
	assert.Equal(t, "", ImageAlt("", ""))
}

func TestOGImage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"https://cdn.sanity.io/images/p/d/a.jpg", "https://cdn.sanity.io/images/p/d/a.jpg?w=1200&h=630&fit=crop&auto=format"},
		{"https://cdn.sanity.io/images/p/d/a.jpg?rect=0,0,10,10", "https://cdn.sanity.io/images/p/d/a.jpg?rect=0,0,10,10&w=1200&h=630&fit=crop&auto=format"},
		{"/media/a.jpg", "/media/a.jpg?w=1200&h=630&fit=crop&auto=format"},
	}
	for _, tt := range tests {
		got := OGImage(tt.in)
		assert.Equal(t, tt.want, got)
		if tt.in != "" {
			assert.Equal(t, 1, strings.Count(got, "?"), "OGImage(%q) = %q", tt.in, got)
			assert.Equal(t, strings.Count(tt.in, "&")+3, strings.Count(got, "&"))
		}
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://example.com", "/news/a", "https://example.com/news/a"},
		{"https://example.com/", "news/a", "https://example.com/news/a"},
		{"https://example.com//", "//news//a", "https://example.com/news/a"},
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com", "", "https://example.com/"},
		{"https://x.com", "/news/a/", "https://x.com/news/a"},
		{"https://x.com", "/leagues//", "https://x.com/leagues"},
		{"https://x.com", "//", "https://x.com/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.base, tt.path))
	}
}

func TestRobots(t *testing.T) {
	assert.Equal(t, Robots{Index: false, Follow: true}, RobotsFor(true))
	assert.Equal(t, Robots{Index: true, Follow: true}, RobotsFor(false))
	assert.Equal(t, "noindex, follow", RobotsFor(true).String())
	assert.Equal(t, "index, follow", RobotsFor(false).String())
}

func TestMetadataTwitterCard(t *testing.T) {
	svc := NewService(newMemRepo(), Config{Name: "Site", URL: "https://example.com"}, testLogger())

	plain := svc.metadata(seoInput{title: "T", path: "/x"})
	assert.Equal(t, "summary", plain.Twitter.Card)
	assert.Empty(t, plain.OpenGraph.Image)
	assert.Equal(t, "website", plain.OpenGraph.Type)
	assert.Equal(t, "https://example.com/x", plain.OpenGraph.URL)

	withImage := svc.metadata(seoInput{title: "T", path: "/x", image: &Image{URL: "https://img/a.png"}})
	assert.Equal(t, "summary_large_image", withImage.Twitter.Card)
	assert.Equal(t, "https://img/a.png?w=1200&h=630&fit=crop&auto=format", withImage.OpenGraph.Image)

	local := svc.metadata(seoInput{title: "T", path: "/x", image: &Image{URL: "/media/a.png"}})
	assert.Equal(t, "https://example.com/media/a.png?w=1200&h=630&fit=crop&auto=format", local.OpenGraph.Image)
	assert.Equal(t, "T", withImage.OpenGraph.ImageAlt)
}

func TestDisplayImage(t *testing.T) {
	assert.Nil(t, displayImage(nil, "t"))
	assert.Nil(t, displayImage(&content.SeoImage{Alt: "no url"}, "t"))
	img := displayImage(&content.SeoImage{URL: "u", Caption: "c"}, "Title")
	require.NotNil(t, img)
	assert.Equal(t, "Title", img.Alt)
	assert.Equal(t, "c", img.Caption)
}

func TestBreadcrumbJSONLD(t *testing.T) {
	out := BreadcrumbJSONLD(Config{URL: "https://example.com/"}, []Crumb{
		{Name: "Home", Href: "/"},
		{Name: "Leagues", Href: "/leagues"},
		{Name: "Cricket"},
	})
	var doc struct {
		Type  string `json:"@type"`
		Items []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
			Item     string `json:"item"`
		} `json:"itemListElement"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "BreadcrumbList", doc.Type)
	require.Len(t, doc.Items, 3)
	assert.Equal(t, "https://example.com/leagues", doc.Items[1].Item)
	assert.Equal(t, 3, doc.Items[2].Position)
	assert.Empty(t, doc.Items[2].Item)
}

func TestJSONLDEscapesScriptClose(t *testing.T) {
	out := WebsiteJSONLD(Config{Name: "</script><script>alert(1)</script>", URL: "https://example.com"})
	assert.NotContains(t, out, "</script>")
}
