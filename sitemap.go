package underserved

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/site"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// buildSitemap lists the home page, the league index, every league and every
// public article. Entries without a known modification time omit lastmod.
func buildSitemap(base string, articles, leagues []content.SitemapDoc) sitemapURLSet {
	urls := make([]sitemapURL, 0, 2+len(articles)+len(leagues))
	urls = append(urls,
		sitemapURL{Loc: site.Canonical(base, "/"), ChangeFreq: "hourly", Priority: "1.0"},
		sitemapURL{Loc: site.Canonical(base, "/leagues"), ChangeFreq: "daily", Priority: "0.8"},
	)
	for _, l := range leagues {
		urls = append(urls, sitemapURL{
			Loc:        site.Canonical(base, "/leagues/"+url.PathEscape(l.Slug)),
			LastMod:    lastMod(l.UpdatedAt),
			ChangeFreq: "daily",
			Priority:   "0.7",
		})
	}
	for _, a := range articles {
		urls = append(urls, sitemapURL{
			Loc:        site.Canonical(base, "/news/"+url.PathEscape(a.Slug)),
			LastMod:    lastMod(a.UpdatedAt),
			ChangeFreq: "hourly",
			Priority:   "0.9",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (a *App) handleSitemap(c echo.Context) error {
	var articles, leagues []content.SitemapDoc
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		articles, err = a.repo.ArticleSitemap(ctx)
		if err != nil {
			return fmt.Errorf("article sitemap: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		leagues, err = a.repo.LeagueSitemap(ctx)
		if err != nil {
			return fmt.Errorf("league sitemap: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", buildSitemap(a.Config.URL, articles, leagues))
}

// handleRobots generates robots.txt from the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s\n", site.Canonical(a.Config.URL, "/sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func writeXML(c echo.Context, contentType string, v any) error {
	out, err := xml.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
