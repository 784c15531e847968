package underserved

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/site"
)

const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func buildFeed(cfg SiteConfig, cards []content.ArticleCard) rssXML {
	items := make([]rssItem, 0, len(cards))
	for _, p := range cards {
		link := site.Canonical(cfg.URL, "/news/"+url.PathEscape(p.Slug))
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			GUID:        link,
		}
		if !p.PublishedAt.IsZero() {
			item.PubDate = p.PublishedAt.UTC().Format(time.RFC1123Z)
		}
		if p.League != nil {
			item.Category = p.League.Name
		}
		items = append(items, item)
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        site.Canonical(cfg.URL, "/"),
			Description: cfg.Description,
			Items:       items,
		},
	}
}

func (a *App) handleFeed(c echo.Context) error {
	cards, err := a.repo.Trending(c.Request().Context(), feedSize)
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", buildFeed(a.Config, cards))
}
