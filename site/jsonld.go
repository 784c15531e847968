package site

import (
	"encoding/json"
	"strings"
	"time"
)

func marshalJSONLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJSONLD returns a Schema.org WebSite block for the home page.
func WebsiteJSONLD(cfg Config) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      Canonical(cfg.URL, "/"),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalJSONLD(data)
}

// NewsArticleJSONLD returns a Schema.org NewsArticle block for an article page.
func NewsArticleJSONLD(cfg Config, p *ArticlePage) string {
	pageURL := Canonical(cfg.URL, "/news/"+p.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "NewsArticle",
		"headline":    p.Title,
		"description": p.Meta.Description,
		"url":         pageURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   pageURL,
		},
	}
	if !p.PublishedAt.IsZero() {
		data["datePublished"] = p.PublishedAt.Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		data["dateModified"] = p.UpdatedAt.Format(time.RFC3339)
	}
	if p.Hero != nil {
		data["image"] = []string{OGImage(absoluteURL(cfg.URL, p.Hero.URL))}
	}
	if p.Author != nil {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  p.Author.Name,
		}
	}
	if p.League != nil {
		data["articleSection"] = p.League.Name
	}
	if len(p.Tags) > 0 {
		data["keywords"] = strings.Join(p.Tags, ", ")
	}
	return marshalJSONLD(data)
}

// BreadcrumbJSONLD returns a Schema.org BreadcrumbList block. Crumbs without
// an Href are listed without an item URL.
func BreadcrumbJSONLD(cfg Config, crumbs []Crumb) string {
	items := make([]map[string]interface{}, 0, len(crumbs))
	for i, c := range crumbs {
		item := map[string]interface{}{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
		}
		if c.Href != "" {
			item["item"] = Canonical(cfg.URL, c.Href)
		}
		items = append(items, item)
	}
	return marshalJSONLD(map[string]interface{}{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	})
}
