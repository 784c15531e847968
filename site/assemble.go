package site

import (
	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

const (
	fallbackArticleTitle       = "Article"
	fallbackArticleDescription = "Sports news and analysis from leagues that deserve more coverage."
	fallbackLeagueTitle        = "League"
	fallbackLeagueDescription  = "The latest news and coverage for this league."
	fallbackAboutTitle         = "League Information"
	fallbackAboutDescription   = "League information and history."
)

func cards(in []content.ArticleCard) []Card {
	out := make([]Card, 0, len(in))
	for _, c := range in {
		if c.Slug == "" {
			continue
		}
		card := Card{
			Slug:    c.Slug,
			Title:   c.Title,
			Excerpt: c.Excerpt,
			Image:   displayImage(c.Image, c.Title),
			Date:    c.PublishedAt,
		}
		if c.League != nil && c.League.Slug != "" {
			card.League = &LeagueLink{Name: c.League.Name, Slug: c.League.Slug}
		}
		out = append(out, card)
	}
	return out
}

func leagueCards(in []content.League) []LeagueCard {
	out := make([]LeagueCard, 0, len(in))
	for _, l := range in {
		if l.Slug == "" {
			continue
		}
		out = append(out, LeagueCard{
			Name:         l.Name,
			Slug:         l.Slug,
			Logo:         displayImage(l.Logo, l.Name+" logo"),
			ArticleCount: l.ArticleCount,
		})
	}
	return out
}

// assembleArticle builds the article view model. Missing relations are left
// nil and the page renders without them.
func assembleArticle(a *content.Article, related []content.ArticleCard) *ArticlePage {
	title := firstNonBlank(a.Title, fallbackArticleTitle)
	p := &ArticlePage{
		Slug:        a.Slug,
		Title:       title,
		Excerpt:     a.Excerpt,
		Hero:        displayImage(a.Hero, title),
		Body:        a.Body,
		PublishedAt: a.Date(),
		UpdatedAt:   a.UpdatedAt,
		Tags:        a.Tags,
		Sources:     a.Sources,
		Related:     cards(related),
	}
	if a.Author != nil && a.Author.Name != "" {
		p.Author = &Author{Name: a.Author.Name, Avatar: displayImage(a.Author.Avatar, a.Author.Name)}
	}
	if a.League != nil && a.League.Slug != "" {
		p.League = &LeagueLink{Name: a.League.Name, Slug: a.League.Slug}
	}
	if a.Team != nil && a.Team.Slug != "" {
		p.Team = &TeamLink{Name: a.Team.Name, Slug: a.Team.Slug}
	}

	p.Crumbs = []Crumb{{Name: "Home", Href: "/"}}
	if p.League != nil {
		p.Crumbs = append(p.Crumbs, Crumb{Name: p.League.Name, Href: "/leagues/" + p.League.Slug})
	}
	p.Crumbs = append(p.Crumbs, Crumb{Name: title})
	return p
}

func assembleLeague(l *content.League, articles []content.ArticleCard) *LeaguePage {
	name := firstNonBlank(l.Name, fallbackLeagueTitle)
	return &LeaguePage{
		Frame: Frame{Crumbs: []Crumb{
			{Name: "Home", Href: "/"},
			{Name: "Leagues", Href: "/leagues"},
			{Name: name},
		}},
		Name:         name,
		Slug:         l.Slug,
		Logo:         displayImage(l.Logo, name+" logo"),
		AboutSummary: l.AboutSummary,
		About:        l.About,
		ArticleCount: l.ArticleCount,
		Articles:     cards(articles),
	}
}

// assembleAbout builds the evergreen page. When e is nil the page is marked
// Missing and carries only the league identity.
func assembleAbout(slug string, e *content.LeagueEvergreen, l *content.League) *AboutPage {
	if e != nil && e.League != nil {
		l = e.League
	}
	p := &AboutPage{LeagueSlug: slug}
	if l != nil {
		p.LeagueName = l.Name
		if l.Slug != "" {
			p.LeagueSlug = l.Slug
		}
		p.Logo = displayImage(l.Logo, l.Name+" logo")
	}
	name := firstNonBlank(p.LeagueName, p.LeagueSlug)
	p.Crumbs = []Crumb{
		{Name: "Home", Href: "/"},
		{Name: "Leagues", Href: "/leagues"},
		{Name: name, Href: "/leagues/" + p.LeagueSlug},
		{Name: "About"},
	}
	if e == nil {
		p.Missing = true
		return p
	}
	p.History = e.History
	p.Format = e.Format
	p.Stats = e.Stats
	p.Champions = e.Champions
	for _, t := range e.Teams {
		if t.Name != "" {
			p.Teams = append(p.Teams, t)
		}
	}
	for _, c := range e.Champions {
		p.HasRunnerUp = p.HasRunnerUp || c.RunnerUp != ""
		p.HasNotes = p.HasNotes || c.Notes != ""
	}
	return p
}

// aboutSEO derives the about page title and description: the evergreen
// overrides, then the league name, then generic text.
func aboutSEO(e *content.LeagueEvergreen, l *content.League) (title, description string) {
	if e != nil && e.League != nil {
		l = e.League
	}
	var metaTitle, metaDescription string
	if e != nil {
		metaTitle, metaDescription = e.MetaTitle, e.MetaDescription
	}
	var named, summary string
	if l != nil && l.Name != "" {
		named = "About " + l.Name
		summary = "Learn about " + l.Name + " - history, teams, format, and champions."
	}
	return Title(metaTitle, named, fallbackAboutTitle), Description(metaDescription, summary, fallbackAboutDescription)
}
