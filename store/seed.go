package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

// Fixtures is the YAML document loaded by the seed command. Rich-text fields
// are written in Markdown.
type Fixtures struct {
	Authors   []AuthorFixture    `yaml:"authors"`
	Leagues   []LeagueFixture    `yaml:"leagues"`
	Teams     []TeamFixture      `yaml:"teams"`
	Articles  []ArticleFixture   `yaml:"articles"`
	Evergreen []EvergreenFixture `yaml:"evergreen"`
}

type ImageFixture struct {
	URL     string `yaml:"url"`
	Alt     string `yaml:"alt"`
	Caption string `yaml:"caption"`
	Credit  string `yaml:"credit"`
}

func (f *ImageFixture) image() *content.SeoImage {
	if f == nil || f.URL == "" {
		return nil
	}
	return &content.SeoImage{URL: f.URL, Alt: f.Alt, Caption: f.Caption, Credit: f.Credit}
}

type SEOFixture struct {
	MetaTitle       string `yaml:"metaTitle"`
	MetaDescription string `yaml:"metaDescription"`
	NoIndex         bool   `yaml:"noindex"`
}

func (f SEOFixture) seo() content.SEO {
	return content.SEO{MetaTitle: f.MetaTitle, MetaDescription: f.MetaDescription, NoIndex: f.NoIndex}
}

type AuthorFixture struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Avatar *ImageFixture `yaml:"avatar"`
}

type LeagueFixture struct {
	ID           string        `yaml:"id"`
	Slug         string        `yaml:"slug"`
	Name         string        `yaml:"name"`
	Logo         *ImageFixture `yaml:"logo"`
	About        string        `yaml:"about"`
	AboutSummary string        `yaml:"aboutSummary"`
	Featured     bool          `yaml:"featured"`
	FeatureRank  *int          `yaml:"featureRank"`
	SEO          SEOFixture    `yaml:"seo"`
	UpdatedAt    time.Time     `yaml:"updatedAt"`
}

type TeamFixture struct {
	ID     string `yaml:"id"`
	Slug   string `yaml:"slug"`
	Name   string `yaml:"name"`
	League string `yaml:"league"`
}

type ArticleFixture struct {
	ID          string        `yaml:"id"`
	Slug        string        `yaml:"slug"`
	Title       string        `yaml:"title"`
	Excerpt     string        `yaml:"excerpt"`
	Hero        *ImageFixture `yaml:"hero"`
	Body        string        `yaml:"body"`
	PublishedAt time.Time     `yaml:"publishedAt"`
	UpdatedAt   time.Time     `yaml:"updatedAt"`
	CreatedAt   time.Time     `yaml:"createdAt"`
	Tags        []string      `yaml:"tags"`
	Sources     []string      `yaml:"sources"`
	Status      string        `yaml:"status"`
	League      string        `yaml:"league"`
	Team        string        `yaml:"team"`
	Author      string        `yaml:"author"`
	Related     []string      `yaml:"related"`
	SEO         SEOFixture    `yaml:"seo"`
}

type EvergreenFixture struct {
	League    string                  `yaml:"league"`
	History   string                  `yaml:"history"`
	Format    string                  `yaml:"format"`
	Teams     []content.EvergreenTeam `yaml:"teams"`
	Stats     []content.Stat          `yaml:"stats"`
	Champions []content.Champion      `yaml:"champions"`
	SEO       SEOFixture              `yaml:"seo"`
}

// LoadFixtures reads and parses a YAML fixtures file. Environment variables
// in the file are expanded first.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// SeedResult counts the documents written by Seed.
type SeedResult struct {
	Authors, Leagues, Teams, Articles, Evergreen int
}

// Seed upserts every fixture document. Documents are keyed by id, so seeding
// the same file twice is idempotent.
func (s *Store) Seed(ctx context.Context, f *Fixtures) (SeedResult, error) {
	var res SeedResult
	for _, a := range f.Authors {
		if err := s.SaveAuthor(ctx, a.ID, content.AuthorRef{Name: a.Name, Avatar: a.Avatar.image()}); err != nil {
			return res, fmt.Errorf("author %q: %w", a.ID, err)
		}
		res.Authors++
	}
	for _, l := range f.Leagues {
		league := content.League{
			ID:           l.ID,
			Slug:         l.Slug,
			Name:         l.Name,
			Logo:         l.Logo.image(),
			About:        portabletext.FromMarkdown(l.About),
			AboutSummary: l.AboutSummary,
			SEO:          l.SEO.seo(),
			Featured:     l.Featured,
			FeatureRank:  l.FeatureRank,
			UpdatedAt:    l.UpdatedAt,
		}
		if err := s.SaveLeague(ctx, league); err != nil {
			return res, fmt.Errorf("league %q: %w", l.ID, err)
		}
		res.Leagues++
	}
	for _, t := range f.Teams {
		if err := s.SaveTeam(ctx, t.ID, t.League, content.TeamRef{Name: t.Name, Slug: t.Slug}); err != nil {
			return res, fmt.Errorf("team %q: %w", t.ID, err)
		}
		res.Teams++
	}
	for _, a := range f.Articles {
		rec := ArticleRecord{
			ID:          a.ID,
			Slug:        a.Slug,
			Title:       a.Title,
			Excerpt:     a.Excerpt,
			Hero:        a.Hero.image(),
			Body:        portabletext.FromMarkdown(a.Body),
			Tags:        a.Tags,
			Sources:     a.Sources,
			Status:      content.Status(a.Status),
			SEO:         a.SEO.seo(),
			LeagueID:    a.League,
			TeamID:      a.Team,
			AuthorID:    a.Author,
			Related:     a.Related,
			PublishedAt: a.PublishedAt,
			UpdatedAt:   a.UpdatedAt,
			CreatedAt:   a.CreatedAt,
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = content.OrderingDate(a.PublishedAt, a.UpdatedAt, time.Now())
		}
		if err := s.SaveArticle(ctx, rec); err != nil {
			return res, fmt.Errorf("article %q: %w", a.ID, err)
		}
		res.Articles++
	}
	for _, e := range f.Evergreen {
		doc := content.LeagueEvergreen{
			History:         portabletext.FromMarkdown(e.History),
			Format:          portabletext.FromMarkdown(e.Format),
			Teams:           e.Teams,
			Stats:           e.Stats,
			Champions:       e.Champions,
			MetaTitle:       e.SEO.MetaTitle,
			MetaDescription: e.SEO.MetaDescription,
		}
		if err := s.SaveEvergreen(ctx, e.League, doc); err != nil {
			return res, fmt.Errorf("evergreen %q: %w", e.League, err)
		}
		res.Evergreen++
	}
	return res, nil
}
