// Package content defines the documents the site reads from its content store
// and the repository interface every backend implements.
package content

import (
	"context"
	"time"

	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

// Status is the editorial workflow state of an article.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusAIGenerated Status = "ai_generated"
	StatusEdited      Status = "edited"
	StatusPublished   Status = "published"
)

// HiddenStatuses are never shown on public pages. Articles without a status
// are public.
var HiddenStatuses = []Status{StatusDraft, StatusAIGenerated}

// Public reports whether an article in status s may appear on public pages.
func (s Status) Public() bool {
	for _, h := range HiddenStatuses {
		if s == h {
			return false
		}
	}
	return true
}

// SeoImage is an image asset with its accessibility and attribution text.
type SeoImage struct {
	URL     string
	Alt     string
	Caption string
	Credit  string
}

// SEO holds editor overrides for search and social metadata.
type SEO struct {
	MetaTitle       string
	MetaDescription string
	NoIndex         bool
}

type LeagueRef struct {
	Name string
	Slug string
}

type TeamRef struct {
	Name string
	Slug string
}

type AuthorRef struct {
	Name   string
	Avatar *SeoImage
}

// ArticleCard is the projection used by article lists and related links.
type ArticleCard struct {
	Slug        string
	Title       string
	Excerpt     string
	Image       *SeoImage
	League      *LeagueRef
	PublishedAt time.Time
}

// Article is a full news article. League, Team and Author are nil when the
// reference is missing or does not resolve.
type Article struct {
	ID          string
	Slug        string
	Title       string
	Excerpt     string
	Hero        *SeoImage
	Body        portabletext.Blocks
	PublishedAt time.Time
	UpdatedAt   time.Time
	CreatedAt   time.Time
	Tags        []string
	Sources     []string
	Related     []ArticleCard
	Status      Status
	SEO         SEO
	League      *League
	Team        *TeamRef
	Author      *AuthorRef
}

// Date is the ordering date: published, else updated, else created.
func (a *Article) Date() time.Time {
	return OrderingDate(a.PublishedAt, a.UpdatedAt, a.CreatedAt)
}

// OrderingDate returns the first non-zero time.
func OrderingDate(times ...time.Time) time.Time {
	for _, t := range times {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// League is a competition with its own article stream.
type League struct {
	ID           string
	Slug         string
	Name         string
	Logo         *SeoImage
	About        portabletext.Blocks
	AboutSummary string
	SEO          SEO
	Featured     bool
	FeatureRank  *int
	ArticleCount int
	UpdatedAt    time.Time
}

// LeagueEvergreen is the long-lived reference page attached to one league.
type LeagueEvergreen struct {
	League          *League
	History         portabletext.Blocks
	Format          portabletext.Blocks
	Teams           []EvergreenTeam
	Stats           []Stat
	Champions       []Champion
	MetaTitle       string
	MetaDescription string
}

type EvergreenTeam struct {
	Name        string `json:"name" yaml:"name"`
	Founded     string `json:"founded,omitempty" yaml:"founded"`
	Location    string `json:"location,omitempty" yaml:"location"`
	Stadium     string `json:"stadium,omitempty" yaml:"stadium"`
	Description string `json:"description,omitempty" yaml:"description"`
}

type Stat struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

type Champion struct {
	Year     string `json:"year" yaml:"year"`
	Team     string `json:"team" yaml:"team"`
	RunnerUp string `json:"runnerUp,omitempty" yaml:"runnerUp"`
	Notes    string `json:"notes,omitempty" yaml:"notes"`
}

// SitemapDoc is a slug with its last modification time.
type SitemapDoc struct {
	Slug      string
	UpdatedAt time.Time
}

// Repository reads content documents. Lookups by slug return a nil document
// and a nil error when nothing matches. List methods order articles by
// OrderingDate descending.
type Repository interface {
	Article(ctx context.Context, slug string) (*Article, error)
	League(ctx context.Context, slug string) (*League, error)
	LeagueEvergreen(ctx context.Context, leagueSlug string) (*LeagueEvergreen, error)
	LeagueArticles(ctx context.Context, leagueID string, limit int) ([]ArticleCard, error)
	LatestInLeague(ctx context.Context, leagueID, excludeSlug string, limit int) ([]ArticleCard, error)
	Trending(ctx context.Context, limit int) ([]ArticleCard, error)
	Leagues(ctx context.Context) ([]League, error)
	ArticleSitemap(ctx context.Context) ([]SitemapDoc, error)
	LeagueSitemap(ctx context.Context) ([]SitemapDoc, error)
}
