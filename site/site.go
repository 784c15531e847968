// Package site assembles page view models and their SEO metadata from content
// documents. Every page method is an independent read-only computation; the
// service holds no per-request state.
package site

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

// ErrNotFound is returned by page methods when the slug resolves to nothing.
var ErrNotFound = errors.New("site: not found")

const (
	trendingLimit      = 6
	leagueArticleLimit = 20
	relatedLimit       = 5
	compactNavSize     = 3
	expandedNavSize    = 5
)

// Config is the site-wide identity used in metadata.
type Config struct {
	Name        string
	URL         string
	Description string
}

// Service builds pages from a content repository.
type Service struct {
	repo    content.Repository
	cfg     Config
	log     zerolog.Logger
	preview bool
}

// Option configures a Service.
type Option func(*Service)

// Preview marks every page as an editor preview. Preview pages are never
// indexed.
func Preview() Option {
	return func(s *Service) { s.preview = true }
}

// NewService returns a Service reading from repo.
func NewService(repo content.Repository, cfg Config, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, cfg: cfg, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the site configuration.
func (s *Service) Config() Config { return s.cfg }

// Image is a display-ready image. Alt is never empty when a title was
// available to fall back on.
type Image struct {
	URL     string
	Alt     string
	Caption string
	Credit  string
}

type LeagueLink struct {
	Name string
	Slug string
}

type TeamLink struct {
	Name string
	Slug string
}

type Author struct {
	Name   string
	Avatar *Image
}

// Card is an article teaser in a list.
type Card struct {
	Slug    string
	Title   string
	Excerpt string
	Image   *Image
	League  *LeagueLink
	Date    time.Time
}

// Crumb is one breadcrumb entry. The last crumb has no Href.
type Crumb struct {
	Name string
	Href string
}

// Frame is the page chrome shared by every page.
type Frame struct {
	Meta    Metadata
	Nav     Navigation
	Crumbs  []Crumb
	Preview bool
}

type HomePage struct {
	Frame
	Articles []Card
}

type LeagueCard struct {
	Name         string
	Slug         string
	Logo         *Image
	ArticleCount int
}

type LeaguesPage struct {
	Frame
	Leagues []LeagueCard
}

type LeaguePage struct {
	Frame
	Name         string
	Slug         string
	Logo         *Image
	AboutSummary string
	About        portabletext.Blocks
	ArticleCount int
	Articles     []Card
}

// AboutPage is the evergreen page of a league. Missing is set when the league
// exists but has no evergreen document yet.
type AboutPage struct {
	Frame
	Missing     bool
	LeagueName  string
	LeagueSlug  string
	Logo        *Image
	History     portabletext.Blocks
	Format      portabletext.Blocks
	Teams       []content.EvergreenTeam
	Stats       []content.Stat
	Champions   []content.Champion
	HasRunnerUp bool
	HasNotes    bool
}

type ArticlePage struct {
	Frame
	Slug        string
	Title       string
	Excerpt     string
	Hero        *Image
	Body        portabletext.Blocks
	Author      *Author
	League      *LeagueLink
	Team        *TeamLink
	PublishedAt time.Time
	UpdatedAt   time.Time
	Tags        []string
	Sources     []string
	Related     []Card
}
