package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

// Repository implements content.Repository with GROQ queries.
type Repository struct {
	q             Querier
	includeHidden bool
}

var _ content.Repository = (*Repository)(nil)

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// IncludeHidden makes draft and AI-generated articles visible. Used for
// editor preview.
func IncludeHidden() RepositoryOption {
	return func(r *Repository) { r.includeHidden = true }
}

// NewRepository creates a Repository reading through q.
func NewRepository(q Querier, opts ...RepositoryOption) *Repository {
	r := &Repository{q: q}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) hiddenStatuses() []string {
	if r.includeHidden {
		return []string{}
	}
	out := make([]string, len(content.HiddenStatuses))
	for i, s := range content.HiddenStatuses {
		out[i] = string(s)
	}
	return out
}

func (r *Repository) fetch(ctx context.Context, query string, params Params, v any) error {
	raw, err := r.q.Fetch(ctx, query, params)
	if err != nil {
		return err
	}
	return decodeLenient(raw, v)
}

// decodeLenient decodes data into v, treating fields of the wrong JSON type
// as absent.
func decodeLenient(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// Article resolves a public article by slug.
func (r *Repository) Article(ctx context.Context, slug string) (*content.Article, error) {
	var w *wireArticle
	params := Params{"slug": slug, "hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryArticleBySlug, params, &w); err != nil {
		return nil, fmt.Errorf("article %q: %w", slug, err)
	}
	if w == nil || w.Slug == "" {
		return nil, nil
	}
	return w.toArticle(r.includeHidden), nil
}

// League resolves a league by slug, including its public article count.
func (r *Repository) League(ctx context.Context, slug string) (*content.League, error) {
	var w *wireLeague
	params := Params{"slug": slug, "hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryLeagueBySlug, params, &w); err != nil {
		return nil, fmt.Errorf("league %q: %w", slug, err)
	}
	if w == nil || w.Slug == "" {
		return nil, nil
	}
	return w.toLeague(), nil
}

// LeagueEvergreen returns the evergreen document attached to the league with
// the given slug.
func (r *Repository) LeagueEvergreen(ctx context.Context, leagueSlug string) (*content.LeagueEvergreen, error) {
	var w *wireEvergreen
	if err := r.fetch(ctx, queryLeagueEvergreen, Params{"slug": leagueSlug}, &w); err != nil {
		return nil, fmt.Errorf("league evergreen %q: %w", leagueSlug, err)
	}
	if w == nil {
		return nil, nil
	}
	return w.toEvergreen(), nil
}

// LeagueArticles lists the newest public articles in a league.
func (r *Repository) LeagueArticles(ctx context.Context, leagueID string, limit int) ([]content.ArticleCard, error) {
	var ws []*wireCard
	params := Params{"leagueId": leagueID, "limit": limit, "hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryLeagueArticles, params, &ws); err != nil {
		return nil, fmt.Errorf("league articles: %w", err)
	}
	return toCards(ws, true), nil
}

// LatestInLeague lists the newest public articles in a league other than
// excludeSlug.
func (r *Repository) LatestInLeague(ctx context.Context, leagueID, excludeSlug string, limit int) ([]content.ArticleCard, error) {
	var ws []*wireCard
	params := Params{"leagueId": leagueID, "exclude": excludeSlug, "limit": limit, "hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryLatestInLeague, params, &ws); err != nil {
		return nil, fmt.Errorf("latest in league: %w", err)
	}
	return toCards(ws, true), nil
}

// Trending lists the newest public articles across all leagues.
func (r *Repository) Trending(ctx context.Context, limit int) ([]content.ArticleCard, error) {
	var ws []*wireCard
	params := Params{"limit": limit, "hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryTrending, params, &ws); err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return toCards(ws, true), nil
}

// Leagues lists every league by name with its public article count.
func (r *Repository) Leagues(ctx context.Context) ([]content.League, error) {
	var ws []*wireLeague
	params := Params{"hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryLeagues, params, &ws); err != nil {
		return nil, fmt.Errorf("leagues: %w", err)
	}
	out := make([]content.League, 0, len(ws))
	for _, w := range ws {
		if w == nil || w.Slug == "" {
			continue
		}
		out = append(out, *w.toLeague())
	}
	return out, nil
}

// ArticleSitemap lists every public article slug.
func (r *Repository) ArticleSitemap(ctx context.Context) ([]content.SitemapDoc, error) {
	var ws []*wireSitemapDoc
	params := Params{"hiddenStatuses": r.hiddenStatuses()}
	if err := r.fetch(ctx, queryArticleSitemap, params, &ws); err != nil {
		return nil, fmt.Errorf("article sitemap: %w", err)
	}
	return toSitemapDocs(ws), nil
}

// LeagueSitemap lists every league slug.
func (r *Repository) LeagueSitemap(ctx context.Context) ([]content.SitemapDoc, error) {
	var ws []*wireSitemapDoc
	if err := r.fetch(ctx, queryLeagueSitemap, nil, &ws); err != nil {
		return nil, fmt.Errorf("league sitemap: %w", err)
	}
	return toSitemapDocs(ws), nil
}

type wireImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	Credit  string `json:"credit"`
}

func (w *wireImage) toImage() *content.SeoImage {
	if w == nil || w.URL == "" {
		return nil
	}
	return &content.SeoImage{URL: w.URL, Alt: w.Alt, Caption: w.Caption, Credit: w.Credit}
}

type wireRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type wireCard struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Status      string     `json:"status"`
	PublishedAt string     `json:"publishedAt"`
	UpdatedAt   string     `json:"_updatedAt"`
	CreatedAt   string     `json:"_createdAt"`
	Image       *wireImage `json:"image"`
	League      *wireRef   `json:"league"`
}

func (w *wireCard) toCard() content.ArticleCard {
	card := content.ArticleCard{
		Slug:        w.Slug,
		Title:       w.Title,
		Excerpt:     w.Excerpt,
		Image:       w.Image.toImage(),
		PublishedAt: content.OrderingDate(parseTime(w.PublishedAt), parseTime(w.UpdatedAt), parseTime(w.CreatedAt)),
	}
	if w.League != nil && w.League.Slug != "" {
		card.League = &content.LeagueRef{Name: w.League.Name, Slug: w.League.Slug}
	}
	return card
}

// toCards drops unresolved references and, when publicOnly is set, cards
// whose status is hidden.
func toCards(ws []*wireCard, publicOnly bool) []content.ArticleCard {
	out := make([]content.ArticleCard, 0, len(ws))
	for _, w := range ws {
		if w == nil || w.Slug == "" {
			continue
		}
		if publicOnly && !content.Status(w.Status).Public() {
			continue
		}
		out = append(out, w.toCard())
	}
	return out
}

type wireAuthor struct {
	Name   string     `json:"name"`
	Avatar *wireImage `json:"avatar"`
}

type wireArticle struct {
	ID              string              `json:"_id"`
	Title           string              `json:"title"`
	Slug            string              `json:"slug"`
	Excerpt         string              `json:"excerpt"`
	Status          string              `json:"status"`
	Tags            []string            `json:"tags"`
	Sources         []string            `json:"sources"`
	PublishedAt     string              `json:"publishedAt"`
	UpdatedAt       string              `json:"_updatedAt"`
	CreatedAt       string              `json:"_createdAt"`
	MetaTitle       string              `json:"metaTitle"`
	MetaDescription string              `json:"metaDescription"`
	NoIndex         bool                `json:"noindex"`
	Hero            *wireImage          `json:"hero"`
	Body            portabletext.Blocks `json:"body"`
	Author          *wireAuthor         `json:"author"`
	League          *wireLeague         `json:"league"`
	Team            *wireRef            `json:"team"`
	Related         []*wireCard         `json:"related"`
}

func (w *wireArticle) toArticle(includeHidden bool) *content.Article {
	a := &content.Article{
		ID:          w.ID,
		Slug:        w.Slug,
		Title:       w.Title,
		Excerpt:     w.Excerpt,
		Hero:        w.Hero.toImage(),
		Body:        w.Body,
		PublishedAt: parseTime(w.PublishedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
		CreatedAt:   parseTime(w.CreatedAt),
		Tags:        nonEmpty(w.Tags),
		Sources:     nonEmpty(w.Sources),
		Related:     toCards(w.Related, !includeHidden),
		Status:      content.Status(w.Status),
		SEO: content.SEO{
			MetaTitle:       w.MetaTitle,
			MetaDescription: w.MetaDescription,
			NoIndex:         w.NoIndex,
		},
	}
	if w.League != nil && w.League.Slug != "" {
		a.League = w.League.toLeague()
	}
	if w.Team != nil && w.Team.Slug != "" {
		a.Team = &content.TeamRef{Name: w.Team.Name, Slug: w.Team.Slug}
	}
	if w.Author != nil && w.Author.Name != "" {
		a.Author = &content.AuthorRef{Name: w.Author.Name, Avatar: w.Author.Avatar.toImage()}
	}
	return a
}

type wireLeague struct {
	ID              string              `json:"_id"`
	Name            string              `json:"name"`
	Slug            string              `json:"slug"`
	AboutSummary    string              `json:"aboutSummary"`
	About           portabletext.Blocks `json:"about"`
	Featured        bool                `json:"isFeatured"`
	FeatureRank     *float64            `json:"featureRank"`
	MetaTitle       string              `json:"metaTitle"`
	MetaDescription string              `json:"metaDescription"`
	NoIndex         bool                `json:"noindex"`
	UpdatedAt       string              `json:"_updatedAt"`
	Logo            *wireImage          `json:"logo"`
	ArticleCount    int                 `json:"articleCount"`
}

func (w *wireLeague) toLeague() *content.League {
	l := &content.League{
		ID:           w.ID,
		Slug:         w.Slug,
		Name:         w.Name,
		Logo:         w.Logo.toImage(),
		About:        w.About,
		AboutSummary: w.AboutSummary,
		SEO: content.SEO{
			MetaTitle:       w.MetaTitle,
			MetaDescription: w.MetaDescription,
			NoIndex:         w.NoIndex,
		},
		Featured:     w.Featured,
		ArticleCount: w.ArticleCount,
		UpdatedAt:    parseTime(w.UpdatedAt),
	}
	if w.FeatureRank != nil && !math.IsNaN(*w.FeatureRank) {
		rank := featureRank(*w.FeatureRank)
		l.FeatureRank = &rank
	}
	return l
}

// featureRank rounds a CMS rank and clamps it to the int32 range.
func featureRank(f float64) int {
	f = math.Round(f)
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

type wireEvergreen struct {
	League    *wireLeague         `json:"league"`
	History   portabletext.Blocks `json:"history"`
	Format    portabletext.Blocks `json:"format"`
	Teams     []*struct {
		Name        string `json:"name"`
		Founded     string `json:"founded"`
		Location    string `json:"location"`
		Stadium     string `json:"stadium"`
		Description string `json:"description"`
	} `json:"teams"`
	Stats []*struct {
		Label string `json:"label"`
		Value string `json:"value"`
	} `json:"stats"`
	Champions []*struct {
		Year     string `json:"year"`
		Team     string `json:"team"`
		RunnerUp string `json:"runnerUp"`
		Notes    string `json:"notes"`
	} `json:"champions"`
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}

func (w *wireEvergreen) toEvergreen() *content.LeagueEvergreen {
	e := &content.LeagueEvergreen{
		History:         w.History,
		Format:          w.Format,
		MetaTitle:       w.MetaTitle,
		MetaDescription: w.MetaDescription,
	}
	if w.League != nil && w.League.Slug != "" {
		e.League = w.League.toLeague()
	}
	for _, t := range w.Teams {
		if t == nil || t.Name == "" {
			continue
		}
		e.Teams = append(e.Teams, content.EvergreenTeam{
			Name: t.Name, Founded: t.Founded, Location: t.Location, Stadium: t.Stadium, Description: t.Description,
		})
	}
	for _, s := range w.Stats {
		if s == nil || s.Label == "" {
			continue
		}
		e.Stats = append(e.Stats, content.Stat{Label: s.Label, Value: s.Value})
	}
	for _, c := range w.Champions {
		if c == nil || c.Team == "" {
			continue
		}
		e.Champions = append(e.Champions, content.Champion{Year: c.Year, Team: c.Team, RunnerUp: c.RunnerUp, Notes: c.Notes})
	}
	return e
}

type wireSitemapDoc struct {
	Slug      string `json:"slug"`
	UpdatedAt string `json:"updatedAt"`
}

func toSitemapDocs(ws []*wireSitemapDoc) []content.SitemapDoc {
	out := make([]content.SitemapDoc, 0, len(ws))
	for _, w := range ws {
		if w == nil || w.Slug == "" {
			continue
		}
		out = append(out, content.SitemapDoc{Slug: w.Slug, UpdatedAt: parseTime(w.UpdatedAt)})
	}
	return out
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05Z0700", "2006-01-02"}

// parseTime accepts RFC 3339 timestamps and plain dates. Anything else is
// the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
