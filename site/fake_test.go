package site

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

// memRepo is an in-memory content.Repository following the same visibility
// and ordering rules as the real backends.
type memRepo struct {
	mu        sync.Mutex
	articles  []content.Article
	leagues   []content.League
	evergreen map[string]*content.LeagueEvergreen
	fail      map[string]error
	calls     map[string]int
}

var _ content.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		evergreen: make(map[string]*content.LeagueEvergreen),
		fail:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (r *memRepo) record(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	return r.fail[method]
}

func (r *memRepo) callCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *memRepo) Article(_ context.Context, slug string) (*content.Article, error) {
	if err := r.record("Article"); err != nil {
		return nil, err
	}
	for i := range r.articles {
		if a := r.articles[i]; a.Slug == slug && a.Status.Public() {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memRepo) League(_ context.Context, slug string) (*content.League, error) {
	if err := r.record("League"); err != nil {
		return nil, err
	}
	for i := range r.leagues {
		if l := r.leagues[i]; l.Slug == slug {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *memRepo) LeagueEvergreen(_ context.Context, leagueSlug string) (*content.LeagueEvergreen, error) {
	if err := r.record("LeagueEvergreen"); err != nil {
		return nil, err
	}
	return r.evergreen[leagueSlug], nil
}

func (r *memRepo) sorted(keep func(content.Article) bool, limit int) []content.ArticleCard {
	var matched []content.Article
	for _, a := range r.articles {
		if a.Status.Public() && keep(a) {
			matched = append(matched, a)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date().After(matched[j].Date())
	})
	var out []content.ArticleCard
	for _, a := range matched {
		if len(out) == limit {
			break
		}
		c := content.ArticleCard{Slug: a.Slug, Title: a.Title, Excerpt: a.Excerpt, Image: a.Hero, PublishedAt: a.Date()}
		if a.League != nil {
			c.League = &content.LeagueRef{Name: a.League.Name, Slug: a.League.Slug}
		}
		out = append(out, c)
	}
	return out
}

func inLeague(a content.Article, leagueID string) bool {
	return a.League != nil && a.League.ID == leagueID
}

func (r *memRepo) LeagueArticles(_ context.Context, leagueID string, limit int) ([]content.ArticleCard, error) {
	if err := r.record("LeagueArticles"); err != nil {
		return nil, err
	}
	return r.sorted(func(a content.Article) bool { return inLeague(a, leagueID) }, limit), nil
}

func (r *memRepo) LatestInLeague(_ context.Context, leagueID, excludeSlug string, limit int) ([]content.ArticleCard, error) {
	if err := r.record("LatestInLeague"); err != nil {
		return nil, err
	}
	return r.sorted(func(a content.Article) bool {
		return inLeague(a, leagueID) && a.Slug != excludeSlug
	}, limit), nil
}

func (r *memRepo) Trending(_ context.Context, limit int) ([]content.ArticleCard, error) {
	if err := r.record("Trending"); err != nil {
		return nil, err
	}
	return r.sorted(func(content.Article) bool { return true }, limit), nil
}

func (r *memRepo) Leagues(_ context.Context) ([]content.League, error) {
	if err := r.record("Leagues"); err != nil {
		return nil, err
	}
	out := append([]content.League(nil), r.leagues...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) ArticleSitemap(_ context.Context) ([]content.SitemapDoc, error) {
	if err := r.record("ArticleSitemap"); err != nil {
		return nil, err
	}
	var docs []content.SitemapDoc
	for _, c := range r.sorted(func(content.Article) bool { return true }, -1) {
		docs = append(docs, content.SitemapDoc{Slug: c.Slug, UpdatedAt: c.PublishedAt})
	}
	return docs, nil
}

func (r *memRepo) LeagueSitemap(_ context.Context) ([]content.SitemapDoc, error) {
	if err := r.record("LeagueSitemap"); err != nil {
		return nil, err
	}
	var docs []content.SitemapDoc
	for _, l := range r.leagues {
		docs = append(docs, content.SitemapDoc{Slug: l.Slug, UpdatedAt: l.UpdatedAt})
	}
	return docs, nil
}

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func rank(n int) *int { return &n }
