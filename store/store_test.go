package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "content.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := setupTestStore(t)
	f, err := LoadFixtures("testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}
	if _, err := s.Seed(context.Background(), f); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	// Running migrations twice must be harmless.
	if err := s.ensureSchema(); err != nil {
		t.Fatalf("second ensureSchema failed: %v", err)
	}
}

func TestSeedCounts(t *testing.T) {
	s := setupTestStore(t)
	f, err := LoadFixtures("testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}
	res, err := s.Seed(context.Background(), f)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	want := SeedResult{Authors: 1, Leagues: 2, Teams: 1, Articles: 5, Evergreen: 1}
	if res != want {
		t.Errorf("Seed = %+v, want %+v", res, want)
	}
	// Seeding again upserts instead of duplicating.
	if _, err := s.Seed(context.Background(), f); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	cards, err := s.Trending(context.Background(), 100)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	if len(cards) != 3 {
		t.Errorf("len(Trending) = %d, want 3", len(cards))
	}
}

func TestArticle(t *testing.T) {
	s := seededStore(t)
	a, err := s.Article(context.Background(), "final-four")
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if a == nil {
		t.Fatal("Article returned nil")
	}
	if a.Title != "Final Four Set After Dramatic Quarterfinals" {
		t.Errorf("Title = %q", a.Title)
	}
	if !a.PublishedAt.Equal(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishedAt = %v", a.PublishedAt)
	}
	if len(a.Tags) != 2 || a.Tags[0] != "playoffs" || a.Tags[1] != "philippine cup" {
		t.Errorf("Tags = %v, want [playoffs philippine cup]", a.Tags)
	}
	if len(a.Sources) != 1 {
		t.Errorf("Sources = %v", a.Sources)
	}
	if a.Hero == nil || a.Hero.Alt != "Players celebrating" {
		t.Errorf("Hero = %+v", a.Hero)
	}
	if a.League == nil || a.League.Slug != "pba" || a.League.ArticleCount != 3 {
		t.Errorf("League = %+v", a.League)
	}
	if a.Team == nil || a.Team.Slug != "ginebra" {
		t.Errorf("Team = %+v", a.Team)
	}
	if a.Author == nil || a.Author.Name != "Sam Okafor" || a.Author.Avatar == nil {
		t.Errorf("Author = %+v", a.Author)
	}
	if len(a.Body) != 3 {
		t.Fatalf("len(Body) = %d, want 3", len(a.Body))
	}
	if _, ok := a.Body[1].(portabletext.ListItem); !ok {
		t.Errorf("Body[1] = %#v, want list item", a.Body[1])
	}
}

func TestArticleRelatedDropsUnresolvedAndHidden(t *testing.T) {
	s := seededStore(t)
	a, err := s.Article(context.Background(), "final-four")
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if len(a.Related) != 1 || a.Related[0].Slug != "quarterfinals" {
		t.Errorf("Related = %+v, want [quarterfinals]", a.Related)
	}
	if a.Related[0].League == nil || a.Related[0].League.Slug != "pba" {
		t.Errorf("Related[0].League = %+v", a.Related[0].League)
	}
}

func TestArticleNotFound(t *testing.T) {
	s := seededStore(t)
	a, err := s.Article(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Article returned error: %v", err)
	}
	if a != nil {
		t.Errorf("Article = %+v, want nil", a)
	}
}

func TestHiddenStatusesExcluded(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	for _, slug := range []string{"draft-piece", "ai-recap"} {
		a, err := s.Article(ctx, slug)
		if err != nil {
			t.Fatalf("Article(%q) failed: %v", slug, err)
		}
		if a != nil {
			t.Errorf("Article(%q) should be hidden", slug)
		}
	}

	preview := s.WithHidden()
	a, err := preview.Article(ctx, "draft-piece")
	if err != nil {
		t.Fatalf("preview Article failed: %v", err)
	}
	if a == nil || a.Status != content.StatusDraft {
		t.Errorf("preview Article = %+v, want draft", a)
	}
}

func TestArticleSlugIsBound(t *testing.T) {
	s := seededStore(t)
	a, err := s.Article(context.Background(), "x' OR '1'='1")
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if a != nil {
		t.Errorf("injection slug matched %q", a.Slug)
	}
}

func TestFirstMatchInStoreOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"first", "second"} {
		if err := s.SaveArticle(ctx, ArticleRecord{ID: id, Slug: "dup", Title: id}); err != nil {
			t.Fatalf("SaveArticle failed: %v", err)
		}
	}
	a, err := s.Article(ctx, "dup")
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if a.ID != "first" {
		t.Errorf("ID = %q, want first", a.ID)
	}
}

func TestTrendingOrder(t *testing.T) {
	s := seededStore(t)
	cards, err := s.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	want := []string{"final-four", "quarterfinals", "season-opener"}
	if len(cards) != len(want) {
		t.Fatalf("len(cards) = %d, want %d", len(cards), len(want))
	}
	for i, slug := range want {
		if cards[i].Slug != slug {
			t.Errorf("cards[%d].Slug = %q, want %q", i, cards[i].Slug, slug)
		}
	}
	if !cards[2].PublishedAt.Equal(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("fallback date = %v, want updatedAt", cards[2].PublishedAt)
	}
}

func TestLeagueArticlesAndLatest(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	cards, err := s.LeagueArticles(ctx, "league-pba", 2)
	if err != nil {
		t.Fatalf("LeagueArticles failed: %v", err)
	}
	if len(cards) != 2 || cards[0].Slug != "final-four" {
		t.Errorf("LeagueArticles = %+v", cards)
	}

	latest, err := s.LatestInLeague(ctx, "league-pba", "final-four", 5)
	if err != nil {
		t.Fatalf("LatestInLeague failed: %v", err)
	}
	if len(latest) != 2 || latest[0].Slug != "quarterfinals" || latest[1].Slug != "season-opener" {
		t.Errorf("LatestInLeague = %+v", latest)
	}
}

func TestLeague(t *testing.T) {
	s := seededStore(t)
	l, err := s.League(context.Background(), "pba")
	if err != nil {
		t.Fatalf("League failed: %v", err)
	}
	if l == nil {
		t.Fatal("League returned nil")
	}
	if l.FeatureRank == nil || *l.FeatureRank != 1 {
		t.Errorf("FeatureRank = %v, want 1", l.FeatureRank)
	}
	if !l.Featured || l.Logo == nil || len(l.About) != 2 {
		t.Errorf("League = %+v", l)
	}
	if l.ArticleCount != 3 {
		t.Errorf("ArticleCount = %d, want 3", l.ArticleCount)
	}

	nbl, err := s.League(context.Background(), "nbl")
	if err != nil {
		t.Fatalf("League failed: %v", err)
	}
	if !nbl.SEO.NoIndex || nbl.FeatureRank != nil || nbl.ArticleCount != 0 {
		t.Errorf("nbl = %+v", nbl)
	}

	missing, err := s.League(context.Background(), "nope")
	if err != nil || missing != nil {
		t.Errorf("League(nope) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestLeaguesSortedByName(t *testing.T) {
	s := seededStore(t)
	leagues, err := s.Leagues(context.Background())
	if err != nil {
		t.Fatalf("Leagues failed: %v", err)
	}
	if len(leagues) != 2 || leagues[0].Slug != "nbl" || leagues[1].Slug != "pba" {
		t.Errorf("Leagues = %+v", leagues)
	}
}

func TestLeagueEvergreen(t *testing.T) {
	s := seededStore(t)
	e, err := s.LeagueEvergreen(context.Background(), "pba")
	if err != nil {
		t.Fatalf("LeagueEvergreen failed: %v", err)
	}
	if e == nil {
		t.Fatal("LeagueEvergreen returned nil")
	}
	if e.League == nil || e.League.Name != "Philippine Basketball Association" {
		t.Errorf("League = %+v", e.League)
	}
	if e.MetaTitle != "About the PBA" {
		t.Errorf("MetaTitle = %q", e.MetaTitle)
	}
	if len(e.Format) != 2 || len(e.History) != 1 {
		t.Errorf("Format = %d blocks, History = %d blocks", len(e.Format), len(e.History))
	}
	if len(e.Champions) != 1 || e.Champions[0].RunnerUp != "Barangay Ginebra" {
		t.Errorf("Champions = %+v", e.Champions)
	}
	if len(e.Teams) != 1 || e.Teams[0].Founded != "1979" {
		t.Errorf("Teams = %+v", e.Teams)
	}

	none, err := s.LeagueEvergreen(context.Background(), "nbl")
	if err != nil || none != nil {
		t.Errorf("LeagueEvergreen(nbl) = %+v, %v; want nil, nil", none, err)
	}
}

func TestSitemaps(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	articles, err := s.ArticleSitemap(ctx)
	if err != nil {
		t.Fatalf("ArticleSitemap failed: %v", err)
	}
	if len(articles) != 3 {
		t.Errorf("len(ArticleSitemap) = %d, want 3", len(articles))
	}
	leagues, err := s.LeagueSitemap(ctx)
	if err != nil {
		t.Fatalf("LeagueSitemap failed: %v", err)
	}
	if len(leagues) != 2 {
		t.Errorf("len(LeagueSitemap) = %d, want 2", len(leagues))
	}
}

func TestDeleteArticle(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	if err := s.DeleteArticle(ctx, "article-quarterfinals"); err != nil {
		t.Fatalf("DeleteArticle failed: %v", err)
	}
	a, err := s.Article(ctx, "final-four")
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if len(a.Related) != 0 {
		t.Errorf("Related = %+v, want empty after delete", a.Related)
	}
}

func TestMalformedColumnsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStore(filepath.Join(t.TempDir(), "content.db"),
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	f, err := LoadFixtures("testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}
	if _, err := s.Seed(context.Background(), f); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx, `UPDATE articles SET body = '{not json' WHERE slug = 'final-four'`); err != nil {
		t.Fatalf("corrupt body: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE league_evergreen SET teams = '[{' `); err != nil {
		t.Fatalf("corrupt teams: %v", err)
	}

	a, err := s.Article(ctx, "final-four")
	if err != nil || a == nil {
		t.Fatalf("Article = %v, %v; want the article despite a bad body", a, err)
	}
	if len(a.Body) != 0 {
		t.Errorf("Body = %d blocks, want none", len(a.Body))
	}
	e, err := s.LeagueEvergreen(ctx, "pba")
	if err != nil || e == nil {
		t.Fatalf("LeagueEvergreen = %v, %v", e, err)
	}
	if len(e.Teams) != 0 || len(e.Champions) != 1 {
		t.Errorf("Teams = %+v, Champions = %+v", e.Teams, e.Champions)
	}

	logs := buf.String()
	for _, want := range []string{`"column":"body"`, `"id":"article-final-four"`, `"column":"teams"`, `"level":"debug"`} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %s:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, `"column":"champions"`) {
		t.Errorf("well-formed column logged:\n%s", logs)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{",go,web,", []string{"go", "web"}},
		{",single,", []string{"single"}},
		{",,", nil},
		{"", nil},
		{",  spaced  , tags ,", []string{"spaced", "tags"}},
	}
	for _, tt := range tests {
		got := ParseTags(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestFormatTags(t *testing.T) {
	if got := FormatTags([]string{" Go ", "", "WEB"}); got != ",go,web," {
		t.Errorf("FormatTags = %q, want %q", got, ",go,web,")
	}
	if got := FormatTags(nil); got != ",," {
		t.Errorf("FormatTags(nil) = %q, want %q", got, ",,")
	}
}
