package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

// ArticleRecord is an article row as written by the seed command. League, Team
// and Author hold document ids; Related holds article ids in editor order.
type ArticleRecord struct {
	ID       string
	Slug     string
	Title    string
	Excerpt  string
	Hero     *content.SeoImage
	Body     portabletext.Blocks
	Tags     []string
	Sources  []string
	Status   content.Status
	SEO      content.SEO
	LeagueID string
	TeamID   string
	AuthorID string
	Related  []string

	PublishedAt time.Time
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

// SaveArticle upserts an article and replaces its related list.
func (s *Store) SaveArticle(ctx context.Context, a ArticleRecord) error {
	body, err := json.Marshal(a.Body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	hero := a.Hero
	if hero == nil {
		hero = &content.SeoImage{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO articles (id, slug, title, excerpt, hero_url, hero_alt, hero_caption, hero_credit, body,
		published_at, updated_at, created_at, tags, sources, status, meta_title, meta_description, noindex, league_id, team_id, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Slug, a.Title, a.Excerpt, hero.URL, hero.Alt, hero.Caption, hero.Credit, string(body),
		formatTime(a.PublishedAt), formatTime(a.UpdatedAt), formatTime(a.CreatedAt), FormatTags(a.Tags), strings.Join(a.Sources, "\n"), string(a.Status),
		a.SEO.MetaTitle, a.SEO.MetaDescription, boolInt(a.SEO.NoIndex), a.LeagueID, a.TeamID, a.AuthorID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_related WHERE article_id = ?`, a.ID); err != nil {
		return err
	}
	for i, id := range a.Related {
		if _, err := tx.ExecContext(ctx, `INSERT INTO article_related (article_id, position, related_id) VALUES (?, ?, ?)`, a.ID, i, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteArticle removes an article by id.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_related WHERE article_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

const articleColumns = `a.id, a.slug, a.title, a.excerpt, a.hero_url, a.hero_alt, a.hero_caption, a.hero_credit, a.body,
	a.published_at, a.updated_at, a.created_at, a.tags, a.sources, a.status, a.meta_title, a.meta_description, a.noindex,
	a.league_id, a.team_id, a.author_id`

// Article returns the first public article with slug, or nil.
func (s *Store) Article(ctx context.Context, slug string) (*content.Article, error) {
	cond, args := s.visible("a")
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles a
		WHERE a.slug = ? AND `+cond+` ORDER BY a.rowid LIMIT 1`, append([]any{slug}, args...)...)

	var a content.Article
	var heroURL, heroAlt, heroCaption, heroCredit, body, published, updated, created, tags, sources, status string
	var noindex int
	var leagueID, teamID, authorID string
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Excerpt, &heroURL, &heroAlt, &heroCaption, &heroCredit, &body,
		&published, &updated, &created, &tags, &sources, &status, &a.SEO.MetaTitle, &a.SEO.MetaDescription, &noindex,
		&leagueID, &teamID, &authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("article %q: %w", slug, err)
	}

	if heroURL != "" {
		a.Hero = &content.SeoImage{URL: heroURL, Alt: heroAlt, Caption: heroCaption, Credit: heroCredit}
	}
	s.decodeColumn("articles", "body", a.ID, body, &a.Body)
	a.PublishedAt = parseTime(published)
	a.UpdatedAt = parseTime(updated)
	a.CreatedAt = parseTime(created)
	a.Tags = ParseTags(tags)
	if sources != "" {
		a.Sources = strings.Split(sources, "\n")
	}
	a.Status = content.Status(status)
	a.SEO.NoIndex = noindex == 1

	if a.League, err = s.leagueByID(ctx, leagueID); err != nil {
		return nil, err
	}
	if a.Team, err = s.team(ctx, teamID); err != nil {
		return nil, err
	}
	if a.Author, err = s.author(ctx, authorID); err != nil {
		return nil, err
	}
	if a.Related, err = s.related(ctx, a.ID); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) team(ctx context.Context, id string) (*content.TeamRef, error) {
	if id == "" {
		return nil, nil
	}
	var t content.TeamRef
	err := s.db.QueryRowContext(ctx, `SELECT name, slug FROM teams WHERE id = ?`, id).Scan(&t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("team %q: %w", id, err)
	}
	return &t, nil
}

func (s *Store) author(ctx context.Context, id string) (*content.AuthorRef, error) {
	if id == "" {
		return nil, nil
	}
	var a content.AuthorRef
	var avatarURL, avatarAlt string
	err := s.db.QueryRowContext(ctx, `SELECT name, avatar_url, avatar_alt FROM authors WHERE id = ?`, id).
		Scan(&a.Name, &avatarURL, &avatarAlt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("author %q: %w", id, err)
	}
	if avatarURL != "" {
		a.Avatar = &content.SeoImage{URL: avatarURL, Alt: avatarAlt}
	}
	return &a, nil
}

// related returns the resolvable related articles in editor order.
func (s *Store) related(ctx context.Context, articleID string) ([]content.ArticleCard, error) {
	cond, args := s.visible("a")
	return s.cards(ctx, `SELECT `+cardColumns+` FROM article_related r
		JOIN articles a ON a.id = r.related_id
		LEFT JOIN leagues l ON l.id = a.league_id
		WHERE r.article_id = ? AND `+cond+` ORDER BY r.position`, append([]any{articleID}, args...)...)
}

const cardColumns = `a.slug, a.title, a.excerpt, a.hero_url, a.hero_alt, a.published_at, a.updated_at, a.created_at,
	COALESCE(l.name, ''), COALESCE(l.slug, '')`

func (s *Store) cards(ctx context.Context, query string, args ...any) ([]content.ArticleCard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []content.ArticleCard
	for rows.Next() {
		var c content.ArticleCard
		var heroURL, heroAlt, published, updated, created, leagueName, leagueSlug string
		if err := rows.Scan(&c.Slug, &c.Title, &c.Excerpt, &heroURL, &heroAlt, &published, &updated, &created, &leagueName, &leagueSlug); err != nil {
			return nil, err
		}
		if heroURL != "" {
			c.Image = &content.SeoImage{URL: heroURL, Alt: heroAlt}
		}
		c.PublishedAt = content.OrderingDate(parseTime(published), parseTime(updated), parseTime(created))
		if leagueSlug != "" {
			c.League = &content.LeagueRef{Name: leagueName, Slug: leagueSlug}
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// LeagueArticles lists the newest public articles in a league.
func (s *Store) LeagueArticles(ctx context.Context, leagueID string, limit int) ([]content.ArticleCard, error) {
	cond, args := s.visible("a")
	cards, err := s.cards(ctx, `SELECT `+cardColumns+` FROM articles a
		LEFT JOIN leagues l ON l.id = a.league_id
		WHERE a.league_id = ? AND `+cond+`
		ORDER BY `+orderingDate("a")+` DESC, a.rowid LIMIT ?`, append(append([]any{leagueID}, args...), limit)...)
	if err != nil {
		return nil, fmt.Errorf("league articles: %w", err)
	}
	return cards, nil
}

// LatestInLeague lists the newest public articles in a league other than
// excludeSlug.
func (s *Store) LatestInLeague(ctx context.Context, leagueID, excludeSlug string, limit int) ([]content.ArticleCard, error) {
	cond, args := s.visible("a")
	cards, err := s.cards(ctx, `SELECT `+cardColumns+` FROM articles a
		LEFT JOIN leagues l ON l.id = a.league_id
		WHERE a.league_id = ? AND a.slug != ? AND `+cond+`
		ORDER BY `+orderingDate("a")+` DESC, a.rowid LIMIT ?`, append(append([]any{leagueID, excludeSlug}, args...), limit)...)
	if err != nil {
		return nil, fmt.Errorf("latest in league: %w", err)
	}
	return cards, nil
}

// Trending lists the newest public articles across all leagues.
func (s *Store) Trending(ctx context.Context, limit int) ([]content.ArticleCard, error) {
	cond, args := s.visible("a")
	cards, err := s.cards(ctx, `SELECT `+cardColumns+` FROM articles a
		LEFT JOIN leagues l ON l.id = a.league_id
		WHERE `+cond+`
		ORDER BY `+orderingDate("a")+` DESC, a.rowid LIMIT ?`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return cards, nil
}

// ArticleSitemap lists every public article slug.
func (s *Store) ArticleSitemap(ctx context.Context) ([]content.SitemapDoc, error) {
	cond, args := s.visible("a")
	rows, err := s.db.QueryContext(ctx, `SELECT a.slug, COALESCE(NULLIF(a.updated_at, ''), NULLIF(a.published_at, ''), a.created_at)
		FROM articles a WHERE a.slug != '' AND `+cond+` ORDER BY `+orderingDate("a")+` DESC, a.rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("article sitemap: %w", err)
	}
	return scanSitemap(rows)
}

func scanSitemap(rows *sql.Rows) ([]content.SitemapDoc, error) {
	defer rows.Close()
	var docs []content.SitemapDoc
	for rows.Next() {
		var slug, updated string
		if err := rows.Scan(&slug, &updated); err != nil {
			return nil, err
		}
		docs = append(docs, content.SitemapDoc{Slug: slug, UpdatedAt: parseTime(updated)})
	}
	return docs, rows.Err()
}
