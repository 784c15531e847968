package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
)

// SaveAuthor upserts an author.
func (s *Store) SaveAuthor(ctx context.Context, id string, a content.AuthorRef) error {
	avatar := a.Avatar
	if avatar == nil {
		avatar = &content.SeoImage{}
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO authors (id, name, avatar_url, avatar_alt) VALUES (?, ?, ?, ?)`,
		id, a.Name, avatar.URL, avatar.Alt)
	return err
}

// SaveTeam upserts a team belonging to leagueID.
func (s *Store) SaveTeam(ctx context.Context, id, leagueID string, t content.TeamRef) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO teams (id, slug, name, league_id) VALUES (?, ?, ?, ?)`,
		id, t.Slug, t.Name, leagueID)
	return err
}

// SaveLeague upserts a league keyed by l.ID. ArticleCount is derived and
// ignored.
func (s *Store) SaveLeague(ctx context.Context, l content.League) error {
	about, err := json.Marshal(l.About)
	if err != nil {
		return fmt.Errorf("encode about: %w", err)
	}
	logo := l.Logo
	if logo == nil {
		logo = &content.SeoImage{}
	}
	var rank sql.NullInt64
	if l.FeatureRank != nil {
		rank = sql.NullInt64{Int64: int64(*l.FeatureRank), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO leagues (id, slug, name, logo_url, logo_alt, logo_caption, logo_credit,
		about, about_summary, meta_title, meta_description, noindex, featured, feature_rank, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Slug, l.Name, logo.URL, logo.Alt, logo.Caption, logo.Credit,
		string(about), l.AboutSummary, l.SEO.MetaTitle, l.SEO.MetaDescription, boolInt(l.SEO.NoIndex), boolInt(l.Featured),
		rank, formatTime(l.UpdatedAt))
	return err
}

func (s *Store) leagueColumns() (string, []any) {
	cond, args := s.visible("a")
	return `l.id, l.slug, l.name, l.logo_url, l.logo_alt, l.logo_caption, l.logo_credit, l.about, l.about_summary,
		l.meta_title, l.meta_description, l.noindex, l.featured, l.feature_rank, l.updated_at,
		(SELECT COUNT(*) FROM articles a WHERE a.league_id = l.id AND ` + cond + `)`, args
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanLeague(row scanner) (*content.League, error) {
	var l content.League
	var logoURL, logoAlt, logoCaption, logoCredit, about, updated string
	var noindex, featured int
	var rank sql.NullInt64
	if err := row.Scan(&l.ID, &l.Slug, &l.Name, &logoURL, &logoAlt, &logoCaption, &logoCredit, &about, &l.AboutSummary,
		&l.SEO.MetaTitle, &l.SEO.MetaDescription, &noindex, &featured, &rank, &updated, &l.ArticleCount); err != nil {
		return nil, err
	}
	if logoURL != "" {
		l.Logo = &content.SeoImage{URL: logoURL, Alt: logoAlt, Caption: logoCaption, Credit: logoCredit}
	}
	s.decodeColumn("leagues", "about", l.ID, about, &l.About)
	l.SEO.NoIndex = noindex == 1
	l.Featured = featured == 1
	if rank.Valid {
		r := int(rank.Int64)
		l.FeatureRank = &r
	}
	l.UpdatedAt = parseTime(updated)
	return &l, nil
}

// League returns the league with slug, or nil.
func (s *Store) League(ctx context.Context, slug string) (*content.League, error) {
	cols, args := s.leagueColumns()
	l, err := s.scanLeague(s.db.QueryRowContext(ctx, `SELECT `+cols+` FROM leagues l WHERE l.slug = ?`, append(args, slug)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("league %q: %w", slug, err)
	}
	return l, nil
}

func (s *Store) leagueByID(ctx context.Context, id string) (*content.League, error) {
	if id == "" {
		return nil, nil
	}
	cols, args := s.leagueColumns()
	l, err := s.scanLeague(s.db.QueryRowContext(ctx, `SELECT `+cols+` FROM leagues l WHERE l.id = ?`, append(args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("league %q: %w", id, err)
	}
	return l, nil
}

// Leagues lists every league by name with its public article count.
func (s *Store) Leagues(ctx context.Context) ([]content.League, error) {
	cols, args := s.leagueColumns()
	rows, err := s.db.QueryContext(ctx, `SELECT `+cols+` FROM leagues l ORDER BY l.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("leagues: %w", err)
	}
	defer rows.Close()

	var leagues []content.League
	for rows.Next() {
		l, err := s.scanLeague(rows)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

// LeagueSitemap lists every league slug.
func (s *Store) LeagueSitemap(ctx context.Context) ([]content.SitemapDoc, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, updated_at FROM leagues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("league sitemap: %w", err)
	}
	return scanSitemap(rows)
}

// SaveEvergreen upserts the evergreen document for leagueID.
func (s *Store) SaveEvergreen(ctx context.Context, leagueID string, e content.LeagueEvergreen) error {
	var cols [5][]byte
	for i, v := range []any{e.History, e.Format, e.Teams, e.Stats, e.Champions} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode evergreen: %w", err)
		}
		cols[i] = b
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO league_evergreen (league_id, history, format, teams, stats, champions, meta_title, meta_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		leagueID, string(cols[0]), string(cols[1]), string(cols[2]), string(cols[3]), string(cols[4]), e.MetaTitle, e.MetaDescription)
	return err
}

// LeagueEvergreen returns the evergreen document of the league with
// leagueSlug, or nil.
func (s *Store) LeagueEvergreen(ctx context.Context, leagueSlug string) (*content.LeagueEvergreen, error) {
	var leagueID, history, format, teams, stats, champions string
	var e content.LeagueEvergreen
	err := s.db.QueryRowContext(ctx, `SELECT e.league_id, e.history, e.format, e.teams, e.stats, e.champions, e.meta_title, e.meta_description
		FROM league_evergreen e JOIN leagues l ON l.id = e.league_id WHERE l.slug = ?`, leagueSlug).
		Scan(&leagueID, &history, &format, &teams, &stats, &champions, &e.MetaTitle, &e.MetaDescription)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("league evergreen %q: %w", leagueSlug, err)
	}
	var hist, form portabletext.Blocks
	s.decodeColumn("league_evergreen", "history", leagueID, history, &hist)
	s.decodeColumn("league_evergreen", "format", leagueID, format, &form)
	e.History, e.Format = hist, form
	s.decodeColumn("league_evergreen", "teams", leagueID, teams, &e.Teams)
	s.decodeColumn("league_evergreen", "stats", leagueID, stats, &e.Stats)
	s.decodeColumn("league_evergreen", "champions", leagueID, champions, &e.Champions)

	if e.League, err = s.leagueByID(ctx, leagueID); err != nil {
		return nil, err
	}
	return &e, nil
}
