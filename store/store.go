// Package store is a SQLite mirror of the content store. It backs the site
// when no Sanity project is configured and is filled by the seed command.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

// Store wraps a SQLite database holding mirrored content documents.
type Store struct {
	db            *sql.DB
	includeHidden bool
	log           zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for column decode failures.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

var _ content.Repository = (*Store)(nil)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets page renders read while a seed writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithHidden returns a view of the same database that also shows draft and
// AI-generated articles. Closing the view closes the shared database.
func (s *Store) WithHidden() *Store {
	return &Store{db: s.db, includeHidden: true, log: s.log}
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS authors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT '',
    avatar_alt TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS leagues (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    logo_url TEXT NOT NULL DEFAULT '',
    logo_alt TEXT NOT NULL DEFAULT '',
    logo_caption TEXT NOT NULL DEFAULT '',
    logo_credit TEXT NOT NULL DEFAULT '',
    about TEXT NOT NULL DEFAULT '[]',
    about_summary TEXT NOT NULL DEFAULT '',
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    noindex INTEGER NOT NULL DEFAULT 0,
    featured INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS teams (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    league_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS articles (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    hero_url TEXT NOT NULL DEFAULT '',
    hero_alt TEXT NOT NULL DEFAULT '',
    hero_caption TEXT NOT NULL DEFAULT '',
    hero_credit TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '[]',
    published_at TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT ',',
    sources TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT '',
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    noindex INTEGER NOT NULL DEFAULT 0,
    league_id TEXT NOT NULL DEFAULT '',
    team_id TEXT NOT NULL DEFAULT '',
    author_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS articles_slug ON articles (slug);
CREATE INDEX IF NOT EXISTS articles_league ON articles (league_id);
CREATE TABLE IF NOT EXISTS article_related (
    article_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    related_id TEXT NOT NULL,
    PRIMARY KEY (article_id, position)
);
CREATE TABLE IF NOT EXISTS league_evergreen (
    league_id TEXT PRIMARY KEY,
    history TEXT NOT NULL DEFAULT '[]',
    format TEXT NOT NULL DEFAULT '[]',
    teams TEXT NOT NULL DEFAULT '[]',
    stats TEXT NOT NULL DEFAULT '[]',
    champions TEXT NOT NULL DEFAULT '[]',
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT ''
);
`)
	if err != nil {
		return err
	}
	// Columns added after the first release.
	for _, stmt := range []string{
		`ALTER TABLE leagues ADD COLUMN feature_rank INTEGER;`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
				continue
			}
			return err
		}
	}
	return nil
}

// visible returns a SQL condition restricting alias's articles to public
// statuses, with its arguments.
func (s *Store) visible(alias string) (string, []any) {
	if s.includeHidden {
		return "1 = 1", nil
	}
	placeholders := make([]string, len(content.HiddenStatuses))
	args := make([]any, len(content.HiddenStatuses))
	for i, st := range content.HiddenStatuses {
		placeholders[i] = "?"
		args[i] = string(st)
	}
	return alias + ".status NOT IN (" + strings.Join(placeholders, ", ") + ")", args
}

// orderingDate is the SQL form of content.OrderingDate.
func orderingDate(alias string) string {
	return "COALESCE(NULLIF(" + alias + ".published_at, ''), NULLIF(" + alias + ".updated_at, ''), " + alias + ".created_at)"
}

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatTags normalizes tags into the comma-delimited column format ",a,b,".
func FormatTags(tags []string) string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			normalized = append(normalized, t)
		}
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// decodeColumn unmarshals a JSON column into v. A malformed value leaves v
// untouched so the page still renders, and is logged at debug.
func (s *Store) decodeColumn(table, column, id, raw string, v any) {
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Debug().Err(err).Str("table", table).Str("column", column).Str("id", id).Msg("decode column")
	}
}
