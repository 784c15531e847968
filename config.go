package underserved

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

const (
	BackendSanity = "sanity"
	BackendSQLite = "sqlite"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Underserved Sports")
	URL         string `yaml:"url"`         // Canonical base URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags

	Addr    string `yaml:"addr"`    // Listen address (default ":3000")
	Backend string `yaml:"backend"` // "sanity" or "sqlite" (default "sanity")

	Sanity SanityConfig `yaml:"sanity"`

	DatabasePath string `yaml:"database_path"` // SQLite mirror path (default "data/content.db")
	MediaDir     string `yaml:"media_dir"`     // Local images served under /media/ (default "data/media")

	RevalidateTTL    time.Duration `yaml:"revalidate_ttl"`    // Query cache TTL (default 30s)
	RevalidateSecret string        `yaml:"revalidate_secret"` // Shared secret for POST /api/revalidate

	PreviewSecret string `yaml:"preview_secret"` // Enables editor preview when set
	SessionSecret string `yaml:"session_secret"` // Required with PreviewSecret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default info)
	LogFormat string `yaml:"log_format"` // json or pretty (default json)
}

// SanityConfig identifies the Sanity project to read from.
type SanityConfig struct {
	ProjectID  string        `yaml:"project_id"`
	Dataset    string        `yaml:"dataset"`     // default "production"
	APIVersion string        `yaml:"api_version"` // default "2025-01-01"
	UseCDN     *bool         `yaml:"use_cdn"`     // default true
	ReadToken  string        `yaml:"read_token"`  // needed for preview
	Timeout    time.Duration `yaml:"timeout"`     // default 10s
}

// CDN reports whether public queries go through the API CDN.
func (s SanityConfig) CDN() bool {
	return s.UseCDN == nil || *s.UseCDN
}

// LoadConfig reads .env, then the YAML file named by CONFIG_FILE if any, then
// environment variables, which take precedence.
func LoadConfig() (SiteConfig, error) {
	_ = godotenv.Load()

	var cfg SiteConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, cfg.validate()
}

func (c *SiteConfig) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("SITE_NAME", &c.Name)
	str("SITE_URL", &c.URL)
	str("SITE_DESCRIPTION", &c.Description)
	str("ADDR", &c.Addr)
	str("CONTENT_BACKEND", &c.Backend)
	str("SANITY_PROJECT_ID", &c.Sanity.ProjectID)
	str("SANITY_DATASET", &c.Sanity.Dataset)
	str("SANITY_API_VERSION", &c.Sanity.APIVersion)
	str("SANITY_READ_TOKEN", &c.Sanity.ReadToken)
	str("DATABASE_PATH", &c.DatabasePath)
	str("MEDIA_DIR", &c.MediaDir)
	str("REVALIDATE_SECRET", &c.RevalidateSecret)
	str("PREVIEW_SECRET", &c.PreviewSecret)
	str("SESSION_SECRET", &c.SessionSecret)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v := os.Getenv("SANITY_USE_CDN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SANITY_USE_CDN: %w", err)
		}
		c.Sanity.UseCDN = &b
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := os.Getenv("REVALIDATE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REVALIDATE_TTL: %w", err)
		}
		c.RevalidateTTL = d
	}
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Underserved Sports"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Description == "" {
		c.Description = "News, scores, and analysis for underserved sports leagues worldwide."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Backend == "" {
		c.Backend = BackendSanity
	}
	if c.Sanity.Dataset == "" {
		c.Sanity.Dataset = "production"
	}
	if c.Sanity.APIVersion == "" {
		c.Sanity.APIVersion = "2025-01-01"
	}
	if c.Sanity.Timeout == 0 {
		c.Sanity.Timeout = 10 * time.Second
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.MediaDir == "" {
		c.MediaDir = "data/media"
	}
	if c.RevalidateTTL == 0 {
		c.RevalidateTTL = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

func (c *SiteConfig) validate() error {
	switch c.Backend {
	case BackendSanity:
		if c.Sanity.ProjectID == "" {
			return fmt.Errorf("config: SANITY_PROJECT_ID is required for the sanity backend")
		}
	case BackendSQLite:
	default:
		return fmt.Errorf("config: unknown content backend %q", c.Backend)
	}
	if c.PreviewSecret != "" && c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required when PREVIEW_SECRET is set")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithRepository serves content from repo instead of the configured backend.
func WithRepository(repo content.Repository) Option {
	return func(a *App) {
		a.repo = repo
	}
}

// WithPreviewRepository serves preview sessions from repo. It only takes
// effect together with WithRepository; the built-in backends configure their
// own preview source.
func WithPreviewRepository(repo content.Repository) Option {
	return func(a *App) {
		a.previewRepo = repo
	}
}
