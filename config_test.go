package underserved

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SANITY_PROJECT_ID", "abc123")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Underserved Sports", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, BackendSanity, cfg.Backend)
	assert.Equal(t, "production", cfg.Sanity.Dataset)
	assert.Equal(t, "2025-01-01", cfg.Sanity.APIVersion)
	assert.True(t, cfg.Sanity.CDN())
	assert.Equal(t, 30*time.Second, cfg.RevalidateTTL)
	assert.Equal(t, "data/content.db", cfg.DatabasePath)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SANITY_PROJECT_ID", "abc123")
	t.Setenv("SITE_URL", "https://sports.example.com///")
	t.Setenv("SANITY_USE_CDN", "false")
	t.Setenv("REVALIDATE_TTL", "2m")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://sports.example.com", cfg.URL)
	assert.False(t, cfg.Sanity.CDN())
	assert.Equal(t, 2*time.Minute, cfg.RevalidateTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	yaml := `name: File Sports
url: https://file.example.com
backend: sqlite
database_path: ${TEST_DB_DIR}/mirror.db
revalidate_ttl: 45s
sanity:
  dataset: staging
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_DB_DIR", "/var/lib/underserved")
	t.Setenv("SITE_NAME", "Env Sports")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Env Sports", cfg.Name, "environment wins over the file")
	assert.Equal(t, "https://file.example.com", cfg.URL)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/var/lib/underserved/mirror.db", cfg.DatabasePath)
	assert.Equal(t, 45*time.Second, cfg.RevalidateTTL)
	assert.Equal(t, "staging", cfg.Sanity.Dataset)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing project", map[string]string{"CONTENT_BACKEND": "sanity"}, "SANITY_PROJECT_ID"},
		{"unknown backend", map[string]string{"CONTENT_BACKEND": "mongo"}, "unknown content backend"},
		{"preview without session", map[string]string{"CONTENT_BACKEND": "sqlite", "PREVIEW_SECRET": "x"}, "SESSION_SECRET"},
		{"bad bool", map[string]string{"SANITY_USE_CDN": "maybe"}, "SANITY_USE_CDN"},
		{"bad duration", map[string]string{"REVALIDATE_TTL": "soon"}, "REVALIDATE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv("SANITY_PROJECT_ID", "")
			t.Setenv("CONTENT_BACKEND", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
