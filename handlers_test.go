package underserved

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/JohnnyAddis/underserved-sports-mvp/store"
)

const (
	testPreviewSecret    = "preview-s3cret"
	testRevalidateSecret = "revalidate-s3cret"
)

type AppSuite struct {
	suite.Suite
	app      *App
	mediaDir string
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	dir := s.T().TempDir()
	s.mediaDir = filepath.Join(dir, "media")
	s.Require().NoError(os.MkdirAll(s.mediaDir, 0o755))

	cfg := SiteConfig{
		Name:             "Test Sports",
		URL:              "https://example.com/",
		Backend:          BackendSQLite,
		DatabasePath:     filepath.Join(dir, "content.db"),
		MediaDir:         s.mediaDir,
		PreviewSecret:    testPreviewSecret,
		SessionSecret:    "0123456789abcdef0123456789abcdef",
		RevalidateSecret: testRevalidateSecret,
	}
	app, err := New(cfg, zerolog.Nop())
	s.Require().NoError(err)
	s.T().Cleanup(func() { app.Close() })

	fixtures, err := store.LoadFixtures("store/testdata/fixtures.yaml")
	s.Require().NoError(err)
	_, err = app.store.Seed(context.Background(), fixtures)
	s.Require().NoError(err)
	s.app = app
}

func (s *AppSuite) do(method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.app.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *AppSuite) TestHome() {
	rec := s.do(http.MethodGet, "/")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "Final Four Set After Dramatic Quarterfinals")
	s.Contains(body, `"@type":"WebSite"`)
	s.NotContains(body, "Unfinished Draft")
	s.NotContains(body, "Machine Recap")

	h := rec.Header()
	s.Equal("DENY", h.Get("X-Frame-Options"))
	s.Equal("nosniff", h.Get("X-Content-Type-Options"))
	s.Equal("camera=(), microphone=(), geolocation=()", h.Get("Permissions-Policy"))
	s.Contains(h.Get("Cache-Control"), "s-maxage=30")
}

func (s *AppSuite) TestArticle() {
	rec := s.do(http.MethodGet, "/news/final-four")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, `<link rel="canonical" href="https://example.com/news/final-four">`)
	s.Contains(body, `<meta property="og:type" content="article">`)
	s.Contains(body, `<meta name="robots" content="index, follow">`)
	s.Contains(body, "By Sam Okafor")
	s.Contains(body, `href="/news/quarterfinals"`)
	s.NotContains(body, `href="/news/draft-piece"`)
	s.Contains(body, `"@type":"NewsArticle"`)
	s.Contains(body, `"@type":"BreadcrumbList"`)
}

func (s *AppSuite) TestHiddenArticleIsNotFound() {
	for _, slug := range []string{"draft-piece", "ai-recap", "does-not-exist"} {
		rec := s.do(http.MethodGet, "/news/"+slug)
		s.Equal(http.StatusNotFound, rec.Code, slug)
		s.Contains(rec.Body.String(), "Page not found", slug)
	}
}

func (s *AppSuite) TestTrailingSlashRedirect() {
	rec := s.do(http.MethodGet, "/news/final-four/")
	s.Equal(http.StatusMovedPermanently, rec.Code)
	s.Equal("/news/final-four", rec.Header().Get("Location"))
}

func (s *AppSuite) TestLeagues() {
	rec := s.do(http.MethodGet, "/leagues")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Philippine Basketball Association")
	s.Contains(rec.Body.String(), "National Basketball League")
}

func (s *AppSuite) TestLeague() {
	rec := s.do(http.MethodGet, "/leagues/pba")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `href="/leagues/pba/about"`)

	rec = s.do(http.MethodGet, "/leagues/nbl")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `<meta name="robots" content="noindex, follow">`)

	rec = s.do(http.MethodGet, "/leagues/unknown")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *AppSuite) TestLeagueAbout() {
	rec := s.do(http.MethodGet, "/leagues/pba/about")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "<title>About the PBA | Test Sports</title>")
	s.Contains(body, "San Miguel Beermen")
	s.Contains(body, "Quick Facts")

	rec = s.do(http.MethodGet, "/leagues/nbl/about")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "League information not found")

	rec = s.do(http.MethodGet, "/leagues/unknown/about")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "Page not found")
}

func (s *AppSuite) TestSitemap() {
	rec := s.do(http.MethodGet, "/sitemap.xml")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "application/xml")
	body := rec.Body.String()
	s.True(strings.HasPrefix(body, "<?xml"))
	s.Contains(body, "<loc>https://example.com/</loc><changefreq>hourly</changefreq><priority>1.0</priority>")
	s.Contains(body, "<loc>https://example.com/leagues</loc>")
	s.Contains(body, "<loc>https://example.com/leagues/pba</loc><lastmod>2025-04-01T00:00:00Z</lastmod>")
	s.Contains(body, "<loc>https://example.com/news/final-four</loc>")
	s.NotContains(body, "draft-piece")
	s.NotContains(body, "ai-recap")
	s.Equal("public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func (s *AppSuite) TestFeed() {
	rec := s.do(http.MethodGet, "/feed.xml")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "application/rss+xml")
	body := rec.Body.String()
	s.Contains(body, `<rss version="2.0">`)
	s.Contains(body, "<title>Test Sports</title>")
	s.Contains(body, "<link>https://example.com/news/final-four</link>")
	s.Contains(body, "<category>Philippine Basketball Association</category>")
	s.NotContains(body, "Unfinished Draft")
}

func (s *AppSuite) TestRobots() {
	rec := s.do(http.MethodGet, "/robots.txt")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")
	s.Contains(rec.Body.String(), "Disallow: /api/")
}

func (s *AppSuite) TestStaticAssets() {
	rec := s.do(http.MethodGet, "/favicon.svg")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("image/svg+xml", rec.Header().Get("Content-Type"))

	rec = s.do(http.MethodGet, "/static/site.css")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), ".site-nav")
	s.Equal("public, max-age=86400", rec.Header().Get("Cache-Control"))
}

func (s *AppSuite) TestPreviewRejectsBadSecret() {
	rec := s.do(http.MethodGet, "/api/preview?secret=wrong&slug=draft-piece")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Empty(rec.Result().Cookies())
}

func (s *AppSuite) TestPreviewRateLimited() {
	for i := 0; i < 5; i++ {
		s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/preview?secret=wrong").Code)
	}
	rec := s.do(http.MethodGet, "/api/preview?secret="+testPreviewSecret)
	s.Equal(http.StatusTooManyRequests, rec.Code)
}

func (s *AppSuite) TestPreviewUnknownSlug() {
	rec := s.do(http.MethodGet, "/api/preview?secret="+testPreviewSecret+"&slug=nope")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *AppSuite) TestPreviewShowsDrafts() {
	rec := s.do(http.MethodGet, "/api/preview?secret="+testPreviewSecret+"&slug=draft-piece")
	s.Require().Equal(http.StatusTemporaryRedirect, rec.Code)
	s.Equal("/news/draft-piece", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	s.Require().NotEmpty(cookies)

	rec = s.do(http.MethodGet, "/news/draft-piece", cookies...)
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "Unfinished Draft")
	s.Contains(body, "preview-banner")
	s.Contains(body, `<meta name="robots" content="noindex, follow">`)
	s.Equal("no-store", rec.Header().Get("Cache-Control"))

	rec = s.do(http.MethodGet, "/api/preview/exit", cookies...)
	s.Equal(http.StatusTemporaryRedirect, rec.Code)
	cleared := rec.Result().Cookies()
	s.Require().NotEmpty(cleared)
	s.Less(cleared[0].MaxAge, 0)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/news/draft-piece").Code)
}

func (s *AppSuite) TestRevalidate() {
	rec := s.do(http.MethodPost, "/api/revalidate")
	s.Equal(http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/revalidate", nil)
	req.Header.Set(secretHeader, testRevalidateSecret)
	rec = httptest.NewRecorder()
	s.app.Echo.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)

	var res revalidateResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	s.True(res.Revalidated)
	s.Positive(res.Now)
}

func (s *AppSuite) TestMedia() {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(s.mediaDir, "logo.png"))
	s.Require().NoError(err)
	s.Require().NoError(png.Encode(f, img))
	s.Require().NoError(f.Close())

	rec := s.do(http.MethodGet, "/media/logo.png")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("image/png", rec.Header().Get("Content-Type"))

	rec = s.do(http.MethodGet, "/media/logo.png?w=10&auto=format")
	s.Require().Equal(http.StatusOK, rec.Code)
	out, err := png.Decode(rec.Body)
	s.Require().NoError(err)
	s.Equal(image.Rect(0, 0, 10, 5), out.Bounds())

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/media/logo.png?w=abc").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/media/missing.png").Code)
}

func (s *AppSuite) TestUpstreamFailureRendersServerError() {
	s.Require().NoError(s.app.store.Close())
	rec := s.do(http.MethodGet, "/")
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "Something went wrong")
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(SiteConfig{Backend: "postgres"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestPreviewRoutesNeedSecrets(t *testing.T) {
	cfg := SiteConfig{Backend: BackendSQLite, DatabasePath: filepath.Join(t.TempDir(), "c.db")}
	app, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preview?secret=x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/revalidate", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
