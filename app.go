// Package underserved serves the Underserved Sports news site: league
// pages, articles, and the sitemap, feed, and robots surfaces around them.
//
// Content comes from a Sanity dataset or from a local SQLite mirror; pages
// are assembled by package site and rendered by package views.
package underserved

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/sanity"
	"github.com/JohnnyAddis/underserved-sports-mvp/site"
	"github.com/JohnnyAddis/underserved-sports-mvp/store"
	"github.com/JohnnyAddis/underserved-sports-mvp/views"
)

// App wires content backends, page services, middleware and routes.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo

	log         zerolog.Logger
	repo        content.Repository
	previewRepo content.Repository
	public      *site.Service
	preview     *site.Service
	cache       *sanity.CachedQuerier
	store       *store.Store
	media       *MediaServer

	previewLimiter *Limiter
	customRoutes   []func(*App)
	closers        []io.Closer
}

// New builds an App from cfg. The returned App is ready to serve requests
// through a.Echo; call Start to listen on cfg.Addr.
func New(cfg SiteConfig, log zerolog.Logger, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		log:    log,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	if a.repo == nil {
		if err := a.openBackend(); err != nil {
			a.Close()
			return nil, err
		}
	}

	siteCfg := site.Config{Name: cfg.Name, URL: cfg.URL, Description: cfg.Description}
	a.public = site.NewService(a.repo, siteCfg, log)
	if a.previewEnabled() {
		a.preview = site.NewService(a.previewRepo, siteCfg, log, site.Preview())
		a.previewLimiter = NewLimiter(5, time.Minute)
	}
	a.media = NewMediaServer(cfg.MediaDir)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

func (a *App) openBackend() error {
	switch a.Config.Backend {
	case BackendSQLite:
		st, err := store.NewStore(a.Config.DatabasePath, store.WithLogger(a.log))
		if err != nil {
			return fmt.Errorf("underserved: init store: %w", err)
		}
		a.store = st
		a.closers = append(a.closers, st)
		a.repo = st
		a.previewRepo = st.WithHidden()
		return nil

	case BackendSanity:
		sc := a.Config.Sanity
		client, err := sanity.New(sanity.Config{
			ProjectID:  sc.ProjectID,
			Dataset:    sc.Dataset,
			APIVersion: sc.APIVersion,
			UseCDN:     sc.CDN(),
			Timeout:    sc.Timeout,
		}, a.log)
		if err != nil {
			return fmt.Errorf("underserved: init sanity: %w", err)
		}
		a.cache = sanity.NewCachedQuerier(client, a.Config.RevalidateTTL)
		a.repo = sanity.NewRepository(a.cache)

		if a.Config.PreviewSecret == "" {
			return nil
		}
		if sc.ReadToken == "" {
			a.log.Warn().Msg("preview disabled: SANITY_READ_TOKEN is not set")
			return nil
		}
		drafts, err := sanity.New(sanity.Config{
			ProjectID:   sc.ProjectID,
			Dataset:     sc.Dataset,
			APIVersion:  sc.APIVersion,
			Token:       sc.ReadToken,
			Perspective: sanity.PerspectiveDrafts,
			Timeout:     sc.Timeout,
		}, a.log)
		if err != nil {
			return fmt.Errorf("underserved: init sanity preview: %w", err)
		}
		a.previewRepo = sanity.NewRepository(drafts, sanity.IncludeHidden())
		return nil
	}
	return fmt.Errorf("underserved: unknown content backend %q", a.Config.Backend)
}

func (a *App) previewEnabled() bool {
	return a.previewRepo != nil && a.Config.PreviewSecret != "" && a.Config.SessionSecret != ""
}

// Start listens on Config.Addr until ctx is cancelled, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.Config.Addr).Str("backend", a.Config.Backend).Msg("server starting")
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.log.Info().Msg("server shutting down")
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases backend resources.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.previewLimiter != nil {
		a.previewLimiter.Stop()
	}
	return errors.Join(errs...)
}

// Repository returns the public content repository.
func (a *App) Repository() content.Repository { return a.repo }

func (a *App) viewConfig() views.SiteConfig {
	return views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL, Description: a.Config.Description}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS())))))
	e.GET("/favicon.svg", handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/media/*", a.media.Handle)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/leagues", a.handleLeagues)
	e.GET("/leagues/:slug", a.handleLeague)
	e.GET("/leagues/:slug/about", a.handleLeagueAbout)
	e.GET("/news/:slug", a.handleArticle)

	if a.Config.RevalidateSecret != "" {
		e.POST("/api/revalidate", a.handleRevalidate)
	}
	if a.preview != nil {
		e.GET("/api/preview", a.handlePreview)
		e.GET("/api/preview/exit", handlePreviewExit)
	}
}
