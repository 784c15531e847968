package underserved

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JohnnyAddis/underserved-sports-mvp/site"
	"github.com/JohnnyAddis/underserved-sports-mvp/views"
)

// service picks the draft-aware page service for preview sessions.
func (a *App) service(c echo.Context) *site.Service {
	if a.preview != nil && InPreview(c) {
		return a.preview
	}
	return a.public
}

func (a *App) handleHome(c echo.Context) error {
	page, err := a.service(c).HomePage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, views.Home(a.viewConfig(), page))
}

func (a *App) handleLeagues(c echo.Context) error {
	page, err := a.service(c).LeaguesPage(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, views.Leagues(a.viewConfig(), page))
}

func (a *App) handleLeague(c echo.Context) error {
	page, err := a.service(c).LeaguePage(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return Render(c, views.League(a.viewConfig(), page))
}

func (a *App) handleLeagueAbout(c echo.Context) error {
	page, err := a.service(c).AboutPage(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	code := http.StatusOK
	if page.Missing {
		code = http.StatusNotFound
	}
	return RenderStatus(c, code, views.About(a.viewConfig(), page))
}

func (a *App) handleArticle(c echo.Context) error {
	page, err := a.service(c).ArticlePage(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return Render(c, views.Article(a.viewConfig(), page))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if errors.Is(err, site.ErrNotFound) {
		a.log.Debug().Str("path", c.Request().URL.Path).Msg("not found")
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.viewConfig()))
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.viewConfig()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("server error")
		_ = RenderStatus(c, code, views.ServerError(a.viewConfig()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
