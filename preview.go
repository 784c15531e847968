package underserved

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

const secretHeader = "X-Revalidate-Secret"

func secretMatches(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// handlePreview turns on draft preview for this browser. With a slug it
// checks the draft exists and redirects to it.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many attempts. Try again later.")
	}
	if !secretMatches(c.QueryParam("secret"), a.Config.PreviewSecret) {
		a.previewLimiter.Record(ip)
		a.log.Warn().Str("ip", ip).Msg("preview: invalid secret")
		return c.String(http.StatusUnauthorized, "Invalid token")
	}

	target := "/"
	if slug := c.QueryParam("slug"); slug != "" {
		doc, err := a.previewRepo.Article(c.Request().Context(), slug)
		if err != nil {
			return err
		}
		if doc == nil {
			return c.String(http.StatusNotFound, "Invalid slug")
		}
		target = "/news/" + url.PathEscape(doc.Slug)
	}

	if err := setPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func handlePreviewExit(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

type revalidateResponse struct {
	Revalidated bool  `json:"revalidated"`
	Now         int64 `json:"now"`
}

// handleRevalidate drops every cached query so the next request reads fresh
// content. CMS webhooks call it after a publish.
func (a *App) handleRevalidate(c echo.Context) error {
	if !secretMatches(c.Request().Header.Get(secretHeader), a.Config.RevalidateSecret) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid secret"})
	}
	dropped := 0
	if a.cache != nil {
		dropped = a.cache.Len()
		a.cache.Invalidate()
	}
	a.log.Info().Int("entries", dropped).Msg("revalidated")
	return c.JSON(http.StatusOK, revalidateResponse{Revalidated: true, Now: time.Now().UnixMilli()})
}
