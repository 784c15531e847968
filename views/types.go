// Package views renders site pages as templ components.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

// SiteConfig holds site-wide settings every page needs. Handlers pass it to
// templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Underserved Sports")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
}
