package site

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

func (s *Service) frame(meta Metadata, nav Navigation, crumbs []Crumb) Frame {
	if len(crumbs) > 1 {
		meta.JSONLD = append(meta.JSONLD, BreadcrumbJSONLD(s.cfg, crumbs))
	}
	return Frame{Meta: meta, Nav: nav, Crumbs: crumbs, Preview: s.preview}
}

// HomePage lists the newest public articles across every league.
func (s *Service) HomePage(ctx context.Context) (*HomePage, error) {
	var (
		trending []content.ArticleCard
		nav      Navigation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trending, err = s.repo.Trending(gctx, trendingLimit)
		if err != nil {
			return fmt.Errorf("trending: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		nav, err = s.Navigation(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meta := s.metadata(seoInput{
		title:       "Home",
		description: s.cfg.Description,
		path:        "/",
	})
	meta.JSONLD = append(meta.JSONLD, WebsiteJSONLD(s.cfg))
	return &HomePage{
		Frame:    s.frame(meta, nav, nil),
		Articles: cards(trending),
	}, nil
}

// LeaguesPage lists every league with its article count. The same league
// list feeds the navigation.
func (s *Service) LeaguesPage(ctx context.Context) (*LeaguesPage, error) {
	leagues, err := s.repo.Leagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("leagues: %w", err)
	}
	meta := s.metadata(seoInput{
		title:       "Leagues",
		description: "Browse every league we cover.",
		path:        "/leagues",
	})
	crumbs := []Crumb{{Name: "Home", Href: "/"}, {Name: "Leagues"}}
	return &LeaguesPage{
		Frame:   s.frame(meta, buildNavigation(leagues, ""), crumbs),
		Leagues: leagueCards(leagues),
	}, nil
}

// LeaguePage resolves a league by slug and lists its newest articles.
func (s *Service) LeaguePage(ctx context.Context, slug string) (*LeaguePage, error) {
	var (
		league   *content.League
		articles []content.ArticleCard
		nav      Navigation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		league, err = s.repo.League(gctx, slug)
		if err != nil || league == nil {
			return err
		}
		articles, err = s.repo.LeagueArticles(gctx, league.ID, leagueArticleLimit)
		return err
	})
	g.Go(func() (err error) {
		nav, err = s.Navigation(gctx, slug)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("league %q: %w", slug, err)
	}
	if league == nil {
		s.log.Debug().Str("slug", slug).Msg("league not found")
		return nil, ErrNotFound
	}

	p := assembleLeague(league, articles)
	meta := s.metadata(seoInput{
		title:       Title(league.SEO.MetaTitle, league.Name, fallbackLeagueTitle),
		description: Description(league.SEO.MetaDescription, league.AboutSummary, fallbackLeagueDescription),
		path:        "/leagues/" + league.Slug,
		image:       p.Logo,
		noindex:     league.SEO.NoIndex,
	})
	p.Frame = s.frame(meta, nav, p.Crumbs)
	return p, nil
}

// AboutPage resolves the evergreen page of a league. A league without an
// evergreen document yields a page marked Missing; an unknown league yields
// ErrNotFound.
func (s *Service) AboutPage(ctx context.Context, slug string) (*AboutPage, error) {
	var (
		evergreen *content.LeagueEvergreen
		league    *content.League
		nav       Navigation
		meta      Metadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		evergreen, err = s.repo.LeagueEvergreen(gctx, slug)
		if err != nil || evergreen != nil {
			return err
		}
		league, err = s.repo.League(gctx, slug)
		return err
	})
	g.Go(func() (err error) {
		nav, err = s.Navigation(gctx, slug)
		return err
	})
	g.Go(func() error {
		meta = s.AboutMetadata(gctx, slug)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("league about %q: %w", slug, err)
	}
	if evergreen == nil && league == nil {
		s.log.Debug().Str("slug", slug).Msg("league about not found")
		return nil, ErrNotFound
	}

	p := assembleAbout(slug, evergreen, league)
	p.Frame = s.frame(meta, nav, p.Crumbs)
	return p, nil
}

// AboutMetadata derives the about page metadata. It never fails: upstream
// errors are logged and generic metadata is returned instead.
func (s *Service) AboutMetadata(ctx context.Context, slug string) Metadata {
	path := "/leagues/" + slug + "/about"
	generic := func() Metadata {
		return s.metadata(seoInput{title: fallbackAboutTitle, description: fallbackAboutDescription, path: path})
	}

	e, err := s.repo.LeagueEvergreen(ctx, slug)
	if err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("about metadata: evergreen fetch failed")
		return generic()
	}
	var l *content.League
	if e != nil {
		l = e.League
	} else {
		l, err = s.repo.League(ctx, slug)
		if err != nil {
			s.log.Warn().Err(err).Str("slug", slug).Msg("about metadata: league fetch failed")
			return generic()
		}
	}

	title, description := aboutSEO(e, l)
	in := seoInput{title: title, description: description, path: path}
	if l != nil {
		in.image = displayImage(l.Logo, l.Name+" logo")
		in.noindex = l.SEO.NoIndex
	}
	return s.metadata(in)
}

// ArticlePage resolves an article by slug with its related articles.
func (s *Service) ArticlePage(ctx context.Context, slug string) (*ArticlePage, error) {
	var (
		article *content.Article
		related []content.ArticleCard
		nav     Navigation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		article, err = s.repo.Article(gctx, slug)
		if err != nil || article == nil {
			return err
		}
		related, err = SelectRelated(gctx, article, s.repo)
		return err
	})
	g.Go(func() (err error) {
		nav, err = s.Navigation(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("article %q: %w", slug, err)
	}
	if article == nil {
		s.log.Debug().Str("slug", slug).Msg("article not found")
		return nil, ErrNotFound
	}

	p := assembleArticle(article, related)
	in := seoInput{
		title:       Title(article.SEO.MetaTitle, article.Title, fallbackArticleTitle),
		description: Description(article.SEO.MetaDescription, article.Excerpt, fallbackArticleDescription),
		path:        "/news/" + article.Slug,
		ogType:      "article",
		image:       p.Hero,
		noindex:     article.SEO.NoIndex,
		published:   article.PublishedAt,
		modified:    article.UpdatedAt,
	}
	if p.Author != nil {
		in.authors = []string{p.Author.Name}
	}
	meta := s.metadata(in)
	p.Frame = s.frame(meta, nav, p.Crumbs)
	p.Meta.JSONLD = append([]string{NewsArticleJSONLD(s.cfg, p)}, p.Meta.JSONLD...)
	return p, nil
}
