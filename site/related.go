package site

import (
	"context"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

// LatestLister lists the newest public articles of a league, excluding one
// slug.
type LatestLister interface {
	LatestInLeague(ctx context.Context, leagueID, excludeSlug string, limit int) ([]content.ArticleCard, error)
}

// SelectRelated returns at most five related articles for a. The editor's
// manual list wins when it has any entry other than a itself; otherwise the
// newest articles of a's league are used. The league is only queried for the
// fallback.
func SelectRelated(ctx context.Context, a *content.Article, latest LatestLister) ([]content.ArticleCard, error) {
	if manual := withoutSlug(a.Related, a.Slug); len(manual) > 0 {
		return truncate(manual, relatedLimit), nil
	}
	if a.League == nil || a.League.ID == "" {
		return nil, nil
	}
	cards, err := latest.LatestInLeague(ctx, a.League.ID, a.Slug, relatedLimit)
	if err != nil {
		return nil, err
	}
	return truncate(withoutSlug(cards, a.Slug), relatedLimit), nil
}

func withoutSlug(cards []content.ArticleCard, slug string) []content.ArticleCard {
	out := make([]content.ArticleCard, 0, len(cards))
	for _, c := range cards {
		if c.Slug == "" || c.Slug == slug {
			continue
		}
		out = append(out, c)
	}
	return out
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
