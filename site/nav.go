package site

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

type NavLink struct {
	Name string
	Slug string
}

// NavSection is one presentation of the league menu: Top goes in the bar,
// Others in the overflow menu.
type NavSection struct {
	Top    []NavLink
	Others []NavLink
}

// Navigation is the site-wide league menu. Current is the league being
// viewed, if any.
type Navigation struct {
	Compact  NavSection
	Expanded NavSection
	Current  *NavLink
}

// RankNavigation picks the top n leagues for the menu. Leagues with a
// feature rank come first in rank order; the remaining slots go to the
// leagues with the most articles, ties broken by name. Others holds every
// league not picked, sorted by name.
func RankNavigation(leagues []content.League, n int) (top, others []content.League) {
	var ranked, unranked []content.League
	for _, l := range leagues {
		if l.FeatureRank != nil {
			ranked = append(ranked, l)
		} else {
			unranked = append(unranked, l)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if *ranked[i].FeatureRank != *ranked[j].FeatureRank {
			return *ranked[i].FeatureRank < *ranked[j].FeatureRank
		}
		return lessName(ranked[i], ranked[j])
	})
	sort.SliceStable(unranked, func(i, j int) bool {
		if unranked[i].ArticleCount != unranked[j].ArticleCount {
			return unranked[i].ArticleCount > unranked[j].ArticleCount
		}
		return lessName(unranked[i], unranked[j])
	})

	ordered := append(ranked, unranked...)
	if n < 0 {
		n = 0
	}
	if n > len(ordered) {
		n = len(ordered)
	}
	top = append([]content.League(nil), ordered[:n]...)
	others = append([]content.League(nil), ordered[n:]...)
	sort.SliceStable(others, func(i, j int) bool { return lessName(others[i], others[j]) })
	return top, others
}

func lessName(a, b content.League) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.Slug < b.Slug
}

// Navigation fetches all leagues and ranks them for both menu sizes.
func (s *Service) Navigation(ctx context.Context, currentSlug string) (Navigation, error) {
	leagues, err := s.repo.Leagues(ctx)
	if err != nil {
		return Navigation{}, fmt.Errorf("navigation: %w", err)
	}
	return buildNavigation(leagues, currentSlug), nil
}

func buildNavigation(leagues []content.League, currentSlug string) Navigation {
	section := func(n int) NavSection {
		top, others := RankNavigation(leagues, n)
		return NavSection{Top: navLinks(top), Others: navLinks(others)}
	}
	nav := Navigation{
		Compact:  section(compactNavSize),
		Expanded: section(expandedNavSize),
	}
	if currentSlug != "" {
		for _, l := range leagues {
			if l.Slug == currentSlug {
				nav.Current = &NavLink{Name: l.Name, Slug: l.Slug}
				break
			}
		}
	}
	return nav
}

func navLinks(leagues []content.League) []NavLink {
	links := make([]NavLink, 0, len(leagues))
	for _, l := range leagues {
		if l.Slug == "" {
			continue
		}
		links = append(links, NavLink{Name: l.Name, Slug: l.Slug})
	}
	return links
}
