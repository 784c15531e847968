package site

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
)

func names(leagues []content.League) []string {
	out := make([]string, len(leagues))
	for i, l := range leagues {
		out[i] = l.Name
	}
	return out
}

func TestRankNavigation(t *testing.T) {
	tests := []struct {
		name       string
		leagues    []content.League
		n          int
		wantTop    []string
		wantOthers []string
	}{
		{
			name: "ranked first then by count",
			leagues: []content.League{
				{Name: "Alpha", ArticleCount: 1},
				{Name: "Bravo", ArticleCount: 9},
				{Name: "Charlie", FeatureRank: rank(2)},
				{Name: "Delta", FeatureRank: rank(1), ArticleCount: 0},
				{Name: "Echo", ArticleCount: 9},
			},
			n:          3,
			wantTop:    []string{"Delta", "Charlie", "Bravo"},
			wantOthers: []string{"Alpha", "Echo"},
		},
		{
			name: "no ranks sorts by count then name",
			leagues: []content.League{
				{Name: "Zulu", ArticleCount: 3},
				{Name: "Yankee", ArticleCount: 3},
				{Name: "Xray", ArticleCount: 7},
				{Name: "Whiskey", ArticleCount: 1},
			},
			n:          3,
			wantTop:    []string{"Xray", "Yankee", "Zulu"},
			wantOthers: []string{"Whiskey"},
		},
		{
			name: "more ranked leagues than slots",
			leagues: []content.League{
				{Name: "A", FeatureRank: rank(3)},
				{Name: "B", FeatureRank: rank(1)},
				{Name: "C", FeatureRank: rank(2)},
				{Name: "D", ArticleCount: 100},
			},
			n:          2,
			wantTop:    []string{"B", "C"},
			wantOthers: []string{"A", "D"},
		},
		{
			name:       "fewer leagues than slots",
			leagues:    []content.League{{Name: "Solo"}},
			n:          5,
			wantTop:    []string{"Solo"},
			wantOthers: []string{},
		},
		{
			name:       "empty",
			n:          3,
			wantTop:    []string{},
			wantOthers: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, others := RankNavigation(tt.leagues, tt.n)
			assert.Equal(t, tt.wantTop, names(top))
			assert.Equal(t, tt.wantOthers, names(others))
		})
	}
}

func TestRankNavigationTopSizeAndPartition(t *testing.T) {
	leagues := []content.League{
		{Name: "A", ArticleCount: 5},
		{Name: "B", FeatureRank: rank(7)},
		{Name: "C", ArticleCount: 2},
		{Name: "D", FeatureRank: rank(1)},
		{Name: "E", ArticleCount: 9},
		{Name: "F"},
	}
	for _, n := range []int{3, 5} {
		top, others := RankNavigation(leagues, n)
		require.Len(t, top, n)
		assert.Len(t, others, len(leagues)-n)
		assert.ElementsMatch(t, names(leagues), append(names(top), names(others)...))

		seenUnranked := false
		for _, l := range top {
			if l.FeatureRank == nil {
				seenUnranked = true
			} else {
				assert.False(t, seenUnranked, "ranked league %s after an unranked one", l.Name)
			}
		}
	}
}

func TestRankNavigationDoesNotMutateInput(t *testing.T) {
	leagues := []content.League{{Name: "B", ArticleCount: 1}, {Name: "A", ArticleCount: 2}}
	RankNavigation(leagues, 1)
	assert.Equal(t, []string{"B", "A"}, names(leagues))
}

func TestNavigation(t *testing.T) {
	repo := newMemRepo()
	repo.leagues = []content.League{
		{Slug: "a", Name: "A", ArticleCount: 1},
		{Slug: "b", Name: "B", ArticleCount: 2},
		{Slug: "c", Name: "C", ArticleCount: 3},
		{Slug: "d", Name: "D", ArticleCount: 4},
		{Slug: "e", Name: "E", FeatureRank: rank(1)},
		{Slug: "f", Name: "F"},
	}
	svc := NewService(repo, Config{URL: "https://example.com"}, testLogger())

	nav, err := svc.Navigation(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, []NavLink{{"E", "e"}, {"D", "d"}, {"C", "c"}}, nav.Compact.Top)
	assert.Equal(t, []NavLink{{"A", "a"}, {"B", "b"}, {"F", "f"}}, nav.Compact.Others)
	assert.Len(t, nav.Expanded.Top, 5)
	assert.Equal(t, []NavLink{{"F", "f"}}, nav.Expanded.Others)
	require.NotNil(t, nav.Current)
	assert.Equal(t, "c", nav.Current.Slug)

	repo.fail["Leagues"] = assert.AnError
	_, err = svc.Navigation(context.Background(), "")
	assert.ErrorIs(t, err, assert.AnError)
}
