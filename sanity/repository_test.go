package sanity_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/JohnnyAddis/underserved-sports-mvp/content"
	"github.com/JohnnyAddis/underserved-sports-mvp/portabletext"
	"github.com/JohnnyAddis/underserved-sports-mvp/sanity"
	"github.com/JohnnyAddis/underserved-sports-mvp/sanity/mocks"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	querier *mocks.MockQuerier
	repo    *sanity.Repository
	ctx     context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.querier = mocks.NewMockQuerier(s.ctrl)
	s.repo = sanity.NewRepository(s.querier)
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

var publicParams = []string{"draft", "ai_generated"}

func (s *RepositoryTestSuite) TestArticle_BindsSlugAndHiddenStatuses() {
	s.querier.EXPECT().
		Fetch(s.ctx, gomock.Any(), sanity.Params{"slug": "final-four", "hiddenStatuses": publicParams}).
		Return(json.RawMessage(`{
			"_id": "a1",
			"title": "Final Four Preview",
			"slug": "final-four",
			"excerpt": "Who makes it?",
			"status": "published",
			"publishedAt": "2025-03-01T10:00:00Z",
			"_updatedAt": "2025-03-02T10:00:00Z",
			"tags": ["playoffs", ""],
			"sources": ["https://example.com/src"],
			"metaTitle": "",
			"noindex": false,
			"hero": {"url": "https://cdn.sanity.io/images/p/production/hero.jpg", "alt": "Court"},
			"body": [{"_type":"block","style":"normal","children":[{"_type":"span","text":"Tip-off."}]}],
			"author": {"name": "Sam Reporter"},
			"league": {"_id": "l1", "name": "PBA", "slug": "pba", "featureRank": 2},
			"team": null,
			"related": [
				{"_id": "a2", "title": "Quarterfinals", "slug": "quarterfinals", "status": "edited", "publishedAt": "2025-02-20"},
				null,
				{"_id": "a3", "title": "Hidden", "slug": "hidden", "status": "ai_generated"}
			]
		}`), nil)

	a, err := s.repo.Article(s.ctx, "final-four")
	s.Require().NoError(err)
	s.Require().NotNil(a)

	s.Equal("Final Four Preview", a.Title)
	s.Equal(content.StatusPublished, a.Status)
	s.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), a.PublishedAt)
	s.Equal([]string{"playoffs"}, a.Tags)
	s.Require().NotNil(a.Hero)
	s.Equal("Court", a.Hero.Alt)
	s.Require().Len(a.Body, 1)
	s.IsType(portabletext.Paragraph{}, a.Body[0])
	s.Require().NotNil(a.Author)
	s.Equal("Sam Reporter", a.Author.Name)
	s.Require().NotNil(a.League)
	s.Equal("pba", a.League.Slug)
	s.Require().NotNil(a.League.FeatureRank)
	s.Equal(2, *a.League.FeatureRank)
	s.Nil(a.Team)

	s.Require().Len(a.Related, 1)
	s.Equal("quarterfinals", a.Related[0].Slug)
	s.Equal(time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), a.Related[0].PublishedAt)
}

func (s *RepositoryTestSuite) TestArticle_NotFound() {
	s.querier.EXPECT().Fetch(s.ctx, gomock.Any(), gomock.Any()).Return(json.RawMessage(`null`), nil)

	a, err := s.repo.Article(s.ctx, "nope")
	s.NoError(err)
	s.Nil(a)
}

func (s *RepositoryTestSuite) TestArticle_UpstreamError() {
	boom := &sanity.APIError{StatusCode: 500}
	s.querier.EXPECT().Fetch(s.ctx, gomock.Any(), gomock.Any()).Return(nil, boom)

	a, err := s.repo.Article(s.ctx, "x")
	s.Nil(a)
	s.True(errors.Is(err, sanity.ErrUnexpectedStatus))
}

func (s *RepositoryTestSuite) TestArticle_SchemaDriftIsTolerated() {
	s.querier.EXPECT().Fetch(s.ctx, gomock.Any(), gomock.Any()).Return(json.RawMessage(`{
		"title": "Drift",
		"slug": "drift",
		"tags": "not-a-list",
		"noindex": "yes",
		"body": "plain string body",
		"author": {"name": 42}
	}`), nil)

	a, err := s.repo.Article(s.ctx, "drift")
	s.Require().NoError(err)
	s.Require().NotNil(a)
	s.Equal("Drift", a.Title)
	s.Empty(a.Tags)
	s.False(a.SEO.NoIndex)
	s.Empty(a.Body)
	s.Nil(a.Author)
}

func (s *RepositoryTestSuite) TestArticle_MalformedJSONFails() {
	s.querier.EXPECT().Fetch(s.ctx, gomock.Any(), gomock.Any()).Return(json.RawMessage(`{"title":`), nil)

	_, err := s.repo.Article(s.ctx, "x")
	s.Error(err)
}

func (s *RepositoryTestSuite) TestPreviewRepositoryShowsHidden() {
	repo := sanity.NewRepository(s.querier, sanity.IncludeHidden())
	s.querier.EXPECT().
		Fetch(s.ctx, gomock.Any(), sanity.Params{"slug": "draft-piece", "hiddenStatuses": []string{}}).
		Return(json.RawMessage(`{"title":"WIP","slug":"draft-piece","status":"draft",
			"related":[{"title":"Other WIP","slug":"other","status":"ai_generated"}]}`), nil)

	a, err := repo.Article(s.ctx, "draft-piece")
	s.Require().NoError(err)
	s.Equal(content.StatusDraft, a.Status)
	s.Len(a.Related, 1)
}

func (s *RepositoryTestSuite) TestLeague() {
	s.querier.EXPECT().
		Fetch(s.ctx, gomock.Any(), sanity.Params{"slug": "pba", "hiddenStatuses": publicParams}).
		Return(json.RawMessage(`{"_id":"l1","name":"PBA","slug":"pba","isFeatured":true,
			"metaTitle":"PBA News","noindex":true,"articleCount":7,
			"logo":{"url":"https://cdn.sanity.io/logo.png"},
			"about":[{"_type":"block","style":"h2","children":[{"_type":"span","text":"About"}]}]}`), nil)

	l, err := s.repo.League(s.ctx, "pba")
	s.Require().NoError(err)
	s.Require().NotNil(l)
	s.Equal("PBA", l.Name)
	s.True(l.Featured)
	s.True(l.SEO.NoIndex)
	s.Equal(7, l.ArticleCount)
	s.Nil(l.FeatureRank)
	s.Require().NotNil(l.Logo)
	s.Len(l.About, 1)
}

func (s *RepositoryTestSuite) TestLeagueFeatureRankIsClamped() {
	tests := []struct {
		raw  string
		want int
	}{
		{`2.4`, 2},
		{`-3.6`, -4},
		{`1e300`, math.MaxInt32},
		{`-1e300`, math.MinInt32},
		{`4294967296`, math.MaxInt32},
	}
	for _, tt := range tests {
		s.querier.EXPECT().
			Fetch(s.ctx, gomock.Any(), gomock.Any()).
			Return(json.RawMessage(`{"_id":"l1","name":"PBA","slug":"pba","featureRank":`+tt.raw+`}`), nil)

		l, err := s.repo.League(s.ctx, "pba")
		s.Require().NoError(err)
		s.Require().NotNil(l.FeatureRank, tt.raw)
		s.Equal(tt.want, *l.FeatureRank, tt.raw)
	}
}

func (s *RepositoryTestSuite) TestLeagueEvergreen() {
	s.querier.EXPECT().
		Fetch(s.ctx, gomock.Any(), sanity.Params{"slug": "pba"}).
		Return(json.RawMessage(`{
			"league": {"_id":"l1","name":"PBA","slug":"pba"},
			"teams": [{"name":"Ginebra","founded":"1979"}, {"founded":"2000"}],
			"stats": [{"label":"Founded","value":"1975"}],
			"champions": [{"year":"2024","team":"San Miguel","runnerUp":"Ginebra"}],
			"metaTitle": "About the PBA"
		}`), nil)

	e, err := s.repo.LeagueEvergreen(s.ctx, "pba")
	s.Require().NoError(err)
	s.Require().NotNil(e)
	s.Equal("PBA", e.League.Name)
	s.Len(e.Teams, 1)
	s.Equal([]content.Stat{{Label: "Founded", Value: "1975"}}, e.Stats)
	s.Equal("Ginebra", e.Champions[0].RunnerUp)
	s.Equal("About the PBA", e.MetaTitle)
}

func (s *RepositoryTestSuite) TestLatestInLeague() {
	s.querier.EXPECT().
		Fetch(s.ctx, gomock.Any(), sanity.Params{"leagueId": "l1", "exclude": "self", "limit": 5, "hiddenStatuses": publicParams}).
		Return(json.RawMessage(`[
			{"title":"B","slug":"b","_updatedAt":"2025-01-02T00:00:00Z","league":{"name":"PBA","slug":"pba"}},
			{"title":"C","slug":"c","_createdAt":"2025-01-01T00:00:00Z"}
		]`), nil)

	cards, err := s.repo.LatestInLeague(s.ctx, "l1", "self", 5)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Equal("b", cards[0].Slug)
	s.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), cards[0].PublishedAt)
	s.Equal(&content.LeagueRef{Name: "PBA", Slug: "pba"}, cards[0].League)
	s.Nil(cards[1].League)
}

func (s *RepositoryTestSuite) TestLeagues() {
	s.querier.EXPECT().
		Fetch(s.ctx, gomock.Any(), sanity.Params{"hiddenStatuses": publicParams}).
		Return(json.RawMessage(`[{"name":"A","slug":"a","articleCount":3,"featureRank":1},{"name":"No slug"}]`), nil)

	leagues, err := s.repo.Leagues(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(leagues, 1)
	s.Equal(3, leagues[0].ArticleCount)
}

func (s *RepositoryTestSuite) TestSitemaps() {
	gomock.InOrder(
		s.querier.EXPECT().Fetch(s.ctx, gomock.Any(), sanity.Params{"hiddenStatuses": publicParams}).
			Return(json.RawMessage(`[{"slug":"a","updatedAt":"2025-05-01T00:00:00Z"},{"slug":""}]`), nil),
		s.querier.EXPECT().Fetch(s.ctx, gomock.Any(), gomock.Nil()).
			Return(json.RawMessage(`[{"slug":"pba","updatedAt":"2025-04-01T00:00:00Z"}]`), nil),
	)

	articles, err := s.repo.ArticleSitemap(s.ctx)
	s.Require().NoError(err)
	s.Len(articles, 1)

	leagues, err := s.repo.LeagueSitemap(s.ctx)
	s.Require().NoError(err)
	s.Equal("pba", leagues[0].Slug)
}
