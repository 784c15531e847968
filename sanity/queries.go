package sanity

// publicArticle restricts articles to published, non-hidden documents.
// $hiddenStatuses is bound on every query that uses it.
const publicArticle = `!(_id in path("drafts.**")) && !(defined(status) && status in $hiddenStatuses)`

const articleOrder = `order(coalesce(publishedAt, _updatedAt, _createdAt) desc)`

const imageProjection = `{alt, caption, credit, "url": asset->url}`

const leagueRefProjection = `{name, "slug": slug.current}`

const cardProjection = `{
  _id, title, "slug": slug.current, excerpt, status, publishedAt, _updatedAt, _createdAt,
  "image": heroImage` + imageProjection + `,
  "league": league->` + leagueRefProjection + `
}`

const leagueProjection = `{
  _id, name, "slug": slug.current, aboutSummary, isFeatured, featureRank,
  metaTitle, metaDescription, noindex, _updatedAt,
  "logo": logo` + imageProjection + `
}`

const queryArticleBySlug = `*[_type == "article" && slug.current == $slug && ` + publicArticle + `][0]{
  _id, title, "slug": slug.current, excerpt, status, tags, sources,
  publishedAt, _updatedAt, _createdAt,
  metaTitle, metaDescription, noindex,
  "hero": heroImage` + imageProjection + `,
  body[]{..., _type == "image" => {..., "url": asset->url}},
  "author": author->{name, "avatar": avatar` + imageProjection + `},
  "league": league->` + leagueProjection + `,
  "team": team->{name, "slug": slug.current},
  "related": relatedArticles[]->` + cardProjection + `
}`

const queryLeagueBySlug = `*[_type == "league" && slug.current == $slug && !(_id in path("drafts.**"))][0]{
  _id, name, "slug": slug.current, aboutSummary, isFeatured, featureRank,
  metaTitle, metaDescription, noindex, _updatedAt,
  "logo": logo` + imageProjection + `,
  about[]{..., _type == "image" => {..., "url": asset->url}},
  "articleCount": count(*[_type == "article" && references(^._id) && ` + publicArticle + `])
}`

const queryLeagueEvergreen = `*[_type == "leagueEvergreen" && league->slug.current == $slug && !(_id in path("drafts.**"))][0]{
  "league": league->` + leagueProjection + `,
  history[]{..., _type == "image" => {..., "url": asset->url}},
  format[]{..., _type == "image" => {..., "url": asset->url}},
  teams[]{name, founded, location, stadium, description},
  stats[]{label, value},
  champions[]{year, team, runnerUp, notes},
  metaTitle, metaDescription
}`

const queryLeagueArticles = `*[_type == "article" && league._ref == $leagueId && ` + publicArticle + `]|` + articleOrder + `[0...$limit]` + cardProjection

const queryLatestInLeague = `*[_type == "article" && league._ref == $leagueId && slug.current != $exclude && ` + publicArticle + `]|` + articleOrder + `[0...$limit]` + cardProjection

const queryTrending = `*[_type == "article" && ` + publicArticle + `]|` + articleOrder + `[0...$limit]` + cardProjection

const queryLeagues = `*[_type == "league" && !(_id in path("drafts.**"))]|order(name asc){
  _id, name, "slug": slug.current, aboutSummary, isFeatured, featureRank,
  metaTitle, metaDescription, noindex, _updatedAt,
  "logo": logo` + imageProjection + `,
  "articleCount": count(*[_type == "article" && references(^._id) && ` + publicArticle + `])
}`

const queryArticleSitemap = `*[_type == "article" && defined(slug.current) && ` + publicArticle + `]|` + articleOrder + `{
  "slug": slug.current, "updatedAt": coalesce(_updatedAt, publishedAt, _createdAt)
}`

const queryLeagueSitemap = `*[_type == "league" && defined(slug.current) && !(_id in path("drafts.**"))]|order(name asc){
  "slug": slug.current, "updatedAt": _updatedAt
}`
