package database

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type catalog struct {
	genre, subgenre, author *content.Entity
	fugazi, shellac         *content.Entity
	repeater                *content.Entity
	review                  *content.Entity
}

func mustAdd(t *testing.T, s *SqliteStore, e *content.Entity, drafts ...content.LinkDraft) *content.Entity {
	t.Helper()
	require.NoError(t, s.AddEntity(context.Background(), e, drafts))
	return e
}

func seedCatalog(t *testing.T, s *SqliteStore) catalog {
	t.Helper()
	var c catalog
	c.genre = mustAdd(t, s, content.NewEntity(content.KindGenre, "Post-hardcore"))
	c.subgenre = mustAdd(t, s, content.NewEntity(content.KindSubgenre, "Emo"))
	c.author = mustAdd(t, s, content.NewEntity(content.KindAuthor, "Jane Doe"))
	c.fugazi = mustAdd(t, s, content.NewEntity(content.KindArtist, "Fugazi"),
		content.LinkDraft{Kind: content.ArtistGenre, TargetID: c.genre.ID})
	c.shellac = mustAdd(t, s, content.NewEntity(content.KindArtist, "Shellac"),
		content.LinkDraft{Kind: content.ArtistGenre, TargetID: c.genre.ID})
	c.repeater = mustAdd(t, s, content.NewEntity(content.KindAlbum, "Repeater"),
		content.LinkDraft{Kind: content.AlbumArtist, TargetID: c.fugazi.ID},
		content.LinkDraft{Kind: content.AlbumGenre, TargetID: c.genre.ID},
		content.LinkDraft{Kind: content.AlbumSubgenre, TargetID: c.subgenre.ID})

	review := content.NewEntity(content.KindReview, "Repeater review")
	rating := 5
	review.Rating = &rating
	review.Live = true
	c.review = mustAdd(t, s, review,
		content.LinkDraft{Kind: content.ReviewAlbum, TargetID: c.repeater.ID},
		content.LinkDraft{Kind: content.ReviewArtist, TargetID: c.fugazi.ID},
		content.LinkDraft{Kind: content.ReviewAuthor, TargetID: c.author.ID})
	return c
}

func positions(t *testing.T, s *SqliteStore, ownerID string, kind content.LinkKind) []int {
	t.Helper()
	links, err := s.ListLinks(context.Background(), ownerID, kind)
	require.NoError(t, err)
	var out []int
	for _, l := range links {
		out = append(out, l.Position)
	}
	return out
}

func TestAddEntity_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	formed := time.Date(1987, time.January, 1, 0, 0, 0, 0, time.UTC)
	genre := mustAdd(t, s, content.NewEntity(content.KindGenre, "Post-hardcore"))
	artist := content.NewEntity(content.KindArtist, "Fugazi")
	artist.DateFormed = &formed
	artist.ExternalURL = "https://www.dischord.com/band/fugazi"
	artist.Attributes["origin"] = "Washington, D.C."
	mustAdd(t, s, artist, content.LinkDraft{Kind: content.ArtistGenre, TargetID: genre.ID})

	got, err := s.GetEntity(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fugazi", got.Title)
	assert.Equal(t, "fugazi", got.Slug)
	assert.True(t, got.Live)
	require.NotNil(t, got.DateFormed)
	assert.True(t, formed.Equal(*got.DateFormed))
	assert.Equal(t, "Washington, D.C.", got.Attributes["origin"])

	bySlug, err := s.GetEntityBySlug(ctx, content.KindArtist, "fugazi")
	require.NoError(t, err)
	assert.Equal(t, artist.ID, bySlug.ID)

	_, err = s.GetEntityBySlug(ctx, content.KindAlbum, "fugazi")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestAddEntity_RequiresMinimumLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	album := content.NewEntity(content.KindAlbum, "13 Songs")
	err := s.AddEntity(ctx, album, nil)
	assert.ErrorIs(t, err, content.ErrValidation)

	_, err = s.GetEntity(ctx, album.ID)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestAddEntity_IsAtomicOnMissingTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	artist := content.NewEntity(content.KindArtist, "Minor Threat")
	err := s.AddEntity(ctx, artist, []content.LinkDraft{{Kind: content.ArtistGenre, TargetID: "missing"}})
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = s.GetEntity(ctx, artist.ID)
	assert.ErrorIs(t, err, content.ErrNotFound, "owner must not be stored when a link fails")
}

func TestAddEntity_RejectsDuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, content.NewEntity(content.KindGenre, "Punk"))
	err := s.AddEntity(context.Background(), content.NewEntity(content.KindGenre, "Punk!"), nil)
	assert.ErrorIs(t, err, content.ErrValidation)
}

func TestUpdateEntity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	c.review.Title = "Repeater, reconsidered"
	c.review.Slug = ""
	bad := 7
	c.review.Rating = &bad
	assert.ErrorIs(t, s.UpdateEntity(ctx, c.review), content.ErrValidation)

	good := 4
	c.review.Rating = &good
	require.NoError(t, s.UpdateEntity(ctx, c.review))

	got, err := s.GetEntity(ctx, c.review.ID)
	require.NoError(t, err)
	assert.Equal(t, "repeater-reconsidered", got.Slug)
	assert.Equal(t, 4, *got.Rating)

	c.review.Kind = content.KindNews
	c.review.Rating = nil
	assert.ErrorIs(t, s.UpdateEntity(ctx, c.review), content.ErrValidation)

	missing := content.NewEntity(content.KindGenre, "Ghost")
	assert.ErrorIs(t, s.UpdateEntity(ctx, missing), content.ErrNotFound)
}

func TestAddLink_AppendsAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	id, err := s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, nil)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, []int{0, 1}, positions(t, s, c.repeater.ID, content.AlbumArtist))

	links, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Fugazi", links[0].Target.Title)
	assert.Equal(t, "Shellac", links[1].Target.Title)
}

func TestAddLink_ExplicitPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	taken := 0
	_, err := s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, &taken)
	assert.ErrorIs(t, err, content.ErrValidation)

	negative := -3
	_, err = s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, &negative)
	assert.ErrorIs(t, err, content.ErrValidation)

	sparse := 10
	_, err = s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, &sparse)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10}, positions(t, s, c.repeater.ID, content.AlbumArtist))
}

func TestAddLink_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	other := mustAdd(t, s, content.NewEntity(content.KindGenre, "Noise rock"))
	_, err := s.AddLink(ctx, c.repeater.ID, content.AlbumGenre, other.ID, nil)
	assert.ErrorIs(t, err, content.ErrValidation, "album-genre is exactly one")

	_, err = s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.fugazi.ID, nil)
	assert.ErrorIs(t, err, content.ErrValidation, "duplicate target")

	_, err = s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.genre.ID, nil)
	assert.ErrorIs(t, err, content.ErrValidation, "wrong target kind")

	_, err = s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, "missing", nil)
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = s.AddLink(ctx, "missing", content.AlbumArtist, c.fugazi.ID, nil)
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = s.AddLink(ctx, c.repeater.ID, "album-song", c.fugazi.ID, nil)
	assert.ErrorIs(t, err, content.ErrValidation)
}

func TestRemoveLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	shellacLink, err := s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, nil)
	require.NoError(t, err)
	third := mustAdd(t, s, content.NewEntity(content.KindArtist, "Rites of Spring"),
		content.LinkDraft{Kind: content.ArtistGenre, TargetID: c.genre.ID})
	_, err = s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, third.ID, nil)
	require.NoError(t, err)

	require.NoError(t, s.RemoveLink(ctx, c.repeater.ID, content.AlbumArtist, shellacLink))
	assert.Equal(t, []int{0, 2}, positions(t, s, c.repeater.ID, content.AlbumArtist), "remove does not renumber")

	err = s.RemoveLink(ctx, c.review.ID, content.AlbumArtist, shellacLink)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestRemoveLink_KeepsRequiredLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	links, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumGenre)
	require.NoError(t, err)
	require.Len(t, links, 1)

	err = s.RemoveLink(ctx, c.repeater.ID, content.AlbumGenre, links[0].ID)
	assert.ErrorIs(t, err, content.ErrValidation)

	after, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumGenre)
	require.NoError(t, err)
	assert.Len(t, after, 1, "the link must remain")
}

func TestRemoveLink_WrongKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	links, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	err = s.RemoveLink(ctx, c.repeater.ID, content.AlbumSubgenre, links[0].ID)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestReorderLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	first, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	sparse := 7
	second, err := s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, &sparse)
	require.NoError(t, err)

	require.NoError(t, s.ReorderLinks(ctx, c.repeater.ID, content.AlbumArtist, []int64{second, first[0].ID}))
	links, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	assert.Equal(t, "Shellac", links[0].Target.Title)
	assert.Equal(t, []int{0, 1}, positions(t, s, c.repeater.ID, content.AlbumArtist))
}

func TestReorderLinks_RejectsNonPermutation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	first, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	second, err := s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, nil)
	require.NoError(t, err)

	for _, order := range [][]int64{
		{second},
		{second, second},
		{second, first[0].ID, 9999},
		{second, 9999},
	} {
		err := s.ReorderLinks(ctx, c.repeater.ID, content.AlbumArtist, order)
		assert.ErrorIs(t, err, content.ErrValidation, "order %v", order)
	}

	links, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, links[0].ID, "stored order must be unchanged")
	assert.Equal(t, second, links[1].ID)
}

func TestLinkPositionsStayStrictlyIncreasing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	news := mustAdd(t, s, content.NewEntity(content.KindNews, "Tour dates"),
		content.LinkDraft{Kind: content.NewsArtist, TargetID: c.fugazi.ID})
	var albums []*content.Entity
	for _, title := range []string{"13 Songs", "In on the Kill Taker", "Red Medicine", "End Hits", "The Argument"} {
		albums = append(albums, mustAdd(t, s, content.NewEntity(content.KindAlbum, title),
			content.LinkDraft{Kind: content.AlbumArtist, TargetID: c.fugazi.ID},
			content.LinkDraft{Kind: content.AlbumGenre, TargetID: c.genre.ID},
			content.LinkDraft{Kind: content.AlbumSubgenre, TargetID: c.subgenre.ID}))
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 60; i++ {
		links, err := s.ListLinks(ctx, news.ID, content.NewsAlbum)
		require.NoError(t, err)
		switch op := rng.Intn(3); {
		case op == 0:
			album := albums[rng.Intn(len(albums))]
			_, _ = s.AddLink(ctx, news.ID, content.NewsAlbum, album.ID, nil)
		case op == 1 && len(links) > 0:
			require.NoError(t, s.RemoveLink(ctx, news.ID, content.NewsAlbum, links[rng.Intn(len(links))].ID))
		case op == 2:
			order := make([]int64, len(links))
			for j, l := range links {
				order[j] = l.ID
			}
			rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
			require.NoError(t, s.ReorderLinks(ctx, news.ID, content.NewsAlbum, order))
		}

		got := positions(t, s, news.ID, content.NewsAlbum)
		for j := 1; j < len(got); j++ {
			require.Less(t, got[j-1], got[j], "positions after step %d: %v", i, got)
		}
	}
}

func TestOwnersOf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	draft := content.NewEntity(content.KindReview, "Repeater draft review")
	mustAdd(t, s, draft,
		content.LinkDraft{Kind: content.ReviewAlbum, TargetID: c.repeater.ID},
		content.LinkDraft{Kind: content.ReviewArtist, TargetID: c.fugazi.ID},
		content.LinkDraft{Kind: content.ReviewAuthor, TargetID: c.author.ID})

	live, err := s.OwnersOf(ctx, c.fugazi.ID, content.ReviewArtist, true)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, c.review.ID, live[0].ID)

	all, err := s.OwnersOf(ctx, c.fugazi.ID, content.ReviewArtist, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Repeater draft review", all[0].Title, "owners are ordered by title")

	none, err := s.OwnersOf(ctx, c.shellac.ID, content.ReviewArtist, false)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.OwnersOf(ctx, "missing", content.ReviewArtist, false)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestDeleteEntity_AppliesDeletePolicies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	feature := mustAdd(t, s, content.NewEntity(content.KindFeature, "DC scene"),
		content.LinkDraft{Kind: content.FeatureArtist, TargetID: c.shellac.ID})
	_, err := s.AddLink(ctx, c.repeater.ID, content.AlbumArtist, c.shellac.ID, nil)
	require.NoError(t, err)

	dangling, err := s.DeleteEntity(ctx, c.shellac.ID)
	require.NoError(t, err)
	require.Len(t, dangling, 1)
	assert.Equal(t, content.AlbumArtist, dangling[0].Kind)
	assert.Equal(t, c.repeater.ID, dangling[0].OwnerID)

	featureLinks, err := s.ListLinks(ctx, feature.ID, content.FeatureArtist)
	require.NoError(t, err)
	assert.Empty(t, featureLinks, "optional links cascade")

	albumLinks, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	require.Len(t, albumLinks, 2)
	assert.False(t, albumLinks[0].Dangling())
	assert.True(t, albumLinks[1].Dangling())
	assert.Nil(t, albumLinks[1].Target)

	all, err := s.DanglingLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, dangling, all)

	require.NoError(t, s.RetargetLink(ctx, c.repeater.ID, content.AlbumArtist, albumLinks[1].ID, mustAdd(t, s,
		content.NewEntity(content.KindArtist, "The Evens"),
		content.LinkDraft{Kind: content.ArtistGenre, TargetID: c.genre.ID}).ID))
	all, err = s.DanglingLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteEntity_CascadesOwnedLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	_, err := s.DeleteEntity(ctx, c.review.ID)
	require.NoError(t, err)

	owners, err := s.OwnersOf(ctx, c.repeater.ID, content.ReviewAlbum, false)
	require.NoError(t, err)
	assert.Empty(t, owners)

	_, err = s.DeleteEntity(ctx, c.review.ID)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestRetargetLink_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedCatalog(t, s)

	links, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)

	assert.ErrorIs(t, s.RetargetLink(ctx, c.repeater.ID, content.AlbumArtist, links[0].ID, c.genre.ID), content.ErrValidation)
	assert.ErrorIs(t, s.RetargetLink(ctx, c.repeater.ID, content.AlbumArtist, 9999, c.shellac.ID), content.ErrNotFound)
	require.NoError(t, s.RetargetLink(ctx, c.repeater.ID, content.AlbumArtist, links[0].ID, c.shellac.ID))

	after, err := s.ListLinks(ctx, c.repeater.ID, content.AlbumArtist)
	require.NoError(t, err)
	assert.Equal(t, "Shellac", after[0].Target.Title)
	assert.Equal(t, links[0].Position, after[0].Position)
}

func TestCountEntities(t *testing.T) {
	s := newTestStore(t)
	seedCatalog(t, s)

	counts, err := s.CountEntities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[content.KindArtist])
	assert.Equal(t, 1, counts[content.KindReview])
	assert.Zero(t, counts[content.KindTour])
}
