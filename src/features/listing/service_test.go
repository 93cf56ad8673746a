package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/config"
	"github.com/contre95/monkeypress/src/features/relations"
	"github.com/contre95/monkeypress/src/infra/database"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type site struct {
	store    *database.SqliteStore
	service  *Service
	repeater *content.Entity
	album    *content.Entity
	fugazi   *content.Entity
	author   *content.Entity
}

func newSite(t *testing.T, listing config.Listing) site {
	t.Helper()
	ctx := context.Background()
	store, err := database.NewSqliteStore(filepath.Join(t.TempDir(), "listing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	add := func(e *content.Entity, drafts ...content.LinkDraft) *content.Entity {
		require.NoError(t, store.AddEntity(ctx, e, drafts))
		return e
	}

	genre := add(content.NewEntity(content.KindGenre, "Post-hardcore"))
	sub := add(content.NewEntity(content.KindSubgenre, "Emo"))
	author := add(content.NewEntity(content.KindAuthor, "Jane Doe"))
	fugazi := add(content.NewEntity(content.KindArtist, "Fugazi"), content.LinkDraft{Kind: content.ArtistGenre, TargetID: genre.ID})
	album := add(content.NewEntity(content.KindAlbum, "Repeater"),
		content.LinkDraft{Kind: content.AlbumArtist, TargetID: fugazi.ID},
		content.LinkDraft{Kind: content.AlbumGenre, TargetID: genre.ID},
		content.LinkDraft{Kind: content.AlbumSubgenre, TargetID: sub.ID})

	newReview := func(title string, rating int, published time.Time, live bool) *content.Entity {
		r := content.NewEntity(content.KindReview, title)
		r.Rating = &rating
		r.PublishedAt = published
		r.Live = live
		return add(r,
			content.LinkDraft{Kind: content.ReviewAlbum, TargetID: album.ID},
			content.LinkDraft{Kind: content.ReviewArtist, TargetID: fugazi.ID},
			content.LinkDraft{Kind: content.ReviewAuthor, TargetID: author.ID})
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repeater := newReview("Repeater revisited", 5, base, true)
	newReview("Repeater, ten years on", 4, base.AddDate(0, 1, 0), true)
	newReview("Draft take", 2, base.AddDate(0, 2, 0), false)

	cfg := config.NewManager(&config.Config{Listing: listing})
	rel := relations.NewService(store, nil, nil)
	return site{
		store:    store,
		service:  NewService(store, rel, cfg, nil),
		repeater: repeater,
		album:    album,
		fugazi:   fugazi,
		author:   author,
	}
}

func defaultListing() config.Listing {
	return config.Listing{Reviews: 10, News: 10, Features: 2, Tours: 10, Artists: 10, Authors: 10}
}

func TestIndex_ReviewScenario(t *testing.T) {
	s := newSite(t, defaultListing())
	ctx := context.Background()

	got, err := s.service.Index(ctx, "reviews", Query{Filters: map[string]string{FilterArtistName: "Fug"}}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Repeater, ten years on", "Repeater revisited"}, titles(got.Items))

	got, err = s.service.Index(ctx, "reviews", Query{Filters: map[string]string{FilterArtistName: "Xyz"}}, "")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, 1, got.Page.TotalPages)

	got, err = s.service.Index(ctx, "reviews", Query{}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Repeater, ten years on", "Repeater revisited"}, titles(got.Items), "drafts are not listed")

	got, err = s.service.Index(ctx, "reviews", Query{Filters: map[string]string{FilterGenre: "post-hardcore"}, Sort: SortRatingDesc}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Repeater revisited", "Repeater, ten years on"}, titles(got.Items))
}

func TestIndex_ClampsPage(t *testing.T) {
	s := newSite(t, config.Listing{Reviews: 1, News: 1, Features: 1, Tours: 1, Artists: 1, Authors: 1})

	got, err := s.service.Index(context.Background(), "reviews", Query{}, "99")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Page.Number)
	assert.Equal(t, []string{"Repeater revisited"}, titles(got.Items))

	got, err = s.service.Index(context.Background(), "news", Query{}, "abc")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, 1, got.Page.Number)
	assert.False(t, got.Page.HasNext)
	assert.False(t, got.Page.HasPrevious)
}

func TestIndex_UnknownIndex(t *testing.T) {
	s := newSite(t, defaultListing())
	_, err := s.service.Index(context.Background(), "podcasts", Query{}, "")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestDetail_ArtistReverseLookups(t *testing.T) {
	s := newSite(t, defaultListing())

	d, err := s.service.Detail(context.Background(), content.KindArtist, "fugazi")
	require.NoError(t, err)
	assert.Equal(t, []string{"Repeater"}, titles(d.Related["discography"]))
	assert.Equal(t, []string{"Repeater, ten years on", "Repeater revisited"}, titles(d.Related["reviews"]))
	assert.Equal(t, []string{"Post-hardcore"}, titles(d.Related["genres"]))
	assert.Empty(t, d.Related["features"])
}

func TestDetail_SkipsDanglingAndHidesDrafts(t *testing.T) {
	s := newSite(t, defaultListing())
	ctx := context.Background()

	_, err := s.service.Detail(ctx, content.KindReview, "draft-take")
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = s.service.Detail(ctx, content.KindReview, "no-such-review")
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = s.store.DeleteEntity(ctx, s.author.ID)
	require.NoError(t, err)

	d, err := s.service.Detail(ctx, content.KindReview, s.repeater.Slug)
	require.NoError(t, err)
	assert.Empty(t, d.Related["authors"], "dangling author link is skipped")
	assert.Equal(t, []string{"Repeater"}, titles(d.Related["albums"]))
}

func TestHandlers_IndexAndDetail(t *testing.T) {
	s := newSite(t, defaultListing())
	app := fiber.New()
	RegisterRoutes(app, s.service)

	get := func(path string) (int, map[string]any) {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		out := map[string]any{}
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
		return resp.StatusCode, out
	}

	status, body := get("/reviews?artist_name=Fug&sort_by=rating-asc&page=7&utm_source=mail")
	require.Equal(t, fiber.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Repeater, ten years on", items[0].(map[string]any)["title"])
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["page"])

	status, body = get("/reviews?rating=")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["items"], 2)

	status, body = get(fmt.Sprintf("/artists/%s", s.fugazi.Slug))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Fugazi", body["entity"].(map[string]any)["title"])

	status, _ = get("/albums/not-an-album")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDetail_TrackListAndTourDates(t *testing.T) {
	s := newSite(t, defaultListing())
	ctx := context.Background()

	for _, title := range []string{"Turnover", "Repeater", "Brendan #1"} {
		_, err := s.store.AddTrack(ctx, s.album.ID, &content.Track{Title: title}, nil)
		require.NoError(t, err)
	}
	tracks, err := s.store.ListTracks(ctx, s.album.ID)
	require.NoError(t, err)
	require.NoError(t, s.store.ReorderTracks(ctx, s.album.ID, []int64{tracks[1].ID, tracks[0].ID, tracks[2].ID}))

	d, err := s.service.Detail(ctx, content.KindAlbum, s.album.Slug)
	require.NoError(t, err)
	var got []string
	for _, tr := range d.Tracks {
		got = append(got, tr.Title)
	}
	assert.Equal(t, []string{"Repeater", "Turnover", "Brendan #1"}, got)
	assert.Empty(t, d.Dates)

	tour := content.NewEntity(content.KindTour, "Repeater Tour")
	tour.Live = true
	require.NoError(t, s.store.AddEntity(ctx, tour, []content.LinkDraft{{Kind: content.TourArtist, TargetID: s.fugazi.ID}}))
	_, err = s.store.AddTourDate(ctx, tour.ID, &content.TourDate{Venue: "9:30 Club", City: "Washington"}, nil)
	require.NoError(t, err)
	_, err = s.store.AddTourDate(ctx, tour.ID, &content.TourDate{Venue: "Fort Reno Park"}, nil)
	require.NoError(t, err)

	d, err = s.service.Detail(ctx, content.KindTour, tour.Slug)
	require.NoError(t, err)
	require.Len(t, d.Dates, 2)
	assert.Equal(t, "9:30 Club", d.Dates[0].Venue)
	assert.Equal(t, "Fort Reno Park", d.Dates[1].Venue)
	assert.Empty(t, d.Tracks)

	d, err = s.service.Detail(ctx, content.KindReview, s.repeater.Slug)
	require.NoError(t, err)
	assert.Nil(t, d.Tracks)
	assert.Nil(t, d.Dates)
}
