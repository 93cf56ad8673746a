package hosting

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/catalog"
	"github.com/contre95/monkeypress/src/features/config"
	"github.com/contre95/monkeypress/src/features/editorial"
	"github.com/contre95/monkeypress/src/features/listing"
	"github.com/contre95/monkeypress/src/features/metrics"
	"github.com/contre95/monkeypress/src/features/relations"
	"github.com/contre95/monkeypress/src/infra/database"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
site:
  name: "Noise & Static"
database:
  path: ./test.db
telegram:
  allowed_users: [editor]
metrics:
  enabled: false
`

func newManager(t *testing.T) *config.Manager {
	t.Helper()
	cfg, err := config.Parse(strings.NewReader(testConfig))
	require.NoError(t, err)
	return config.NewManager(cfg)
}

func TestStars(t *testing.T) {
	four, high, low := 4, 9, -2
	assert.Equal(t, "", stars(nil))
	assert.Equal(t, "★★★★☆", stars(&four))
	assert.Equal(t, "★★★★★", stars(&high))
	assert.Equal(t, "☆☆☆☆☆", stars(&low))
}

func TestEntityPath(t *testing.T) {
	review := content.NewEntity(content.KindReview, "Fugazi – Repeater")
	assert.Equal(t, "/reviews/fugazi-repeater", entityPath(review))

	album := content.NewEntity(content.KindAlbum, "Repeater")
	assert.Equal(t, "/albums/repeater", entityPath(album))

	genre := content.NewEntity(content.KindGenre, "Post-hardcore")
	assert.Empty(t, entityPath(genre), "genres have no page")
}

func TestTelegramBot_Authorized(t *testing.T) {
	manager := newManager(t)
	bot := newTelegramBot(nil, manager)

	ok, _ := bot.authorized("editor")
	assert.True(t, ok)

	ok, reply := bot.authorized("stranger")
	assert.False(t, ok)
	assert.Contains(t, reply, "Unknown user")

	cfg := *manager.Get()
	cfg.Telegram.AllowedUsers = nil
	manager.Update(&cfg)
	ok, reply = bot.authorized("editor")
	assert.False(t, ok)
	assert.Contains(t, reply, "No users configured")

	cfg.Demo = true
	manager.Update(&cfg)
	ok, _ = bot.authorized("stranger")
	assert.True(t, ok)
}

func TestTelegramBot_RoutesRegisteredCommands(t *testing.T) {
	manager := newManager(t)
	bot := newTelegramBot(nil, manager)
	bot.RegisterHandler("config", config.NewTelegramHandler(manager))
	bot.RegisterHandler("editorial", editorial.NewTelegramHandler(nil))
	bot.RegisterHandler("metrics", metrics.NewTelegramHandler(nil))

	assert.Equal(t, map[string]string{
		"config":   "config",
		"dangling": "editorial",
		"stats":    "metrics",
	}, bot.commands)

	help := bot.helpText()
	assert.True(t, strings.HasPrefix(help, "*🤖 Noise & Static Editorial Bot*"))
	configLine := strings.Index(help, "/config")
	danglingLine := strings.Index(help, "/dangling")
	statsLine := strings.Index(help, "/stats")
	require.Positive(t, configLine)
	assert.Less(t, configLine, danglingLine)
	assert.Less(t, danglingLine, statsLine)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `Post\-hardcore \(1988\)\!`, escapeMarkdown("Post-hardcore (1988)!"))
}

func TestServer_HealthAndRoot(t *testing.T) {
	server := NewServer(newManager(t), "config.yaml", Services{})

	resp, err := server.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = server.App().Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/reviews", resp.Header.Get("Location"))
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, requestLevel(fiber.StatusOK))
	assert.Equal(t, slog.LevelDebug, requestLevel(fiber.StatusFound))
	assert.Equal(t, slog.LevelWarn, requestLevel(fiber.StatusUnprocessableEntity))
	assert.Equal(t, slog.LevelError, requestLevel(fiber.StatusInternalServerError))
}

func TestServer_DetailPagesRenderTracksAndDates(t *testing.T) {
	ctx := context.Background()
	store, err := database.NewSqliteStore(filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	add := func(e *content.Entity, drafts ...content.LinkDraft) *content.Entity {
		require.NoError(t, store.AddEntity(ctx, e, drafts))
		return e
	}
	genre := add(content.NewEntity(content.KindGenre, "Post-hardcore"))
	sub := add(content.NewEntity(content.KindSubgenre, "Emo"))
	fugazi := add(content.NewEntity(content.KindArtist, "Fugazi"), content.LinkDraft{Kind: content.ArtistGenre, TargetID: genre.ID})
	album := add(content.NewEntity(content.KindAlbum, "Repeater"),
		content.LinkDraft{Kind: content.AlbumArtist, TargetID: fugazi.ID},
		content.LinkDraft{Kind: content.AlbumGenre, TargetID: genre.ID},
		content.LinkDraft{Kind: content.AlbumSubgenre, TargetID: sub.ID})
	tour := content.NewEntity(content.KindTour, "Repeater Tour")
	tour.Live = true
	add(tour, content.LinkDraft{Kind: content.TourArtist, TargetID: fugazi.ID})

	manager := newManager(t)
	rel := relations.NewService(store, nil, nil)
	catalogService := catalog.NewService(store)
	for _, title := range []string{"Turnover", "Merchandise"} {
		_, err := catalogService.AddTrack(ctx, album.ID, content.Track{Title: title, Length: "4:16"}, nil)
		require.NoError(t, err)
	}
	_, err = catalogService.AddDate(ctx, tour.ID, content.TourDate{Venue: "9:30 Club", City: "Washington", Country: "USA", DoorsOpen: "19:30"}, nil)
	require.NoError(t, err)

	t.Chdir("../../..")
	server := NewServer(manager, "config.yaml", Services{
		Relations: rel,
		Catalog:   catalogService,
		Listing:   listing.NewService(store, rel, manager, nil),
	})

	page := func(path string) string {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Accept", "text/html")
		resp, err := server.App().Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(raw)
	}

	body := page("/albums/" + album.Slug)
	assert.Contains(t, body, "Track list")
	turnover := strings.Index(body, "Turnover")
	merchandise := strings.Index(body, "Merchandise")
	require.Positive(t, turnover)
	assert.Less(t, turnover, merchandise, "tracks render in position order")
	assert.Contains(t, body, "4:16")

	body = page("/tours/" + tour.Slug)
	assert.Contains(t, body, "Tour dates")
	assert.Contains(t, body, "9:30 Club")
	assert.Contains(t, body, "Washington, USA")
	assert.Contains(t, body, "Doors 19:30")
}
